package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	_ "github.com/sportspass/ticketing/docs"
	"github.com/sportspass/ticketing/internal/app"
	"github.com/sportspass/ticketing/internal/config"
	"github.com/sportspass/ticketing/internal/postgres"
	"github.com/sportspass/ticketing/internal/seed"
)

// @title                      SportsPass Ticketing API
// @version                    1.0
// @description                Seat inventory, orders and payment settlement for sports events.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := rootCmd(logger).ExecuteContext(context.Background()); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func rootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "ticketing",
		Short:         "SportsPass ticketing service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCmd(logger), migrateCmd(logger), seedCmd(logger))

	return root
}

func serveCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, reservation sweeper and event consumer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			application, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to create application: %w", err)
			}

			return application.Run(cmd.Context())
		},
	}
}

func migrateCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			_, pool, err := app.Store(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if pool == nil {
				return fmt.Errorf("migrate needs STORAGE=postgres")
			}
			defer pool.Close()

			if err := postgres.Migrate(cmd.Context(), pool); err != nil {
				return err
			}

			logger.Info("schema applied")
			return nil
		},
	}
}

func seedCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Load users, categories, tags and events from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seed.Load(args[0])
			if err != nil {
				return err
			}

			cfg, err := config.New()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx := cmd.Context()
			store, pool, err := app.Store(ctx, cfg)
			if err != nil {
				return err
			}
			if pool == nil {
				logger.Warn("seeding the memory store; data is lost when this command exits")
			} else {
				defer pool.Close()
			}

			svcs, extras, err := app.Services(ctx, cfg, store, logger)
			if err != nil {
				return err
			}
			defer extras.Close()

			res, err := seed.NewSeeder(store, svcs.Catalog, svcs.Users, logger).Apply(ctx, f)
			if err != nil {
				return err
			}

			logger.Info("seed applied",
				"users", res.Users,
				"categories", res.Categories,
				"tags", res.Tags,
				"events", res.Events,
			)
			return nil
		},
	}
}
