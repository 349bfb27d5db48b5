package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sportspass/ticketing/internal/auth"
	"github.com/sportspass/ticketing/internal/broker/rabbitmq"
	"github.com/sportspass/ticketing/internal/config"
	"github.com/sportspass/ticketing/internal/mail"
	"github.com/sportspass/ticketing/internal/postgres"
	"github.com/sportspass/ticketing/internal/redis"
	"github.com/sportspass/ticketing/internal/repository"
	"github.com/sportspass/ticketing/internal/repository/memory"
	postgresrepo "github.com/sportspass/ticketing/internal/repository/postgres"
	redisrepo "github.com/sportspass/ticketing/internal/repository/redis"
	"github.com/sportspass/ticketing/internal/service"
	"github.com/sportspass/ticketing/internal/service/notifications"
	"github.com/sportspass/ticketing/internal/service/orders"
	"github.com/sportspass/ticketing/internal/service/reservation"
	"github.com/sportspass/ticketing/internal/service/settlement"
	httpgin "github.com/sportspass/ticketing/internal/transport/http/gin"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	services   *service.Services
	httpServer *http.Server
	consumer   *rabbitmq.Consumer
	closers    []func()
}

// Store opens the configured repository backend. The returned pool is nil
// for the memory backend.
func Store(ctx context.Context, cfg *config.Config) (repository.Store, *pgxpool.Pool, error) {
	if cfg.Storage.Driver == "memory" {
		return memory.NewStore(), nil, nil
	}

	pool, err := postgres.New(ctx, postgres.Config{DSN: cfg.Postgres.DSN(), MaxConns: cfg.Postgres.MaxConns})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	return postgresrepo.NewStore(pool), pool, nil
}

// Services builds the service layer on top of store with the optional
// Redis, broker and mail integrations the config enables. Extras.Close
// releases whatever was opened.
func Services(ctx context.Context, cfg *config.Config, store repository.Store, logger *slog.Logger) (*service.Services, *Extras, error) {
	ex := &Extras{}

	rdb, err := redis.New(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	deps := service.Deps{
		Store:  store,
		Tokens: auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Signer: settlement.NewSigner(cfg.Payment.HashKey),
		Log:    logger,
	}

	var cache *redisrepo.Cache
	if rdb != nil {
		ex.close(func() { _ = rdb.Close() })
		cache, ex.PubSub = redisrepo.NewCache(rdb), redisrepo.NewPubSub(rdb)
		ex.Idem = redisrepo.NewIdempotencyStore(rdb, cfg.Orders.IdempotencyTTL)
		deps.Cache = cache
		deps.Relay = ex.PubSub
		if cfg.Orders.RateLimit > 0 {
			deps.Limiter = redisrepo.NewSlidingWindowLimiter(rdb, "orders", cfg.Orders.RateLimit, cfg.Orders.RateWindow)
		}
		logger.Info("redis enabled", "addr", cfg.Redis.Addr)
	} else {
		logger.Info("redis not configured; caching, rate limiting, idempotency and streams are off")
	}
	deps.Notifier = redisrepo.NewInvalidator(cache, ex.PubSub, logger)

	if cfg.Broker.AMQPURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.Broker.AMQPURL, logger)
		if err != nil {
			ex.Close()
			return nil, nil, fmt.Errorf("failed to initialize broker: %w", err)
		}
		ex.close(func() { _ = pub.Close() })
		deps.Publisher = pub
	}

	if cfg.Mail.Enabled() {
		deps.Mailer = mail.NewSMTP(mail.Config{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		})
	}

	orderURL := "/orders/%s"
	if cfg.Server.PublicURL != "" {
		orderURL = cfg.Server.PublicURL + "/orders/%s"
	}

	svcs := service.NewServices(deps, service.Config{
		Reservation:   reservation.Config{TTL: cfg.Orders.ReservationTTL},
		Orders:        orders.Config{MaxTicketsPerOrder: cfg.Orders.MaxTicketsPerOrder},
		Notifications: notifications.Config{OrderURL: orderURL},
	})

	ex.Tokens = deps.Tokens

	return svcs, ex, nil
}

// Extras are the optional integrations Services opened.
type Extras struct {
	Tokens *auth.Issuer
	Idem   *redisrepo.IdempotencyStore
	PubSub *redisrepo.PubSub

	closers []func()
}

func (e *Extras) close(f func()) { e.closers = append(e.closers, f) }

func (e *Extras) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	e.closers = nil
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, pool, err := Store(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, logger: logger}
	if pool != nil {
		a.closers = append(a.closers, pool.Close)
	}

	svcs, ex, err := Services(ctx, cfg, store, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	a.closers = append(a.closers, ex.Close)
	a.services = svcs

	if cfg.Broker.AMQPURL != "" {
		a.consumer = rabbitmq.NewConsumer(cfg.Broker.AMQPURL, svcs.Notifications.Handle, logger)
	}

	router := httpgin.NewRouter(httpgin.RouterDeps{
		Services:    svcs,
		Tokens:      ex.Tokens,
		Idem:        ex.Idem,
		PubSub:      ex.PubSub,
		Logger:      logger,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer a.close()

	sched, err := a.scheduler(ctx)
	if err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	if a.consumer != nil {
		g.Go(func() error {
			a.logger.Info("order event consumer started")
			return a.consumer.Run(gCtx)
		})
	}

	sched.Start()

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down")

		if err := sched.Shutdown(); err != nil {
			a.logger.Warn("scheduler shutdown", "err", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

// scheduler runs the reservation sweep every SweepInterval. Singleton mode
// keeps a slow sweep from overlapping the next one.
func (a *App) scheduler(ctx context.Context) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(a.cfg.Orders.SweepInterval),
		gocron.NewTask(func() {
			n, err := a.services.Reservation.Expire(ctx)
			if err != nil {
				a.logger.Error("reservation sweep failed", "err", err)
				return
			}
			if n > 0 {
				a.logger.Info("expired reservations released", "count", n)
			}
		}),
		gocron.WithName("reservation-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule reservation sweep: %w", err)
	}

	return s, nil
}
