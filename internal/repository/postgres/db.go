package postgresrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sportspass/ticketing/internal/repository"
)

const maxTxAttempts = 3

type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type Store struct {
	pool *pgxpool.Pool
}

var _ repository.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
	}
}

// RunTx runs fn inside a transaction. Serialization failures and deadlocks
// are retried with a fresh transaction, so fn must not keep state across
// calls.
func (s *Store) RunTx(
	ctx context.Context,
	opts *repository.TxOptions,
	fn func(ctx context.Context, tx repository.Repos) error,
) error {
	txOpts := pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	}

	if opts != nil && opts.IsoLevel == repository.ReadCommitted {
		txOpts.IsoLevel = pgx.ReadCommitted
	}

	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = s.runTxOnce(ctx, txOpts, fn)
		if err == nil || !IsRetryable(err) {
			return err
		}
	}

	return err
}

func (s *Store) runTxOnce(
	ctx context.Context,
	txOpts pgx.TxOptions,
	fn func(ctx context.Context, tx repository.Repos) error,
) error {
	tx, err := s.pool.BeginTx(ctx, txOpts)
	if err != nil {
		return err
	}

	defer tx.Rollback(ctx)

	if err := fn(ctx, txRepos{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func (s *Store) Inventory() repository.InventoryRepo        { return &InventoryRepo{pool: s.pool} }
func (s *Store) Orders() repository.OrderRepo               { return &OrderRepo{pool: s.pool} }
func (s *Store) Tickets() repository.TicketRepo             { return &TicketRepo{pool: s.pool} }
func (s *Store) Users() repository.UserRepo                 { return &UserRepo{pool: s.pool} }
func (s *Store) Catalog() repository.CatalogRepo            { return &CatalogRepo{pool: s.pool} }
func (s *Store) Notifications() repository.NotificationRepo { return &NotificationRepo{pool: s.pool} }

// txRepos hands out repositories bound to one transaction.
type txRepos struct {
	db DB
}

func (t txRepos) Inventory() repository.InventoryRepo        { return &InventoryRepo{db: t.db} }
func (t txRepos) Orders() repository.OrderRepo               { return &OrderRepo{db: t.db} }
func (t txRepos) Tickets() repository.TicketRepo             { return &TicketRepo{db: t.db} }
func (t txRepos) Users() repository.UserRepo                 { return &UserRepo{db: t.db} }
func (t txRepos) Catalog() repository.CatalogRepo            { return &CatalogRepo{db: t.db} }
func (t txRepos) Notifications() repository.NotificationRepo { return &NotificationRepo{db: t.db} }
