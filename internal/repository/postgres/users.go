package postgresrepo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sportspass/ticketing/internal/domain"
	"github.com/sportspass/ticketing/internal/repository"
)

type UserRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *UserRepo) With(db DB) *UserRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *UserRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const userColumns = `id, account, email, role, password_hash, order_ids, created_at`

// Create inserts a user. Duplicate accounts or emails fail with
// repository.ErrConflict.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	const op = "postgresrepo.UserRepo.Create"

	if _, err := r.handle().Exec(ctx,
		`INSERT INTO users(id, account, email, role, password_hash, order_ids, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Account, u.Email, u.Role, u.PasswordHash, u.OrderIDs, u.CreatedAt,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *UserRepo) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "postgresrepo.UserRepo.Get"

	u, err := scanUser(r.handle().QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const op = "postgresrepo.UserRepo.GetByEmail"

	u, err := scanUser(r.handle().QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`,
		email,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return u, nil
}

// AppendOrder records an order id on the buyer's history.
func (r *UserRepo) AppendOrder(ctx context.Context, userID, orderID uuid.UUID) error {
	const op = "postgresrepo.UserRepo.AppendOrder"

	tag, err := r.handle().Exec(ctx,
		`UPDATE users SET order_ids = array_append(order_ids, $2) WHERE id = $1`,
		userID, orderID,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var role string

	if err := row.Scan(
		&u.ID,
		&u.Account,
		&u.Email,
		&role,
		&u.PasswordHash,
		&u.OrderIDs,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}

	u.Role = domain.Role(role)

	return &u, nil
}
