package postgresrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sportspass/ticketing/internal/domain"
)

type OrderRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *OrderRepo) With(db DB) *OrderRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *OrderRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const orderColumns = `id, buyer_id, session_id, event_id, reservation_id, lines, ticket_ids,
	total_cents, status, created_at, updated_at, settled_at`

func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	const op = "postgresrepo.OrderRepo.Create"

	lines, err := json.Marshal(o.Lines)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if _, err := r.handle().Exec(ctx,
		`INSERT INTO orders(id, buyer_id, session_id, event_id, reservation_id, lines, ticket_ids,
		                    total_cents, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		o.ID, o.BuyerID, o.SessionID, o.EventID, o.ReservationID, lines, o.TicketIDs,
		o.TotalCents, o.Status, o.CreatedAt,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	const op = "postgresrepo.OrderRepo.Get"

	o, err := scanOrder(r.handle().QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return o, nil
}

func (r *OrderRepo) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]domain.Order, error) {
	const op = "postgresrepo.OrderRepo.ListByBuyer"

	rows, err := r.handle().Query(ctx,
		`SELECT `+orderColumns+`
		 FROM orders
		 WHERE buyer_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		buyerID, limit, offset,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *OrderRepo) TransitionStatus(
	ctx context.Context,
	id uuid.UUID,
	from []domain.OrderStatus,
	to domain.OrderStatus,
	at time.Time,
) (bool, error) {
	const op = "postgresrepo.OrderRepo.TransitionStatus"

	fromStr := make([]string, len(from))
	for i, s := range from {
		fromStr[i] = string(s)
	}

	tag, err := r.handle().Exec(ctx,
		`UPDATE orders
		 SET status = $3, updated_at = $4, settled_at = COALESCE(settled_at, $4)
		 WHERE id = $1 AND status = ANY($2)`,
		id, fromStr, to, at,
	)
	if err != nil {
		return false, wrapDBErr(op, err)
	}

	return tag.RowsAffected() == 1, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var lines []byte
	var status string

	if err := row.Scan(
		&o.ID,
		&o.BuyerID,
		&o.SessionID,
		&o.EventID,
		&o.ReservationID,
		&lines,
		&o.TicketIDs,
		&o.TotalCents,
		&status,
		&o.CreatedAt,
		&o.UpdatedAt,
		&o.SettledAt,
	); err != nil {
		return nil, err
	}

	o.Status = domain.OrderStatus(status)
	if err := json.Unmarshal(lines, &o.Lines); err != nil {
		return nil, err
	}

	return &o, nil
}
