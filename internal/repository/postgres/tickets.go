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

type TicketRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *TicketRepo) With(db DB) *TicketRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *TicketRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const ticketColumns = `id, order_id, session_id, event_id, area_name, area_color, ticket_name,
	seat, price_cents, status, created_at, updated_at`

func (r *TicketRepo) CreateBatch(ctx context.Context, tickets []domain.Ticket) error {
	const op = "postgresrepo.TicketRepo.CreateBatch"

	batch := &pgx.Batch{}
	for _, t := range tickets {
		batch.Queue(
			`INSERT INTO tickets(id, order_id, session_id, event_id, area_name, area_color, ticket_name,
			                     seat, price_cents, status, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
			t.ID, t.OrderID, t.SessionID, t.EventID, t.AreaName, t.AreaColor, t.TicketName,
			t.Seat, t.PriceCents, t.Status, t.CreatedAt,
		)
	}
	if err := r.handle().SendBatch(ctx, batch).Close(); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *TicketRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	const op = "postgresrepo.TicketRepo.Get"

	t, err := scanTicket(r.handle().QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return t, nil
}

func (r *TicketRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.Ticket, error) {
	const op = "postgresrepo.TicketRepo.ListByOrder"

	rows, err := r.handle().Query(ctx,
		`SELECT `+ticketColumns+`
		 FROM tickets
		 WHERE order_id = $1
		 ORDER BY area_name, seat`,
		orderID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// TransitionStatus moves one ticket from -> to.
//
// Returns:
//   - error: repository.ErrNotFound if the ticket does not exist.
//   - error: repository.ErrConflict if the ticket is not in the from status.
func (r *TicketRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.TicketStatus) error {
	const op = "postgresrepo.TicketRepo.TransitionStatus"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE tickets SET status = $3, updated_at = now()
		 WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tickets WHERE id = $1)`, id).Scan(&exists); err != nil {
			return wrapDBErr(op, err)
		}
		if !exists {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		return fmt.Errorf("%s:%w", op, repository.ErrConflict)
	}

	return nil
}

func (r *TicketRepo) VoidByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.AreaQuantity, error) {
	const op = "postgresrepo.TicketRepo.VoidByOrder"

	rows, err := r.handle().Query(ctx,
		`WITH voided AS (
		     UPDATE tickets SET status = 'voided', updated_at = now()
		     WHERE order_id = $1 AND status = 'unused'
		     RETURNING area_name
		 )
		 SELECT area_name, count(*) FROM voided
		 GROUP BY area_name
		 ORDER BY area_name`,
		orderID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.AreaQuantity
	for rows.Next() {
		var q domain.AreaQuantity
		if err := rows.Scan(&q.Area, &q.Quantity); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *TicketRepo) CountBySession(ctx context.Context, sessionID uuid.UUID, status domain.TicketStatus) (int64, error) {
	const op = "postgresrepo.TicketRepo.CountBySession"

	var n int64
	if err := r.handle().QueryRow(ctx,
		`SELECT count(*) FROM tickets WHERE session_id = $1 AND status = $2`,
		sessionID, status,
	).Scan(&n); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return n, nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	var status string

	if err := row.Scan(
		&t.ID,
		&t.OrderID,
		&t.SessionID,
		&t.EventID,
		&t.AreaName,
		&t.AreaColor,
		&t.TicketName,
		&t.Seat,
		&t.PriceCents,
		&status,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	t.Status = domain.TicketStatus(status)

	return &t, nil
}
