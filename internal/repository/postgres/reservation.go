package postgresrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sportspass/ticketing/internal/domain"
	"github.com/sportspass/ticketing/internal/repository"
)

type InventoryRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *InventoryRepo) With(db DB) *InventoryRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *InventoryRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// GetSession retrieves a session with its areas in configured order.
//
// Returns:
//   - *domain.Session: the session when found.
//   - error: repository.ErrNotFound if the session does not exist.
func (r *InventoryRepo) GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	const op = "postgresrepo.InventoryRepo.GetSession"

	db := r.handle()

	var s domain.Session
	err := db.QueryRow(ctx,
		`SELECT id, event_id, name, place, starts_at, sales_open, sales_close, created_at, updated_at
		 FROM sessions WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.EventID, &s.Name, &s.Place, &s.StartsAt, &s.SalesOpen, &s.SalesClose, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	areas, err := listAreas(ctx, db, []uuid.UUID{id})
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	s.Areas = areas[id]

	return &s, nil
}

// Reserve decrements each area with a single conditional UPDATE and records
// the reservation marker. The first area that cannot cover its quantity
// aborts the call with *repository.InsufficientInventoryError; callers run it
// inside a transaction so earlier decrements roll back.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - res: the pending reservation; Items must be sorted by area name.
//
// Returns:
//   - []domain.AreaAllocation: one allocation per area, in Items order.
//   - error: repository.ErrAreaNotFound if an area does not exist in the session.
func (r *InventoryRepo) Reserve(ctx context.Context, res domain.Reservation) ([]domain.AreaAllocation, error) {
	const op = "postgresrepo.InventoryRepo.Reserve"

	db := r.handle()

	out := make([]domain.AreaAllocation, 0, len(res.Items))
	for _, it := range res.Items {
		a := domain.AreaAllocation{Area: it.Area, Quantity: it.Quantity}

		var next int
		err := db.QueryRow(ctx,
			`UPDATE session_areas
			 SET remaining = remaining - $3, next_seat = next_seat + $3
			 WHERE session_id = $1 AND name = $2 AND remaining >= $3
			 RETURNING color, price_cents, next_seat`,
			res.SessionID, it.Area, it.Quantity,
		).Scan(&a.Color, &a.PriceCents, &next)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s:%w", op, r.shortage(ctx, db, res.SessionID, it))
		}
		if err != nil {
			return nil, wrapDBErr(op, err)
		}

		a.FirstSeat = next - it.Quantity + 1
		out = append(out, a)
	}

	items, err := json.Marshal(res.Items)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if _, err := db.Exec(ctx,
		`INSERT INTO reservations(id, session_id, buyer_id, items, status, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		res.ID, res.SessionID, res.BuyerID, items, res.Status, res.ExpiresAt, res.CreatedAt,
	); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *InventoryRepo) shortage(ctx context.Context, db DB, sessionID uuid.UUID, it domain.AreaQuantity) error {
	var remaining int
	err := db.QueryRow(ctx,
		`SELECT remaining FROM session_areas WHERE session_id = $1 AND name = $2`,
		sessionID, it.Area,
	).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", repository.ErrAreaNotFound, it.Area)
	}
	if err != nil {
		return err
	}

	return &repository.InsufficientInventoryError{
		Area:      it.Area,
		Requested: it.Quantity,
		Available: remaining,
	}
}

// Release gives seats back to their areas. Remaining never exceeds capacity.
func (r *InventoryRepo) Release(ctx context.Context, sessionID uuid.UUID, items []domain.AreaQuantity) error {
	const op = "postgresrepo.InventoryRepo.Release"

	db := r.handle()

	for _, it := range items {
		tag, err := db.Exec(ctx,
			`UPDATE session_areas
			 SET remaining = LEAST(capacity, remaining + $3)
			 WHERE session_id = $1 AND name = $2`,
			sessionID, it.Area, it.Quantity,
		)
		if err != nil {
			return wrapDBErr(op, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%s:%w: %s", op, repository.ErrAreaNotFound, it.Area)
		}
	}

	return nil
}

// ReconfigureArea changes capacity and price while keeping sold seats sold.
//
// Returns:
//   - *domain.Area: the area after the change.
//   - error: repository.ErrAreaNotFound if the area does not exist.
//   - error: repository.ErrConstraint if capacity is below the sold count.
func (r *InventoryRepo) ReconfigureArea(
	ctx context.Context,
	sessionID uuid.UUID,
	area string,
	capacity int,
	priceCents int64,
) (*domain.Area, error) {
	const op = "postgresrepo.InventoryRepo.ReconfigureArea"

	db := r.handle()

	var a domain.Area
	var ticketTypes []byte
	err := db.QueryRow(ctx,
		`UPDATE session_areas
		 SET remaining = $3 - (capacity - remaining), capacity = $3, price_cents = $4
		 WHERE session_id = $1 AND name = $2 AND capacity - remaining <= $3
		 RETURNING name, color, price_cents, ticket_types, capacity, remaining, next_seat`,
		sessionID, area, capacity, priceCents,
	).Scan(&a.Name, &a.Color, &a.PriceCents, &ticketTypes, &a.Capacity, &a.Remaining, &a.NextSeat)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := db.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM session_areas WHERE session_id = $1 AND name = $2)`,
			sessionID, area,
		).Scan(&exists); err != nil {
			return nil, wrapDBErr(op, err)
		}
		if !exists {
			return nil, fmt.Errorf("%s:%w", op, repository.ErrAreaNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, repository.ErrConstraint)
	}
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	if err := json.Unmarshal(ticketTypes, &a.TicketTypes); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &a, nil
}

func (r *InventoryRepo) GetReservation(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	const op = "postgresrepo.InventoryRepo.GetReservation"

	row := r.handle().QueryRow(ctx,
		`SELECT id, session_id, buyer_id, items, status, order_id, expires_at, created_at
		 FROM reservations WHERE id = $1`,
		id,
	)

	res, err := scanReservation(row)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return res, nil
}

func (r *InventoryRepo) MarkReservation(
	ctx context.Context,
	id uuid.UUID,
	from, to domain.ReservationStatus,
	orderID *uuid.UUID,
) error {
	const op = "postgresrepo.InventoryRepo.MarkReservation"

	tag, err := r.handle().Exec(ctx,
		`UPDATE reservations
		 SET status = $3, order_id = COALESCE($4, order_id), updated_at = now()
		 WHERE id = $1 AND status = $2`,
		id, from, to, orderID,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrConflict)
	}

	return nil
}

// ListExpiredReservations returns pending reservations whose expiry passed,
// oldest first. Rows locked by a concurrent sweeper are skipped.
func (r *InventoryRepo) ListExpiredReservations(ctx context.Context, now time.Time, limit int) ([]domain.Reservation, error) {
	const op = "postgresrepo.InventoryRepo.ListExpiredReservations"

	rows, err := r.handle().Query(ctx,
		`SELECT id, session_id, buyer_id, items, status, order_id, expires_at, created_at
		 FROM reservations
		 WHERE status = 'pending' AND expires_at <= $1
		 ORDER BY expires_at
		 LIMIT $2
		 FOR UPDATE SKIP LOCKED`,
		now, limit,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	var items []byte
	var status string

	if err := row.Scan(
		&res.ID,
		&res.SessionID,
		&res.BuyerID,
		&items,
		&status,
		&res.OrderID,
		&res.ExpiresAt,
		&res.CreatedAt,
	); err != nil {
		return nil, err
	}

	res.Status = domain.ReservationStatus(status)
	if err := json.Unmarshal(items, &res.Items); err != nil {
		return nil, err
	}

	return &res, nil
}

func listAreas(ctx context.Context, db DB, sessionIDs []uuid.UUID) (map[uuid.UUID][]domain.Area, error) {
	rows, err := db.Query(ctx,
		`SELECT session_id, name, color, price_cents, ticket_types, capacity, remaining, next_seat
		 FROM session_areas
		 WHERE session_id = ANY($1)
		 ORDER BY session_id, position`,
		sessionIDs,
	)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make(map[uuid.UUID][]domain.Area, len(sessionIDs))
	for rows.Next() {
		var sid uuid.UUID
		var a domain.Area
		var ticketTypes []byte

		if err := rows.Scan(
			&sid,
			&a.Name,
			&a.Color,
			&a.PriceCents,
			&ticketTypes,
			&a.Capacity,
			&a.Remaining,
			&a.NextSeat,
		); err != nil {
			return nil, err
		}

		if err := json.Unmarshal(ticketTypes, &a.TicketTypes); err != nil {
			return nil, err
		}

		out[sid] = append(out[sid], a)
	}

	return out, rows.Err()
}
