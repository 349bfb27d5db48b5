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
	"github.com/sportspass/ticketing/internal/repository"
)

type CatalogRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *CatalogRepo) With(db DB) *CatalogRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *CatalogRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *CatalogRepo) CreateCategory(ctx context.Context, c *domain.Category) error {
	const op = "postgresrepo.CatalogRepo.CreateCategory"

	if _, err := r.handle().Exec(ctx,
		`INSERT INTO categories(id, name, event_count, created_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.EventCount, c.CreatedAt,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *CatalogRepo) GetCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	const op = "postgresrepo.CatalogRepo.GetCategoryByName"

	var c domain.Category
	if err := r.handle().QueryRow(ctx,
		`SELECT id, name, event_count, created_at FROM categories WHERE name = $1`,
		name,
	).Scan(&c.ID, &c.Name, &c.EventCount, &c.CreatedAt); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &c, nil
}

func (r *CatalogRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "postgresrepo.CatalogRepo.ListCategories"

	out, err := r.listCounted(ctx,
		`SELECT id, name, event_count, created_at FROM categories ORDER BY name`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// HotCategories returns the categories with the most active events.
func (r *CatalogRepo) HotCategories(ctx context.Context, limit int) ([]domain.Category, error) {
	const op = "postgresrepo.CatalogRepo.HotCategories"

	out, err := r.listCounted(ctx,
		`SELECT id, name, event_count, created_at
		 FROM categories
		 WHERE event_count > 0
		 ORDER BY event_count DESC, name
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *CatalogRepo) listCounted(ctx context.Context, sql string, args ...any) ([]domain.Category, error) {
	rows, err := r.handle().Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.EventCount, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, rows.Err()
}

func (r *CatalogRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	const op = "postgresrepo.CatalogRepo.DeleteCategory"

	return r.deleteCounted(ctx, op, "categories", id)
}

func (r *CatalogRepo) DeleteTag(ctx context.Context, id uuid.UUID) error {
	const op = "postgresrepo.CatalogRepo.DeleteTag"

	return r.deleteCounted(ctx, op, "tags", id)
}

// deleteCounted removes a category or tag row unless its event counter is
// positive.
func (r *CatalogRepo) deleteCounted(ctx context.Context, op, table string, id uuid.UUID) error {
	db := r.handle()

	tag, err := db.Exec(ctx,
		`DELETE FROM `+table+` WHERE id = $1 AND event_count = 0`,
		id,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM `+table+` WHERE id = $1)`,
		id,
	).Scan(&exists); err != nil {
		return wrapDBErr(op, err)
	}
	if !exists {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return fmt.Errorf("%s:%w", op, repository.ErrInUse)
}

func (r *CatalogRepo) AdjustCategoryCount(ctx context.Context, id uuid.UUID, delta int) error {
	const op = "postgresrepo.CatalogRepo.AdjustCategoryCount"

	tag, err := r.handle().Exec(ctx,
		`UPDATE categories SET event_count = event_count + $2 WHERE id = $1`,
		id, delta,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

func (r *CatalogRepo) CreateTag(ctx context.Context, t *domain.Tag) error {
	const op = "postgresrepo.CatalogRepo.CreateTag"

	if _, err := r.handle().Exec(ctx,
		`INSERT INTO tags(id, name, event_count, created_at) VALUES ($1, $2, $3, $4)`,
		t.ID, t.Name, t.EventCount, t.CreatedAt,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *CatalogRepo) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	const op = "postgresrepo.CatalogRepo.GetTagByName"

	var t domain.Tag
	if err := r.handle().QueryRow(ctx,
		`SELECT id, name, event_count, created_at FROM tags WHERE name = $1`,
		name,
	).Scan(&t.ID, &t.Name, &t.EventCount, &t.CreatedAt); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &t, nil
}

func (r *CatalogRepo) ListTags(ctx context.Context) ([]domain.Tag, error) {
	const op = "postgresrepo.CatalogRepo.ListTags"

	rows, err := r.handle().Query(ctx,
		`SELECT id, name, event_count, created_at FROM tags ORDER BY name`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Tag
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.EventCount, &t.CreatedAt); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// AdjustTagCounts applies delta to every listed tag. A missing tag fails
// the whole call with repository.ErrNotFound.
func (r *CatalogRepo) AdjustTagCounts(ctx context.Context, ids []uuid.UUID, delta int) error {
	const op = "postgresrepo.CatalogRepo.AdjustTagCounts"

	if len(ids) == 0 {
		return nil
	}

	tag, err := r.handle().Exec(ctx,
		`UPDATE tags SET event_count = event_count + $2 WHERE id = ANY($1)`,
		ids, delta,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() != int64(len(ids)) {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

const eventColumns = `id, name, slug, category_id, tag_ids, sponsor_id, event_date, release_date,
	intro, status, created_at, updated_at`

func (r *CatalogRepo) CreateEvent(ctx context.Context, e *domain.Event) error {
	const op = "postgresrepo.CatalogRepo.CreateEvent"

	if _, err := r.handle().Exec(ctx,
		`INSERT INTO events(id, name, slug, category_id, tag_ids, sponsor_id, event_date, release_date,
		                    intro, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
		e.ID, e.Name, e.Slug, e.CategoryID, e.TagIDs, e.SponsorID, e.Date, e.ReleaseDate,
		e.Intro, int(e.Status), e.CreatedAt,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *CatalogRepo) GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	const op = "postgresrepo.CatalogRepo.GetEvent"

	e, err := scanEvent(r.handle().QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return e, nil
}

// ListEvents lists active events by date, optionally within one category.
func (r *CatalogRepo) ListEvents(ctx context.Context, categoryID *uuid.UUID, limit, offset int) ([]domain.Event, error) {
	const op = "postgresrepo.CatalogRepo.ListEvents"

	rows, err := r.handle().Query(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 WHERE status = 1 AND ($1::uuid IS NULL OR category_id = $1)
		 ORDER BY event_date, name
		 LIMIT $2 OFFSET $3`,
		categoryID, limit, offset,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *CatalogRepo) MarkEventDeleted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	const op = "postgresrepo.CatalogRepo.MarkEventDeleted"

	tag, err := r.handle().Exec(ctx,
		`UPDATE events SET status = 0, updated_at = $2 WHERE id = $1 AND status = 1`,
		id, at,
	)
	if err != nil {
		return false, wrapDBErr(op, err)
	}

	return tag.RowsAffected() == 1, nil
}

// CreateSession inserts a session and its areas. Area position follows
// the order of s.Areas.
func (r *CatalogRepo) CreateSession(ctx context.Context, s *domain.Session) error {
	const op = "postgresrepo.CatalogRepo.CreateSession"

	batch := &pgx.Batch{}
	batch.Queue(
		`INSERT INTO sessions(id, event_id, name, place, starts_at, sales_open, sales_close, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		s.ID, s.EventID, s.Name, s.Place, s.StartsAt, s.SalesOpen, s.SalesClose, s.CreatedAt,
	)
	for i, a := range s.Areas {
		ticketTypes, err := json.Marshal(a.TicketTypes)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
		batch.Queue(
			`INSERT INTO session_areas(session_id, name, position, color, price_cents, ticket_types,
			                           capacity, remaining, next_seat)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			s.ID, a.Name, i, a.Color, a.PriceCents, ticketTypes, a.Capacity, a.Remaining, a.NextSeat,
		)
	}
	if err := r.handle().SendBatch(ctx, batch).Close(); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *CatalogRepo) ListSessionsByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Session, error) {
	const op = "postgresrepo.CatalogRepo.ListSessionsByEvent"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, event_id, name, place, starts_at, sales_open, sales_close, created_at, updated_at
		 FROM sessions
		 WHERE event_id = $1
		 ORDER BY starts_at`,
		eventID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	var out []domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.ID, &s.EventID, &s.Name, &s.Place, &s.StartsAt,
			&s.SalesOpen, &s.SalesClose, &s.CreatedAt, &s.UpdatedAt); err != nil {
			rows.Close()
			return nil, wrapDBErr(op, err)
		}
		out = append(out, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	if len(out) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, len(out))
	for i, s := range out {
		ids[i] = s.ID
	}

	areas, err := listAreas(ctx, db, ids)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	for i := range out {
		out[i].Areas = areas[out[i].ID]
	}

	return out, nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	var status int

	if err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Slug,
		&e.CategoryID,
		&e.TagIDs,
		&e.SponsorID,
		&e.Date,
		&e.ReleaseDate,
		&e.Intro,
		&status,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	e.Status = domain.EventStatus(status)

	return &e, nil
}
