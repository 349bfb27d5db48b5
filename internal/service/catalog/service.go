package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/sportspass/ticketing/internal/domain"
	"github.com/sportspass/ticketing/internal/repository"
	redisrepo "github.com/sportspass/ticketing/internal/repository/redis"
	"github.com/sportspass/ticketing/internal/service/hooks"
	"github.com/sportspass/ticketing/internal/uow"
)

type Config struct {
	HotCategoriesTTL   time.Duration
	HotCategoriesLimit int
	Now                func() time.Time
}

// Service manages categories, tags, events and sessions. Event counters on
// categories and tags change in the same transaction as the event they
// count.
type Service struct {
	store    repository.Store
	cache    *redisrepo.Cache
	notifier hooks.SessionNotifier
	uow      *uow.UoW
	log      *slog.Logger
	cfg      Config
}

func New(
	store repository.Store,
	cache *redisrepo.Cache,
	notifier hooks.SessionNotifier,
	log *slog.Logger,
	cfg Config,
) *Service {
	if cfg.HotCategoriesTTL <= 0 {
		cfg.HotCategoriesTTL = 60 * time.Second
	}

	if cfg.HotCategoriesLimit <= 0 {
		cfg.HotCategoriesLimit = 10
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if notifier == nil {
		notifier = hooks.Nop{}
	}

	return &Service{
		store:    store,
		cache:    cache,
		notifier: notifier,
		uow:      uow.NewUoW(store),
		log:      log,
		cfg:      cfg,
	}
}

// CreateCategory stores a new category with a zero event count.
//
// Returns:
//   - error: catalog.ErrCategoryExists if the name is taken.
func (s *Service) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	const op = "service.catalog.CreateCategory"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%s: %w: empty name", op, ErrInvalidInput)
	}

	c := domain.Category{ID: uuid.New(), Name: name, CreatedAt: s.cfg.Now().UTC()}
	if err := s.store.Catalog().CreateCategory(ctx, &c); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, ErrCategoryExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &c, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "service.catalog.ListCategories"

	out, err := s.store.Catalog().ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// HotCategories returns the categories with the most active events. The
// result is cached briefly and dropped whenever an event is created or
// deleted.
func (s *Service) HotCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "service.catalog.HotCategories"

	out, err := redisrepo.GetOrSetJSON(ctx, s.cache, redisrepo.KeyHotCategories(), s.cfg.HotCategoriesTTL,
		func(ctx context.Context) ([]domain.Category, error) {
			return s.store.Catalog().HotCategories(ctx, s.cfg.HotCategoriesLimit)
		})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// DeleteCategory removes a category that no active event references.
//
// Returns:
//   - error: catalog.ErrCategoryNotFound if it does not exist.
//   - error: catalog.ErrCategoryInUse if its event count is not zero.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	const op = "service.catalog.DeleteCategory"

	err := s.store.Catalog().DeleteCategory(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrCategoryNotFound)
	case errors.Is(err, repository.ErrInUse):
		return fmt.Errorf("%s: %w", op, ErrCategoryInUse)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}

	_ = s.cache.Del(ctx, redisrepo.KeyHotCategories())

	return nil
}

func (s *Service) CreateTag(ctx context.Context, name string) (*domain.Tag, error) {
	const op = "service.catalog.CreateTag"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%s: %w: empty name", op, ErrInvalidInput)
	}

	t := domain.Tag{ID: uuid.New(), Name: name, CreatedAt: s.cfg.Now().UTC()}
	if err := s.store.Catalog().CreateTag(ctx, &t); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, ErrTagExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &t, nil
}

func (s *Service) ListTags(ctx context.Context) ([]domain.Tag, error) {
	const op = "service.catalog.ListTags"

	out, err := s.store.Catalog().ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (s *Service) DeleteTag(ctx context.Context, id uuid.UUID) error {
	const op = "service.catalog.DeleteTag"

	err := s.store.Catalog().DeleteTag(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrTagNotFound)
	case errors.Is(err, repository.ErrInUse):
		return fmt.Errorf("%s: %w", op, ErrTagInUse)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

type SessionInput struct {
	Name       string
	Place      string
	StartsAt   time.Time
	SalesOpen  time.Time
	SalesClose time.Time
	Areas      []AreaInput
}

type AreaInput struct {
	Name        string
	Color       string
	PriceCents  int64
	Capacity    int
	TicketTypes []domain.TicketType
}

type CreateEventInput struct {
	SponsorID   uuid.UUID
	Name        string
	CategoryID  uuid.UUID
	TagIDs      []uuid.UUID
	Date        time.Time
	ReleaseDate time.Time
	Intro       string
	Sessions    []SessionInput
}

// CreateEvent stores an event with its initial sessions and bumps the
// counters of its category and tags, all in one transaction.
//
// Returns:
//   - *domain.Event: the created event.
//   - error: catalog.ErrCategoryNotFound or catalog.ErrTagNotFound if a
//     reference does not exist.
//   - error: catalog.ErrInvalidInput or a domain validation error if a
//     session is malformed.
func (s *Service) CreateEvent(ctx context.Context, in CreateEventInput) (*domain.Event, error) {
	const op = "service.catalog.CreateEvent"

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%s: %w: empty event name", op, ErrInvalidInput)
	}

	now := s.cfg.Now().UTC()
	ev := domain.Event{
		ID:          uuid.New(),
		Name:        name,
		Slug:        slug.Make(name),
		CategoryID:  in.CategoryID,
		TagIDs:      dedupe(in.TagIDs),
		SponsorID:   in.SponsorID,
		Date:        in.Date,
		ReleaseDate: in.ReleaseDate,
		Intro:       in.Intro,
		Status:      domain.EventActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	sessions := make([]domain.Session, 0, len(in.Sessions))
	for _, si := range in.Sessions {
		sess, err := newSession(ev.ID, si, now)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		sessions = append(sessions, sess)
	}

	err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		if err := tx.Catalog().CreateEvent(ctx, &ev); err != nil {
			return err
		}

		if err := tx.Catalog().AdjustCategoryCount(ctx, ev.CategoryID, 1); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}

		if len(ev.TagIDs) > 0 {
			if err := tx.Catalog().AdjustTagCounts(ctx, ev.TagIDs, 1); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return ErrTagNotFound
				}
				return err
			}
		}

		for i := range sessions {
			if err := tx.Catalog().CreateSession(ctx, &sessions[i]); err != nil {
				return err
			}
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateCatalog(ctx, ev.ID)
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("event created", "event_id", ev.ID, "slug", ev.Slug, "sessions", len(sessions))

	return &ev, nil
}

// DeleteEvent soft-deletes an active event and gives back its category
// and tag counts. Deleting an event that is already deleted does nothing.
//
// Returns:
//   - error: catalog.ErrEventNotFound if no event has this id.
func (s *Service) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	const op = "service.catalog.DeleteEvent"

	err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		ev, err := tx.Catalog().GetEvent(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if ev.Status == domain.EventDeleted {
			return nil
		}

		changed, err := tx.Catalog().MarkEventDeleted(ctx, id, s.cfg.Now().UTC())
		if err != nil {
			return err
		}
		if !changed {
			// lost to a concurrent delete; its counters are already adjusted
			return nil
		}

		if err := tx.Catalog().AdjustCategoryCount(ctx, ev.CategoryID, -1); err != nil &&
			!errors.Is(err, repository.ErrNotFound) {
			return err
		}

		if len(ev.TagIDs) > 0 {
			if err := tx.Catalog().AdjustTagCounts(ctx, ev.TagIDs, -1); err != nil &&
				!errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateCatalog(ctx, id)
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// CreateSession adds a session to an active event.
func (s *Service) CreateSession(ctx context.Context, eventID uuid.UUID, in SessionInput) (*domain.Session, error) {
	const op = "service.catalog.CreateSession"

	now := s.cfg.Now().UTC()
	sess, err := newSession(eventID, in, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = s.uow.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		ev, err := tx.Catalog().GetEvent(ctx, eventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if ev.Status != domain.EventActive {
			return ErrEventNotFound
		}

		if err := tx.Catalog().CreateSession(ctx, &sess); err != nil {
			return err
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateCatalog(ctx, eventID)
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &sess, nil
}

// UpdateArea changes the capacity and price of one area. Seats already
// sold stay sold: remaining becomes capacity minus sold.
//
// Returns:
//   - *domain.Area: the area after the change.
//   - error: catalog.ErrSessionNotFound or catalog.ErrAreaNotFound.
//   - error: domain.ErrCapacityBelowSold if capacity is below sold seats.
func (s *Service) UpdateArea(
	ctx context.Context,
	sessionID uuid.UUID,
	area string,
	capacity int,
	priceCents int64,
) (*domain.Area, error) {
	const op = "service.catalog.UpdateArea"

	if capacity < 0 || priceCents < 0 {
		return nil, fmt.Errorf("%s: %w: capacity and price must not be negative", op, ErrInvalidInput)
	}

	if _, err := s.store.Inventory().GetSession(ctx, sessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrSessionNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a, err := s.store.Inventory().ReconfigureArea(ctx, sessionID, area, capacity, priceCents)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrAreaNotFound):
		return nil, fmt.Errorf("%s: %w", op, ErrAreaNotFound)
	case errors.Is(err, repository.ErrConstraint):
		return nil, fmt.Errorf("%s: %w", op, domain.ErrCapacityBelowSold)
	default:
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.notifier.SessionChanged(ctx, sessionID)

	s.log.Info("area reconfigured",
		"session_id", sessionID,
		"area", area,
		"capacity", a.Capacity,
		"remaining", a.Remaining,
	)

	return a, nil
}

func newSession(eventID uuid.UUID, in SessionInput, now time.Time) (domain.Session, error) {
	sess := domain.Session{
		ID:         uuid.New(),
		EventID:    eventID,
		Name:       in.Name,
		Place:      in.Place,
		StartsAt:   in.StartsAt,
		SalesOpen:  in.SalesOpen,
		SalesClose: in.SalesClose,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	for _, a := range in.Areas {
		sess.Areas = append(sess.Areas, domain.Area{
			Name:        strings.TrimSpace(a.Name),
			Color:       a.Color,
			PriceCents:  a.PriceCents,
			TicketTypes: a.TicketTypes,
			Capacity:    a.Capacity,
			Remaining:   a.Capacity,
		})
	}

	if len(sess.Areas) == 0 {
		return sess, fmt.Errorf("%w: session needs at least one area", ErrInvalidInput)
	}

	if err := sess.Validate(); err != nil {
		return sess, err
	}

	return sess, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return nil
	}

	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
