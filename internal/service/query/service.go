package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sportspass/ticketing/internal/domain"
	"github.com/sportspass/ticketing/internal/repository"
	redisrepo "github.com/sportspass/ticketing/internal/repository/redis"
)

type Config struct {
	SessionViewTTL  time.Duration
	EventDetailTTL  time.Duration
	DefaultPageSize int
	MaxPageSize     int
	Now             func() time.Time
}

type Service struct {
	store repository.Store
	cache *redisrepo.Cache
	cfg   Config
}

func New(store repository.Store, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.SessionViewTTL <= 0 {
		cfg.SessionViewTTL = 15 * time.Second
	}

	if cfg.EventDetailTTL <= 0 {
		cfg.EventDetailTTL = 5 * time.Second
	}

	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}

	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		store: store,
		cache: cache,
		cfg:   cfg,
	}
}

// sessionSnapshot is what gets cached. The sales status depends on the
// clock, so it is derived on every read instead of being stored.
type sessionSnapshot struct {
	Session domain.Session `json:"session"`
	Used    int64          `json:"used"`
}

type EventDetail struct {
	domain.Event
	Sessions []domain.SessionView `json:"sessionList"`
}

// GetSession returns the session read model with occupancy and sales
// status derived at read time.
//
// Returns:
//   - domain.SessionView: the session and its derived fields.
//   - error: query.ErrSessionNotFound if the session does not exist.
func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (*domain.SessionView, error) {
	const op = "service.query.GetSession"

	snap, err := redisrepo.GetOrSetJSON(ctx, s.cache, redisrepo.KeySessionView(id), s.cfg.SessionViewTTL,
		func(ctx context.Context) (sessionSnapshot, error) {
			return s.loadSession(ctx, id)
		})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	v := domain.NewSessionView(snap.Session, snap.Used, s.cfg.Now())
	return &v, nil
}

// GetEventDetail returns an active event with all of its sessions. The
// detail is cached for a few seconds only, since session occupancy inside
// it is not invalidated per order.
//
// Returns:
//   - error: query.ErrEventNotFound if no active event has this id.
func (s *Service) GetEventDetail(ctx context.Context, id uuid.UUID) (*EventDetail, error) {
	const op = "service.query.GetEventDetail"

	type cached struct {
		Event    domain.Event      `json:"event"`
		Sessions []sessionSnapshot `json:"sessions"`
	}

	c, err := redisrepo.GetOrSetJSON(ctx, s.cache, redisrepo.KeyEventDetail(id), s.cfg.EventDetailTTL,
		func(ctx context.Context) (cached, error) {
			ev, err := s.store.Catalog().GetEvent(ctx, id)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return cached{}, ErrEventNotFound
				}
				return cached{}, err
			}
			if ev.Status != domain.EventActive {
				return cached{}, ErrEventNotFound
			}

			sessions, err := s.store.Catalog().ListSessionsByEvent(ctx, id)
			if err != nil {
				return cached{}, err
			}

			out := cached{Event: *ev, Sessions: make([]sessionSnapshot, 0, len(sessions))}
			for _, sess := range sessions {
				used, err := s.store.Tickets().CountBySession(ctx, sess.ID, domain.TicketUsed)
				if err != nil {
					return cached{}, err
				}
				out.Sessions = append(out.Sessions, sessionSnapshot{Session: sess, Used: used})
			}

			return out, nil
		})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.cfg.Now()
	detail := &EventDetail{Event: c.Event, Sessions: make([]domain.SessionView, 0, len(c.Sessions))}
	for _, snap := range c.Sessions {
		detail.Sessions = append(detail.Sessions, domain.NewSessionView(snap.Session, snap.Used, now))
	}

	return detail, nil
}

// ListEvents pages through active events, optionally within one category.
func (s *Service) ListEvents(ctx context.Context, categoryID *uuid.UUID, limit, offset int) ([]domain.Event, error) {
	const op = "service.query.ListEvents"

	if limit <= 0 {
		limit = s.cfg.DefaultPageSize
	}

	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	events, err := s.store.Catalog().ListEvents(ctx, categoryID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

func (s *Service) loadSession(ctx context.Context, id uuid.UUID) (sessionSnapshot, error) {
	sess, err := s.store.Inventory().GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return sessionSnapshot{}, ErrSessionNotFound
		}
		return sessionSnapshot{}, err
	}

	used, err := s.store.Tickets().CountBySession(ctx, id, domain.TicketUsed)
	if err != nil {
		return sessionSnapshot{}, err
	}

	return sessionSnapshot{Session: *sess, Used: used}, nil
}
