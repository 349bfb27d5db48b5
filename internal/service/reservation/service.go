package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sportspass/ticketing/internal/domain"
	"github.com/sportspass/ticketing/internal/repository"
	"github.com/sportspass/ticketing/internal/service/hooks"
	"github.com/sportspass/ticketing/internal/uow"
)

type Config struct {
	// TTL bounds how long a pending reservation may hold seats before the
	// sweeper gives them back.
	TTL        time.Duration
	SweepBatch int
	Now        func() time.Time
}

// Service is the inventory ledger: it moves seats between a session's
// remaining capacity and pending reservations.
type Service struct {
	store    repository.Store
	uow      *uow.UoW
	notifier hooks.SessionNotifier
	log      *slog.Logger
	cfg      Config
}

var readCommitted = &repository.TxOptions{IsoLevel: repository.ReadCommitted}

func New(
	store repository.Store,
	notifier hooks.SessionNotifier,
	log *slog.Logger,
	cfg Config,
) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}

	if cfg.SweepBatch <= 0 {
		cfg.SweepBatch = 100
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if notifier == nil {
		notifier = hooks.Nop{}
	}

	return &Service{
		store:    store,
		uow:      uow.NewUoW(store),
		notifier: notifier,
		log:      log,
		cfg:      cfg,
	}
}

// TryReserve takes seats for every area of items at once. Duplicate areas
// are summed. Either every area is decremented and a pending reservation
// is stored, or nothing changes.
//
// Parameters:
//   - ctx: request-scoped context.
//   - buyerID: the user the seats are held for.
//   - sessionID: the session owning the areas.
//   - items: requested quantity per area.
//
// Returns:
//   - *domain.ReservationResult: the stored reservation and one allocation per area.
//   - error: *reservation.InsufficientInventoryError naming the first short area.
//   - error: reservation.ErrAreaNotFound if an area does not exist.
func (s *Service) TryReserve(
	ctx context.Context,
	buyerID, sessionID uuid.UUID,
	items []domain.AreaQuantity,
) (*domain.ReservationResult, error) {
	const op = "service.reservation.TryReserve"

	merged := domain.MergeQuantities(items)
	if len(merged) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}
	for _, it := range merged {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
		}
	}

	now := s.cfg.Now()
	res := domain.Reservation{
		ID:        uuid.New(),
		SessionID: sessionID,
		BuyerID:   buyerID,
		Items:     merged,
		Status:    domain.ReservationPending,
		ExpiresAt: now.Add(s.cfg.TTL),
		CreatedAt: now,
	}

	var allocs []domain.AreaAllocation

	err := s.uow.DoWithOpts(ctx, readCommitted, func(
		ctx context.Context,
		tx repository.Repos,
		after func(uow.AfterCommit),
	) error {
		var err error
		allocs, err = tx.Inventory().Reserve(ctx, res)
		if err != nil {
			return translate(err)
		}

		after(func(ctx context.Context) {
			s.notifier.SessionChanged(ctx, sessionID)
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &domain.ReservationResult{Reservation: res, Allocations: allocs}, nil
}

// Release returns seats to their areas, capped at capacity.
func (s *Service) Release(ctx context.Context, sessionID uuid.UUID, items []domain.AreaQuantity) error {
	const op = "service.reservation.Release"

	err := s.uow.DoWithOpts(ctx, readCommitted, func(
		ctx context.Context,
		tx repository.Repos,
		after func(uow.AfterCommit),
	) error {
		if err := tx.Inventory().Release(ctx, sessionID, domain.MergeQuantities(items)); err != nil {
			return translate(err)
		}

		after(func(ctx context.Context) {
			s.notifier.SessionChanged(ctx, sessionID)
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ReleaseReservation gives back the seats of a pending reservation and
// marks it released, in one transaction.
//
// Returns:
//   - error: reservation.ErrReservationNotFound if the reservation does not exist.
//   - error: reservation.ErrReservationNotPending if it was already committed or released.
func (s *Service) ReleaseReservation(ctx context.Context, id uuid.UUID) error {
	const op = "service.reservation.ReleaseReservation"

	err := s.uow.DoWithOpts(ctx, readCommitted, func(
		ctx context.Context,
		tx repository.Repos,
		after func(uow.AfterCommit),
	) error {
		res, err := tx.Inventory().GetReservation(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrReservationNotFound
			}
			return err
		}

		if err := releaseOne(ctx, tx, *res); err != nil {
			return err
		}

		after(func(ctx context.Context) {
			s.notifier.SessionChanged(ctx, res.SessionID)
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Expire releases pending reservations whose expiry has passed, at most
// one sweep batch per call.
//
// Returns:
//   - int: the number of reservations released.
func (s *Service) Expire(ctx context.Context) (int, error) {
	const op = "service.reservation.Expire"

	var released []domain.Reservation

	err := s.uow.DoWithOpts(ctx, readCommitted, func(
		ctx context.Context,
		tx repository.Repos,
		after func(uow.AfterCommit),
	) error {
		expired, err := tx.Inventory().ListExpiredReservations(ctx, s.cfg.Now(), s.cfg.SweepBatch)
		if err != nil {
			return err
		}

		released = released[:0]
		for _, res := range expired {
			if err := releaseOne(ctx, tx, res); err != nil {
				return err
			}
			released = append(released, res)
		}

		after(func(ctx context.Context) {
			seen := make(map[uuid.UUID]struct{}, len(released))
			for _, res := range released {
				if _, ok := seen[res.SessionID]; ok {
					continue
				}
				seen[res.SessionID] = struct{}{}
				s.notifier.SessionChanged(ctx, res.SessionID)
			}
		})

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	for _, res := range released {
		s.log.Info("expired reservation released",
			"reservation_id", res.ID,
			"session_id", res.SessionID,
			"buyer_id", res.BuyerID,
		)
	}

	return len(released), nil
}

func releaseOne(ctx context.Context, tx repository.Repos, res domain.Reservation) error {
	err := tx.Inventory().MarkReservation(ctx, res.ID,
		domain.ReservationPending, domain.ReservationReleased, nil)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrReservationNotPending
		}
		return err
	}

	if err := tx.Inventory().Release(ctx, res.SessionID, res.Items); err != nil {
		return translate(err)
	}

	return nil
}

func translate(err error) error {
	var short *repository.InsufficientInventoryError
	if errors.As(err, &short) {
		return &InsufficientInventoryError{
			Area:      short.Area,
			Requested: short.Requested,
			Available: short.Available,
		}
	}

	switch {
	case errors.Is(err, repository.ErrAreaNotFound):
		return fmt.Errorf("%w: %v", ErrAreaNotFound, err)
	case errors.Is(err, repository.ErrNotFound):
		return ErrSessionNotFound
	}

	return err
}
