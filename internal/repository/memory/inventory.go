package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sportspass/ticketing/internal/domain"
	"github.com/sportspass/ticketing/internal/repository"
)

type inventoryRepo struct{ v view }

func (r inventoryRepo) GetSession(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	const op = "memory.InventoryRepo.GetSession"

	var out domain.Session
	err := r.v.read(func(st *state) error {
		s, ok := st.sessions[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = copySession(s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}

func (r inventoryRepo) Reserve(_ context.Context, res domain.Reservation) ([]domain.AreaAllocation, error) {
	const op = "memory.InventoryRepo.Reserve"

	var out []domain.AreaAllocation
	err := r.v.do(func(st *state) error {
		s, ok := st.sessions[res.SessionID]
		if !ok {
			return repository.ErrNotFound
		}

		out = make([]domain.AreaAllocation, 0, len(res.Items))
		for _, it := range res.Items {
			i := areaIndex(s, it.Area)
			if i < 0 {
				return fmt.Errorf("%w: %s", repository.ErrAreaNotFound, it.Area)
			}

			a := &s.Areas[i]
			if a.Remaining < it.Quantity {
				return &repository.InsufficientInventoryError{
					Area:      it.Area,
					Requested: it.Quantity,
					Available: a.Remaining,
				}
			}

			a.Remaining -= it.Quantity
			a.NextSeat += it.Quantity

			out = append(out, domain.AreaAllocation{
				Area:       a.Name,
				Color:      a.Color,
				Quantity:   it.Quantity,
				FirstSeat:  a.NextSeat - it.Quantity + 1,
				PriceCents: a.PriceCents,
			})
		}
		st.sessions[s.ID] = s

		if _, dup := st.reservations[res.ID]; dup {
			return repository.ErrConflict
		}
		st.reservations[res.ID] = copyReservation(res)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

func (r inventoryRepo) Release(_ context.Context, sessionID uuid.UUID, items []domain.AreaQuantity) error {
	const op = "memory.InventoryRepo.Release"

	err := r.v.do(func(st *state) error {
		s, ok := st.sessions[sessionID]
		if !ok {
			return fmt.Errorf("%w: session %s", repository.ErrAreaNotFound, sessionID)
		}

		for _, it := range items {
			i := areaIndex(s, it.Area)
			if i < 0 {
				return fmt.Errorf("%w: %s", repository.ErrAreaNotFound, it.Area)
			}
			s.Areas[i].Remaining = min(s.Areas[i].Capacity, s.Areas[i].Remaining+it.Quantity)
		}
		st.sessions[sessionID] = s

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r inventoryRepo) ReconfigureArea(
	_ context.Context,
	sessionID uuid.UUID,
	area string,
	capacity int,
	priceCents int64,
) (*domain.Area, error) {
	const op = "memory.InventoryRepo.ReconfigureArea"

	var out domain.Area
	err := r.v.do(func(st *state) error {
		s, ok := st.sessions[sessionID]
		if !ok {
			return repository.ErrAreaNotFound
		}

		i := areaIndex(s, area)
		if i < 0 {
			return repository.ErrAreaNotFound
		}

		a, err := s.Areas[i].Reconfigure(capacity, priceCents)
		if err != nil {
			return fmt.Errorf("%w: %v", repository.ErrConstraint, err)
		}

		s.Areas[i] = a
		st.sessions[sessionID] = s
		out = a

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}

func (r inventoryRepo) GetReservation(_ context.Context, id uuid.UUID) (*domain.Reservation, error) {
	const op = "memory.InventoryRepo.GetReservation"

	var out domain.Reservation
	err := r.v.read(func(st *state) error {
		res, ok := st.reservations[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = copyReservation(res)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}

func (r inventoryRepo) MarkReservation(
	_ context.Context,
	id uuid.UUID,
	from, to domain.ReservationStatus,
	orderID *uuid.UUID,
) error {
	const op = "memory.InventoryRepo.MarkReservation"

	err := r.v.do(func(st *state) error {
		res, ok := st.reservations[id]
		if !ok || res.Status != from {
			return repository.ErrConflict
		}

		res.Status = to
		if orderID != nil {
			oid := *orderID
			res.OrderID = &oid
		}
		st.reservations[id] = res

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r inventoryRepo) ListExpiredReservations(_ context.Context, now time.Time, limit int) ([]domain.Reservation, error) {
	var out []domain.Reservation
	_ = r.v.read(func(st *state) error {
		for _, res := range st.reservations {
			if res.Status == domain.ReservationPending && !res.ExpiresAt.After(now) {
				out = append(out, copyReservation(res))
			}
		}
		return nil
	})

	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func areaIndex(s domain.Session, name string) int {
	for i, a := range s.Areas {
		if a.Name == name {
			return i
		}
	}
	return -1
}
