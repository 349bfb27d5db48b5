package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sportspass/ticketing/internal/domain"
	"github.com/sportspass/ticketing/internal/repository"
)

type orderRepo struct{ v view }

func (r orderRepo) Create(_ context.Context, o *domain.Order) error {
	const op = "memory.OrderRepo.Create"

	err := r.v.do(func(st *state) error {
		if _, dup := st.orders[o.ID]; dup {
			return repository.ErrConflict
		}
		for _, existing := range st.orders {
			if existing.ReservationID == o.ReservationID {
				return repository.ErrConflict
			}
		}
		if _, ok := st.users[o.BuyerID]; !ok {
			return repository.ErrNotFound
		}

		c := copyOrder(*o)
		c.UpdatedAt = c.CreatedAt
		st.orders[o.ID] = c

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r orderRepo) Get(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	const op = "memory.OrderRepo.Get"

	var out domain.Order
	err := r.v.read(func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = copyOrder(o)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}

func (r orderRepo) ListByBuyer(_ context.Context, buyerID uuid.UUID, limit, offset int) ([]domain.Order, error) {
	var out []domain.Order
	_ = r.v.read(func(st *state) error {
		for _, o := range st.orders {
			if o.BuyerID == buyerID {
				out = append(out, copyOrder(o))
			}
		}
		return nil
	})

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return paginate(out, limit, offset), nil
}

func (r orderRepo) TransitionStatus(
	_ context.Context,
	id uuid.UUID,
	from []domain.OrderStatus,
	to domain.OrderStatus,
	at time.Time,
) (bool, error) {
	var changed bool
	err := r.v.do(func(st *state) error {
		o, ok := st.orders[id]
		if !ok || !slices.Contains(from, o.Status) {
			return nil
		}

		o.Status = to
		o.UpdatedAt = at
		if o.SettledAt == nil {
			settled := at
			o.SettledAt = &settled
		}
		st.orders[id] = o
		changed = true

		return nil
	})

	return changed, err
}

type ticketRepo struct{ v view }

func (r ticketRepo) CreateBatch(_ context.Context, tickets []domain.Ticket) error {
	const op = "memory.TicketRepo.CreateBatch"

	err := r.v.do(func(st *state) error {
		type seatKey struct {
			session uuid.UUID
			area    string
			seat    string
		}

		taken := make(map[seatKey]struct{}, len(st.tickets))
		for _, t := range st.tickets {
			taken[seatKey{t.SessionID, t.AreaName, t.Seat}] = struct{}{}
		}

		for _, t := range tickets {
			if _, ok := st.orders[t.OrderID]; !ok {
				return repository.ErrNotFound
			}
			k := seatKey{t.SessionID, t.AreaName, t.Seat}
			if _, dup := taken[k]; dup {
				return repository.ErrConflict
			}
			if _, dup := st.tickets[t.ID]; dup {
				return repository.ErrConflict
			}
			taken[k] = struct{}{}

			t.UpdatedAt = t.CreatedAt
			st.tickets[t.ID] = t
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r ticketRepo) Get(_ context.Context, id uuid.UUID) (*domain.Ticket, error) {
	const op = "memory.TicketRepo.Get"

	var out domain.Ticket
	err := r.v.read(func(st *state) error {
		t, ok := st.tickets[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}

func (r ticketRepo) ListByOrder(_ context.Context, orderID uuid.UUID) ([]domain.Ticket, error) {
	var out []domain.Ticket
	_ = r.v.read(func(st *state) error {
		for _, t := range st.tickets {
			if t.OrderID == orderID {
				out = append(out, t)
			}
		}
		return nil
	})

	sort.Slice(out, func(i, j int) bool {
		if out[i].AreaName != out[j].AreaName {
			return out[i].AreaName < out[j].AreaName
		}
		return out[i].Seat < out[j].Seat
	})

	return out, nil
}

func (r ticketRepo) TransitionStatus(_ context.Context, id uuid.UUID, from, to domain.TicketStatus) error {
	const op = "memory.TicketRepo.TransitionStatus"

	err := r.v.do(func(st *state) error {
		t, ok := st.tickets[id]
		if !ok {
			return repository.ErrNotFound
		}
		if t.Status != from {
			return repository.ErrConflict
		}

		t.Status = to
		t.UpdatedAt = time.Now()
		st.tickets[id] = t

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r ticketRepo) VoidByOrder(_ context.Context, orderID uuid.UUID) ([]domain.AreaQuantity, error) {
	var voided []domain.Ticket
	err := r.v.do(func(st *state) error {
		voided = voided[:0]
		for id, t := range st.tickets {
			if t.OrderID == orderID && t.Status == domain.TicketUnused {
				t.Status = domain.TicketVoided
				t.UpdatedAt = time.Now()
				st.tickets[id] = t
				voided = append(voided, t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return domain.SeatsByArea(voided), nil
}

func (r ticketRepo) CountBySession(_ context.Context, sessionID uuid.UUID, status domain.TicketStatus) (int64, error) {
	var n int64
	_ = r.v.read(func(st *state) error {
		for _, t := range st.tickets {
			if t.SessionID == sessionID && t.Status == status {
				n++
			}
		}
		return nil
	})

	return n, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
