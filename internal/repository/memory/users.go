package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sportspass/ticketing/internal/domain"
	"github.com/sportspass/ticketing/internal/repository"
)

type userRepo struct{ v view }

func (r userRepo) Create(_ context.Context, u *domain.User) error {
	const op = "memory.UserRepo.Create"

	err := r.v.do(func(st *state) error {
		if _, dup := st.users[u.ID]; dup {
			return repository.ErrConflict
		}
		for _, existing := range st.users {
			if existing.Account == u.Account || strings.EqualFold(existing.Email, u.Email) {
				return repository.ErrConflict
			}
		}
		st.users[u.ID] = copyUser(*u)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r userRepo) Get(_ context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "memory.UserRepo.Get"

	var out domain.User
	err := r.v.read(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = copyUser(u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	const op = "memory.UserRepo.GetByEmail"

	var out domain.User
	err := r.v.read(func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				out = copyUser(u)
				return nil
			}
		}
		return repository.ErrNotFound
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}

func (r userRepo) AppendOrder(_ context.Context, userID, orderID uuid.UUID) error {
	const op = "memory.UserRepo.AppendOrder"

	err := r.v.do(func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return repository.ErrNotFound
		}
		u.OrderIDs = append(u.OrderIDs, orderID)
		st.users[userID] = u
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

type notificationRepo struct{ v view }

func (r notificationRepo) Create(_ context.Context, n *domain.Notification) error {
	const op = "memory.NotificationRepo.Create"

	err := r.v.do(func(st *state) error {
		if _, ok := st.users[n.UserID]; !ok {
			return repository.ErrNotFound
		}
		st.notifications[n.ID] = *n
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r notificationRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]domain.Notification, error) {
	var out []domain.Notification
	_ = r.v.read(func(st *state) error {
		for _, n := range st.notifications {
			if n.UserID == userID {
				out = append(out, n)
			}
		}
		return nil
	})

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return paginate(out, limit, offset), nil
}

func (r notificationRepo) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	const op = "memory.NotificationRepo.MarkRead"

	err := r.v.do(func(st *state) error {
		n, ok := st.notifications[id]
		if !ok || n.UserID != userID {
			return repository.ErrNotFound
		}
		n.IsRead = true
		st.notifications[id] = n
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}
