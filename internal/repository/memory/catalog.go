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

type catalogRepo struct{ v view }

func (r catalogRepo) CreateCategory(_ context.Context, c *domain.Category) error {
	const op = "memory.CatalogRepo.CreateCategory"

	err := r.v.do(func(st *state) error {
		for _, existing := range st.categories {
			if existing.Name == c.Name {
				return repository.ErrConflict
			}
		}
		st.categories[c.ID] = *c
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r catalogRepo) GetCategoryByName(_ context.Context, name string) (*domain.Category, error) {
	const op = "memory.CatalogRepo.GetCategoryByName"

	var out domain.Category
	err := r.v.read(func(st *state) error {
		for _, c := range st.categories {
			if c.Name == name {
				out = c
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

func (r catalogRepo) ListCategories(_ context.Context) ([]domain.Category, error) {
	var out []domain.Category
	_ = r.v.read(func(st *state) error {
		for _, c := range st.categories {
			out = append(out, c)
		}
		return nil
	})

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func (r catalogRepo) HotCategories(ctx context.Context, limit int) ([]domain.Category, error) {
	all, _ := r.ListCategories(ctx)

	var out []domain.Category
	for _, c := range all {
		if c.EventCount > 0 {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EventCount > out[j].EventCount })

	return paginate(out, limit, 0), nil
}

func (r catalogRepo) DeleteCategory(_ context.Context, id uuid.UUID) error {
	const op = "memory.CatalogRepo.DeleteCategory"

	err := r.v.do(func(st *state) error {
		c, ok := st.categories[id]
		if !ok {
			return repository.ErrNotFound
		}
		if c.EventCount > 0 {
			return repository.ErrInUse
		}
		delete(st.categories, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r catalogRepo) AdjustCategoryCount(_ context.Context, id uuid.UUID, delta int) error {
	const op = "memory.CatalogRepo.AdjustCategoryCount"

	err := r.v.do(func(st *state) error {
		c, ok := st.categories[id]
		if !ok {
			return repository.ErrNotFound
		}
		if c.EventCount+delta < 0 {
			return repository.ErrConstraint
		}
		c.EventCount += delta
		st.categories[id] = c
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r catalogRepo) CreateTag(_ context.Context, t *domain.Tag) error {
	const op = "memory.CatalogRepo.CreateTag"

	err := r.v.do(func(st *state) error {
		for _, existing := range st.tags {
			if existing.Name == t.Name {
				return repository.ErrConflict
			}
		}
		st.tags[t.ID] = *t
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r catalogRepo) GetTagByName(_ context.Context, name string) (*domain.Tag, error) {
	const op = "memory.CatalogRepo.GetTagByName"

	var out domain.Tag
	err := r.v.read(func(st *state) error {
		for _, t := range st.tags {
			if t.Name == name {
				out = t
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

func (r catalogRepo) ListTags(_ context.Context) ([]domain.Tag, error) {
	var out []domain.Tag
	_ = r.v.read(func(st *state) error {
		for _, t := range st.tags {
			out = append(out, t)
		}
		return nil
	})

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func (r catalogRepo) DeleteTag(_ context.Context, id uuid.UUID) error {
	const op = "memory.CatalogRepo.DeleteTag"

	err := r.v.do(func(st *state) error {
		t, ok := st.tags[id]
		if !ok {
			return repository.ErrNotFound
		}
		if t.EventCount > 0 {
			return repository.ErrInUse
		}
		delete(st.tags, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r catalogRepo) AdjustTagCounts(_ context.Context, ids []uuid.UUID, delta int) error {
	const op = "memory.CatalogRepo.AdjustTagCounts"

	err := r.v.do(func(st *state) error {
		for _, id := range ids {
			t, ok := st.tags[id]
			if !ok {
				return repository.ErrNotFound
			}
			if t.EventCount+delta < 0 {
				return repository.ErrConstraint
			}
			t.EventCount += delta
			st.tags[id] = t
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r catalogRepo) CreateEvent(_ context.Context, e *domain.Event) error {
	const op = "memory.CatalogRepo.CreateEvent"

	err := r.v.do(func(st *state) error {
		if _, dup := st.events[e.ID]; dup {
			return repository.ErrConflict
		}
		c := copyEvent(*e)
		c.UpdatedAt = c.CreatedAt
		st.events[e.ID] = c
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r catalogRepo) GetEvent(_ context.Context, id uuid.UUID) (*domain.Event, error) {
	const op = "memory.CatalogRepo.GetEvent"

	var out domain.Event
	err := r.v.read(func(st *state) error {
		e, ok := st.events[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = copyEvent(e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}

func (r catalogRepo) ListEvents(_ context.Context, categoryID *uuid.UUID, limit, offset int) ([]domain.Event, error) {
	var out []domain.Event
	_ = r.v.read(func(st *state) error {
		for _, e := range st.events {
			if e.Status != domain.EventActive {
				continue
			}
			if categoryID != nil && e.CategoryID != *categoryID {
				continue
			}
			out = append(out, copyEvent(e))
		}
		return nil
	})

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Name < out[j].Name
	})

	return paginate(out, limit, offset), nil
}

func (r catalogRepo) MarkEventDeleted(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	var changed bool
	err := r.v.do(func(st *state) error {
		e, ok := st.events[id]
		if !ok || e.Status != domain.EventActive {
			return nil
		}
		e.Status = domain.EventDeleted
		e.UpdatedAt = at
		st.events[id] = e
		changed = true
		return nil
	})

	return changed, err
}

func (r catalogRepo) CreateSession(_ context.Context, s *domain.Session) error {
	const op = "memory.CatalogRepo.CreateSession"

	err := r.v.do(func(st *state) error {
		if _, ok := st.events[s.EventID]; !ok {
			return repository.ErrNotFound
		}
		if _, dup := st.sessions[s.ID]; dup {
			return repository.ErrConflict
		}
		c := copySession(*s)
		c.UpdatedAt = c.CreatedAt
		st.sessions[s.ID] = c
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r catalogRepo) ListSessionsByEvent(_ context.Context, eventID uuid.UUID) ([]domain.Session, error) {
	var out []domain.Session
	_ = r.v.read(func(st *state) error {
		for _, s := range st.sessions {
			if s.EventID == eventID {
				out = append(out, copySession(s))
			}
		}
		return nil
	})

	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })

	return out, nil
}
