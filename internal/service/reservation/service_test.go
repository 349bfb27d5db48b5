package reservation_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportspass/ticketing/internal/domain"
	"github.com/sportspass/ticketing/internal/repository/memory"
	"github.com/sportspass/ticketing/internal/service/reservation"
)

type recorder struct {
	mu      sync.Mutex
	changed []uuid.UUID
}

func (r *recorder) SessionChanged(_ context.Context, id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed = append(r.changed, id)
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func setup(t *testing.T, areas ...domain.Area) (*memory.Store, *reservation.Service, *recorder, *clock, domain.Session) {
	t.Helper()

	ctx := context.Background()
	store := memory.NewStore()
	clk := &clock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}

	ev := domain.Event{ID: uuid.New(), Name: "Derby", Status: domain.EventActive}
	require.NoError(t, store.Catalog().CreateEvent(ctx, &ev))

	s := domain.Session{
		ID:         uuid.New(),
		EventID:    ev.ID,
		SalesOpen:  clk.Now().Add(-time.Hour),
		SalesClose: clk.Now().Add(time.Hour),
		Areas:      areas,
	}
	require.NoError(t, store.Catalog().CreateSession(ctx, &s))

	rec := &recorder{}
	svc := reservation.New(store, rec, slog.New(slog.NewTextHandler(io.Discard, nil)), reservation.Config{
		TTL: 2 * time.Minute,
		Now: clk.Now,
	})

	return store, svc, rec, clk, s
}

func remaining(t *testing.T, store *memory.Store, sessionID uuid.UUID) map[string]int {
	t.Helper()

	s, err := store.Inventory().GetSession(context.Background(), sessionID)
	require.NoError(t, err)

	out := make(map[string]int, len(s.Areas))
	for _, a := range s.Areas {
		out[a.Name] = a.Remaining
	}
	return out
}

func TestTryReserveMergesDuplicateAreas(t *testing.T) {
	ctx := context.Background()
	store, svc, rec, _, s := setup(t,
		domain.Area{Name: "A", PriceCents: 100, Capacity: 5, Remaining: 5},
		domain.Area{Name: "B", PriceCents: 100, Capacity: 5, Remaining: 5},
	)

	got, err := svc.TryReserve(ctx, uuid.New(), s.ID, []domain.AreaQuantity{
		{Area: "B", Quantity: 1},
		{Area: "A", Quantity: 1},
		{Area: "B", Quantity: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, []domain.AreaQuantity{{Area: "A", Quantity: 1}, {Area: "B", Quantity: 3}}, got.Reservation.Items)
	assert.Equal(t, domain.ReservationPending, got.Reservation.Status)
	assert.Equal(t, map[string]int{"A": 4, "B": 2}, remaining(t, store, s.ID))
	assert.Equal(t, []uuid.UUID{s.ID}, rec.changed)
}

func TestTryReserveIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store, svc, rec, _, s := setup(t,
		domain.Area{Name: "A", Capacity: 5, Remaining: 5},
		domain.Area{Name: "B", Capacity: 1, Remaining: 1},
	)

	_, err := svc.TryReserve(ctx, uuid.New(), s.ID, []domain.AreaQuantity{
		{Area: "A", Quantity: 2},
		{Area: "B", Quantity: 2},
	})
	var short *reservation.InsufficientInventoryError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, "B", short.Area)

	_, err = svc.TryReserve(ctx, uuid.New(), s.ID, []domain.AreaQuantity{{Area: "C", Quantity: 1}})
	assert.ErrorIs(t, err, reservation.ErrAreaNotFound)

	_, err = svc.TryReserve(ctx, uuid.New(), s.ID, []domain.AreaQuantity{{Area: "A", Quantity: 0}})
	assert.ErrorIs(t, err, reservation.ErrInvalidQuantity)

	assert.Equal(t, map[string]int{"A": 5, "B": 1}, remaining(t, store, s.ID))
	assert.Empty(t, rec.changed)
}

func TestReleaseReservationOnlyOnce(t *testing.T) {
	ctx := context.Background()
	store, svc, _, _, s := setup(t, domain.Area{Name: "A", Capacity: 5, Remaining: 5})

	got, err := svc.TryReserve(ctx, uuid.New(), s.ID, []domain.AreaQuantity{{Area: "A", Quantity: 3}})
	require.NoError(t, err)

	require.NoError(t, svc.ReleaseReservation(ctx, got.Reservation.ID))
	assert.Equal(t, 5, remaining(t, store, s.ID)["A"])

	err = svc.ReleaseReservation(ctx, got.Reservation.ID)
	assert.ErrorIs(t, err, reservation.ErrReservationNotPending)
	assert.Equal(t, 5, remaining(t, store, s.ID)["A"])

	err = svc.ReleaseReservation(ctx, uuid.New())
	assert.ErrorIs(t, err, reservation.ErrReservationNotFound)
}

func TestExpireReleasesOnlyOverdueReservations(t *testing.T) {
	ctx := context.Background()
	store, svc, rec, clk, s := setup(t, domain.Area{Name: "A", Capacity: 10, Remaining: 10})

	_, err := svc.TryReserve(ctx, uuid.New(), s.ID, []domain.AreaQuantity{{Area: "A", Quantity: 2}})
	require.NoError(t, err)

	clk.Advance(time.Minute)
	_, err = svc.TryReserve(ctx, uuid.New(), s.ID, []domain.AreaQuantity{{Area: "A", Quantity: 3}})
	require.NoError(t, err)
	assert.Equal(t, 5, remaining(t, store, s.ID)["A"])

	n, err := svc.Expire(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	clk.Advance(90 * time.Second)
	rec.changed = nil

	n, err = svc.Expire(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 7, remaining(t, store, s.ID)["A"])
	assert.Equal(t, []uuid.UUID{s.ID}, rec.changed)

	clk.Advance(time.Minute)
	n, err = svc.Expire(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 10, remaining(t, store, s.ID)["A"])
}

func TestReleaseIsCappedAtCapacity(t *testing.T) {
	ctx := context.Background()
	store, svc, _, _, s := setup(t, domain.Area{Name: "A", Capacity: 4, Remaining: 3})

	require.NoError(t, svc.Release(ctx, s.ID, []domain.AreaQuantity{{Area: "A", Quantity: 3}}))
	assert.Equal(t, 4, remaining(t, store, s.ID)["A"])

	err := svc.Release(ctx, s.ID, []domain.AreaQuantity{{Area: "Z", Quantity: 1}})
	assert.ErrorIs(t, err, reservation.ErrAreaNotFound)
}
