package catalog_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportspass/ticketing/internal/domain"
	"github.com/sportspass/ticketing/internal/repository/memory"
	"github.com/sportspass/ticketing/internal/service/catalog"
	"github.com/sportspass/ticketing/internal/service/reservation"
)

var now = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type changed []uuid.UUID

func (c *changed) SessionChanged(_ context.Context, id uuid.UUID) { *c = append(*c, id) }

func newService(t *testing.T) (*catalog.Service, *memory.Store, *changed) {
	t.Helper()

	store := memory.NewStore()
	rec := &changed{}
	svc := catalog.New(store, nil, rec, slog.New(slog.NewTextHandler(io.Discard, nil)), catalog.Config{
		Now: func() time.Time { return now },
	})

	return svc, store, rec
}

func sessionInput(capacity int) catalog.SessionInput {
	return catalog.SessionInput{
		Name:       "Day 1",
		Place:      "Arena",
		StartsAt:   now.Add(48 * time.Hour),
		SalesOpen:  now.Add(-time.Hour),
		SalesClose: now.Add(24 * time.Hour),
		Areas: []catalog.AreaInput{
			{Name: "A", Color: "#f00", PriceCents: 1200, Capacity: capacity},
		},
	}
}

func TestCreateEventMaintainsCounters(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t)

	cat, err := svc.CreateCategory(ctx, "Basketball")
	require.NoError(t, err)
	tag, err := svc.CreateTag(ctx, "finals")
	require.NoError(t, err)

	ev, err := svc.CreateEvent(ctx, catalog.CreateEventInput{
		SponsorID:  uuid.New(),
		Name:       "League Finals Game 7",
		CategoryID: cat.ID,
		TagIDs:     []uuid.UUID{tag.ID, tag.ID},
		Sessions:   []catalog.SessionInput{sessionInput(100)},
	})
	require.NoError(t, err)
	assert.Equal(t, "league-finals-game-7", ev.Slug)
	assert.Equal(t, []uuid.UUID{tag.ID}, ev.TagIDs)

	sessions, err := store.Catalog().ListSessionsByEvent(ctx, ev.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 100, sessions[0].Areas[0].Remaining)

	hot, err := svc.HotCategories(ctx)
	require.NoError(t, err)
	require.Len(t, hot, 1)
	assert.Equal(t, 1, hot[0].EventCount)

	err = svc.DeleteCategory(ctx, cat.ID)
	assert.ErrorIs(t, err, catalog.ErrCategoryInUse)
	err = svc.DeleteTag(ctx, tag.ID)
	assert.ErrorIs(t, err, catalog.ErrTagInUse)

	require.NoError(t, svc.DeleteEvent(ctx, ev.ID))
	assert.ErrorIs(t, svc.DeleteEvent(ctx, uuid.New()), catalog.ErrEventNotFound)

	require.NoError(t, svc.DeleteTag(ctx, tag.ID))
	require.NoError(t, svc.DeleteCategory(ctx, cat.ID))
	assert.ErrorIs(t, svc.DeleteCategory(ctx, cat.ID), catalog.ErrCategoryNotFound)
}

func TestDeleteEventTwiceIsNoop(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t)

	cat, err := svc.CreateCategory(ctx, "Volleyball")
	require.NoError(t, err)
	tag, err := svc.CreateTag(ctx, "league")
	require.NoError(t, err)

	var ids []uuid.UUID
	for _, name := range []string{"Semi Final", "Final"} {
		ev, err := svc.CreateEvent(ctx, catalog.CreateEventInput{
			SponsorID:  uuid.New(),
			Name:       name,
			CategoryID: cat.ID,
			TagIDs:     []uuid.UUID{tag.ID},
			Sessions:   []catalog.SessionInput{sessionInput(10)},
		})
		require.NoError(t, err)
		ids = append(ids, ev.ID)
	}

	require.NoError(t, svc.DeleteEvent(ctx, ids[0]))
	require.NoError(t, svc.DeleteEvent(ctx, ids[0]))

	got, err := store.Catalog().GetEvent(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, domain.EventDeleted, got.Status)

	hot, err := svc.HotCategories(ctx)
	require.NoError(t, err)
	require.Len(t, hot, 1)
	assert.Equal(t, 1, hot[0].EventCount, "second delete must not decrement again")

	assert.ErrorIs(t, svc.DeleteTag(ctx, tag.ID), catalog.ErrTagInUse)
	assert.ErrorIs(t, svc.DeleteCategory(ctx, cat.ID), catalog.ErrCategoryInUse)
}

func TestCreateEventRollsBackOnUnknownTag(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t)

	cat, err := svc.CreateCategory(ctx, "Tennis")
	require.NoError(t, err)

	_, err = svc.CreateEvent(ctx, catalog.CreateEventInput{
		Name:       "Open",
		CategoryID: cat.ID,
		TagIDs:     []uuid.UUID{uuid.New()},
		Sessions:   []catalog.SessionInput{sessionInput(10)},
	})
	assert.ErrorIs(t, err, catalog.ErrTagNotFound)

	cats, err := store.Catalog().ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Zero(t, cats[0].EventCount)

	events, err := store.Catalog().ListEvents(ctx, nil, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestCreateEventValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.CreateEvent(ctx, catalog.CreateEventInput{Name: "X", CategoryID: uuid.New()})
	assert.ErrorIs(t, err, catalog.ErrCategoryNotFound)

	bad := sessionInput(5)
	bad.SalesClose = bad.SalesOpen
	_, err = svc.CreateEvent(ctx, catalog.CreateEventInput{Name: "X", Sessions: []catalog.SessionInput{bad}})
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)

	_, err = svc.CreateEvent(ctx, catalog.CreateEventInput{Name: "  "})
	assert.ErrorIs(t, err, catalog.ErrInvalidInput)

	_, err = svc.CreateCategory(ctx, "Dup")
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, "Dup")
	assert.ErrorIs(t, err, catalog.ErrCategoryExists)
}

func TestUpdateAreaKeepsSoldSeats(t *testing.T) {
	ctx := context.Background()
	svc, store, rec := newService(t)

	cat, err := svc.CreateCategory(ctx, "Football")
	require.NoError(t, err)
	ev, err := svc.CreateEvent(ctx, catalog.CreateEventInput{
		Name:       "Derby",
		CategoryID: cat.ID,
		Sessions:   []catalog.SessionInput{sessionInput(10)},
	})
	require.NoError(t, err)

	sessions, err := store.Catalog().ListSessionsByEvent(ctx, ev.ID)
	require.NoError(t, err)
	sid := sessions[0].ID

	ledger := reservation.New(store, nil, slog.New(slog.NewTextHandler(io.Discard, nil)),
		reservation.Config{Now: func() time.Time { return now }})
	_, err = ledger.TryReserve(ctx, uuid.New(), sid, []domain.AreaQuantity{{Area: "A", Quantity: 4}})
	require.NoError(t, err)

	a, err := svc.UpdateArea(ctx, sid, "A", 6, 1500)
	require.NoError(t, err)
	assert.Equal(t, 6, a.Capacity)
	assert.Equal(t, 2, a.Remaining)
	assert.Equal(t, int64(1500), a.PriceCents)
	assert.Equal(t, []uuid.UUID{sid}, []uuid.UUID(*rec))

	_, err = svc.UpdateArea(ctx, sid, "A", 3, 1500)
	assert.ErrorIs(t, err, domain.ErrCapacityBelowSold)

	_, err = svc.UpdateArea(ctx, sid, "Z", 3, 1500)
	assert.ErrorIs(t, err, catalog.ErrAreaNotFound)

	_, err = svc.UpdateArea(ctx, uuid.New(), "A", 3, 1500)
	assert.ErrorIs(t, err, catalog.ErrSessionNotFound)
}

func TestCreateSessionRequiresActiveEvent(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.CreateSession(ctx, uuid.New(), sessionInput(5))
	assert.ErrorIs(t, err, catalog.ErrEventNotFound)

	cat, err := svc.CreateCategory(ctx, "Golf")
	require.NoError(t, err)
	ev, err := svc.CreateEvent(ctx, catalog.CreateEventInput{Name: "Masters", CategoryID: cat.ID})
	require.NoError(t, err)

	s, err := svc.CreateSession(ctx, ev.ID, sessionInput(5))
	require.NoError(t, err)
	assert.Equal(t, ev.ID, s.EventID)

	require.NoError(t, svc.DeleteEvent(ctx, ev.ID))
	_, err = svc.CreateSession(ctx, ev.ID, sessionInput(5))
	assert.ErrorIs(t, err, catalog.ErrEventNotFound)
}
