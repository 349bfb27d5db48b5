package query_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportspass/ticketing/internal/domain"
	"github.com/sportspass/ticketing/internal/repository/memory"
	"github.com/sportspass/ticketing/internal/service/query"
)

func seed(t *testing.T, store *memory.Store, open, close time.Time) (domain.Event, domain.Session) {
	t.Helper()
	ctx := context.Background()

	ev := domain.Event{ID: uuid.New(), Name: "Cup Final", Status: domain.EventActive}
	require.NoError(t, store.Catalog().CreateEvent(ctx, &ev))

	s := domain.Session{
		ID:         uuid.New(),
		EventID:    ev.ID,
		SalesOpen:  open,
		SalesClose: close,
		Areas: []domain.Area{
			{Name: "A", PriceCents: 100, Capacity: 3, Remaining: 0},
			{Name: "B", PriceCents: 100, Capacity: 2, Remaining: 2},
		},
	}
	require.NoError(t, store.Catalog().CreateSession(ctx, &s))

	buyer := domain.User{ID: uuid.New(), Account: "fan", Email: "fan@example.com"}
	require.NoError(t, store.Users().Create(ctx, &buyer))

	orderID := uuid.New()
	require.NoError(t, store.Orders().Create(ctx, &domain.Order{
		ID: orderID, BuyerID: buyer.ID, SessionID: s.ID, ReservationID: uuid.New(), Status: domain.OrderPaid,
	}))
	require.NoError(t, store.Tickets().CreateBatch(ctx, []domain.Ticket{
		{ID: uuid.New(), OrderID: orderID, SessionID: s.ID, AreaName: "A", Seat: "A-001", Status: domain.TicketUsed},
		{ID: uuid.New(), OrderID: orderID, SessionID: s.ID, AreaName: "A", Seat: "A-002", Status: domain.TicketUnused},
	}))

	return ev, s
}

func TestGetSessionDerivesFieldsAtReadTime(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	open := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	_, s := seed(t, store, open, open.Add(2*time.Hour))

	clock := open.Add(-time.Minute)
	svc := query.New(store, nil, query.Config{Now: func() time.Time { return clock }})

	v, err := svc.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, v.SeatsTotal)
	assert.Equal(t, 2, v.SeatsAvailable)
	assert.Equal(t, 3, v.BookTicket)
	assert.Equal(t, int64(1), v.EnterVenue)
	assert.False(t, v.IsSoldOut)
	assert.Equal(t, domain.SalesNotOpen, v.SessionState)

	for _, tc := range []struct {
		at   time.Time
		want domain.SalesStatus
	}{
		{open, domain.SalesOnSale},
		{open.Add(2*time.Hour - time.Nanosecond), domain.SalesOnSale},
		{open.Add(2 * time.Hour), domain.SalesClosed},
	} {
		clock = tc.at
		v, err := svc.GetSession(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, tc.want, v.SessionState, tc.at)
	}

	_, err = svc.GetSession(ctx, uuid.New())
	assert.ErrorIs(t, err, query.ErrSessionNotFound)
}

func TestGetEventDetail(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	ev, s := seed(t, store, now.Add(-time.Hour), now.Add(time.Hour))

	svc := query.New(store, nil, query.Config{Now: func() time.Time { return now }})

	d, err := svc.GetEventDetail(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, d.ID)
	require.Len(t, d.Sessions, 1)
	assert.Equal(t, s.ID, d.Sessions[0].ID)
	assert.Equal(t, domain.SalesOnSale, d.Sessions[0].SessionState)

	changed, err := store.Catalog().MarkEventDeleted(ctx, ev.ID, now)
	require.NoError(t, err)
	require.True(t, changed)

	_, err = svc.GetEventDetail(ctx, ev.ID)
	assert.ErrorIs(t, err, query.ErrEventNotFound)

	events, err := svc.ListEvents(ctx, nil, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}
