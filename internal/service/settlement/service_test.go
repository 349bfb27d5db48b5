package settlement_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportspass/ticketing/internal/domain"
	"github.com/sportspass/ticketing/internal/repository/memory"
	"github.com/sportspass/ticketing/internal/service/orders"
	"github.com/sportspass/ticketing/internal/service/reservation"
	"github.com/sportspass/ticketing/internal/service/settlement"
)

const secret = "pwFHCqoQZGmho4w6"

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	events []domain.OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.OrderEvent) error {
	p.events = append(p.events, ev)
	return nil
}

type env struct {
	store   *memory.Store
	svc     *settlement.Service
	orders  *orders.Service
	pub     *recordingPublisher
	session domain.Session
	buyer   uuid.UUID
}

func newEnv(t *testing.T) *env {
	t.Helper()

	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := func() time.Time { return now }
	store := memory.NewStore()

	ev := domain.Event{ID: uuid.New(), Name: "Open", Status: domain.EventActive}
	require.NoError(t, store.Catalog().CreateEvent(ctx, &ev))

	s := domain.Session{
		ID:         uuid.New(),
		EventID:    ev.ID,
		SalesOpen:  now.Add(-time.Hour),
		SalesClose: now.Add(time.Hour),
		Areas:      []domain.Area{{Name: "A", PriceCents: 500, Capacity: 4, Remaining: 4}},
	}
	require.NoError(t, store.Catalog().CreateSession(ctx, &s))

	buyer := uuid.New()
	require.NoError(t, store.Users().Create(ctx, &domain.User{ID: buyer, Account: "kim", Email: "kim@example.com"}))

	pub := &recordingPublisher{}
	ledger := reservation.New(store, nil, log, reservation.Config{Now: clock})

	return &env{
		store:   store,
		svc:     settlement.New(store, settlement.NewSigner(secret), nil, pub, log, clock),
		orders:  orders.New(store, ledger, nil, nil, nil, log, orders.Config{Now: clock}),
		pub:     pub,
		session: s,
		buyer:   buyer,
	}
}

func (e *env) place(t *testing.T, qty int) domain.OrderWithTickets {
	t.Helper()

	got, err := e.orders.PlaceOrder(context.Background(), e.buyer, orders.PlaceOrderRequest{
		SessionID: e.session.ID,
		Cart:      domain.Cart{Items: []domain.LineItem{{AreaName: "A", Quantity: qty}}},
	})
	require.NoError(t, err)
	return *got
}

func (e *env) remaining(t *testing.T) int {
	t.Helper()

	s, err := e.store.Inventory().GetSession(context.Background(), e.session.ID)
	require.NoError(t, err)
	return s.Areas[0].Remaining
}

func (e *env) ticketStatuses(t *testing.T, orderID uuid.UUID) []domain.TicketStatus {
	t.Helper()

	tickets, err := e.store.Tickets().ListByOrder(context.Background(), orderID)
	require.NoError(t, err)

	out := make([]domain.TicketStatus, len(tickets))
	for i, tk := range tickets {
		out[i] = tk.Status
	}
	return out
}

func TestSettleIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	placed := e.place(t, 2)

	first, err := e.svc.Settle(ctx, placed.Order.ID, domain.OutcomePaid)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPaid, first.Status)
	require.NotNil(t, first.SettledAt)

	second, err := e.svc.Settle(ctx, placed.Order.ID, domain.OutcomePaid)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPaid, second.Status)

	require.Len(t, e.pub.events, 1)
	assert.Equal(t, domain.OrderEventSettled, e.pub.events[0].Type)
	assert.Equal(t, 2, e.remaining(t))
}

func TestSettleRejectsConflictingOutcome(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	placed := e.place(t, 1)

	_, err := e.svc.Settle(ctx, placed.Order.ID, domain.OutcomePaid)
	require.NoError(t, err)

	_, err = e.svc.Settle(ctx, placed.Order.ID, domain.OutcomeFailed)
	assert.ErrorIs(t, err, settlement.ErrSettlementConflict)

	o, err := e.store.Orders().Get(ctx, placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPaid, o.Status)
	assert.Equal(t, 3, e.remaining(t))
}

func TestFailedSettlementRestocks(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	placed := e.place(t, 3)
	require.Equal(t, 1, e.remaining(t))

	o, err := e.svc.Settle(ctx, placed.Order.ID, domain.OutcomeFailed)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderFailed, o.Status)

	assert.Equal(t, 4, e.remaining(t))
	assert.Equal(t,
		[]domain.TicketStatus{domain.TicketVoided, domain.TicketVoided, domain.TicketVoided},
		e.ticketStatuses(t, placed.Order.ID))

	_, err = e.svc.Settle(ctx, placed.Order.ID, domain.OutcomeFailed)
	require.NoError(t, err)
	assert.Equal(t, 4, e.remaining(t), "repeating a failed outcome must not restock twice")
}

func TestSettleUnknownOrder(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.Settle(context.Background(), uuid.New(), domain.OutcomePaid)
	assert.ErrorIs(t, err, settlement.ErrOrderNotFound)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	paid := e.place(t, 1)
	_, err := e.svc.Settle(ctx, paid.Order.ID, domain.OutcomePaid)
	require.NoError(t, err)

	failed := e.place(t, 1)
	_, err = e.svc.Settle(ctx, failed.Order.ID, domain.OutcomeFailed)
	require.NoError(t, err)
	require.Equal(t, 3, e.remaining(t))

	o, err := e.svc.Cancel(ctx, paid.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, o.Status)
	assert.Equal(t, 4, e.remaining(t))
	assert.Equal(t, []domain.TicketStatus{domain.TicketVoided}, e.ticketStatuses(t, paid.Order.ID))

	o, err = e.svc.Cancel(ctx, paid.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, o.Status)
	assert.Equal(t, 4, e.remaining(t))

	_, err = e.svc.Cancel(ctx, failed.Order.ID)
	assert.ErrorIs(t, err, settlement.ErrNotCancellable)

	_, err = e.svc.Settle(ctx, paid.Order.ID, domain.OutcomePaid)
	assert.ErrorIs(t, err, settlement.ErrSettlementConflict)
}

func (e *env) checkIn(t *testing.T, tickets []domain.Ticket) {
	t.Helper()

	for _, tk := range tickets {
		require.NoError(t, e.store.Tickets().TransitionStatus(context.Background(), tk.ID, domain.TicketUnused, domain.TicketUsed))
	}
}

func TestCancelKeepsUsedSeatsSold(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	placed := e.place(t, 4)
	_, err := e.svc.Settle(ctx, placed.Order.ID, domain.OutcomePaid)
	require.NoError(t, err)
	e.checkIn(t, placed.Tickets)

	o, err := e.svc.Cancel(ctx, placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, o.Status)
	assert.Equal(t, 0, e.remaining(t))
	assert.Equal(t,
		[]domain.TicketStatus{domain.TicketUsed, domain.TicketUsed, domain.TicketUsed, domain.TicketUsed},
		e.ticketStatuses(t, placed.Order.ID))

	_, err = e.orders.PlaceOrder(ctx, e.buyer, orders.PlaceOrderRequest{
		SessionID: e.session.ID,
		Cart:      domain.Cart{Items: []domain.LineItem{{AreaName: "A", Quantity: 1}}},
	})
	var short *reservation.InsufficientInventoryError
	assert.True(t, errors.As(err, &short), "got %v", err)
}

func TestCancelReleasesOnlyUnusedSeats(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	placed := e.place(t, 4)
	_, err := e.svc.Settle(ctx, placed.Order.ID, domain.OutcomePaid)
	require.NoError(t, err)
	e.checkIn(t, placed.Tickets[:2])

	_, err = e.svc.Cancel(ctx, placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, e.remaining(t))
	assert.ElementsMatch(t,
		[]domain.TicketStatus{domain.TicketUsed, domain.TicketUsed, domain.TicketVoided, domain.TicketVoided},
		e.ticketStatuses(t, placed.Order.ID))

	_, err = e.svc.Cancel(ctx, placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, e.remaining(t))
}

func TestHandleCallback(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	signer := settlement.NewSigner(secret)

	paid := e.place(t, 1)
	fields := map[string]string{
		"MerchantID":   "2000132",
		"RtnCode":      "1",
		"RtnMsg":       "Succeeded",
		"TradeAmt":     "500",
		"CustomField1": paid.Order.ID.String(),
	}
	fields[settlement.FieldCheckMac] = strings.ToLower(signer.Sign(fields))

	ack, err := e.svc.HandleCallback(ctx, fields)
	require.NoError(t, err)
	assert.Equal(t, settlement.AckOK, ack)

	o, err := e.store.Orders().Get(ctx, paid.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPaid, o.Status)

	declined := e.place(t, 1)
	fields = map[string]string{
		"RtnCode":      "10100058",
		"CustomField1": declined.Order.ID.String(),
	}
	fields[settlement.FieldCheckMac] = signer.Sign(fields)

	_, err = e.svc.HandleCallback(ctx, fields)
	require.NoError(t, err)
	o, err = e.store.Orders().Get(ctx, declined.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderFailed, o.Status)

	fields["RtnCode"] = "1"
	_, err = e.svc.HandleCallback(ctx, fields)
	assert.ErrorIs(t, err, settlement.ErrInvalidSignature)

	unknown := map[string]string{"RtnCode": "1", "CustomField1": uuid.NewString()}
	unknown[settlement.FieldCheckMac] = signer.Sign(unknown)
	_, err = e.svc.HandleCallback(ctx, unknown)
	assert.ErrorIs(t, err, settlement.ErrOrderNotFound)
}
