package tickets_test

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportspass/ticketing/internal/domain"
	"github.com/sportspass/ticketing/internal/repository/memory"
	"github.com/sportspass/ticketing/internal/service/tickets"
)

type fixture struct {
	svc    *tickets.Service
	owner  uuid.UUID
	ticket domain.Ticket
	seen   []uuid.UUID
}

func (f *fixture) SessionChanged(_ context.Context, id uuid.UUID) { f.seen = append(f.seen, id) }

func newFixture(t *testing.T, status domain.OrderStatus) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	owner := domain.User{ID: uuid.New(), Account: "owner", Email: "owner@example.com"}
	require.NoError(t, store.Users().Create(ctx, &owner))

	sessionID := uuid.New()
	o := domain.Order{ID: uuid.New(), BuyerID: owner.ID, SessionID: sessionID, ReservationID: uuid.New(), Status: status}
	require.NoError(t, store.Orders().Create(ctx, &o))

	tk := domain.Ticket{
		ID: uuid.New(), OrderID: o.ID, SessionID: sessionID,
		AreaName: "A", Seat: "A-001", Status: domain.TicketUnused,
	}
	require.NoError(t, store.Tickets().CreateBatch(ctx, []domain.Ticket{tk}))

	f := &fixture{owner: owner.ID, ticket: tk}
	f.svc = tickets.New(store, f, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return f
}

func TestGetIsOwnerScoped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.OrderPaid)

	got, err := f.svc.Get(ctx, tickets.Viewer{UserID: f.owner}, f.ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "A-001", got.Seat)

	_, err = f.svc.Get(ctx, tickets.Viewer{UserID: uuid.New()}, f.ticket.ID)
	assert.ErrorIs(t, err, tickets.ErrTicketNotFound)

	_, err = f.svc.Get(ctx, tickets.Viewer{UserID: uuid.New(), Admin: true}, f.ticket.ID)
	assert.NoError(t, err)
}

func TestUpdateStatusTransitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.OrderPaid)

	_, err := f.svc.UpdateStatus(ctx, f.ticket.ID, "lost")
	assert.ErrorIs(t, err, tickets.ErrInvalidStatus)

	got, err := f.svc.UpdateStatus(ctx, f.ticket.ID, domain.TicketUsed)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketUsed, got.Status)
	assert.Equal(t, []uuid.UUID{f.ticket.SessionID}, f.seen)

	_, err = f.svc.UpdateStatus(ctx, f.ticket.ID, domain.TicketVoided)
	assert.ErrorIs(t, err, domain.ErrInvalidTicketTransition)

	_, err = f.svc.UpdateStatus(ctx, uuid.New(), domain.TicketUsed)
	assert.ErrorIs(t, err, tickets.ErrTicketNotFound)
}

func TestCheckInRequiresPaidOrder(t *testing.T) {
	ctx := context.Background()

	for _, status := range []domain.OrderStatus{domain.OrderPending, domain.OrderFailed, domain.OrderCancelled} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t, status)

			_, err := f.svc.UpdateStatus(ctx, f.ticket.ID, domain.TicketUsed)
			assert.ErrorIs(t, err, tickets.ErrOrderNotPaid)
			assert.Empty(t, f.seen)

			got, err := f.svc.Get(ctx, tickets.Viewer{UserID: f.owner}, f.ticket.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.TicketUnused, got.Status)
		})
	}

	f := newFixture(t, domain.OrderPending)
	got, err := f.svc.UpdateStatus(ctx, f.ticket.ID, domain.TicketVoided)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketVoided, got.Status)
}

func TestQRIsPNG(t *testing.T) {
	f := newFixture(t, domain.OrderPaid)

	b, err := f.svc.QR(context.Background(), tickets.Viewer{UserID: f.owner}, f.ticket.ID)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
}
