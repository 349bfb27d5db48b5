package orders_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportspass/ticketing/internal/domain"
	"github.com/sportspass/ticketing/internal/repository"
	"github.com/sportspass/ticketing/internal/repository/memory"
	"github.com/sportspass/ticketing/internal/service/orders"
	"github.com/sportspass/ticketing/internal/service/reservation"
)

var (
	now     = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	errBoom = errors.New("disk on fire")
)

type fixture struct {
	store   *memory.Store
	ledger  *reservation.Service
	svc     *orders.Service
	session domain.Session
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func clock() time.Time { return now }

func newFixture(t *testing.T, areas ...domain.Area) *fixture {
	t.Helper()
	return newFixtureWithStore(t, nil, areas...)
}

// newFixtureWithStore lets the order service run against a wrapped store
// while the ledger keeps the plain one.
func newFixtureWithStore(t *testing.T, wrap func(repository.Store) repository.Store, areas ...domain.Area) *fixture {
	t.Helper()

	ctx := context.Background()
	store := memory.NewStore()

	ev := domain.Event{ID: uuid.New(), Name: "Cup Final", Status: domain.EventActive, CreatedAt: now}
	require.NoError(t, store.Catalog().CreateEvent(ctx, &ev))

	s := domain.Session{
		ID:         uuid.New(),
		EventID:    ev.ID,
		Name:       "Final",
		StartsAt:   now.Add(48 * time.Hour),
		SalesOpen:  now.Add(-time.Hour),
		SalesClose: now.Add(time.Hour),
		Areas:      areas,
		CreatedAt:  now,
	}
	require.NoError(t, store.Catalog().CreateSession(ctx, &s))

	ledger := reservation.New(store, nil, discard(), reservation.Config{Now: clock})

	var orderStore repository.Store = store
	if wrap != nil {
		orderStore = wrap(store)
	}

	svc := orders.New(orderStore, ledger, nil, nil, nil, discard(), orders.Config{Now: clock})

	return &fixture{store: store, ledger: ledger, svc: svc, session: s}
}

func (f *fixture) buyer(t *testing.T) uuid.UUID {
	t.Helper()

	id := uuid.New()
	require.NoError(t, f.store.Users().Create(context.Background(), &domain.User{
		ID:      id,
		Account: "buyer-" + id.String()[:8],
		Email:   id.String() + "@example.com",
		Role:    domain.RoleUser,
	}))
	return id
}

func (f *fixture) remaining(t *testing.T, area string) int {
	t.Helper()

	s, err := f.store.Inventory().GetSession(context.Background(), f.session.ID)
	require.NoError(t, err)
	a, ok := s.Area(area)
	require.True(t, ok)
	return a.Remaining
}

func cart(area string, qty int) domain.Cart {
	return domain.Cart{Items: []domain.LineItem{{AreaName: area, Quantity: qty}}}
}

func TestPlaceOrderSellsOutThenRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.Area{Name: "A", Color: "blue", PriceCents: 100, Capacity: 2, Remaining: 2})
	buyer := f.buyer(t)

	got, err := f.svc.PlaceOrder(ctx, buyer, orders.PlaceOrderRequest{SessionID: f.session.ID, Cart: cart("A", 2)})
	require.NoError(t, err)

	assert.Equal(t, domain.OrderPending, got.Order.Status)
	assert.Equal(t, int64(200), got.Order.TotalCents)
	require.Len(t, got.Tickets, 2)
	assert.Equal(t, "A-001", got.Tickets[0].Seat)
	assert.Equal(t, "A-002", got.Tickets[1].Seat)
	assert.Equal(t, "blue", got.Tickets[0].AreaColor)
	assert.ElementsMatch(t, got.Order.TicketIDs, []uuid.UUID{got.Tickets[0].ID, got.Tickets[1].ID})

	s, err := f.store.Inventory().GetSession(ctx, f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, s.SeatsAvailable())
	assert.True(t, s.IsSoldOut())

	_, err = f.svc.PlaceOrder(ctx, buyer, orders.PlaceOrderRequest{SessionID: f.session.ID, Cart: cart("A", 1)})
	var short *reservation.InsufficientInventoryError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, reservation.InsufficientInventoryError{Area: "A", Requested: 1, Available: 0}, *short)

	u, err := f.store.Users().Get(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{got.Order.ID}, u.OrderIDs)

	res, err := f.store.Inventory().GetReservation(ctx, got.Order.ReservationID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationCommitted, res.Status)
	require.NotNil(t, res.OrderID)
	assert.Equal(t, got.Order.ID, *res.OrderID)
}

func TestPlaceOrderNeverOversells(t *testing.T) {
	const (
		capacity = 10
		buyers   = 60
	)

	ctx := context.Background()
	f := newFixture(t, domain.Area{Name: "A", PriceCents: 100, Capacity: capacity, Remaining: capacity})

	ids := make([]uuid.UUID, buyers)
	for i := range ids {
		ids[i] = f.buyer(t)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		short   int
		other   []error
		seats   = map[string]struct{}{}
		dupSeat bool
	)

	for _, id := range ids {
		wg.Add(1)
		go func(buyer uuid.UUID) {
			defer wg.Done()

			got, err := f.svc.PlaceOrder(ctx, buyer, orders.PlaceOrderRequest{SessionID: f.session.ID, Cart: cart("A", 1)})

			mu.Lock()
			defer mu.Unlock()

			var ins *reservation.InsufficientInventoryError
			switch {
			case err == nil:
				ok++
				for _, tk := range got.Tickets {
					if _, seen := seats[tk.Seat]; seen {
						dupSeat = true
					}
					seats[tk.Seat] = struct{}{}
				}
			case errors.As(err, &ins):
				short++
			default:
				other = append(other, err)
			}
		}(id)
	}
	wg.Wait()

	require.Empty(t, other)
	assert.Equal(t, capacity, ok)
	assert.Equal(t, buyers-capacity, short)
	assert.False(t, dupSeat)
	assert.Equal(t, 0, f.remaining(t, "A"))
}

func TestTwoConcurrentCartsForTheLastSeat(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.Area{Name: "A", PriceCents: 100, Capacity: 1, Remaining: 1})
	a, b := f.buyer(t), f.buyer(t)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, buyer := range []uuid.UUID{a, b} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.PlaceOrder(ctx, buyer, orders.PlaceOrderRequest{SessionID: f.session.ID, Cart: cart("A", 1)})
		}()
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			var short *reservation.InsufficientInventoryError
			assert.ErrorAs(t, err, &short)
			failures++
		}
	}
	assert.Equal(t, 1, failures)
	assert.Equal(t, 0, f.remaining(t, "A"))
}

type brokenTickets struct{ repository.TicketRepo }

func (brokenTickets) CreateBatch(context.Context, []domain.Ticket) error { return errBoom }

type brokenRepos struct{ repository.Repos }

func (r brokenRepos) Tickets() repository.TicketRepo { return brokenTickets{r.Repos.Tickets()} }

type brokenStore struct{ repository.Store }

func (s brokenStore) RunTx(
	ctx context.Context,
	opts *repository.TxOptions,
	fn func(ctx context.Context, tx repository.Repos) error,
) error {
	return s.Store.RunTx(ctx, opts, func(ctx context.Context, tx repository.Repos) error {
		return fn(ctx, brokenRepos{tx})
	})
}

func TestTicketWriteFailureRestoresInventory(t *testing.T) {
	ctx := context.Background()
	f := newFixtureWithStore(t,
		func(s repository.Store) repository.Store { return brokenStore{s} },
		domain.Area{Name: "A", PriceCents: 100, Capacity: 3, Remaining: 3},
		domain.Area{Name: "B", PriceCents: 50, Capacity: 2, Remaining: 2},
	)
	buyer := f.buyer(t)

	_, err := f.svc.PlaceOrder(ctx, buyer, orders.PlaceOrderRequest{
		SessionID: f.session.ID,
		Cart: domain.Cart{Items: []domain.LineItem{
			{AreaName: "A", Quantity: 2},
			{AreaName: "B", Quantity: 1},
		}},
	})

	var perr *orders.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.True(t, perr.Compensated)
	assert.ErrorIs(t, err, errBoom)

	assert.Equal(t, 3, f.remaining(t, "A"))
	assert.Equal(t, 2, f.remaining(t, "B"))

	list, err := f.svc.ListUserOrders(ctx, buyer, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	expired, err := f.store.Inventory().ListExpiredReservations(ctx, now.Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, expired, "compensated reservation must not stay pending")
}

func TestPlaceOrderRejectionsHaveNoSideEffects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.Area{
		Name:        "A",
		PriceCents:  1000,
		Capacity:    5,
		Remaining:   5,
		TicketTypes: []domain.TicketType{{Name: "adult"}, {Name: "student", Discount: 20}},
	})
	buyer := f.buyer(t)
	otherEvent := uuid.New()

	tests := []struct {
		name string
		req  orders.PlaceOrderRequest
		want error
	}{
		{
			name: "unknown session",
			req:  orders.PlaceOrderRequest{SessionID: uuid.New(), Cart: cart("A", 1)},
			want: orders.ErrSessionNotFound,
		},
		{
			name: "empty cart",
			req:  orders.PlaceOrderRequest{SessionID: f.session.ID},
			want: orders.ErrInvalidCart,
		},
		{
			name: "too many tickets",
			req:  orders.PlaceOrderRequest{SessionID: f.session.ID, Cart: cart("A", 11)},
			want: orders.ErrInvalidCart,
		},
		{
			name: "event mismatch",
			req:  orders.PlaceOrderRequest{SessionID: f.session.ID, EventID: &otherEvent, Cart: cart("A", 1)},
			want: orders.ErrEventMismatch,
		},
		{
			name: "unknown area",
			req:  orders.PlaceOrderRequest{SessionID: f.session.ID, Cart: cart("Z", 1)},
			want: orders.ErrAreaNotFound,
		},
		{
			name: "unknown ticket type",
			req: orders.PlaceOrderRequest{SessionID: f.session.ID, Cart: domain.Cart{Items: []domain.LineItem{
				{AreaName: "A", TicketName: "vip", Quantity: 1},
			}}},
			want: orders.ErrUnknownTicketType,
		},
		{
			name: "stale client price",
			req: orders.PlaceOrderRequest{SessionID: f.session.ID, Cart: domain.Cart{Items: []domain.LineItem{
				{AreaName: "A", TicketName: "student", Quantity: 1, UnitPriceCents: 1000},
			}}},
			want: orders.ErrPriceMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.PlaceOrder(ctx, buyer, tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 5, f.remaining(t, "A"))
		})
	}
}

func TestPlaceOrderOutsideSalesWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.Area{Name: "A", PriceCents: 100, Capacity: 5, Remaining: 5})
	buyer := f.buyer(t)

	for _, at := range []time.Time{now.Add(-2 * time.Hour), now.Add(time.Hour), now.Add(3 * time.Hour)} {
		svc := orders.New(f.store, f.ledger, nil, nil, nil, discard(), orders.Config{
			Now: func() time.Time { return at },
		})

		_, err := svc.PlaceOrder(ctx, buyer, orders.PlaceOrderRequest{SessionID: f.session.ID, Cart: cart("A", 1)})
		assert.ErrorIs(t, err, orders.ErrSalesClosed, "at %s", at)
	}
	assert.Equal(t, 5, f.remaining(t, "A"))
}

func TestPlaceOrderPricesTicketTypes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.Area{
		Name:        "A",
		PriceCents:  1000,
		Capacity:    5,
		Remaining:   5,
		TicketTypes: []domain.TicketType{{Name: "adult"}, {Name: "student", Discount: 20}},
	})
	buyer := f.buyer(t)

	got, err := f.svc.PlaceOrder(ctx, buyer, orders.PlaceOrderRequest{
		SessionID: f.session.ID,
		EventID:   &f.session.EventID,
		Cart: domain.Cart{Items: []domain.LineItem{
			{AreaName: "A", TicketName: "adult", Quantity: 1, UnitPriceCents: 1000},
			{AreaName: "A", TicketName: "student", Quantity: 2},
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1000+2*800), got.Order.TotalCents)
	require.Len(t, got.Order.Lines, 2)
	assert.Equal(t, int64(800), got.Order.Lines[1].UnitPriceCents)

	seats := []string{got.Tickets[0].Seat, got.Tickets[1].Seat, got.Tickets[2].Seat}
	assert.Equal(t, []string{"A-001", "A-002", "A-003"}, seats)
	assert.Equal(t, 2, f.remaining(t, "A"))
}

func TestGetOrderIsBuyerScoped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.Area{Name: "A", PriceCents: 100, Capacity: 5, Remaining: 5})
	owner, stranger := f.buyer(t), f.buyer(t)

	placed, err := f.svc.PlaceOrder(ctx, owner, orders.PlaceOrderRequest{SessionID: f.session.ID, Cart: cart("A", 2)})
	require.NoError(t, err)

	got, err := f.svc.GetOrder(ctx, owner, placed.Order.ID)
	require.NoError(t, err)
	assert.Len(t, got.Tickets, 2)

	_, err = f.svc.GetOrder(ctx, stranger, placed.Order.ID)
	assert.ErrorIs(t, err, orders.ErrOrderNotFound)

	_, err = f.svc.GetOrder(ctx, owner, uuid.New())
	assert.ErrorIs(t, err, orders.ErrOrderNotFound)
}

type denyAll struct{}

func (denyAll) Allow(context.Context, string) (bool, int64, time.Duration, error) {
	return false, 6, 3 * time.Second, nil
}

func TestPlaceOrderRateLimited(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.Area{Name: "A", PriceCents: 100, Capacity: 5, Remaining: 5})
	buyer := f.buyer(t)

	svc := orders.New(f.store, f.ledger, nil, nil, denyAll{}, discard(), orders.Config{Now: clock})

	_, err := svc.PlaceOrder(ctx, buyer, orders.PlaceOrderRequest{SessionID: f.session.ID, Cart: cart("A", 1)})
	assert.ErrorIs(t, err, orders.ErrRateLimited)

	var rl *orders.RateLimitedError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 3*time.Second, rl.RetryAfter)
}
