package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(open, close time.Time, areas ...Area) Session {
	return Session{Name: "evening", SalesOpen: open, SalesClose: close, Areas: areas}
}

func TestSessionStatus(t *testing.T) {
	t1 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(48 * time.Hour)
	s := testSession(t1, t2)

	cases := []struct {
		name string
		now  time.Time
		want SalesStatus
	}{
		{"long before", t1.Add(-30 * 24 * time.Hour), SalesNotOpen},
		{"just before open", t1.Add(-time.Nanosecond), SalesNotOpen},
		{"at open", t1, SalesOnSale},
		{"middle", t1.Add(24 * time.Hour), SalesOnSale},
		{"just before close", t2.Add(-time.Nanosecond), SalesOnSale},
		{"at close", t2, SalesClosed},
		{"after close", t2.Add(time.Hour), SalesClosed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, s.Status(tc.now))
		})
	}

	for i := -100; i <= 100; i++ {
		now := t1.Add(time.Duration(i) * time.Hour)
		got := s.Status(now)
		switch {
		case now.Before(t1):
			assert.Equal(t, SalesNotOpen, got, now)
		case now.Before(t2):
			assert.Equal(t, SalesOnSale, got, now)
		default:
			assert.Equal(t, SalesClosed, got, now)
		}
	}
}

func TestSessionDerivedSeats(t *testing.T) {
	s := testSession(time.Time{}, time.Now(),
		Area{Name: "A", Capacity: 10, Remaining: 4},
		Area{Name: "B", Capacity: 5, Remaining: 0},
	)

	assert.Equal(t, 15, s.SeatsTotal())
	assert.Equal(t, 4, s.SeatsAvailable())
	assert.Equal(t, 11, s.SeatsSold())
	assert.False(t, s.IsSoldOut())

	s.Areas[0].Remaining = 0
	assert.True(t, s.IsSoldOut())

	v := NewSessionView(s, 3, time.Now().Add(time.Hour))
	assert.Equal(t, 15, v.BookTicket)
	assert.Equal(t, int64(3), v.EnterVenue)
	assert.Equal(t, SalesClosed, v.SessionState)
	assert.True(t, v.IsSoldOut)
}

func TestAreaReconfigure(t *testing.T) {
	a := Area{Name: "A", Capacity: 10, Remaining: 4, PriceCents: 100}

	got, err := a.Reconfigure(8, 150)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Capacity)
	assert.Equal(t, 2, got.Remaining)
	assert.Equal(t, int64(150), got.PriceCents)

	got, err = a.Reconfigure(6, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Remaining)

	_, err = a.Reconfigure(5, 100)
	assert.ErrorIs(t, err, ErrCapacityBelowSold)
}

func TestAreaUnitPrice(t *testing.T) {
	a := Area{Name: "A", PriceCents: 1000, TicketTypes: []TicketType{
		{Name: "adult", Discount: 0},
		{Name: "student", Discount: 20},
	}}

	p, ok := a.UnitPrice("student")
	require.True(t, ok)
	assert.Equal(t, int64(800), p)

	p, ok = a.UnitPrice("")
	require.True(t, ok)
	assert.Equal(t, int64(1000), p)

	_, ok = a.UnitPrice("vip")
	assert.False(t, ok)
}

func TestSessionValidate(t *testing.T) {
	now := time.Now()

	require.NoError(t, testSession(now, now.Add(time.Hour), Area{Name: "A", Capacity: 1, Remaining: 1}).Validate())

	err := testSession(now, now, Area{Name: "A"}).Validate()
	assert.ErrorIs(t, err, ErrInvalidWindow)

	err = testSession(now, now.Add(time.Hour),
		Area{Name: "A", Capacity: 1, Remaining: 1},
		Area{Name: "A", Capacity: 1, Remaining: 1},
	).Validate()
	assert.ErrorIs(t, err, ErrInvalidArea)

	err = testSession(now, now.Add(time.Hour), Area{Name: "A", Capacity: 1, Remaining: 2}).Validate()
	assert.ErrorIs(t, err, ErrInvalidArea)
}
