package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderEventTypesAreDistinctFromStatuses(t *testing.T) {
	assert.Equal(t, OrderEventType("order.placed"), OrderEventPlaced)
	assert.Equal(t, OrderEventType("order.settled"), OrderEventSettled)
	assert.Equal(t, OrderEventType("order.cancelled"), OrderEventCancelled)
	assert.Equal(t, OrderStatus("cancelled"), OrderCancelled)
}

func TestNewOrderEvent(t *testing.T) {
	at := time.Date(2026, 5, 1, 20, 0, 0, 0, time.FixedZone("CST", 8*3600))
	o := Order{
		ID: uuid.New(), BuyerID: uuid.New(), SessionID: uuid.New(),
		Status: OrderCancelled, TotalCents: 1500,
	}

	ev := NewOrderEvent(OrderEventCancelled, o, []string{"A-001"}, at)
	assert.Equal(t, o.ID, ev.OrderID)
	assert.Equal(t, OrderCancelled, ev.Status)
	assert.Equal(t, time.UTC, ev.OccurredAt.Location())

	b, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"type":"order.cancelled"`)
	assert.Contains(t, string(b), `"status":"cancelled"`)
}

func TestSeatsByArea(t *testing.T) {
	got := SeatsByArea([]Ticket{
		{AreaName: "B"}, {AreaName: "A"}, {AreaName: "B"},
	})
	assert.Equal(t, []AreaQuantity{{Area: "A", Quantity: 1}, {Area: "B", Quantity: 2}}, got)
	assert.Empty(t, SeatsByArea(nil))
}
