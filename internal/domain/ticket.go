package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TicketStatus string

const (
	TicketUnused TicketStatus = "unused"
	TicketUsed   TicketStatus = "used"
	TicketVoided TicketStatus = "voided"
)

var ErrInvalidTicketTransition = errors.New("invalid ticket status transition")

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketUnused, TicketUsed, TicketVoided:
		return true
	}
	return false
}

// CanTransition reports whether a ticket may move from s to next. Only
// unused tickets change state; used and voided are terminal.
func (s TicketStatus) CanTransition(next TicketStatus) bool {
	return s == TicketUnused && (next == TicketUsed || next == TicketVoided)
}

func SeatLabel(area string, n int) string {
	return fmt.Sprintf("%s-%03d", area, n)
}

type SettlementOutcome string

const (
	OutcomePaid   SettlementOutcome = "paid"
	OutcomeFailed SettlementOutcome = "failed"
)

func (o SettlementOutcome) OrderStatus() OrderStatus {
	if o == OutcomePaid {
		return OrderPaid
	}
	return OrderFailed
}

type OrderEventType string

const (
	OrderEventPlaced    OrderEventType = "order.placed"
	OrderEventSettled   OrderEventType = "order.settled"
	OrderEventCancelled OrderEventType = "order.cancelled"
)

// OrderEvent is published after an order transaction commits.
type OrderEvent struct {
	Type       OrderEventType `json:"type"`
	OrderID    uuid.UUID      `json:"order_id"`
	BuyerID    uuid.UUID      `json:"buyer_id"`
	SessionID  uuid.UUID      `json:"session_id"`
	Status     OrderStatus    `json:"status"`
	TotalCents int64          `json:"total_cents"`
	Seats      []string       `json:"seats,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func NewOrderEvent(typ OrderEventType, o Order, seats []string, at time.Time) OrderEvent {
	return OrderEvent{
		Type:       typ,
		OrderID:    o.ID,
		BuyerID:    o.BuyerID,
		SessionID:  o.SessionID,
		Status:     o.Status,
		TotalCents: o.TotalCents,
		Seats:      seats,
		OccurredAt: at.UTC(),
	}
}
