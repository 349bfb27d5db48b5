package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrTooManyTickets  = errors.New("too many tickets in one order")
)

type LineItem struct {
	AreaName       string `json:"areaName"`
	TicketName     string `json:"ticketName"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPrice"` // optional; checked against the area price when set
}

type Cart struct {
	Items []LineItem `json:"cart"`
}

func (c Cart) Validate(maxTickets int) error {
	if len(c.Items) == 0 {
		return ErrEmptyCart
	}

	total := 0
	for i, it := range c.Items {
		if it.AreaName == "" {
			return fmt.Errorf("item %d: %w: empty area name", i, ErrInvalidArea)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("item %d: %w", i, ErrInvalidQuantity)
		}
		if it.UnitPriceCents < 0 {
			return fmt.Errorf("item %d: negative unit price", i)
		}
		total += it.Quantity
	}

	if maxTickets > 0 && total > maxTickets {
		return fmt.Errorf("%w: %d > %d", ErrTooManyTickets, total, maxTickets)
	}

	return nil
}

func (c Cart) TicketCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Quantities sums the cart per area, sorted by area name so that
// concurrent multi-area reservations lock rows in the same order.
func (c Cart) Quantities() []AreaQuantity {
	return sumByArea(c.Items, func(it LineItem) (string, int) { return it.AreaName, it.Quantity })
}

type AreaQuantity struct {
	Area     string `json:"area"`
	Quantity int    `json:"quantity"`
}

// MergeQuantities sums duplicate areas and sorts the result by area name.
func MergeQuantities(items []AreaQuantity) []AreaQuantity {
	return sumByArea(items, func(q AreaQuantity) (string, int) { return q.Area, q.Quantity })
}

func sumByArea[T any](items []T, get func(T) (string, int)) []AreaQuantity {
	sums := make(map[string]int, len(items))
	for _, it := range items {
		name, n := get(it)
		sums[name] += n
	}

	out := make([]AreaQuantity, 0, len(sums))
	for name, n := range sums {
		out = append(out, AreaQuantity{Area: name, Quantity: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Area < out[j].Area })

	return out
}

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationCommitted ReservationStatus = "committed"
	ReservationReleased  ReservationStatus = "released"
)

// Reservation is the durable marker written together with an inventory
// decrement. A pending reservation past ExpiresAt is released by the sweeper.
type Reservation struct {
	ID        uuid.UUID         `json:"id"`
	SessionID uuid.UUID         `json:"sessionId"`
	BuyerID   uuid.UUID         `json:"buyerId"`
	Items     []AreaQuantity    `json:"items"`
	Status    ReservationStatus `json:"status"`
	OrderID   *uuid.UUID        `json:"orderId,omitempty"`
	ExpiresAt time.Time         `json:"expiresAt"`
	CreatedAt time.Time         `json:"createdAt"`
}

// AreaAllocation is the outcome of one area decrement: FirstSeat is the
// first seat number of a contiguous run of Quantity seats.
type AreaAllocation struct {
	Area       string `json:"area"`
	Color      string `json:"color"`
	Quantity   int    `json:"quantity"`
	FirstSeat  int    `json:"firstSeat"`
	PriceCents int64  `json:"price"`
}

type ReservationResult struct {
	Reservation Reservation      `json:"reservation"`
	Allocations []AreaAllocation `json:"allocations"`
}

func (r ReservationResult) Allocation(area string) (AreaAllocation, bool) {
	for _, a := range r.Allocations {
		if a.Area == area {
			return a, true
		}
	}
	return AreaAllocation{}, false
}
