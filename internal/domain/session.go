package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SalesStatus string

const (
	SalesNotOpen SalesStatus = "not_open"
	SalesOnSale  SalesStatus = "on_sale"
	SalesClosed  SalesStatus = "closed"
)

var (
	ErrCapacityBelowSold = errors.New("capacity below seats already sold")
	ErrInvalidArea       = errors.New("invalid area")
	ErrInvalidWindow     = errors.New("sales window must close after it opens")
)

type TicketType struct {
	Name     string `json:"ticketName" yaml:"name"`
	Discount int    `json:"ticketDiscount" yaml:"discount"` // percent off the area price
}

// Area is a priced inventory unit inside a session. Remaining is the only
// counter mutated by purchases; NextSeat counts every seat ever issued and
// never rewinds.
type Area struct {
	Name        string       `json:"areaName"`
	Color       string       `json:"areaColor"`
	PriceCents  int64        `json:"areaPrice"`
	TicketTypes []TicketType `json:"areaTicketType"`
	Capacity    int          `json:"capacity"`
	Remaining   int          `json:"remaining"`
	NextSeat    int          `json:"-"`
}

func (a Area) Sold() int {
	return a.Capacity - a.Remaining
}

// UnitPrice returns the price of one seat for the named ticket type. An
// empty ticket name, or an area without ticket types, yields the area price.
func (a Area) UnitPrice(ticketName string) (int64, bool) {
	if ticketName == "" || len(a.TicketTypes) == 0 {
		return a.PriceCents, true
	}
	for _, tt := range a.TicketTypes {
		if tt.Name == ticketName {
			return a.PriceCents * int64(100-tt.Discount) / 100, true
		}
	}
	return 0, false
}

func (a Area) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidArea)
	}
	if a.PriceCents < 0 {
		return fmt.Errorf("%w: %s: negative price", ErrInvalidArea, a.Name)
	}
	if a.Capacity < 0 || a.Remaining < 0 || a.Remaining > a.Capacity {
		return fmt.Errorf("%w: %s: remaining must be within [0, capacity]", ErrInvalidArea, a.Name)
	}
	for _, tt := range a.TicketTypes {
		if tt.Name == "" || tt.Discount < 0 || tt.Discount > 100 {
			return fmt.Errorf("%w: %s: bad ticket type %q", ErrInvalidArea, a.Name, tt.Name)
		}
	}
	return nil
}

type Session struct {
	ID         uuid.UUID `json:"id"`
	EventID    uuid.UUID `json:"eventId"`
	Name       string    `json:"sessionName"`
	Place      string    `json:"sessionPlace"`
	StartsAt   time.Time `json:"sessionTime"`
	SalesOpen  time.Time `json:"salesOpen"`
	SalesClose time.Time `json:"salesClose"`
	Areas      []Area    `json:"areaSetting"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Status derives the sales state from the window [SalesOpen, SalesClose).
func (s Session) Status(now time.Time) SalesStatus {
	switch {
	case now.Before(s.SalesOpen):
		return SalesNotOpen
	case now.Before(s.SalesClose):
		return SalesOnSale
	default:
		return SalesClosed
	}
}

func (s Session) SeatsTotal() int {
	n := 0
	for _, a := range s.Areas {
		n += a.Capacity
	}
	return n
}

func (s Session) SeatsAvailable() int {
	n := 0
	for _, a := range s.Areas {
		n += a.Remaining
	}
	return n
}

func (s Session) SeatsSold() int {
	return s.SeatsTotal() - s.SeatsAvailable()
}

func (s Session) IsSoldOut() bool {
	return s.SeatsAvailable() == 0
}

func (s Session) Area(name string) (Area, bool) {
	for _, a := range s.Areas {
		if a.Name == name {
			return a, true
		}
	}
	return Area{}, false
}

func (s Session) Validate() error {
	if !s.SalesClose.After(s.SalesOpen) {
		return ErrInvalidWindow
	}
	seen := make(map[string]struct{}, len(s.Areas))
	for _, a := range s.Areas {
		if err := a.Validate(); err != nil {
			return err
		}
		if _, dup := seen[a.Name]; dup {
			return fmt.Errorf("%w: duplicate area %q", ErrInvalidArea, a.Name)
		}
		seen[a.Name] = struct{}{}
	}
	return nil
}

// Reconfigure applies an administrative capacity/price change. Seats already
// sold stay sold, so the new capacity must cover them.
func (a Area) Reconfigure(capacity int, priceCents int64) (Area, error) {
	if capacity < a.Sold() {
		return a, fmt.Errorf("%w: area %s has %d sold, capacity %d requested",
			ErrCapacityBelowSold, a.Name, a.Sold(), capacity)
	}
	if priceCents < 0 {
		return a, fmt.Errorf("%w: %s: negative price", ErrInvalidArea, a.Name)
	}
	out := a
	out.Remaining = capacity - a.Sold()
	out.Capacity = capacity
	out.PriceCents = priceCents
	return out, nil
}

// SessionView is the read model of a session with every derived field
// computed at read time.
type SessionView struct {
	Session
	SeatsTotal     int         `json:"seatsTotal"`
	SeatsAvailable int         `json:"seatsAvailable"`
	BookTicket     int         `json:"bookTicket"`
	EnterVenue     int64       `json:"enterVenue"`
	SessionState   SalesStatus `json:"sessionState"`
	IsSoldOut      bool        `json:"isSoldOut"`
}

func NewSessionView(s Session, usedTickets int64, now time.Time) SessionView {
	return SessionView{
		Session:        s,
		SeatsTotal:     s.SeatsTotal(),
		SeatsAvailable: s.SeatsAvailable(),
		BookTicket:     s.SeatsSold(),
		EnterVenue:     usedTickets,
		SessionState:   s.Status(now),
		IsSoldOut:      s.IsSoldOut(),
	}
}
