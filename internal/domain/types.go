package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser    Role = "user"
	RoleSponsor Role = "sponsor"
	RoleAdmin   Role = "admin"
)

type User struct {
	ID           uuid.UUID   `json:"id"`
	Account      string      `json:"account"`
	Email        string      `json:"email"`
	Role         Role        `json:"role"`
	PasswordHash string      `json:"-"`
	OrderIDs     []uuid.UUID `json:"orderIds"`
	CreatedAt    time.Time   `json:"createdAt"`
}

type Category struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	EventCount int       `json:"eventNum"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Tag struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	EventCount int       `json:"eventNum"`
	CreatedAt  time.Time `json:"createdAt"`
}

type EventStatus int

const (
	EventDeleted EventStatus = 0
	EventActive  EventStatus = 1
)

type Event struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"eventName"`
	Slug        string      `json:"slug"`
	CategoryID  uuid.UUID   `json:"categoryId"`
	TagIDs      []uuid.UUID `json:"tagList"`
	SponsorID   uuid.UUID   `json:"sponsorId"`
	Date        time.Time   `json:"eventDate"`
	ReleaseDate time.Time   `json:"releaseDate"`
	Intro       string      `json:"eventIntro"`
	Status      EventStatus `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderFailed    OrderStatus = "failed"
	OrderCancelled OrderStatus = "cancelled"
)

type OrderLine struct {
	AreaName       string `json:"areaName"`
	TicketName     string `json:"ticketName"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPrice"`
}

type Order struct {
	ID            uuid.UUID   `json:"id"`
	BuyerID       uuid.UUID   `json:"userId"`
	SessionID     uuid.UUID   `json:"sessionId"`
	EventID       *uuid.UUID  `json:"eventId,omitempty"`
	ReservationID uuid.UUID   `json:"reservationId"`
	Lines         []OrderLine `json:"orderList"`
	TicketIDs     []uuid.UUID `json:"ticketId"`
	TotalCents    int64       `json:"totalAmount"`
	Status        OrderStatus `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
	SettledAt     *time.Time  `json:"settledAt,omitempty"`
}

// Quantities sums the order lines per area, sorted by area name.
func (o Order) Quantities() []AreaQuantity {
	return sumByArea(o.Lines, func(l OrderLine) (string, int) { return l.AreaName, l.Quantity })
}

type OrderWithTickets struct {
	Order   Order    `json:"order"`
	Tickets []Ticket `json:"tickets"`
}

type Ticket struct {
	ID         uuid.UUID    `json:"id"`
	OrderID    uuid.UUID    `json:"orderId"`
	SessionID  uuid.UUID    `json:"sessionId"`
	EventID    *uuid.UUID   `json:"eventId,omitempty"`
	AreaName   string       `json:"areaName"`
	AreaColor  string       `json:"areaColor"`
	TicketName string       `json:"ticketName"`
	Seat       string       `json:"seat"`
	PriceCents int64        `json:"price"`
	Status     TicketStatus `json:"status"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// SeatsByArea counts tickets per area, sorted by area name.
func SeatsByArea(tickets []Ticket) []AreaQuantity {
	return sumByArea(tickets, func(t Ticket) (string, int) { return t.AreaName, 1 })
}

type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Title     string    `json:"title"`
	URL       string    `json:"url,omitempty"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}
