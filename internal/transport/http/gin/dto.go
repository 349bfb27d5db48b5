package httpgin

import (
	"time"

	"github.com/google/uuid"
	"github.com/sportspass/ticketing/internal/domain"
)

// Envelope wraps every JSON response.
type Envelope struct {
	Status  string `json:"status" example:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status" example:"error"`
	Message string `json:"message" example:"session not found"`
	Details any    `json:"details,omitempty"`
}

type RegisterRequest struct {
	Account  string      `json:"account" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     domain.Role `json:"role" binding:"omitempty,oneof=user sponsor"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LineItemRequest struct {
	AreaName       string `json:"areaName" binding:"required"`
	TicketName     string `json:"ticketName"`
	Quantity       int    `json:"quantity" binding:"required,min=1"`
	UnitPriceCents int64  `json:"unitPrice" binding:"min=0"`
}

type PlaceOrderRequest struct {
	SessionID string            `json:"sessionId" binding:"required,uuid"`
	EventID   string            `json:"eventId" binding:"omitempty,uuid"`
	Cart      []LineItemRequest `json:"cart" binding:"required,min=1,dive"`
}

type NameRequest struct {
	Name string `json:"name" binding:"required,max=64"`
}

// AreaRequest and SessionRequest share field names with the catalog
// inputs so they can be copied across.
type AreaRequest struct {
	Name        string              `json:"areaName" binding:"required"`
	Color       string              `json:"areaColor"`
	PriceCents  int64               `json:"areaPrice" binding:"min=0"`
	Capacity    int                 `json:"capacity" binding:"min=0"`
	TicketTypes []domain.TicketType `json:"areaTicketType"`
}

type SessionRequest struct {
	Name       string        `json:"sessionName"`
	Place      string        `json:"sessionPlace"`
	StartsAt   time.Time     `json:"sessionTime"`
	SalesOpen  time.Time     `json:"salesOpen" binding:"required"`
	SalesClose time.Time     `json:"salesClose" binding:"required"`
	Areas      []AreaRequest `json:"areaSetting" binding:"required,min=1,dive"`
}

type CreateEventRequest struct {
	Name        string           `json:"eventName" binding:"required"`
	CategoryID  uuid.UUID        `json:"categoryId" binding:"required"`
	TagIDs      []uuid.UUID      `json:"tagList"`
	Date        time.Time        `json:"eventDate"`
	ReleaseDate time.Time        `json:"releaseDate"`
	Intro       string           `json:"eventIntro"`
	Sessions    []SessionRequest `json:"sessionList" binding:"dive"`
}

type UpdateAreaRequest struct {
	Capacity   *int   `json:"capacity" binding:"required,min=0"`
	PriceCents *int64 `json:"areaPrice" binding:"required,min=0"`
}

type TicketStatusRequest struct {
	Status domain.TicketStatus `json:"status" binding:"required"`
}

type UserResponse struct {
	ID        uuid.UUID   `json:"id"`
	Account   string      `json:"account"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}
