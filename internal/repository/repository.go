package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sportspass/ticketing/internal/domain"
)

type IsoLevel string

const (
	Serializable  IsoLevel = "serializable"
	ReadCommitted IsoLevel = "read committed"
)

type TxOptions struct {
	IsoLevel IsoLevel
}

// Store is implemented by every storage backend. Repositories obtained from
// the Store itself run each call on its own; repositories handed to a RunTx
// callback share one transaction.
type Store interface {
	Repos
	RunTx(ctx context.Context, opts *TxOptions, fn func(ctx context.Context, tx Repos) error) error
}

type Repos interface {
	Inventory() InventoryRepo
	Orders() OrderRepo
	Tickets() TicketRepo
	Users() UserRepo
	Catalog() CatalogRepo
	Notifications() NotificationRepo
}

// InventoryRepo owns session areas and reservation markers.
type InventoryRepo interface {
	GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// Reserve decrements every area of r.Items with a conditional update and
	// stores r as a pending marker. It is all-or-nothing only when run inside
	// a transaction.
	Reserve(ctx context.Context, r domain.Reservation) ([]domain.AreaAllocation, error)
	Release(ctx context.Context, sessionID uuid.UUID, items []domain.AreaQuantity) error
	ReconfigureArea(ctx context.Context, sessionID uuid.UUID, area string, capacity int, priceCents int64) (*domain.Area, error)

	GetReservation(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)
	// MarkReservation moves a reservation from one status to another and
	// fails with ErrConflict when it is no longer in the from status.
	MarkReservation(ctx context.Context, id uuid.UUID, from, to domain.ReservationStatus, orderID *uuid.UUID) error
	ListExpiredReservations(ctx context.Context, now time.Time, limit int) ([]domain.Reservation, error)
}

type OrderRepo interface {
	Create(ctx context.Context, o *domain.Order) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]domain.Order, error)
	// TransitionStatus updates the status only when the current status is
	// one of from; it reports whether a row changed.
	TransitionStatus(ctx context.Context, id uuid.UUID, from []domain.OrderStatus, to domain.OrderStatus, at time.Time) (bool, error)
}

type TicketRepo interface {
	CreateBatch(ctx context.Context, tickets []domain.Ticket) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Ticket, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.Ticket, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.TicketStatus) error
	// VoidByOrder voids the order's unused tickets and returns how many
	// seats per area it voided. Used tickets are left alone.
	VoidByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.AreaQuantity, error)
	CountBySession(ctx context.Context, sessionID uuid.UUID, status domain.TicketStatus) (int64, error)
}

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	AppendOrder(ctx context.Context, userID, orderID uuid.UUID) error
}

type CatalogRepo interface {
	CreateCategory(ctx context.Context, c *domain.Category) error
	GetCategoryByName(ctx context.Context, name string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	HotCategories(ctx context.Context, limit int) ([]domain.Category, error)
	// DeleteCategory fails with ErrInUse while events still reference it.
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	AdjustCategoryCount(ctx context.Context, id uuid.UUID, delta int) error

	CreateTag(ctx context.Context, t *domain.Tag) error
	GetTagByName(ctx context.Context, name string) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]domain.Tag, error)
	DeleteTag(ctx context.Context, id uuid.UUID) error
	AdjustTagCounts(ctx context.Context, ids []uuid.UUID, delta int) error

	CreateEvent(ctx context.Context, e *domain.Event) error
	GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	ListEvents(ctx context.Context, categoryID *uuid.UUID, limit, offset int) ([]domain.Event, error)
	// MarkEventDeleted soft-deletes an active event and reports whether it
	// was active.
	MarkEventDeleted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	CreateSession(ctx context.Context, s *domain.Session) error
	ListSessionsByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Session, error)
}

type NotificationRepo interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
}
