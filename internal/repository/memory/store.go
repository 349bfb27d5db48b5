// Package memory is an in-process implementation of the repository
// contracts. Transactions are serialized behind one mutex and applied by
// swapping in a modified copy of the state, so a failed callback leaves no
// trace.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/sportspass/ticketing/internal/domain"
	"github.com/sportspass/ticketing/internal/repository"
)

type Store struct {
	mu sync.Mutex
	st *state
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{st: newState()}
}

type state struct {
	sessions      map[uuid.UUID]domain.Session
	reservations  map[uuid.UUID]domain.Reservation
	orders        map[uuid.UUID]domain.Order
	tickets       map[uuid.UUID]domain.Ticket
	users         map[uuid.UUID]domain.User
	categories    map[uuid.UUID]domain.Category
	tags          map[uuid.UUID]domain.Tag
	events        map[uuid.UUID]domain.Event
	notifications map[uuid.UUID]domain.Notification
}

func newState() *state {
	return &state{
		sessions:      make(map[uuid.UUID]domain.Session),
		reservations:  make(map[uuid.UUID]domain.Reservation),
		orders:        make(map[uuid.UUID]domain.Order),
		tickets:       make(map[uuid.UUID]domain.Ticket),
		users:         make(map[uuid.UUID]domain.User),
		categories:    make(map[uuid.UUID]domain.Category),
		tags:          make(map[uuid.UUID]domain.Tag),
		events:        make(map[uuid.UUID]domain.Event),
		notifications: make(map[uuid.UUID]domain.Notification),
	}
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.sessions {
		c.sessions[k] = copySession(v)
	}
	for k, v := range st.reservations {
		c.reservations[k] = copyReservation(v)
	}
	for k, v := range st.orders {
		c.orders[k] = copyOrder(v)
	}
	for k, v := range st.tickets {
		c.tickets[k] = v
	}
	for k, v := range st.users {
		c.users[k] = copyUser(v)
	}
	for k, v := range st.categories {
		c.categories[k] = v
	}
	for k, v := range st.tags {
		c.tags[k] = v
	}
	for k, v := range st.events {
		c.events[k] = copyEvent(v)
	}
	for k, v := range st.notifications {
		c.notifications[k] = v
	}
	return c
}

// RunTx runs fn against a private copy of the state and publishes the copy
// only when fn succeeds. Transactions never run concurrently, so there is
// nothing to retry. fn must use the repositories it is handed; calling the
// Store's own repositories from inside fn deadlocks.
func (s *Store) RunTx(
	ctx context.Context,
	_ *repository.TxOptions,
	fn func(ctx context.Context, tx repository.Repos) error,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	c := s.st.clone()
	if err := fn(ctx, view{s: s, st: c}); err != nil {
		return err
	}
	s.st = c

	return nil
}

func (s *Store) Inventory() repository.InventoryRepo        { return view{s: s}.Inventory() }
func (s *Store) Orders() repository.OrderRepo               { return view{s: s}.Orders() }
func (s *Store) Tickets() repository.TicketRepo             { return view{s: s}.Tickets() }
func (s *Store) Users() repository.UserRepo                 { return view{s: s}.Users() }
func (s *Store) Catalog() repository.CatalogRepo            { return view{s: s}.Catalog() }
func (s *Store) Notifications() repository.NotificationRepo { return view{s: s}.Notifications() }

// view binds repositories either to a transaction's state copy (st set) or
// to the store itself, in which case every call is its own transaction.
type view struct {
	s  *Store
	st *state
}

func (v view) Inventory() repository.InventoryRepo        { return inventoryRepo{v} }
func (v view) Orders() repository.OrderRepo               { return orderRepo{v} }
func (v view) Tickets() repository.TicketRepo             { return ticketRepo{v} }
func (v view) Users() repository.UserRepo                 { return userRepo{v} }
func (v view) Catalog() repository.CatalogRepo            { return catalogRepo{v} }
func (v view) Notifications() repository.NotificationRepo { return notificationRepo{v} }

// do runs a mutation. Outside a transaction the mutation is applied to a
// copy that replaces the state only on success.
func (v view) do(fn func(st *state) error) error {
	if v.st != nil {
		return fn(v.st)
	}

	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	c := v.s.st.clone()
	if err := fn(c); err != nil {
		return err
	}
	v.s.st = c

	return nil
}

// read runs a read-only fn; results must be copied out of st.
func (v view) read(fn func(st *state) error) error {
	if v.st != nil {
		return fn(v.st)
	}

	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	return fn(v.s.st)
}

func copySession(s domain.Session) domain.Session {
	s.Areas = slices.Clone(s.Areas)
	for i := range s.Areas {
		s.Areas[i].TicketTypes = slices.Clone(s.Areas[i].TicketTypes)
	}
	return s
}

func copyReservation(r domain.Reservation) domain.Reservation {
	r.Items = slices.Clone(r.Items)
	if r.OrderID != nil {
		id := *r.OrderID
		r.OrderID = &id
	}
	return r
}

func copyOrder(o domain.Order) domain.Order {
	o.Lines = slices.Clone(o.Lines)
	o.TicketIDs = slices.Clone(o.TicketIDs)
	if o.EventID != nil {
		id := *o.EventID
		o.EventID = &id
	}
	if o.SettledAt != nil {
		at := *o.SettledAt
		o.SettledAt = &at
	}
	return o
}

func copyUser(u domain.User) domain.User {
	u.OrderIDs = slices.Clone(u.OrderIDs)
	return u
}

func copyEvent(e domain.Event) domain.Event {
	e.TagIDs = slices.Clone(e.TagIDs)
	return e
}
