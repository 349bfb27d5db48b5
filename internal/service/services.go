package service

import (
	"log/slog"

	"github.com/sportspass/ticketing/internal/auth"
	"github.com/sportspass/ticketing/internal/broker"
	"github.com/sportspass/ticketing/internal/mail"
	"github.com/sportspass/ticketing/internal/repository"
	redisrepo "github.com/sportspass/ticketing/internal/repository/redis"
	"github.com/sportspass/ticketing/internal/service/catalog"
	"github.com/sportspass/ticketing/internal/service/hooks"
	"github.com/sportspass/ticketing/internal/service/notifications"
	"github.com/sportspass/ticketing/internal/service/orders"
	"github.com/sportspass/ticketing/internal/service/query"
	"github.com/sportspass/ticketing/internal/service/reservation"
	"github.com/sportspass/ticketing/internal/service/settlement"
	"github.com/sportspass/ticketing/internal/service/tickets"
	"github.com/sportspass/ticketing/internal/service/users"
)

type Services struct {
	Reservation   *reservation.Service
	Orders        *orders.Service
	Settlement    *settlement.Service
	Catalog       *catalog.Service
	Query         *query.Service
	Users         *users.Service
	Tickets       *tickets.Service
	Notifications *notifications.Service
}

type Config struct {
	Reservation   reservation.Config
	Orders        orders.Config
	Catalog       catalog.Config
	Query         query.Config
	Users         users.Config
	Notifications notifications.Config
}

// Deps are the collaborators shared by the services. Everything except
// Store, Tokens, Signer and Log may be left nil.
type Deps struct {
	Store     repository.Store
	Cache     *redisrepo.Cache
	Notifier  hooks.SessionNotifier
	Publisher hooks.OrderPublisher
	Limiter   orders.Limiter
	Relay     notifications.Relay
	Mailer    mail.Sender
	Tokens    *auth.Issuer
	Signer    *settlement.Signer
	Log       *slog.Logger
}

// NewServices wires the services together. Without a Publisher, order
// events go straight to the notification service in-process.
func NewServices(d Deps, cfg Config) *Services {
	notif := notifications.New(d.Store, d.Relay, d.Mailer, d.Log, cfg.Notifications)

	if d.Publisher == nil {
		d.Publisher = broker.NewInline(notif.Handle, d.Log)
	}

	ledger := reservation.New(d.Store, d.Notifier, d.Log, cfg.Reservation)

	return &Services{
		Reservation:   ledger,
		Orders:        orders.New(d.Store, ledger, d.Notifier, d.Publisher, d.Limiter, d.Log, cfg.Orders),
		Settlement:    settlement.New(d.Store, d.Signer, d.Notifier, d.Publisher, d.Log, cfg.Orders.Now),
		Catalog:       catalog.New(d.Store, d.Cache, d.Notifier, d.Log, cfg.Catalog),
		Query:         query.New(d.Store, d.Cache, cfg.Query),
		Users:         users.New(d.Store, d.Tokens, d.Log, cfg.Users),
		Tickets:       tickets.New(d.Store, d.Notifier, d.Log),
		Notifications: notif,
	}
}
