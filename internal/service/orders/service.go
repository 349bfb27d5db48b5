package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sportspass/ticketing/internal/domain"
	"github.com/sportspass/ticketing/internal/repository"
	"github.com/sportspass/ticketing/internal/service/hooks"
	"github.com/sportspass/ticketing/internal/service/reservation"
	"github.com/sportspass/ticketing/internal/uow"
)

type Config struct {
	MaxTicketsPerOrder int
	Now                func() time.Time
}

// Limiter throttles order placement per buyer.
type Limiter interface {
	Allow(ctx context.Context, id string) (allowed bool, current int64, retryAfter time.Duration, err error)
}

type Service struct {
	store     repository.Store
	uow       *uow.UoW
	ledger    *reservation.Service
	notifier  hooks.SessionNotifier
	publisher hooks.OrderPublisher
	limiter   Limiter
	log       *slog.Logger
	cfg       Config
}

func New(
	store repository.Store,
	ledger *reservation.Service,
	notifier hooks.SessionNotifier,
	publisher hooks.OrderPublisher,
	limiter Limiter,
	log *slog.Logger,
	cfg Config,
) *Service {
	if cfg.MaxTicketsPerOrder <= 0 {
		cfg.MaxTicketsPerOrder = 10
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if notifier == nil {
		notifier = hooks.Nop{}
	}

	if publisher == nil {
		publisher = hooks.Nop{}
	}

	return &Service{
		store:     store,
		uow:       uow.NewUoW(store),
		ledger:    ledger,
		notifier:  notifier,
		publisher: publisher,
		limiter:   limiter,
		log:       log,
		cfg:       cfg,
	}
}

type PlaceOrderRequest struct {
	SessionID uuid.UUID
	EventID   *uuid.UUID
	Cart      domain.Cart
}

// PlaceOrder reserves the cart's seats, issues one ticket per seat and
// stores the order. Once seats are reserved the caller's cancellation is no
// longer honored: persistence and compensation finish on their own.
//
// Parameters:
//   - ctx: request-scoped context.
//   - buyerID: the authenticated buyer.
//   - req: session, optional event and cart.
//
// Returns:
//   - *domain.OrderWithTickets: the pending order and its tickets.
//   - error: orders.ErrSessionNotFound if the session does not exist.
//   - error: orders.ErrSalesClosed if the session is not on sale.
//   - error: *reservation.InsufficientInventoryError if an area is short.
//   - error: *orders.PersistenceError if the order could not be stored.
func (s *Service) PlaceOrder(
	ctx context.Context,
	buyerID uuid.UUID,
	req PlaceOrderRequest,
) (*domain.OrderWithTickets, error) {
	const op = "service.orders.PlaceOrder"

	if err := req.Cart.Validate(s.cfg.MaxTicketsPerOrder); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrInvalidCart, err)
	}

	if err := s.throttle(ctx, buyerID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	session, err := s.store.Inventory().GetSession(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrSessionNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if req.EventID != nil && *req.EventID != session.EventID {
		return nil, fmt.Errorf("%s: %w", op, ErrEventMismatch)
	}

	now := s.cfg.Now()
	if st := session.Status(now); st != domain.SalesOnSale {
		return nil, fmt.Errorf("%s: %w (%s)", op, ErrSalesClosed, st)
	}

	if err := checkPrices(*session, req.Cart); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	held, err := s.ledger.TryReserve(ctx, buyerID, session.ID, req.Cart.Quantities())
	if err != nil {
		if errors.Is(err, reservation.ErrAreaNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrAreaNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Seats are held from here on; a caller going away must not strand them.
	ctx = context.WithoutCancel(ctx)

	order, tickets := materialize(*session, buyerID, req.Cart, held, now)

	err = s.uow.DoWithOpts(ctx, &repository.TxOptions{IsoLevel: repository.ReadCommitted}, func(
		ctx context.Context,
		tx repository.Repos,
		after func(uow.AfterCommit),
	) error {
		if err := tx.Orders().Create(ctx, &order); err != nil {
			return err
		}

		if err := tx.Tickets().CreateBatch(ctx, tickets); err != nil {
			return err
		}

		if err := tx.Inventory().MarkReservation(ctx, held.Reservation.ID,
			domain.ReservationPending, domain.ReservationCommitted, &order.ID); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("reservation %s expired before commit: %w",
					held.Reservation.ID, reservation.ErrReservationNotPending)
			}
			return err
		}

		if err := tx.Users().AppendOrder(ctx, buyerID, order.ID); err != nil {
			return err
		}

		after(func(ctx context.Context) {
			s.notifier.SessionChanged(ctx, session.ID)
			s.publish(ctx, domain.NewOrderEvent(domain.OrderEventPlaced, order, seatLabels(tickets), now))
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, s.compensate(ctx, held.Reservation, err))
	}

	return &domain.OrderWithTickets{Order: order, Tickets: tickets}, nil
}

// compensate gives back the held seats after a failed commit and reports
// whether that succeeded.
func (s *Service) compensate(ctx context.Context, res domain.Reservation, cause error) error {
	err := s.ledger.ReleaseReservation(ctx, res.ID)
	switch {
	case err == nil:
		s.log.Warn("order commit failed, reservation released",
			"reservation_id", res.ID,
			"session_id", res.SessionID,
			"err", cause,
		)
		return &PersistenceError{Compensated: true, Err: cause}

	case errors.Is(err, reservation.ErrReservationNotPending):
		// The sweeper got there first; the seats are back either way.
		return &PersistenceError{Compensated: true, Err: cause}

	default:
		s.log.Error("order commit failed and compensation failed",
			"reservation_id", res.ID,
			"session_id", res.SessionID,
			"err", cause,
			"release_err", err,
		)
		return &PersistenceError{Compensated: false, Err: cause}
	}
}

func (s *Service) throttle(ctx context.Context, buyerID uuid.UUID) error {
	if s.limiter == nil {
		return nil
	}

	ok, _, retry, err := s.limiter.Allow(ctx, buyerID.String())
	if err != nil {
		s.log.Warn("rate limiter unavailable", "err", err)
		return nil
	}
	if !ok {
		return &RateLimitedError{RetryAfter: retry}
	}

	return nil
}

func (s *Service) publish(ctx context.Context, ev domain.OrderEvent) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn("order event publish failed",
			"type", ev.Type,
			"order_id", ev.OrderID,
			"err", err,
		)
	}
}

// GetOrder returns an order with its tickets. Orders of other buyers are
// reported as not found.
func (s *Service) GetOrder(ctx context.Context, buyerID, orderID uuid.UUID) (*domain.OrderWithTickets, error) {
	const op = "service.orders.GetOrder"

	o, err := s.store.Orders().Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if o.BuyerID != buyerID {
		return nil, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
	}

	tickets, err := s.store.Tickets().ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &domain.OrderWithTickets{Order: *o, Tickets: tickets}, nil
}

func (s *Service) ListUserOrders(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]domain.Order, error) {
	const op = "service.orders.ListUserOrders"

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	out, err := s.store.Orders().ListByBuyer(ctx, buyerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// checkPrices rejects unknown areas or ticket types and client prices that
// disagree with the session before anything is reserved.
func checkPrices(session domain.Session, cart domain.Cart) error {
	for _, it := range cart.Items {
		area, ok := session.Area(it.AreaName)
		if !ok {
			return fmt.Errorf("%w: %s", ErrAreaNotFound, it.AreaName)
		}

		price, ok := area.UnitPrice(it.TicketName)
		if !ok {
			return fmt.Errorf("%w: %s/%s", ErrUnknownTicketType, it.AreaName, it.TicketName)
		}

		if it.UnitPriceCents != 0 && it.UnitPriceCents != price {
			return fmt.Errorf("%w: %s/%s is %d, got %d",
				ErrPriceMismatch, it.AreaName, it.TicketName, price, it.UnitPriceCents)
		}
	}

	return nil
}

// materialize builds the order and one ticket per reserved seat. Seats of
// an area are handed out in cart order from the allocation's first seat;
// prices come from the reserved rows.
func materialize(
	session domain.Session,
	buyerID uuid.UUID,
	cart domain.Cart,
	held *domain.ReservationResult,
	now time.Time,
) (domain.Order, []domain.Ticket) {
	eventID := session.EventID

	order := domain.Order{
		ID:            uuid.New(),
		BuyerID:       buyerID,
		SessionID:     session.ID,
		EventID:       &eventID,
		ReservationID: held.Reservation.ID,
		Status:        domain.OrderPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	next := make(map[string]int, len(held.Allocations))
	for _, a := range held.Allocations {
		next[a.Area] = a.FirstSeat
	}

	tickets := make([]domain.Ticket, 0, cart.TicketCount())
	for _, it := range cart.Items {
		alloc, _ := held.Allocation(it.AreaName)
		area, _ := session.Area(it.AreaName)
		area.PriceCents = alloc.PriceCents
		unit, _ := area.UnitPrice(it.TicketName)

		order.Lines = append(order.Lines, domain.OrderLine{
			AreaName:       it.AreaName,
			TicketName:     it.TicketName,
			Quantity:       it.Quantity,
			UnitPriceCents: unit,
		})
		order.TotalCents += unit * int64(it.Quantity)

		for range it.Quantity {
			t := domain.Ticket{
				ID:         uuid.New(),
				OrderID:    order.ID,
				SessionID:  session.ID,
				EventID:    &eventID,
				AreaName:   it.AreaName,
				AreaColor:  alloc.Color,
				TicketName: it.TicketName,
				Seat:       domain.SeatLabel(it.AreaName, next[it.AreaName]),
				PriceCents: unit,
				Status:     domain.TicketUnused,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			next[it.AreaName]++

			tickets = append(tickets, t)
			order.TicketIDs = append(order.TicketIDs, t.ID)
		}
	}

	return order, tickets
}

func seatLabels(tickets []domain.Ticket) []string {
	out := make([]string, len(tickets))
	for i, t := range tickets {
		out[i] = t.Seat
	}
	return out
}
