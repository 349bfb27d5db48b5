package tickets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"github.com/sportspass/ticketing/internal/domain"
	"github.com/sportspass/ticketing/internal/repository"
	"github.com/sportspass/ticketing/internal/service/hooks"
)

const qrSize = 256

type Service struct {
	store    repository.Store
	notifier hooks.SessionNotifier
	log      *slog.Logger
}

func New(store repository.Store, notifier hooks.SessionNotifier, log *slog.Logger) *Service {
	if notifier == nil {
		notifier = hooks.Nop{}
	}

	return &Service{store: store, notifier: notifier, log: log}
}

// Viewer identifies who is asking. Admins may read any ticket; everyone
// else only tickets of their own orders.
type Viewer struct {
	UserID uuid.UUID
	Admin  bool
}

// Get returns a ticket the viewer is allowed to see. A ticket owned by
// someone else is reported as not found.
func (s *Service) Get(ctx context.Context, v Viewer, id uuid.UUID) (*domain.Ticket, error) {
	const op = "service.tickets.Get"

	t, err := s.store.Tickets().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrTicketNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if v.Admin {
		return t, nil
	}

	o, err := s.store.Orders().Get(ctx, t.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrTicketNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if o.BuyerID != v.UserID {
		return nil, fmt.Errorf("%s: %w", op, ErrTicketNotFound)
	}

	return t, nil
}

// UpdateStatus moves a ticket to next. Only unused tickets change state,
// and only tickets of a paid order can be checked in.
//
// Returns:
//   - error: tickets.ErrInvalidStatus for an unknown status.
//   - error: tickets.ErrOrderNotPaid when checking in a ticket of an unpaid order.
//   - error: domain.ErrInvalidTicketTransition if the ticket is used or voided.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, next domain.TicketStatus) (*domain.Ticket, error) {
	const op = "service.tickets.UpdateStatus"

	if !next.Valid() {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrInvalidStatus, next)
	}

	t, err := s.store.Tickets().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrTicketNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !t.Status.CanTransition(next) {
		return nil, fmt.Errorf("%s: %w: %s -> %s", op, domain.ErrInvalidTicketTransition, t.Status, next)
	}

	if next == domain.TicketUsed {
		o, err := s.store.Orders().Get(ctx, t.OrderID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if o.Status != domain.OrderPaid {
			return nil, fmt.Errorf("%s: %w: order is %s", op, ErrOrderNotPaid, o.Status)
		}
	}

	if err := s.store.Tickets().TransitionStatus(ctx, id, t.Status, next); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, fmt.Errorf("%s: %w: ticket changed concurrently", op, domain.ErrInvalidTicketTransition)
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrTicketNotFound)
		default:
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	t.Status = next

	// enterVenue on the session view counts used tickets.
	if next == domain.TicketUsed {
		s.notifier.SessionChanged(ctx, t.SessionID)
	}

	s.log.Info("ticket status changed", "ticket_id", id, "status", next)

	return t, nil
}

// QR renders a PNG QR code for a ticket the viewer may see. The payload is
// the ticket id and seat, which is what gate scanners check.
func (s *Service) QR(ctx context.Context, v Viewer, id uuid.UUID) ([]byte, error) {
	const op = "service.tickets.QR"

	t, err := s.Get(ctx, v, id)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(fmt.Sprintf("%s|%s", t.ID, t.Seat), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return png, nil
}
