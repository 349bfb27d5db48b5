package settlement

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
	"github.com/sportspass/ticketing/internal/uow"
)

// Service is the only writer of order status after an order is placed.
type Service struct {
	store     repository.Store
	uow       *uow.UoW
	signer    *Signer
	notifier  hooks.SessionNotifier
	publisher hooks.OrderPublisher
	log       *slog.Logger
	now       func() time.Time
}

func New(
	store repository.Store,
	signer *Signer,
	notifier hooks.SessionNotifier,
	publisher hooks.OrderPublisher,
	log *slog.Logger,
	now func() time.Time,
) *Service {
	if notifier == nil {
		notifier = hooks.Nop{}
	}

	if publisher == nil {
		publisher = hooks.Nop{}
	}

	if now == nil {
		now = time.Now
	}

	return &Service{
		store:     store,
		uow:       uow.NewUoW(store),
		signer:    signer,
		notifier:  notifier,
		publisher: publisher,
		log:       log,
		now:       now,
	}
}

var readCommitted = &repository.TxOptions{IsoLevel: repository.ReadCommitted}

// Settle applies a gateway outcome to a pending order. Repeating the
// outcome an order already has is a no-op; a different outcome is
// rejected. A failed payment gives the seats back and voids the tickets in
// the same transaction.
//
// Returns:
//   - *domain.Order: the order after settlement.
//   - error: settlement.ErrOrderNotFound if the order does not exist.
//   - error: settlement.ErrSettlementConflict if the order holds another outcome.
func (s *Service) Settle(ctx context.Context, orderID uuid.UUID, outcome domain.SettlementOutcome) (*domain.Order, error) {
	const op = "service.settlement.Settle"

	target := outcome.OrderStatus()

	var out domain.Order

	err := s.uow.DoWithOpts(ctx, readCommitted, func(
		ctx context.Context,
		tx repository.Repos,
		after func(uow.AfterCommit),
	) error {
		o, err := getOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if o.Status == target {
			out = *o
			return nil
		}

		if o.Status != domain.OrderPending {
			return s.conflict(o, target)
		}

		now := s.now()
		changed, err := tx.Orders().TransitionStatus(ctx, orderID,
			[]domain.OrderStatus{domain.OrderPending}, target, now)
		if err != nil {
			return err
		}
		if !changed {
			// Lost a race with another writer; judge against what it wrote.
			o, err = getOrder(ctx, tx, orderID)
			if err != nil {
				return err
			}
			if o.Status == target {
				out = *o
				return nil
			}
			return s.conflict(o, target)
		}

		if target == domain.OrderFailed {
			if err := restock(ctx, tx, *o); err != nil {
				return err
			}
		}

		o.Status = target
		o.UpdatedAt = now
		o.SettledAt = &now
		out = *o

		after(func(ctx context.Context) {
			if target == domain.OrderFailed {
				s.notifier.SessionChanged(ctx, out.SessionID)
			}
			s.publish(ctx, domain.NewOrderEvent(domain.OrderEventSettled, out, nil, now))
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// Cancel is an administrative correction: a pending or paid order becomes
// cancelled, its tickets are voided and its seats released. Cancelling a
// cancelled order is a no-op.
//
// Returns:
//   - error: settlement.ErrOrderNotFound if the order does not exist.
//   - error: settlement.ErrNotCancellable if the order failed.
func (s *Service) Cancel(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	const op = "service.settlement.Cancel"

	cancellable := []domain.OrderStatus{domain.OrderPending, domain.OrderPaid}

	var out domain.Order

	err := s.uow.DoWithOpts(ctx, readCommitted, func(
		ctx context.Context,
		tx repository.Repos,
		after func(uow.AfterCommit),
	) error {
		o, err := getOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}

		now := s.now()
		changed, err := tx.Orders().TransitionStatus(ctx, orderID, cancellable, domain.OrderCancelled, now)
		if err != nil {
			return err
		}
		if !changed {
			o, err = getOrder(ctx, tx, orderID)
			if err != nil {
				return err
			}
			if o.Status == domain.OrderCancelled {
				out = *o
				return nil
			}
			return fmt.Errorf("%w: status %s", ErrNotCancellable, o.Status)
		}

		if err := restock(ctx, tx, *o); err != nil {
			return err
		}

		o.Status = domain.OrderCancelled
		o.UpdatedAt = now
		out = *o

		after(func(ctx context.Context) {
			s.notifier.SessionChanged(ctx, out.SessionID)
			s.publish(ctx, domain.NewOrderEvent(domain.OrderEventCancelled, out, nil, now))
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("order cancelled", "order_id", orderID, "session_id", out.SessionID)

	return &out, nil
}

// HandleCallback verifies a gateway callback and settles the referenced
// order. Only RtnCode "1" is a successful payment.
//
// Returns:
//   - string: the acknowledgement the gateway expects.
//   - error: settlement.ErrInvalidSignature if the digest does not match.
func (s *Service) HandleCallback(ctx context.Context, fields map[string]string) (string, error) {
	const op = "service.settlement.HandleCallback"

	if !s.signer.Verify(fields) {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidSignature)
	}

	orderID, err := uuid.Parse(fields[FieldOrderRef])
	if err != nil {
		return "", fmt.Errorf("%s: %w: order reference %q", op, ErrInvalidCallback, fields[FieldOrderRef])
	}

	outcome := domain.OutcomeFailed
	if fields[FieldRtnCode] == "1" {
		outcome = domain.OutcomePaid
	}

	if _, err := s.Settle(ctx, orderID, outcome); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return AckOK, nil
}

func (s *Service) conflict(o *domain.Order, target domain.OrderStatus) error {
	s.log.Warn("conflicting settlement rejected",
		"order_id", o.ID,
		"status", o.Status,
		"outcome", target,
	)
	return fmt.Errorf("%w: order is %s, callback says %s", ErrSettlementConflict, o.Status, target)
}

func (s *Service) publish(ctx context.Context, ev domain.OrderEvent) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn("order event publish failed", "type", ev.Type, "order_id", ev.OrderID, "err", err)
	}
}

func getOrder(ctx context.Context, tx repository.Repos, id uuid.UUID) (*domain.Order, error) {
	o, err := tx.Orders().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

// restock voids the order's unused tickets and gives back exactly those
// seats. Seats behind tickets already used at the gate stay sold.
func restock(ctx context.Context, tx repository.Repos, o domain.Order) error {
	voided, err := tx.Tickets().VoidByOrder(ctx, o.ID)
	if err != nil {
		return err
	}
	if len(voided) == 0 {
		return nil
	}
	return tx.Inventory().Release(ctx, o.SessionID, voided)
}
