package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sportspass/ticketing/internal/domain"
	"github.com/sportspass/ticketing/internal/mail"
	"github.com/sportspass/ticketing/internal/repository"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Relay pushes a serialized notification to the user's live stream.
type Relay interface {
	PublishUserNotification(ctx context.Context, userID uuid.UUID, payload []byte) error
}

type Config struct {
	// OrderURL is formatted with the order id to build links in
	// notifications and emails.
	OrderURL string
	Now      func() time.Time
}

type Service struct {
	store  repository.Store
	relay  Relay
	mailer mail.Sender
	log    *slog.Logger
	cfg    Config
}

func New(store repository.Store, relay Relay, mailer mail.Sender, log *slog.Logger, cfg Config) *Service {
	if mailer == nil {
		mailer = mail.Discard{}
	}

	if cfg.OrderURL == "" {
		cfg.OrderURL = "/orders/%s"
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		store:  store,
		relay:  relay,
		mailer: mailer,
		log:    log,
		cfg:    cfg,
	}
}

// Handle turns an order event into a stored notification, then relays and
// mails it. Only storing is required to succeed; relay and mail failures
// are logged.
func (s *Service) Handle(ctx context.Context, ev domain.OrderEvent) error {
	const op = "service.notifications.Handle"

	link := fmt.Sprintf(s.cfg.OrderURL, ev.OrderID)
	n := domain.Notification{
		ID:        uuid.New(),
		UserID:    ev.BuyerID,
		Title:     title(ev),
		URL:       link,
		CreatedAt: s.cfg.Now().UTC(),
	}

	if err := s.store.Notifications().Create(ctx, &n); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.relay != nil {
		payload, _ := json.Marshal(n)
		if err := s.relay.PublishUserNotification(ctx, n.UserID, payload); err != nil {
			s.log.Warn("notification relay failed", "user_id", n.UserID, "err", err)
		}
	}

	s.sendMail(ctx, ev, link)

	return nil
}

func (s *Service) sendMail(ctx context.Context, ev domain.OrderEvent, link string) {
	u, err := s.store.Users().Get(ctx, ev.BuyerID)
	if err != nil {
		s.log.Warn("order mail skipped", "order_id", ev.OrderID, "err", err)
		return
	}

	html, err := mail.RenderOrder(mail.OrderMail{
		Account: u.Account,
		OrderID: ev.OrderID.String(),
		Status:  string(ev.Status),
		Total:   formatCents(ev.TotalCents),
		Seats:   ev.Seats,
		Link:    link,
	})
	if err != nil {
		s.log.Error("order mail render failed", "order_id", ev.OrderID, "err", err)
		return
	}

	if err := s.mailer.Send(ctx, u.Email, title(ev), html); err != nil {
		s.log.Warn("order mail failed", "order_id", ev.OrderID, "err", err)
	}
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Notification, error) {
	const op = "service.notifications.List"

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	out, err := s.store.Notifications().ListByUser(ctx, userID, limit, max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	const op = "service.notifications.MarkRead"

	if err := s.store.Notifications().MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotificationNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func title(ev domain.OrderEvent) string {
	switch ev.Type {
	case domain.OrderEventPlaced:
		return "Order received, awaiting payment"
	case domain.OrderEventSettled:
		if ev.Status == domain.OrderPaid {
			return "Payment confirmed, your tickets are ready"
		}
		return "Payment failed, your seats were released"
	case domain.OrderEventCancelled:
		return "Your order was cancelled"
	default:
		return "Order update"
	}
}

func formatCents(c int64) string {
	return fmt.Sprintf("%d.%02d", c/100, c%100)
}
