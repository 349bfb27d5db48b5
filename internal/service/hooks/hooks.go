// Package hooks declares the side effects services trigger after a commit.
// Implementations are best effort and never affect the committed outcome.
package hooks

import (
	"context"

	"github.com/google/uuid"
	"github.com/sportspass/ticketing/internal/domain"
)

// SessionNotifier is told when a session's inventory changed.
type SessionNotifier interface {
	SessionChanged(ctx context.Context, sessionID uuid.UUID)
}

// OrderPublisher hands order lifecycle events to the notification pipeline.
type OrderPublisher interface {
	Publish(ctx context.Context, ev domain.OrderEvent) error
}

type Nop struct{}

func (Nop) SessionChanged(context.Context, uuid.UUID) {}

func (Nop) Publish(context.Context, domain.OrderEvent) error { return nil }
