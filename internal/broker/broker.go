// Package broker carries order events from the services that commit them to
// the handlers that react to them.
package broker

import (
	"context"
	"log/slog"

	"github.com/sportspass/ticketing/internal/domain"
)

type Handler func(ctx context.Context, ev domain.OrderEvent) error

// Inline delivers events to a handler in-process. It stands in for the
// message broker when none is configured, so notifications still work in a
// single-instance deployment.
type Inline struct {
	handler Handler
	log     *slog.Logger
}

func NewInline(handler Handler, log *slog.Logger) *Inline {
	return &Inline{handler: handler, log: log}
}

// Publish runs the handler on a context detached from the caller so that a
// finished request does not cut delivery short.
func (i *Inline) Publish(ctx context.Context, ev domain.OrderEvent) error {
	ctx = context.WithoutCancel(ctx)

	go func() {
		if err := i.handler(ctx, ev); err != nil {
			i.log.Warn("inline event handler failed", "type", ev.Type, "order_id", ev.OrderID, "err", err)
		}
	}()

	return nil
}
