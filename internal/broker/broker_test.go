package broker_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportspass/ticketing/internal/broker"
	"github.com/sportspass/ticketing/internal/domain"
)

func TestInlineSurvivesCancelledCaller(t *testing.T) {
	got := make(chan domain.OrderEvent, 1)
	in := broker.NewInline(func(ctx context.Context, ev domain.OrderEvent) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		got <- ev
		return nil
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ev := domain.OrderEvent{Type: domain.OrderEventPlaced, OrderID: uuid.New()}
	require.NoError(t, in.Publish(ctx, ev))

	select {
	case delivered := <-got:
		assert.Equal(t, ev.OrderID, delivered.OrderID)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}
