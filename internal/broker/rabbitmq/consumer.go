package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sportspass/ticketing/internal/broker"
	"github.com/sportspass/ticketing/internal/domain"
)

const (
	prefetch   = 50
	maxBackoff = 30 * time.Second
)

// Consumer feeds order events from the queue to a handler, reconnecting
// with exponential backoff until its context is cancelled.
type Consumer struct {
	url     string
	queue   string
	handler broker.Handler
	log     *slog.Logger
}

func NewConsumer(url string, handler broker.Handler, log *slog.Logger) *Consumer {
	return &Consumer{url: url, queue: QueueOrderEvents, handler: handler, log: log}
}

// Run blocks until ctx is done and then returns nil.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second

	for {
		err := c.consume(ctx)
		if ctx.Err() != nil {
			return nil
		}

		c.log.Warn("order consumer disconnected", "err", err, "retry_in", backoff)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}

		if backoff < maxBackoff {
			backoff *= 2
		}
	}
}

func (c *Consumer) consume(ctx context.Context) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(prefetch, 0, false); err != nil {
		c.log.Warn("order consumer qos failed", "err", err)
	}

	if err := declare(ch, c.queue); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	c.log.Info("order consumer started", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.deliver(ctx, d)
		}
	}
}

func (c *Consumer) deliver(ctx context.Context, d amqp.Delivery) {
	ev, err := decode(d.Body)
	if err != nil {
		c.log.Error("dropping malformed order event", "err", err)
		// Reject without requeue: a bad payload will never decode.
		_ = d.Nack(false, false)
		return
	}

	if err := c.handler(ctx, ev); err != nil {
		c.log.Error("order event handler failed", "type", ev.Type, "order_id", ev.OrderID, "err", err)
		_ = d.Nack(false, !d.Redelivered)
		return
	}

	_ = d.Ack(false)
}

func decode(body []byte) (domain.OrderEvent, error) {
	var ev domain.OrderEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.OrderID == uuid.Nil {
		return ev, errors.New("missing type or order id")
	}
	return ev, nil
}
