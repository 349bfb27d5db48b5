package redisrepo

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PubSub fans session and user updates out to every API instance.
type PubSub struct {
	rdb *redis.Client
}

func NewPubSub(rdb *redis.Client) *PubSub {
	return &PubSub{rdb: rdb}
}

// SessionChangedMsg tells subscribers to refetch a session's availability.
type SessionChangedMsg struct {
	Type      string    `json:"type"`
	SessionID uuid.UUID `json:"session_id"`
	TsUnix    int64     `json:"ts_unix"`
}

func (p *PubSub) PublishSessionChanged(ctx context.Context, sessionID uuid.UUID) error {
	b, _ := json.Marshal(SessionChangedMsg{
		Type:      "session_changed",
		SessionID: sessionID,
		TsUnix:    time.Now().Unix(),
	})

	return p.rdb.Publish(ctx, ChannelSessionChanged(sessionID), b).Err()
}

// PublishUserNotification relays payload (already JSON) to the user's
// channel.
func (p *PubSub) PublishUserNotification(ctx context.Context, userID uuid.UUID, payload []byte) error {
	return p.rdb.Publish(ctx, ChannelUserNotifications(userID), payload).Err()
}

// Subscribe delivers raw payloads from channel to handler until ctx is done
// or the subscription closes.
func (p *PubSub) Subscribe(ctx context.Context, channel string, handler func(ctx context.Context, payload []byte)) error {
	sub := p.rdb.Subscribe(ctx, channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			handler(ctx, []byte(m.Payload))
		}
	}
}

// Invalidator reacts to committed inventory changes by dropping cached
// read models and announcing the change. Either half may be nil.
type Invalidator struct {
	cache  *Cache
	pubsub *PubSub
	log    *slog.Logger
}

func NewInvalidator(cache *Cache, pubsub *PubSub, log *slog.Logger) *Invalidator {
	return &Invalidator{cache: cache, pubsub: pubsub, log: log}
}

func (i *Invalidator) SessionChanged(ctx context.Context, sessionID uuid.UUID) {
	if err := i.cache.InvalidateSession(ctx, sessionID); err != nil {
		i.log.Warn("cache invalidation failed", "session_id", sessionID, "err", err)
	}

	if i.pubsub == nil {
		return
	}
	if err := i.pubsub.PublishSessionChanged(ctx, sessionID); err != nil {
		i.log.Warn("session change publish failed", "session_id", sessionID, "err", err)
	}
}
