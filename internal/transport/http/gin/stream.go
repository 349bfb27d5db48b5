package httpgin

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	redisrepo "github.com/sportspass/ticketing/internal/repository/redis"
	"github.com/sportspass/ticketing/internal/service"
)

const streamHeartbeat = 25 * time.Second

// relay subscribes to channel and hands every message to emit as an SSE
// frame until the client goes away. emit returns false to end the stream.
func relay(
	c *gin.Context,
	pubsub *redisrepo.PubSub,
	channel string,
	log *slog.Logger,
	emit func(c *gin.Context, w io.Writer, payload []byte) bool,
) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	msgs := make(chan []byte, 16)
	go func() {
		err := pubsub.Subscribe(ctx, channel, func(_ context.Context, payload []byte) {
			select {
			case msgs <- payload:
			default:
				// Slow client; the next message carries fresh state anyway.
			}
		})
		if err != nil && ctx.Err() == nil {
			log.Warn("stream subscription ended", "channel", channel, "err", err)
		}
		cancel()
	}()

	sseHeaders(c)

	ping := time.NewTicker(streamHeartbeat)
	defer ping.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-ping.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		case payload := <-msgs:
			return emit(c, w, payload)
		}
	})
}

func sseHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
}

// @Summary  Live session availability (SSE)
// @Tags     events
// @Produce  text/event-stream
// @Param    id path string true "Session ID (uuid)"
// @Success  200 {object} domain.SessionView "one 'session' event per change"
// @Failure  503 {object} ErrorResponse "streaming unavailable"
// @Router   /api/v1/sessions/{id}/stream [get]
func handleSessionStream(svcs *service.Services, pubsub *redisrepo.PubSub, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if pubsub == nil {
			fail(c, http.StatusServiceUnavailable, "streaming unavailable", nil)
			return
		}

		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}

		view, err := svcs.Query.GetSession(c.Request.Context(), id)
		if err != nil {
			respondErr(c, log, err)
			return
		}

		sseHeaders(c)
		c.SSEvent("session", view)
		c.Writer.Flush()

		relay(c, pubsub, redisrepo.ChannelSessionChanged(id), log, func(c *gin.Context, _ io.Writer, _ []byte) bool {
			view, err := svcs.Query.GetSession(c.Request.Context(), id)
			if err != nil {
				log.Warn("session refetch failed", "session_id", id, "err", err)
				return false
			}
			c.SSEvent("session", view)
			return true
		})
	}
}

// @Summary  Live notifications for the current user (SSE)
// @Tags     users
// @Security BearerAuth
// @Produce  text/event-stream
// @Success  200 {object} domain.Notification "one 'notification' event each"
// @Failure  503 {object} ErrorResponse "streaming unavailable"
// @Router   /api/v1/users/me/stream [get]
func handleUserStream(pubsub *redisrepo.PubSub, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if pubsub == nil {
			fail(c, http.StatusServiceUnavailable, "streaming unavailable", nil)
			return
		}

		userID := identity(c).UserID

		relay(c, pubsub, redisrepo.ChannelUserNotifications(userID), log, func(c *gin.Context, _ io.Writer, payload []byte) bool {
			c.SSEvent("notification", string(payload))
			return true
		})
	}
}
