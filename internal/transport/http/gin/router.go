package httpgin

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sportspass/ticketing/internal/auth"
	redisrepo "github.com/sportspass/ticketing/internal/repository/redis"
	"github.com/sportspass/ticketing/internal/service"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterDeps holds what the handlers need. Idem and PubSub are optional:
// without them Idempotency-Key is ignored and the stream endpoints answer
// 503.
type RouterDeps struct {
	Services    *service.Services
	Tokens      *auth.Issuer
	Idem        *redisrepo.IdempotencyStore
	PubSub      *redisrepo.PubSub
	Logger      *slog.Logger
	CORSOrigins []string
}

func NewRouter(d RouterDeps, middlewares ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggingMiddleware(d.Logger), CORS(d.CORSOrigins))
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	svcs, log := d.Services, d.Logger

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	health := func(c *gin.Context) {
		ok(c, http.StatusOK, gin.H{"status": "ok"})
	}
	r.GET("/healthz", health)

	v1 := r.Group("/api/v1")
	v1.GET("/healthz", health)

	// Public
	v1.POST("/users/register", handleRegister(svcs, log))
	v1.POST("/users/login", handleLogin(svcs, log))

	v1.GET("/categories", handleListCategories(svcs, log))
	v1.GET("/categories/hot", handleHotCategories(svcs, log))
	v1.GET("/tags", handleListTags(svcs, log))

	v1.GET("/events", handleListEvents(svcs, log))
	v1.GET("/events/:id", handleGetEvent(svcs, log))
	v1.GET("/sessions/:id", handleGetSession(svcs, log))
	v1.GET("/sessions/:id/stream", handleSessionStream(svcs, d.PubSub, log))

	v1.POST("/payments/ecpay/return", handlePaymentCallback(svcs, log))

	// Authenticated
	authed := v1.Group("", Auth(d.Tokens))
	{
		authed.GET("/users/me", handleMe(svcs, log))
		authed.GET("/users/me/orders", handleListMyOrders(svcs, log))
		authed.GET("/users/me/notifications", handleListNotifications(svcs, log))
		authed.PATCH("/users/me/notifications/:id/read", handleMarkNotificationRead(svcs, log))
		authed.GET("/users/me/stream", handleUserStream(d.PubSub, log))

		authed.POST("/orders", handlePlaceOrder(svcs, d.Idem, log))
		authed.GET("/orders/:id", handleGetOrder(svcs, log))

		authed.GET("/tickets/:id", handleGetTicket(svcs, log))
		authed.GET("/tickets/:id/qr", handleTicketQR(svcs, log))
		authed.PATCH("/tickets/:id/status", RequireAdmin(), handleUpdateTicketStatus(svcs, log))
	}

	// Admin
	admin := authed.Group("/admin", RequireAdmin())
	{
		admin.POST("/categories", handleCreateCategory(svcs, log))
		admin.DELETE("/categories/:id", handleDeleteCategory(svcs, log))
		admin.POST("/tags", handleCreateTag(svcs, log))
		admin.DELETE("/tags/:id", handleDeleteTag(svcs, log))

		admin.POST("/events", handleCreateEvent(svcs, log))
		admin.DELETE("/events/:id", handleDeleteEvent(svcs, log))
		admin.POST("/events/:id/sessions", handleCreateSession(svcs, log))
		admin.PATCH("/sessions/:id/areas/:area", handleUpdateArea(svcs, log))

		admin.POST("/orders/:id/cancel", handleCancelOrder(svcs, log))
	}

	return r
}

// --- Helpers ---

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	v, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return v, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func page(c *gin.Context) (limit, offset int) {
	return parseIntDefault(c.Query("limit"), 20), parseIntDefault(c.Query("offset"), 0)
}
