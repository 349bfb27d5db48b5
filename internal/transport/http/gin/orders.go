package httpgin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	redisrepo "github.com/sportspass/ticketing/internal/repository/redis"
	"github.com/sportspass/ticketing/internal/service"
	"github.com/sportspass/ticketing/internal/service/orders"
)

const idemLockTTL = 60 * time.Second

// @Summary  Place an order (idempotent)
// @Tags     orders
// @Security BearerAuth
// @Param    Idempotency-Key header string false "replays the first response for the same key"
// @Param    req body  PlaceOrderRequest true "payload"
// @Success  201 {object} Envelope{data=domain.OrderWithTickets}
// @Failure  400 {object} ErrorResponse "invalid cart"
// @Failure  401 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse "session not found"
// @Failure  409 {object} ErrorResponse "sales closed / insufficient inventory / key in progress"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Failure  500 {object} ErrorResponse "persistence failure"
// @Router   /api/v1/orders [post]
func handlePlaceOrder(svcs *service.Services, idem *redisrepo.IdempotencyStore, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		in := orders.PlaceOrderRequest{SessionID: uuid.MustParse(req.SessionID)}
		if req.EventID != "" {
			id := uuid.MustParse(req.EventID)
			in.EventID = &id
		}
		if err := copier.Copy(&in.Cart.Items, &req.Cart); err != nil {
			badRequest(c, "invalid cart")
			return
		}

		buyer := identity(c).UserID
		ctx := c.Request.Context()

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemOrder(buyer, idemKey)

			if replayIdempotent(c, idem, idemStorageKey, idemKey) {
				return
			}

			locked, err := idem.AcquireLock(ctx, idemStorageKey, idemLockTTL)
			if err != nil {
				respondErr(c, log, err)
				return
			}
			if !locked {
				if replayIdempotent(c, idem, idemStorageKey, idemKey) {
					return
				}
				c.Header("Retry-After", "1")
				fail(c, http.StatusConflict, "idempotency key in progress", nil)
				return
			}
		}

		out, err := svcs.Orders.PlaceOrder(ctx, buyer, in)
		if err != nil {
			if idemStorageKey != "" {
				_ = idem.Release(context.WithoutCancel(ctx), idemStorageKey)
			}
			respondErr(c, log, err)
			return
		}

		body, err := json.Marshal(Envelope{Status: "success", Data: out})
		if err != nil {
			respondErr(c, log, err)
			return
		}

		if idemStorageKey != "" {
			if err := idem.SaveResult(context.WithoutCancel(ctx), idemStorageKey, string(body)); err != nil {
				log.Warn("idempotency result not saved", "key", idemKey, "err", err)
			}
			c.Header("Idempotency-Key", idemKey)
		}

		c.Data(http.StatusCreated, "application/json; charset=utf-8", body)
	}
}

func replayIdempotent(c *gin.Context, idem *redisrepo.IdempotencyStore, storageKey, idemKey string) bool {
	payload, found, _ := idem.GetResult(c.Request.Context(), storageKey)
	if !found {
		return false
	}

	c.Header("Idempotency-Key", idemKey)
	c.Header("Idempotent-Replayed", "true")
	c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))

	return true
}

// @Summary  Get own order with tickets
// @Tags     orders
// @Security BearerAuth
// @Param    id  path  string  true  "Order ID (uuid)"
// @Success  200 {object} Envelope{data=domain.OrderWithTickets}
// @Failure  404 {object} ErrorResponse
// @Router   /api/v1/orders/{id} [get]
func handleGetOrder(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}

		o, err := svcs.Orders.GetOrder(c.Request.Context(), identity(c).UserID, orderID)
		if err != nil {
			respondErr(c, log, err)
			return
		}

		ok(c, http.StatusOK, o)
	}
}

// @Summary  List own orders
// @Tags     users
// @Security BearerAuth
// @Param    limit  query int false "page size"
// @Param    offset query int false "offset"
// @Success  200 {object} Envelope{data=[]domain.Order}
// @Router   /api/v1/users/me/orders [get]
func handleListMyOrders(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := page(c)

		list, err := svcs.Orders.ListUserOrders(c.Request.Context(), identity(c).UserID, limit, offset)
		if err != nil {
			respondErr(c, log, err)
			return
		}

		ok(c, http.StatusOK, emptyIfNil(list))
	}
}

// @Summary  Cancel an order
// @Tags     admin
// @Security BearerAuth
// @Param    id  path  string  true  "Order ID (uuid)"
// @Success  200 {object} Envelope{data=domain.Order}
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "failed orders cannot be cancelled"
// @Router   /api/v1/admin/orders/{id}/cancel [post]
func handleCancelOrder(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}

		o, err := svcs.Settlement.Cancel(c.Request.Context(), orderID)
		if err != nil {
			respondErr(c, log, err)
			return
		}

		ok(c, http.StatusOK, o)
	}
}

// @Summary  Payment gateway callback
// @Tags     payments
// @Accept   x-www-form-urlencoded
// @Produce  plain
// @Success  200 {string} string "1|OK"
// @Failure  401 {object} ErrorResponse "bad signature"
// @Failure  404 {object} ErrorResponse "unknown order"
// @Failure  409 {object} ErrorResponse "conflicting outcome"
// @Router   /api/v1/payments/ecpay/return [post]
func handlePaymentCallback(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := c.Request.ParseForm(); err != nil {
			badRequest(c, "invalid form body")
			return
		}

		fields := make(map[string]string, len(c.Request.PostForm))
		for k, v := range c.Request.PostForm {
			if len(v) > 0 {
				fields[k] = v[0]
			}
		}

		ack, err := svcs.Settlement.HandleCallback(c.Request.Context(), fields)
		if err != nil {
			respondErr(c, log, err)
			return
		}

		c.String(http.StatusOK, ack)
	}
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
