package httpgin

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sportspass/ticketing/internal/auth"
	"github.com/sportspass/ticketing/internal/domain"
	"github.com/sportspass/ticketing/internal/service/catalog"
	"github.com/sportspass/ticketing/internal/service/notifications"
	"github.com/sportspass/ticketing/internal/service/orders"
	"github.com/sportspass/ticketing/internal/service/query"
	"github.com/sportspass/ticketing/internal/service/reservation"
	"github.com/sportspass/ticketing/internal/service/settlement"
	"github.com/sportspass/ticketing/internal/service/tickets"
	"github.com/sportspass/ticketing/internal/service/users"
)

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Status: "success", Data: data})
}

func fail(c *gin.Context, status int, msg string, details any) {
	c.AbortWithStatusJSON(status, ErrorResponse{Status: "error", Message: msg, Details: details})
}

func badRequest(c *gin.Context, msg string) {
	fail(c, http.StatusBadRequest, msg, nil)
}

type statusRule struct {
	status int
	errs   []error
}

// Sentinel errors by response status. Message text comes from the
// sentinel itself so clients never see wrapped operation names.
var rules = []statusRule{
	{http.StatusNotFound, []error{
		orders.ErrSessionNotFound,
		orders.ErrOrderNotFound,
		settlement.ErrOrderNotFound,
		reservation.ErrSessionNotFound,
		catalog.ErrCategoryNotFound,
		catalog.ErrTagNotFound,
		catalog.ErrEventNotFound,
		catalog.ErrSessionNotFound,
		catalog.ErrAreaNotFound,
		query.ErrEventNotFound,
		query.ErrSessionNotFound,
		tickets.ErrTicketNotFound,
		users.ErrUserNotFound,
		notifications.ErrNotificationNotFound,
	}},
	{http.StatusConflict, []error{
		orders.ErrSalesClosed,
		orders.ErrPriceMismatch,
		settlement.ErrSettlementConflict,
		settlement.ErrNotCancellable,
		catalog.ErrCategoryExists,
		catalog.ErrCategoryInUse,
		catalog.ErrTagExists,
		catalog.ErrTagInUse,
		domain.ErrCapacityBelowSold,
		domain.ErrInvalidTicketTransition,
		tickets.ErrOrderNotPaid,
		users.ErrUserExists,
	}},
	{http.StatusBadRequest, []error{
		orders.ErrInvalidCart,
		orders.ErrAreaNotFound,
		orders.ErrUnknownTicketType,
		orders.ErrEventMismatch,
		reservation.ErrAreaNotFound,
		reservation.ErrInvalidQuantity,
		catalog.ErrInvalidInput,
		domain.ErrInvalidArea,
		domain.ErrInvalidWindow,
		users.ErrInvalidInput,
		tickets.ErrInvalidStatus,
		settlement.ErrInvalidCallback,
	}},
	{http.StatusUnauthorized, []error{
		users.ErrInvalidCredentials,
		settlement.ErrInvalidSignature,
		auth.ErrInvalidToken,
	}},
}

func respondErr(c *gin.Context, log *slog.Logger, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var persist *orders.PersistenceError
	if errors.As(err, &persist) {
		log.Error("order persistence failed", "err", err, "compensated", persist.Compensated)
		fail(c, http.StatusInternalServerError, persist.Error(), gin.H{"seatsReleased": persist.Compensated})
		return
	}

	var short *reservation.InsufficientInventoryError
	if errors.As(err, &short) {
		fail(c, http.StatusConflict, "insufficient inventory", short)
		return
	}

	var limited *orders.RateLimitedError
	if errors.As(err, &limited) {
		secs := int(math.Ceil(limited.RetryAfter.Seconds()))
		c.Header("Retry-After", strconv.Itoa(max(secs, 1)))
		fail(c, http.StatusTooManyRequests, orders.ErrRateLimited.Error(), nil)
		return
	}

	for _, r := range rules {
		for _, target := range r.errs {
			if errors.Is(err, target) {
				fail(c, r.status, target.Error(), nil)
				return
			}
		}
	}

	_ = c.Error(err)
	log.Error("request failed", "path", c.FullPath(), "err", err)
	fail(c, http.StatusInternalServerError, "internal error", nil)
}
