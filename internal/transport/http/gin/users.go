package httpgin

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/sportspass/ticketing/internal/service"
	"github.com/sportspass/ticketing/internal/service/users"
)

func authResponse(s *users.Session) AuthResponse {
	out := AuthResponse{Token: s.Token, ExpiresAt: s.ExpiresAt}
	_ = copier.Copy(&out.User, &s.User)
	return out
}

// @Summary  Register an account
// @Tags     users
// @Param    req body RegisterRequest true "payload"
// @Success  201 {object} Envelope{data=AuthResponse}
// @Failure  409 {object} ErrorResponse "account or email taken"
// @Router   /api/v1/users/register [post]
func handleRegister(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		var in users.RegisterInput
		_ = copier.Copy(&in, &req)

		s, err := svcs.Users.Register(c.Request.Context(), in)
		if err != nil {
			respondErr(c, log, err)
			return
		}
		ok(c, http.StatusCreated, authResponse(s))
	}
}

// @Summary  Log in
// @Tags     users
// @Param    req body LoginRequest true "payload"
// @Success  200 {object} Envelope{data=AuthResponse}
// @Failure  401 {object} ErrorResponse
// @Router   /api/v1/users/login [post]
func handleLogin(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		s, err := svcs.Users.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondErr(c, log, err)
			return
		}
		ok(c, http.StatusOK, authResponse(s))
	}
}

// @Summary  Current user
// @Tags     users
// @Security BearerAuth
// @Success  200 {object} Envelope{data=UserResponse}
// @Router   /api/v1/users/me [get]
func handleMe(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svcs.Users.Me(c.Request.Context(), identity(c).UserID)
		if err != nil {
			respondErr(c, log, err)
			return
		}

		var out UserResponse
		_ = copier.Copy(&out, u)
		ok(c, http.StatusOK, out)
	}
}

// @Summary  Own notifications, newest first
// @Tags     users
// @Security BearerAuth
// @Param    limit  query int false "page size"
// @Param    offset query int false "offset"
// @Success  200 {object} Envelope{data=[]domain.Notification}
// @Router   /api/v1/users/me/notifications [get]
func handleListNotifications(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := page(c)

		list, err := svcs.Notifications.List(c.Request.Context(), identity(c).UserID, limit, offset)
		if err != nil {
			respondErr(c, log, err)
			return
		}
		ok(c, http.StatusOK, emptyIfNil(list))
	}
}

// @Summary  Mark a notification read
// @Tags     users
// @Security BearerAuth
// @Param    id path string true "Notification ID (uuid)"
// @Success  204
// @Failure  404 {object} ErrorResponse
// @Router   /api/v1/users/me/notifications/{id}/read [patch]
func handleMarkNotificationRead(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}
		respondErr(c, log, svcs.Notifications.MarkRead(c.Request.Context(), identity(c).UserID, id))
	}
}
