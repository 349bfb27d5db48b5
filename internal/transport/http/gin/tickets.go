package httpgin

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sportspass/ticketing/internal/service"
	"github.com/sportspass/ticketing/internal/service/tickets"
)

func viewer(c *gin.Context) tickets.Viewer {
	id := identity(c)
	return tickets.Viewer{UserID: id.UserID, Admin: id.IsAdmin()}
}

// @Summary  Get a ticket
// @Tags     tickets
// @Security BearerAuth
// @Param    id path string true "Ticket ID (uuid)"
// @Success  200 {object} Envelope{data=domain.Ticket}
// @Failure  404 {object} ErrorResponse
// @Router   /api/v1/tickets/{id} [get]
func handleGetTicket(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}

		t, err := svcs.Tickets.Get(c.Request.Context(), viewer(c), id)
		if err != nil {
			respondErr(c, log, err)
			return
		}
		ok(c, http.StatusOK, t)
	}
}

// @Summary  Ticket QR code
// @Tags     tickets
// @Security BearerAuth
// @Produce  png
// @Param    id path string true "Ticket ID (uuid)"
// @Success  200 {file} binary
// @Failure  404 {object} ErrorResponse
// @Router   /api/v1/tickets/{id}/qr [get]
func handleTicketQR(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}

		png, err := svcs.Tickets.QR(c.Request.Context(), viewer(c), id)
		if err != nil {
			respondErr(c, log, err)
			return
		}

		c.Header("Cache-Control", "private, max-age=300")
		c.Data(http.StatusOK, "image/png", png)
	}
}

// @Summary  Check in or void a ticket
// @Tags     admin
// @Security BearerAuth
// @Param    id  path string              true "Ticket ID (uuid)"
// @Param    req body TicketStatusRequest true "payload"
// @Success  200 {object} Envelope{data=domain.Ticket}
// @Failure  409 {object} ErrorResponse "ticket already used or voided"
// @Router   /api/v1/tickets/{id}/status [patch]
func handleUpdateTicketStatus(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}

		var req TicketStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		t, err := svcs.Tickets.UpdateStatus(c.Request.Context(), id, req.Status)
		if err != nil {
			respondErr(c, log, err)
			return
		}
		ok(c, http.StatusOK, t)
	}
}
