package httpgin

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/sportspass/ticketing/internal/service"
	"github.com/sportspass/ticketing/internal/service/catalog"
)

// @Summary  List categories
// @Tags     catalog
// @Success  200 {object} Envelope{data=[]domain.Category}
// @Router   /api/v1/categories [get]
func handleListCategories(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svcs.Catalog.ListCategories(c.Request.Context())
		if err != nil {
			respondErr(c, log, err)
			return
		}
		ok(c, http.StatusOK, emptyIfNil(list))
	}
}

// @Summary  Categories with the most events
// @Tags     catalog
// @Success  200 {object} Envelope{data=[]domain.Category}
// @Router   /api/v1/categories/hot [get]
func handleHotCategories(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svcs.Catalog.HotCategories(c.Request.Context())
		if err != nil {
			respondErr(c, log, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, emptyIfNil(list), "public, max-age=30", true)
	}
}

// @Summary  List tags
// @Tags     catalog
// @Success  200 {object} Envelope{data=[]domain.Tag}
// @Router   /api/v1/tags [get]
func handleListTags(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svcs.Catalog.ListTags(c.Request.Context())
		if err != nil {
			respondErr(c, log, err)
			return
		}
		ok(c, http.StatusOK, emptyIfNil(list))
	}
}

// @Summary  Create category
// @Tags     admin
// @Security BearerAuth
// @Param    req body NameRequest true "payload"
// @Success  201 {object} Envelope{data=domain.Category}
// @Failure  409 {object} ErrorResponse "name taken"
// @Router   /api/v1/admin/categories [post]
func handleCreateCategory(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req NameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		cat, err := svcs.Catalog.CreateCategory(c.Request.Context(), req.Name)
		if err != nil {
			respondErr(c, log, err)
			return
		}
		ok(c, http.StatusCreated, cat)
	}
}

// @Summary  Delete category
// @Tags     admin
// @Security BearerAuth
// @Param    id path string true "Category ID (uuid)"
// @Success  204
// @Failure  409 {object} ErrorResponse "category still has events"
// @Router   /api/v1/admin/categories/{id} [delete]
func handleDeleteCategory(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}
		respondErr(c, log, svcs.Catalog.DeleteCategory(c.Request.Context(), id))
	}
}

// @Summary  Create tag
// @Tags     admin
// @Security BearerAuth
// @Param    req body NameRequest true "payload"
// @Success  201 {object} Envelope{data=domain.Tag}
// @Router   /api/v1/admin/tags [post]
func handleCreateTag(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req NameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		tag, err := svcs.Catalog.CreateTag(c.Request.Context(), req.Name)
		if err != nil {
			respondErr(c, log, err)
			return
		}
		ok(c, http.StatusCreated, tag)
	}
}

// @Summary  Delete tag
// @Tags     admin
// @Security BearerAuth
// @Param    id path string true "Tag ID (uuid)"
// @Success  204
// @Router   /api/v1/admin/tags/{id} [delete]
func handleDeleteTag(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}
		respondErr(c, log, svcs.Catalog.DeleteTag(c.Request.Context(), id))
	}
}

// @Summary  List active events
// @Tags     events
// @Param    categoryId query string false "filter by category (uuid)"
// @Param    limit      query int    false "page size"
// @Param    offset     query int    false "offset"
// @Success  200 {object} Envelope{data=[]domain.Event}
// @Router   /api/v1/events [get]
func handleListEvents(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var category *uuid.UUID
		if raw := c.Query("categoryId"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				badRequest(c, "invalid categoryId")
				return
			}
			category = &id
		}

		limit, offset := page(c)
		list, err := svcs.Query.ListEvents(c.Request.Context(), category, limit, offset)
		if err != nil {
			respondErr(c, log, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, emptyIfNil(list), "public, max-age=15", true)
	}
}

// @Summary  Event with its sessions
// @Tags     events
// @Param    id path string true "Event ID (uuid)"
// @Success  200 {object} Envelope{data=query.EventDetail}
// @Failure  404 {object} ErrorResponse
// @Router   /api/v1/events/{id} [get]
func handleGetEvent(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}

		ev, err := svcs.Query.GetEventDetail(c.Request.Context(), id)
		if err != nil {
			respondErr(c, log, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, ev, "public, max-age=5", true)
	}
}

// @Summary  Session availability
// @Tags     events
// @Param    id path string true "Session ID (uuid)"
// @Success  200 {object} Envelope{data=domain.SessionView}
// @Failure  404 {object} ErrorResponse
// @Router   /api/v1/sessions/{id} [get]
func handleGetSession(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}

		v, err := svcs.Query.GetSession(c.Request.Context(), id)
		if err != nil {
			respondErr(c, log, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, v, "public, max-age=2", true)
	}
}

// @Summary  Create event with sessions
// @Tags     admin
// @Security BearerAuth
// @Param    req body CreateEventRequest true "payload"
// @Success  201 {object} Envelope{data=domain.Event}
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse "unknown category or tag"
// @Router   /api/v1/admin/events [post]
func handleCreateEvent(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		var in catalog.CreateEventInput
		if err := copier.Copy(&in, &req); err != nil {
			badRequest(c, "invalid event")
			return
		}
		in.SponsorID = identity(c).UserID

		ev, err := svcs.Catalog.CreateEvent(c.Request.Context(), in)
		if err != nil {
			respondErr(c, log, err)
			return
		}
		ok(c, http.StatusCreated, ev)
	}
}

// @Summary  Soft-delete event
// @Tags     admin
// @Security BearerAuth
// @Param    id path string true "Event ID (uuid)"
// @Success  204
// @Router   /api/v1/admin/events/{id} [delete]
func handleDeleteEvent(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}
		respondErr(c, log, svcs.Catalog.DeleteEvent(c.Request.Context(), id))
	}
}

// @Summary  Add a session to an event
// @Tags     admin
// @Security BearerAuth
// @Param    id  path string         true "Event ID (uuid)"
// @Param    req body SessionRequest true "payload"
// @Success  201 {object} Envelope{data=domain.Session}
// @Router   /api/v1/admin/events/{id}/sessions [post]
func handleCreateSession(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}

		var req SessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		var in catalog.SessionInput
		if err := copier.Copy(&in, &req); err != nil {
			badRequest(c, "invalid session")
			return
		}

		s, err := svcs.Catalog.CreateSession(c.Request.Context(), eventID, in)
		if err != nil {
			respondErr(c, log, err)
			return
		}
		ok(c, http.StatusCreated, s)
	}
}

// @Summary  Change capacity and price of an area
// @Tags     admin
// @Security BearerAuth
// @Param    id   path string            true "Session ID (uuid)"
// @Param    area path string            true "Area name"
// @Param    req  body UpdateAreaRequest true "payload"
// @Success  200 {object} Envelope{data=domain.Area}
// @Failure  409 {object} ErrorResponse "capacity below sold seats"
// @Router   /api/v1/admin/sessions/{id}/areas/{area} [patch]
func handleUpdateArea(svcs *service.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, valid := parseUUIDParam(c, "id")
		if !valid {
			return
		}

		var req UpdateAreaRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		a, err := svcs.Catalog.UpdateArea(c.Request.Context(), sessionID, c.Param("area"), *req.Capacity, *req.PriceCents)
		if err != nil {
			respondErr(c, log, err)
			return
		}
		ok(c, http.StatusOK, a)
	}
}
