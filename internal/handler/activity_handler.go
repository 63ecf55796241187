package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rugby-club-api/internal/calendar"
	"github.com/noah-isme/rugby-club-api/internal/middleware"
	"github.com/noah-isme/rugby-club-api/internal/models"
	"github.com/noah-isme/rugby-club-api/internal/service"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
	"github.com/noah-isme/rugby-club-api/pkg/response"
)

type activityService interface {
	Location() *time.Location
	List(ctx context.Context, req service.ActivityListRequest) ([]models.Activity, *models.Pagination, error)
	Get(ctx context.Context, id string, viewer models.Viewer) (*calendar.ActivityDetail, error)
	CountdownTarget(ctx context.Context, id string) (time.Time, error)
	Calendar(ctx context.Context, year int, month time.Month, viewer models.Viewer) (*service.CalendarView, bool, error)
	Create(ctx context.Context, req models.UpsertActivityRequest, viewer models.Viewer) (*models.Activity, error)
	Update(ctx context.Context, id string, req models.UpsertActivityRequest) (*models.Activity, error)
	Delete(ctx context.Context, id string) error
	Register(ctx context.Context, id string, req models.RegisterParticipantRequest, viewer models.Viewer) (*models.ActivityParticipant, error)
	Participants(ctx context.Context, id string) ([]models.ActivityParticipant, error)
}

// ActivityHandler exposes activity listings, the month calendar and registrations.
type ActivityHandler struct {
	service activityService
	streams streamGauge
	now     func() time.Time
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(svc activityService, streams streamGauge) *ActivityHandler {
	return &ActivityHandler{service: svc, streams: streams, now: time.Now}
}

// List godoc
// @Summary List activities
// @Tags Activities
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param search query string false "Search in title"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /activities [get]
func (h *ActivityHandler) List(c *gin.Context) {
	from, to, err := parseDateRange(c, h.service.Location())
	if err != nil {
		response.Error(c, err)
		return
	}
	req := service.ActivityListRequest{
		From:      from,
		To:        to,
		Search:    strings.TrimSpace(c.Query("search")),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "page_size", 20),
		SortOrder: c.Query("sort_order"),
	}
	items, pagination, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get activity detail
// @Description Activity with capacity and temporal labels plus a countdown snapshot
// @Tags Activities
// @Produce json
// @Param id path string true "Activity ID"
// @Param lang query string false "Label language (en, fr, es)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activities/{id} [get]
func (h *ActivityHandler) Get(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"), middleware.ViewerFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Calendar godoc
// @Summary Month calendar grid
// @Tags Activities
// @Produce json
// @Param month query string false "Month (YYYY-MM), defaults to current"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /activities/calendar [get]
func (h *ActivityHandler) Calendar(c *gin.Context) {
	h.calendar(c, middleware.ViewerFromContext(c))
}

// AdminCalendar godoc
// @Summary Month calendar grid for administrators
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param month query string false "Month (YYYY-MM), defaults to current"
// @Success 200 {object} response.Envelope
// @Router /admin/activities/calendar [get]
func (h *ActivityHandler) AdminCalendar(c *gin.Context) {
	viewer := middleware.ViewerFromContext(c)
	viewer.IsAdmin = true
	h.calendar(c, viewer)
}

func (h *ActivityHandler) calendar(c *gin.Context, viewer models.Viewer) {
	year, month, err := parseMonth(c.Query("month"), h.now(), h.service.Location())
	if err != nil {
		response.Error(c, err)
		return
	}
	view, hit, err := h.service.Calendar(c.Request.Context(), year, month, viewer)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, view, nil, middleware.ExtractMeta(c))
}

// Countdown godoc
// @Summary Live countdown to an activity
// @Description Server-sent events, one "countdown" event per second until the start time
// @Tags Activities
// @Produce text/event-stream
// @Param id path string true "Activity ID"
// @Success 200 {string} string "event stream"
// @Failure 404 {object} response.Envelope
// @Router /activities/{id}/countdown/stream [get]
func (h *ActivityHandler) Countdown(c *gin.Context) {
	target, err := h.service.CountdownTarget(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	streamCountdown(c, h.streams, target, h.now)
}

// Register godoc
// @Summary Register for an activity
// @Tags Activities
// @Accept json
// @Produce json
// @Param id path string true "Activity ID"
// @Param payload body models.RegisterParticipantRequest true "Participant"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /activities/{id}/register [post]
func (h *ActivityHandler) Register(c *gin.Context) {
	var req models.RegisterParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}
	participant, err := h.service.Register(c.Request.Context(), c.Param("id"), req, middleware.ViewerFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, participant)
}

// Create godoc
// @Summary Create activity
// @Tags Activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.UpsertActivityRequest true "Activity"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/activities [post]
func (h *ActivityHandler) Create(c *gin.Context) {
	var req models.UpsertActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid activity payload"))
		return
	}
	activity, err := h.service.Create(c.Request.Context(), req, middleware.ViewerFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, activity)
}

// Update godoc
// @Summary Update activity
// @Tags Activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Param payload body models.UpsertActivityRequest true "Activity"
// @Success 200 {object} response.Envelope
// @Router /admin/activities/{id} [put]
func (h *ActivityHandler) Update(c *gin.Context) {
	var req models.UpsertActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid activity payload"))
		return
	}
	activity, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activity, nil)
}

// Delete godoc
// @Summary Delete activity
// @Tags Activities
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Success 204
// @Router /admin/activities/{id} [delete]
func (h *ActivityHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Participants godoc
// @Summary List activity participants
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Success 200 {object} response.Envelope
// @Router /admin/activities/{id}/participants [get]
func (h *ActivityHandler) Participants(c *gin.Context) {
	participants, err := h.service.Participants(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, participants, nil)
}
