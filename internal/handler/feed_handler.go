package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rugby-club-api/internal/service"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
	"github.com/noah-isme/rugby-club-api/pkg/response"
)

type feedRenderer interface {
	Render(ctx context.Context, opts service.FeedOptions) (string, error)
}

// FeedHandler serves iCalendar subscriptions.
type FeedHandler struct {
	service feedRenderer
}

// NewFeedHandler constructs the handler.
func NewFeedHandler(svc feedRenderer) *FeedHandler {
	return &FeedHandler{service: svc}
}

// Calendar godoc
// @Summary Club calendar feed
// @Description Activities, fixtures and training sessions as iCalendar
// @Tags Calendar
// @Produce text/calendar
// @Param reminder query int false "Alarm minutes before each event"
// @Param matches query bool false "Include fixtures (default true)"
// @Param training query bool false "Include training sessions (default true)"
// @Success 200 {string} string "iCalendar document"
// @Router /calendar.ics [get]
func (h *FeedHandler) Calendar(c *gin.Context) {
	opts := service.FeedOptions{
		IncludeMatches:  queryBool(c, "matches", true),
		IncludeTraining: queryBool(c, "training", true),
	}
	h.render(c, opts, "club-calendar.ics")
}

// Activities godoc
// @Summary Activities feed
// @Tags Activities
// @Produce text/calendar
// @Param reminder query int false "Alarm minutes before each event"
// @Success 200 {string} string "iCalendar document"
// @Router /activities/feed.ics [get]
func (h *FeedHandler) Activities(c *gin.Context) {
	h.render(c, service.FeedOptions{}, "activities.ics")
}

func (h *FeedHandler) render(c *gin.Context, opts service.FeedOptions, filename string) {
	if raw := c.Query("reminder"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "reminder must be a number of minutes"))
			return
		}
		opts.Reminder = time.Duration(minutes) * time.Minute
	}
	body, err := h.service.Render(c.Request.Context(), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "inline; filename=\""+filename+"\"")
	c.Header("Cache-Control", "public, max-age=900")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

func queryBool(c *gin.Context, key string, fallback bool) bool {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			return v
		}
	}
	return fallback
}
