package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rugby-club-api/internal/models"
	"github.com/noah-isme/rugby-club-api/internal/service"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
	"github.com/noah-isme/rugby-club-api/pkg/realtime"
	"github.com/noah-isme/rugby-club-api/pkg/response"
)

type matchService interface {
	Location() *time.Location
	List(ctx context.Context, filter models.MatchFilter) ([]models.Match, *models.Pagination, error)
	Next(ctx context.Context) (*service.NextMatch, error)
	Get(ctx context.Context, id string) (*models.Match, error)
	CountdownTarget(ctx context.Context, id string) (time.Time, error)
	Create(ctx context.Context, req models.UpsertMatchRequest) (*models.Match, error)
	Update(ctx context.Context, id string, req models.UpsertMatchRequest) (*models.Match, error)
	UpdateScore(ctx context.Context, id string, req models.UpdateScoreRequest) (*models.Match, error)
	SubscribeScores(ctx context.Context, id string) (*realtime.Subscription, error)
	Delete(ctx context.Context, id string) error
}

// MatchHandler exposes fixtures, results and live scores.
type MatchHandler struct {
	service matchService
	streams streamGauge
	now     func() time.Time
}

// NewMatchHandler constructs the handler.
func NewMatchHandler(svc matchService, streams streamGauge) *MatchHandler {
	return &MatchHandler{service: svc, streams: streams, now: time.Now}
}

// List godoc
// @Summary List matches
// @Tags Matches
// @Produce json
// @Param status query string false "SCHEDULED, LIVE, FINISHED, POSTPONED or CANCELLED"
// @Param tournament_id query string false "Tournament ID"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /matches [get]
func (h *MatchHandler) List(c *gin.Context) {
	from, to, err := parseDateRange(c, h.service.Location())
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.MatchFilter{
		TournamentID: c.Query("tournament_id"),
		From:         from,
		To:           to,
		Page:         queryInt(c, "page", 1),
		PageSize:     queryInt(c, "page_size", 50),
		SortOrder:    c.Query("sort_order"),
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := models.MatchStatus(strings.ToUpper(raw))
		switch status {
		case models.MatchStatusScheduled, models.MatchStatusLive, models.MatchStatusFinished, models.MatchStatusPostponed, models.MatchStatusCancelled:
			filter.Status = &status
		default:
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown match status"))
			return
		}
	}
	matches, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, matches, pagination)
}

// Next godoc
// @Summary Next fixture
// @Description The next scheduled match with a countdown snapshot
// @Tags Matches
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /matches/next [get]
func (h *MatchHandler) Next(c *gin.Context) {
	next, err := h.service.Next(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, next, nil)
}

// Get godoc
// @Summary Get match
// @Tags Matches
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /matches/{id} [get]
func (h *MatchHandler) Get(c *gin.Context) {
	match, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, match, nil)
}

// Countdown godoc
// @Summary Live countdown to kickoff
// @Tags Matches
// @Produce text/event-stream
// @Param id path string true "Match ID"
// @Success 200 {string} string "event stream"
// @Router /matches/{id}/countdown/stream [get]
func (h *MatchHandler) Countdown(c *gin.Context) {
	target, err := h.service.CountdownTarget(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	streamCountdown(c, h.streams, target, h.now)
}

// Scores godoc
// @Summary Live score updates
// @Description Server-sent "score" events published when an administrator updates the score
// @Tags Matches
// @Produce text/event-stream
// @Param id path string true "Match ID"
// @Success 200 {string} string "event stream"
// @Router /matches/{id}/score/stream [get]
func (h *MatchHandler) Scores(c *gin.Context) {
	sub, err := h.service.SubscribeScores(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	streamSubscription(c, h.streams, "score", "score", sub)
}

// Create godoc
// @Summary Create match
// @Tags Matches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.UpsertMatchRequest true "Match"
// @Success 201 {object} response.Envelope
// @Router /admin/matches [post]
func (h *MatchHandler) Create(c *gin.Context) {
	var req models.UpsertMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid match payload"))
		return
	}
	match, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, match)
}

// Update godoc
// @Summary Update match
// @Tags Matches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Match ID"
// @Param payload body models.UpsertMatchRequest true "Match"
// @Success 200 {object} response.Envelope
// @Router /admin/matches/{id} [put]
func (h *MatchHandler) Update(c *gin.Context) {
	var req models.UpsertMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid match payload"))
		return
	}
	match, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, match, nil)
}

// UpdateScore godoc
// @Summary Update live score
// @Tags Matches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Match ID"
// @Param payload body models.UpdateScoreRequest true "Score"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/matches/{id}/score [patch]
func (h *MatchHandler) UpdateScore(c *gin.Context) {
	var req models.UpdateScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid score payload"))
		return
	}
	match, err := h.service.UpdateScore(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, match, nil)
}

// Delete godoc
// @Summary Delete match
// @Tags Matches
// @Security BearerAuth
// @Param id path string true "Match ID"
// @Success 204
// @Router /admin/matches/{id} [delete]
func (h *MatchHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
