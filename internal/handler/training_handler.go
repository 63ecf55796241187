package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rugby-club-api/internal/middleware"
	"github.com/noah-isme/rugby-club-api/internal/models"
	"github.com/noah-isme/rugby-club-api/internal/service"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
	"github.com/noah-isme/rugby-club-api/pkg/response"
)

const defaultSessionWindow = 28 * 24 * time.Hour

// TrainingHandler exposes training programs and their expanded sessions.
type TrainingHandler struct {
	service *service.TrainingService
	now     func() time.Time
}

// NewTrainingHandler constructs the handler.
func NewTrainingHandler(svc *service.TrainingService) *TrainingHandler {
	return &TrainingHandler{service: svc, now: time.Now}
}

// List godoc
// @Summary List training programs
// @Tags Training
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /training [get]
func (h *TrainingHandler) List(c *gin.Context) {
	programs, err := h.service.List(c.Request.Context(), middleware.ViewerFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, programs, nil)
}

// Get godoc
// @Summary Get training program
// @Tags Training
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /training/{id} [get]
func (h *TrainingHandler) Get(c *gin.Context) {
	program, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program, nil)
}

// Sessions godoc
// @Summary Upcoming sessions of a program
// @Description Expands the program recurrence; defaults to the next four weeks
// @Tags Training
// @Produce json
// @Param id path string true "Program ID"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /training/{id}/sessions [get]
func (h *TrainingHandler) Sessions(c *gin.Context) {
	loc := h.service.Location()
	from, to, err := parseDateRange(c, loc)
	if err != nil {
		response.Error(c, err)
		return
	}
	if from == nil {
		local := h.now().In(loc)
		start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		from = &start
	}
	if to == nil {
		end := from.Add(defaultSessionWindow)
		to = &end
	}
	sessions, err := h.service.Sessions(c.Request.Context(), c.Param("id"), *from, *to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// Create godoc
// @Summary Create training program
// @Tags Training
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.UpsertTrainingProgramRequest true "Program"
// @Success 201 {object} response.Envelope
// @Router /admin/training [post]
func (h *TrainingHandler) Create(c *gin.Context) {
	var req models.UpsertTrainingProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid training payload"))
		return
	}
	program, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, program)
}

// Update godoc
// @Summary Update training program
// @Tags Training
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Param payload body models.UpsertTrainingProgramRequest true "Program"
// @Success 200 {object} response.Envelope
// @Router /admin/training/{id} [put]
func (h *TrainingHandler) Update(c *gin.Context) {
	var req models.UpsertTrainingProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid training payload"))
		return
	}
	program, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program, nil)
}

// Delete godoc
// @Summary Delete training program
// @Tags Training
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Success 204
// @Router /admin/training/{id} [delete]
func (h *TrainingHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
