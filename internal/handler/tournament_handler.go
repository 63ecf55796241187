package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rugby-club-api/internal/middleware"
	"github.com/noah-isme/rugby-club-api/internal/models"
	"github.com/noah-isme/rugby-club-api/internal/service"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
	"github.com/noah-isme/rugby-club-api/pkg/response"
)

// TournamentHandler exposes competitions and their league tables.
type TournamentHandler struct {
	service *service.TournamentService
}

// NewTournamentHandler constructs the handler.
func NewTournamentHandler(svc *service.TournamentService) *TournamentHandler {
	return &TournamentHandler{service: svc}
}

// List godoc
// @Summary List tournaments
// @Tags Tournaments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /tournaments [get]
func (h *TournamentHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get tournament
// @Tags Tournaments
// @Produce json
// @Param id path string true "Tournament ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tournaments/{id} [get]
func (h *TournamentHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Standings godoc
// @Summary Tournament standings
// @Tags Tournaments
// @Produce json
// @Param id path string true "Tournament ID"
// @Success 200 {object} response.Envelope
// @Router /tournaments/{id}/standings [get]
func (h *TournamentHandler) Standings(c *gin.Context) {
	rows, hit, err := h.service.Standings(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, rows, nil, middleware.ExtractMeta(c))
}

// Create godoc
// @Summary Create tournament
// @Tags Tournaments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.UpsertTournamentRequest true "Tournament"
// @Success 201 {object} response.Envelope
// @Router /admin/tournaments [post]
func (h *TournamentHandler) Create(c *gin.Context) {
	var req models.UpsertTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid tournament payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update tournament
// @Tags Tournaments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tournament ID"
// @Param payload body models.UpsertTournamentRequest true "Tournament"
// @Success 200 {object} response.Envelope
// @Router /admin/tournaments/{id} [put]
func (h *TournamentHandler) Update(c *gin.Context) {
	var req models.UpsertTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid tournament payload"))
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete tournament
// @Tags Tournaments
// @Security BearerAuth
// @Param id path string true "Tournament ID"
// @Success 204
// @Router /admin/tournaments/{id} [delete]
func (h *TournamentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
