package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rugby-club-api/internal/middleware"
	"github.com/noah-isme/rugby-club-api/internal/models"
	"github.com/noah-isme/rugby-club-api/internal/service"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
	"github.com/noah-isme/rugby-club-api/pkg/response"
)

// TeamHandler exposes the squad and staff pages.
type TeamHandler struct {
	service *service.TeamService
}

// NewTeamHandler constructs the handler.
func NewTeamHandler(svc *service.TeamService) *TeamHandler {
	return &TeamHandler{service: svc}
}

// Roster godoc
// @Summary Team roster
// @Description Active members grouped into players, coaches and staff
// @Tags Team
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /team [get]
func (h *TeamHandler) Roster(c *gin.Context) {
	roster, err := h.service.Roster(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// Get godoc
// @Summary Team member profile
// @Tags Team
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /team/{id} [get]
func (h *TeamHandler) Get(c *gin.Context) {
	member, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !member.Active && !middleware.ViewerFromContext(c).IsAdmin {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "team member not found"))
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// List godoc
// @Summary List team members
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Param role query string false "PLAYER, COACH or STAFF"
// @Param active query bool false "Active filter"
// @Param search query string false "Search by name"
// @Success 200 {object} response.Envelope
// @Router /admin/team [get]
func (h *TeamHandler) List(c *gin.Context) {
	filter := models.TeamMemberFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 100),
	}
	if raw := c.Query("role"); raw != "" {
		role := models.MemberRole(strings.ToUpper(raw))
		filter.Role = &role
	}
	if raw := c.Query("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.Active = &active
		}
	}
	members, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members, pagination)
}

// Create godoc
// @Summary Add team member
// @Tags Team
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.UpsertTeamMemberRequest true "Member"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/team [post]
func (h *TeamHandler) Create(c *gin.Context) {
	var req models.UpsertTeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid team member payload"))
		return
	}
	member, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, member)
}

// Update godoc
// @Summary Update team member
// @Tags Team
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Param payload body models.UpsertTeamMemberRequest true "Member"
// @Success 200 {object} response.Envelope
// @Router /admin/team/{id} [put]
func (h *TeamHandler) Update(c *gin.Context) {
	var req models.UpsertTeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid team member payload"))
		return
	}
	member, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// Delete godoc
// @Summary Remove team member
// @Tags Team
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Success 204
// @Router /admin/team/{id} [delete]
func (h *TeamHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
