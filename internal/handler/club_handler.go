package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rugby-club-api/internal/service"
	"github.com/noah-isme/rugby-club-api/pkg/response"
)

// ClubHandler serves the static club profile.
type ClubHandler struct {
	service *service.ClubService
}

// NewClubHandler constructs the handler.
func NewClubHandler(svc *service.ClubService) *ClubHandler {
	return &ClubHandler{service: svc}
}

// Profile godoc
// @Summary Club profile
// @Description Name, founding year, colours, contact details, social links and sponsors
// @Tags Club
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /club [get]
func (h *ClubHandler) Profile(c *gin.Context) {
	profile, err := h.service.Profile(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=300")
	c.JSON(http.StatusOK, response.Envelope{Data: profile})
}
