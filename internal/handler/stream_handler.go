package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rugby-club-api/internal/middleware"
	"github.com/noah-isme/rugby-club-api/internal/models"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
	"github.com/noah-isme/rugby-club-api/pkg/realtime"
	"github.com/noah-isme/rugby-club-api/pkg/response"
)

type streamService interface {
	List(ctx context.Context, status string) ([]models.LiveStream, error)
	Get(ctx context.Context, id string) (*models.LiveStream, error)
	Create(ctx context.Context, req models.UpsertStreamRequest) (*models.LiveStream, error)
	Update(ctx context.Context, id string, req models.UpsertStreamRequest) (*models.LiveStream, error)
	SetStatus(ctx context.Context, id string, req models.UpdateStreamStatusRequest) (*models.LiveStream, error)
	Delete(ctx context.Context, id string) error
	Messages(ctx context.Context, id string) ([]models.ChatMessage, error)
	PostMessage(ctx context.Context, id string, req models.PostChatMessageRequest, viewer models.Viewer) (*models.ChatMessage, error)
	Subscribe(ctx context.Context, id string) (*realtime.Subscription, error)
}

// StreamHandler exposes live streams and their chat.
type StreamHandler struct {
	service streamService
	streams streamGauge
}

// NewStreamHandler constructs the handler.
func NewStreamHandler(svc streamService, streams streamGauge) *StreamHandler {
	return &StreamHandler{service: svc, streams: streams}
}

// List godoc
// @Summary List live streams
// @Tags Streams
// @Produce json
// @Param status query string false "UPCOMING, LIVE or ENDED"
// @Success 200 {object} response.Envelope
// @Router /streams [get]
func (h *StreamHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get live stream
// @Tags Streams
// @Produce json
// @Param id path string true "Stream ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /streams/{id} [get]
func (h *StreamHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Messages godoc
// @Summary Recent chat messages
// @Tags Streams
// @Produce json
// @Param id path string true "Stream ID"
// @Success 200 {object} response.Envelope
// @Router /streams/{id}/chat [get]
func (h *StreamHandler) Messages(c *gin.Context) {
	messages, err := h.service.Messages(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, nil)
}

// PostMessage godoc
// @Summary Post a chat message
// @Tags Streams
// @Accept json
// @Produce json
// @Param id path string true "Stream ID"
// @Param payload body models.PostChatMessageRequest true "Message"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /streams/{id}/chat [post]
func (h *StreamHandler) PostMessage(c *gin.Context) {
	var req models.PostChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid chat message"))
		return
	}
	message, err := h.service.PostMessage(c.Request.Context(), c.Param("id"), req, middleware.ViewerFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, message)
}

// Events godoc
// @Summary Live chat events
// @Description Server-sent "message" events for new chat messages
// @Tags Streams
// @Produce text/event-stream
// @Param id path string true "Stream ID"
// @Success 200 {string} string "event stream"
// @Router /streams/{id}/chat/events [get]
func (h *StreamHandler) Events(c *gin.Context) {
	sub, err := h.service.Subscribe(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	streamSubscription(c, h.streams, "chat", "message", sub)
}

// Create godoc
// @Summary Schedule a live stream
// @Tags Streams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.UpsertStreamRequest true "Stream"
// @Success 201 {object} response.Envelope
// @Router /admin/streams [post]
func (h *StreamHandler) Create(c *gin.Context) {
	var req models.UpsertStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid stream payload"))
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
// @Summary Update a live stream
// @Tags Streams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Stream ID"
// @Param payload body models.UpsertStreamRequest true "Stream"
// @Success 200 {object} response.Envelope
// @Router /admin/streams/{id} [put]
func (h *StreamHandler) Update(c *gin.Context) {
	var req models.UpsertStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid stream payload"))
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// SetStatus godoc
// @Summary Change stream status
// @Tags Streams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Stream ID"
// @Param payload body models.UpdateStreamStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/streams/{id}/status [patch]
func (h *StreamHandler) SetStatus(c *gin.Context) {
	var req models.UpdateStreamStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	item, err := h.service.SetStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete a live stream
// @Tags Streams
// @Security BearerAuth
// @Param id path string true "Stream ID"
// @Success 204
// @Router /admin/streams/{id} [delete]
func (h *StreamHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
