package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rugby-club-api/internal/models"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
	"github.com/noah-isme/rugby-club-api/pkg/response"
)

type exportService interface {
	Location() *time.Location
	Fixtures(ctx context.Context, req models.ExportRequest) (*models.ExportResult, error)
	Activities(ctx context.Context, req models.ExportRequest) (*models.ExportResult, error)
	Open(token string) (*os.File, string, error)
}

// ExportHandler produces CSV and PDF exports and serves them by signed token.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Fixtures godoc
// @Summary Export fixtures
// @Tags Exports
// @Produce json
// @Security BearerAuth
// @Param format query string false "csv or pdf"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 201 {object} response.Envelope
// @Router /admin/matches/export [get]
func (h *ExportHandler) Fixtures(c *gin.Context) {
	req, err := exportRequest(c, h.service.Location())
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.Fixtures(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Activities godoc
// @Summary Export activities
// @Tags Exports
// @Produce json
// @Security BearerAuth
// @Param format query string false "csv or pdf"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 201 {object} response.Envelope
// @Router /admin/activities/export [get]
func (h *ExportHandler) Activities(c *gin.Context) {
	req, err := exportRequest(c, h.service.Location())
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.Activities(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download an export
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed export token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /exports/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, name, err := h.service.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck
	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export"))
		return
	}
	contentType := "text/csv"
	if path.Ext(name) == ".pdf" {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", name))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, nil)
}

func exportRequest(c *gin.Context, loc *time.Location) (models.ExportRequest, error) {
	from, to, err := parseDateRange(c, loc)
	if err != nil {
		return models.ExportRequest{}, err
	}
	return models.ExportRequest{Format: models.ExportFormat(c.Query("format")), From: from, To: to}, nil
}
