package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rugby-club-api/internal/middleware"
	"github.com/noah-isme/rugby-club-api/internal/models"
	"github.com/noah-isme/rugby-club-api/internal/service"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
	"github.com/noah-isme/rugby-club-api/pkg/response"
)

// multipartOverhead allows for form fields and boundaries around the file part.
const multipartOverhead = 1 << 20

type galleryService interface {
	ListAlbums(ctx context.Context, viewer models.Viewer) ([]models.GalleryAlbum, error)
	Album(ctx context.Context, id string, viewer models.Viewer) (*models.AlbumWithPhotos, error)
	CreateAlbum(ctx context.Context, req models.UpsertAlbumRequest) (*models.GalleryAlbum, error)
	UpdateAlbum(ctx context.Context, id string, req models.UpsertAlbumRequest) (*models.GalleryAlbum, error)
	DeleteAlbum(ctx context.Context, id string) error
	Upload(ctx context.Context, albumID string, upload service.PhotoUpload, viewer models.Viewer) (*models.GalleryPhoto, error)
	DeletePhoto(ctx context.Context, id string) error
	Download(ctx context.Context, token string) (*service.MediaDownload, error)
}

// GalleryHandler exposes photo albums, uploads and signed media downloads.
type GalleryHandler struct {
	service     galleryService
	maxFileSize int64
}

// NewGalleryHandler constructs the handler. maxFileSize bounds the request body.
func NewGalleryHandler(svc galleryService, maxFileSize int64) *GalleryHandler {
	return &GalleryHandler{service: svc, maxFileSize: maxFileSize}
}

// ListAlbums godoc
// @Summary List albums
// @Tags Gallery
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /gallery/albums [get]
func (h *GalleryHandler) ListAlbums(c *gin.Context) {
	albums, err := h.service.ListAlbums(c.Request.Context(), middleware.ViewerFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, albums, nil)
}

// Album godoc
// @Summary Album with photos
// @Tags Gallery
// @Produce json
// @Param id path string true "Album ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /gallery/albums/{id} [get]
func (h *GalleryHandler) Album(c *gin.Context) {
	album, err := h.service.Album(c.Request.Context(), c.Param("id"), middleware.ViewerFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, album, nil)
}

// Media godoc
// @Summary Download a photo or thumbnail
// @Tags Gallery
// @Produce octet-stream
// @Param token path string true "Signed media token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /gallery/media/{token} [get]
func (h *GalleryHandler) Media(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	media, err := h.service.Download(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer media.Reader.Close() //nolint:errcheck
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"%s\"", media.Filename))
	c.Header("Cache-Control", "private, max-age=300")
	c.DataFromReader(http.StatusOK, media.Size, media.MimeType, media.Reader, nil)
}

// CreateAlbum godoc
// @Summary Create album
// @Tags Gallery
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.UpsertAlbumRequest true "Album"
// @Success 201 {object} response.Envelope
// @Router /admin/gallery/albums [post]
func (h *GalleryHandler) CreateAlbum(c *gin.Context) {
	var req models.UpsertAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid album payload"))
		return
	}
	album, err := h.service.CreateAlbum(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, album)
}

// UpdateAlbum godoc
// @Summary Update album
// @Tags Gallery
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Album ID"
// @Param payload body models.UpsertAlbumRequest true "Album"
// @Success 200 {object} response.Envelope
// @Router /admin/gallery/albums/{id} [put]
func (h *GalleryHandler) UpdateAlbum(c *gin.Context) {
	var req models.UpsertAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid album payload"))
		return
	}
	album, err := h.service.UpdateAlbum(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, album, nil)
}

// DeleteAlbum godoc
// @Summary Delete album and its photos
// @Tags Gallery
// @Security BearerAuth
// @Param id path string true "Album ID"
// @Success 204
// @Router /admin/gallery/albums/{id} [delete]
func (h *GalleryHandler) DeleteAlbum(c *gin.Context) {
	if err := h.service.DeleteAlbum(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Upload godoc
// @Summary Upload photo
// @Description Stores the original and queues thumbnail generation
// @Tags Gallery
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Album ID"
// @Param file formData file true "Image"
// @Param caption formData string false "Caption"
// @Success 201 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Router /admin/gallery/albums/{id}/photos [post]
func (h *GalleryHandler) Upload(c *gin.Context) {
	if h.maxFileSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileSize+multipartOverhead)
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.Clone(appErrors.ErrPayloadTooLarge, "file exceeds the upload limit"))
			return
		}
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	reader, ok := src.(io.ReadSeeker)
	if !ok {
		buf, readErr := io.ReadAll(src)
		if readErr != nil {
			response.Error(c, appErrors.Wrap(readErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to buffer file"))
			return
		}
		reader = bytes.NewReader(buf)
	}

	upload := service.PhotoUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Content:  reader,
	}
	if caption := strings.TrimSpace(c.PostForm("caption")); caption != "" {
		upload.Caption = &caption
	}
	photo, err := h.service.Upload(c.Request.Context(), c.Param("id"), upload, middleware.ViewerFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, photo)
}

// DeletePhoto godoc
// @Summary Delete photo
// @Tags Gallery
// @Security BearerAuth
// @Param id path string true "Photo ID"
// @Success 204
// @Router /admin/gallery/photos/{id} [delete]
func (h *GalleryHandler) DeletePhoto(c *gin.Context) {
	if err := h.service.DeletePhoto(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
