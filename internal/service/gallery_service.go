package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/rugby-club-api/internal/models"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
	"github.com/noah-isme/rugby-club-api/pkg/events"
	"github.com/noah-isme/rugby-club-api/pkg/jobs"
	"github.com/noah-isme/rugby-club-api/pkg/media"
	"github.com/noah-isme/rugby-club-api/pkg/storage"
)

// JobThumbnail is the queue job type that renders a photo thumbnail.
const JobThumbnail = "gallery.thumbnail"

type galleryStore interface {
	ListAlbums(ctx context.Context, includeUnpublished bool) ([]models.GalleryAlbum, error)
	FindAlbum(ctx context.Context, id string) (*models.GalleryAlbum, error)
	CreateAlbum(ctx context.Context, album *models.GalleryAlbum) error
	UpdateAlbum(ctx context.Context, album *models.GalleryAlbum) error
	DeleteAlbum(ctx context.Context, id string) ([]models.GalleryPhoto, error)
	ListPhotos(ctx context.Context, albumID string) ([]models.GalleryPhoto, error)
	FindPhoto(ctx context.Context, id string) (*models.GalleryPhoto, error)
	CreatePhoto(ctx context.Context, photo *models.GalleryPhoto) error
	UpdateThumbnail(ctx context.Context, id string, status models.ThumbnailStatus, path *string, width, height *int) error
	DeletePhoto(ctx context.Context, id string) error
}

type mediaStorage interface {
	Save(relPath string, data []byte) (string, error)
	SaveStream(relPath string, r io.Reader) (int64, error)
	Open(relPath string) (*os.File, error)
	Delete(relPath string) error
}

type urlSigner interface {
	Sign(resourceID, relPath string) (string, time.Time, error)
	Verify(token string) (*storage.SignedClaims, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type thumbnailRenderer interface {
	Render(src io.Reader) (*media.Result, error)
}

// PhotoUpload is a single multipart file handed to the gallery.
type PhotoUpload struct {
	Filename string
	Size     int64
	MimeType string
	Caption  *string
	Content  io.ReadSeeker
}

// MediaDownload is an opened gallery file ready to stream.
type MediaDownload struct {
	Reader   io.ReadCloser
	Size     int64
	MimeType string
	Filename string
}

// ThumbnailJob is the payload of a JobThumbnail job.
type ThumbnailJob struct {
	PhotoID string
	Path    string
	AlbumID string
}

// GalleryServiceConfig limits uploads.
type GalleryServiceConfig struct {
	MaxFileSize  int64
	AllowedMIMEs []string
	MediaBaseURL string
}

// GalleryService manages albums, uploads and signed media access.
type GalleryService struct {
	repo      galleryStore
	storage   mediaStorage
	signer    urlSigner
	queue     jobEnqueuer
	thumbs    thumbnailRenderer
	events    eventEmitter
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       GalleryServiceConfig
	mimeSet   map[string]struct{}
}

// NewGalleryService constructs the service.
func NewGalleryService(repo galleryStore, files mediaStorage, signer urlSigner, queue jobEnqueuer, thumbs thumbnailRenderer, publisher events.Publisher, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg GalleryServiceConfig) *GalleryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"image/jpeg", "image/png", "image/gif"}
	}
	if cfg.MediaBaseURL == "" {
		cfg.MediaBaseURL = "/api/v1/gallery/media"
	}
	mimeSet := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, mime := range cfg.AllowedMIMEs {
		mimeSet[strings.ToLower(strings.TrimSpace(mime))] = struct{}{}
	}
	return &GalleryService{
		repo:      repo,
		storage:   files,
		signer:    signer,
		queue:     queue,
		thumbs:    thumbs,
		events:    newEventEmitter(publisher, metrics, logger),
		metrics:   metrics,
		validator: ensureValidator(validate),
		logger:    logger,
		cfg:       cfg,
		mimeSet:   mimeSet,
	}
}

// ListAlbums returns albums. Public callers only see published ones.
func (s *GalleryService) ListAlbums(ctx context.Context, viewer models.Viewer) ([]models.GalleryAlbum, error) {
	albums, err := s.repo.ListAlbums(ctx, viewer.IsAdmin)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list albums")
	}
	return albums, nil
}

// Album returns an album with signed photo URLs.
func (s *GalleryService) Album(ctx context.Context, id string, viewer models.Viewer) (*models.AlbumWithPhotos, error) {
	album, err := s.findAlbum(ctx, id)
	if err != nil {
		return nil, err
	}
	if !album.Published && !viewer.IsAdmin {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "album not found")
	}
	photos, err := s.repo.ListPhotos(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list photos")
	}
	if photos == nil {
		photos = []models.GalleryPhoto{}
	}
	for i := range photos {
		s.signPhoto(&photos[i])
	}
	return &models.AlbumWithPhotos{GalleryAlbum: *album, Photos: photos}, nil
}

// CreateAlbum adds an album.
func (s *GalleryService) CreateAlbum(ctx context.Context, req models.UpsertAlbumRequest) (*models.GalleryAlbum, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid album payload")
	}
	album := &models.GalleryAlbum{}
	applyAlbumRequest(album, req)
	if err := s.repo.CreateAlbum(ctx, album); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create album")
	}
	return album, nil
}

// UpdateAlbum replaces album metadata.
func (s *GalleryService) UpdateAlbum(ctx context.Context, id string, req models.UpsertAlbumRequest) (*models.GalleryAlbum, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid album payload")
	}
	album, err := s.findAlbum(ctx, id)
	if err != nil {
		return nil, err
	}
	applyAlbumRequest(album, req)
	if err := s.repo.UpdateAlbum(ctx, album); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update album")
	}
	return album, nil
}

// DeleteAlbum removes an album, its photos and their files.
func (s *GalleryService) DeleteAlbum(ctx context.Context, id string) error {
	if _, err := s.findAlbum(ctx, id); err != nil {
		return err
	}
	photos, err := s.repo.DeleteAlbum(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete album")
	}
	for _, photo := range photos {
		s.removeFiles(photo)
	}
	return nil
}

// Upload stores an original photo and queues its thumbnail.
func (s *GalleryService) Upload(ctx context.Context, albumID string, upload PhotoUpload, viewer models.Viewer) (*models.GalleryPhoto, error) {
	if _, err := s.findAlbum(ctx, albumID); err != nil {
		return nil, err
	}
	if upload.Content == nil || upload.Size <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if upload.Size > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
	}
	mimeType, err := detectUploadMime(upload)
	if err != nil {
		return nil, err
	}
	if _, allowed := s.mimeSet[mimeType]; !allowed {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedMedia, fmt.Sprintf("%s is not an accepted image type", mimeType))
	}

	photoID := uuid.NewString()
	relPath := path.Join("gallery", albumID, photoID+imageExtension(mimeType))
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	written, err := s.storage.SaveStream(relPath, upload.Content)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store photo")
	}

	photo := &models.GalleryPhoto{
		ID:              photoID,
		AlbumID:         albumID,
		Caption:         upload.Caption,
		FilePath:        relPath,
		MimeType:        mimeType,
		SizeBytes:       written,
		ThumbnailStatus: models.ThumbnailPending,
		UploadedBy:      viewer.UserID(),
	}
	if err := s.repo.CreatePhoto(ctx, photo); err != nil {
		_ = s.storage.Delete(relPath)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save photo metadata")
	}

	if s.queue != nil {
		job := jobs.Job{ID: photo.ID, Type: JobThumbnail, Payload: ThumbnailJob{PhotoID: photo.ID, Path: relPath, AlbumID: albumID}}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("thumbnail job not queued", zap.String("photo_id", photo.ID), zap.Error(err))
		}
	}
	s.events.emit(ctx, events.PhotoUploaded, photo.ID, map[string]interface{}{
		"photo_id": photo.ID,
		"album_id": albumID,
		"size":     written,
	})
	s.signPhoto(photo)
	return photo, nil
}

// ProcessThumbnail is the queue handler for JobThumbnail.
func (s *GalleryService) ProcessThumbnail(ctx context.Context, job jobs.Job) (err error) {
	defer func() { s.metrics.ObserveJob(JobThumbnail, err) }()

	payload, ok := job.Payload.(ThumbnailJob)
	if !ok {
		return fmt.Errorf("unexpected thumbnail payload %T", job.Payload)
	}
	if s.thumbs == nil {
		return fmt.Errorf("thumbnailer not configured")
	}
	file, err := s.storage.Open(payload.Path)
	if err != nil {
		s.markThumbnailFailed(ctx, payload.PhotoID)
		return fmt.Errorf("open original: %w", err)
	}
	defer file.Close()

	result, err := s.thumbs.Render(file)
	if err != nil {
		s.markThumbnailFailed(ctx, payload.PhotoID)
		return err
	}
	thumbPath := thumbnailPath(payload.Path)
	if _, err := s.storage.Save(thumbPath, result.Data); err != nil {
		s.markThumbnailFailed(ctx, payload.PhotoID)
		return fmt.Errorf("store thumbnail: %w", err)
	}
	width, height := result.SourceWidth, result.SourceHeight
	if err := s.repo.UpdateThumbnail(ctx, payload.PhotoID, models.ThumbnailReady, &thumbPath, &width, &height); err != nil {
		return fmt.Errorf("record thumbnail: %w", err)
	}
	return nil
}

// DeletePhoto removes a photo and its files.
func (s *GalleryService) DeletePhoto(ctx context.Context, id string) error {
	photo, err := s.findPhoto(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeletePhoto(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete photo")
	}
	s.removeFiles(*photo)
	return nil
}

// Download resolves a signed media token to an open file.
func (s *GalleryService) Download(ctx context.Context, token string) (*MediaDownload, error) {
	claims, err := s.signer.Verify(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "media link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid media link")
	}
	photo, err := s.findPhoto(ctx, claims.ResourceID)
	if err != nil {
		return nil, err
	}
	mimeType := photo.MimeType
	switch {
	case claims.Path == photo.FilePath:
	case photo.ThumbnailPath != nil && claims.Path == *photo.ThumbnailPath:
		mimeType = "image/jpeg"
	default:
		return nil, appErrors.Clone(appErrors.ErrNotFound, "media not found")
	}
	file, err := s.storage.Open(claims.Path)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "media not found")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read media")
	}
	return &MediaDownload{Reader: file, Size: info.Size(), MimeType: mimeType, Filename: path.Base(claims.Path)}, nil
}

func (s *GalleryService) signPhoto(photo *models.GalleryPhoto) {
	if s.signer == nil {
		return
	}
	if token, _, err := s.signer.Sign(photo.ID, photo.FilePath); err == nil {
		photo.URL = s.cfg.MediaBaseURL + "/" + token
	}
	if photo.ThumbnailPath != nil && photo.ThumbnailStatus == models.ThumbnailReady {
		if token, _, err := s.signer.Sign(photo.ID, *photo.ThumbnailPath); err == nil {
			photo.ThumbnailURL = s.cfg.MediaBaseURL + "/" + token
		}
	}
}

func (s *GalleryService) markThumbnailFailed(ctx context.Context, photoID string) {
	if err := s.repo.UpdateThumbnail(ctx, photoID, models.ThumbnailFailed, nil, nil, nil); err != nil {
		s.logger.Warn("mark thumbnail failed", zap.String("photo_id", photoID), zap.Error(err))
	}
}

func (s *GalleryService) removeFiles(photo models.GalleryPhoto) {
	if err := s.storage.Delete(photo.FilePath); err != nil {
		s.logger.Warn("delete photo file failed", zap.String("path", photo.FilePath), zap.Error(err))
	}
	if photo.ThumbnailPath != nil {
		_ = s.storage.Delete(*photo.ThumbnailPath)
	}
}

func (s *GalleryService) findAlbum(ctx context.Context, id string) (*models.GalleryAlbum, error) {
	album, err := s.repo.FindAlbum(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "album not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load album")
	}
	return album, nil
}

func (s *GalleryService) findPhoto(ctx context.Context, id string) (*models.GalleryPhoto, error) {
	photo, err := s.repo.FindPhoto(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "photo not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load photo")
	}
	return photo, nil
}

// detectUploadMime sniffs the first 512 bytes; client supplied types are not trusted.
func detectUploadMime(upload PhotoUpload) (string, error) {
	header := make([]byte, 512)
	n, err := io.ReadFull(upload.Content, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect file")
	}
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	if n == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "empty file")
	}
	mimeType := http.DetectContentType(bytes.TrimRight(header[:n], "\x00"))
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	return strings.ToLower(mimeType), nil
}

func imageExtension(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}

func thumbnailPath(original string) string {
	ext := path.Ext(original)
	return strings.TrimSuffix(original, ext) + "_thumb.jpg"
}

func applyAlbumRequest(album *models.GalleryAlbum, req models.UpsertAlbumRequest) {
	album.Title = strings.TrimSpace(req.Title)
	album.Description = req.Description
	album.EventDate = req.EventDate
	if req.Published != nil {
		album.Published = *req.Published
	}
}
