package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/rugby-club-api/internal/models"
)

const albumSelect = `SELECT a.id, a.title, a.description, a.event_date, a.cover_photo_id, a.published,
(SELECT COUNT(*) FROM gallery_photos p WHERE p.album_id = a.id) AS photo_count, a.created_at, a.updated_at
FROM gallery_albums a`

const photoColumns = "id, album_id, caption, file_path, thumbnail_path, mime_type, size_bytes, width, height, thumbnail_status, uploaded_by, created_at"

// GalleryRepository persists albums and photo metadata.
type GalleryRepository struct {
	db *sqlx.DB
}

// NewGalleryRepository constructs a gallery repository.
func NewGalleryRepository(db *sqlx.DB) *GalleryRepository {
	return &GalleryRepository{db: db}
}

// ListAlbums returns albums newest first. Unpublished albums are included only when requested.
func (r *GalleryRepository) ListAlbums(ctx context.Context, includeUnpublished bool) ([]models.GalleryAlbum, error) {
	query := albumSelect
	if !includeUnpublished {
		query += " WHERE a.published = TRUE"
	}
	query += " ORDER BY a.event_date DESC NULLS LAST, a.created_at DESC"
	var albums []models.GalleryAlbum
	if err := r.db.SelectContext(ctx, &albums, query); err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	return albums, nil
}

// FindAlbum fetches an album.
func (r *GalleryRepository) FindAlbum(ctx context.Context, id string) (*models.GalleryAlbum, error) {
	var album models.GalleryAlbum
	if err := r.db.GetContext(ctx, &album, albumSelect+" WHERE a.id = $1", id); err != nil {
		return nil, err
	}
	return &album, nil
}

// CreateAlbum inserts an album.
func (r *GalleryRepository) CreateAlbum(ctx context.Context, album *models.GalleryAlbum) error {
	if album.ID == "" {
		album.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	album.CreatedAt = now
	album.UpdatedAt = now
	query := `INSERT INTO gallery_albums (id, title, description, event_date, cover_photo_id, published, created_at, updated_at)
VALUES (:id, :title, :description, :event_date, :cover_photo_id, :published, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, album); err != nil {
		return fmt.Errorf("create album: %w", err)
	}
	return nil
}

// UpdateAlbum modifies an album.
func (r *GalleryRepository) UpdateAlbum(ctx context.Context, album *models.GalleryAlbum) error {
	album.UpdatedAt = time.Now().UTC()
	query := `UPDATE gallery_albums SET title = :title, description = :description, event_date = :event_date,
cover_photo_id = :cover_photo_id, published = :published, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, album); err != nil {
		return fmt.Errorf("update album: %w", err)
	}
	return nil
}

// DeleteAlbum removes an album and returns the photos that belonged to it so files can be cleaned up.
func (r *GalleryRepository) DeleteAlbum(ctx context.Context, id string) (photos []models.GalleryPhoto, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin delete album: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := fmt.Sprintf("SELECT %s FROM gallery_photos WHERE album_id = $1", photoColumns)
	if err = tx.SelectContext(ctx, &photos, query, id); err != nil {
		return nil, fmt.Errorf("list album photos: %w", err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM gallery_photos WHERE album_id = $1", id); err != nil {
		return nil, fmt.Errorf("delete album photos: %w", err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM gallery_albums WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("delete album: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit delete album: %w", err)
	}
	return photos, nil
}

// ListPhotos returns the photos of an album in upload order.
func (r *GalleryRepository) ListPhotos(ctx context.Context, albumID string) ([]models.GalleryPhoto, error) {
	query := fmt.Sprintf("SELECT %s FROM gallery_photos WHERE album_id = $1 ORDER BY created_at ASC", photoColumns)
	var photos []models.GalleryPhoto
	if err := r.db.SelectContext(ctx, &photos, query, albumID); err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	return photos, nil
}

// FindPhoto fetches photo metadata.
func (r *GalleryRepository) FindPhoto(ctx context.Context, id string) (*models.GalleryPhoto, error) {
	var photo models.GalleryPhoto
	query := fmt.Sprintf("SELECT %s FROM gallery_photos WHERE id = $1", photoColumns)
	if err := r.db.GetContext(ctx, &photo, query, id); err != nil {
		return nil, err
	}
	return &photo, nil
}

// CreatePhoto inserts photo metadata.
func (r *GalleryRepository) CreatePhoto(ctx context.Context, photo *models.GalleryPhoto) error {
	if photo.ID == "" {
		photo.ID = uuid.NewString()
	}
	if photo.CreatedAt.IsZero() {
		photo.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO gallery_photos (id, album_id, caption, file_path, thumbnail_path, mime_type, size_bytes, width, height, thumbnail_status, uploaded_by, created_at)
VALUES (:id, :album_id, :caption, :file_path, :thumbnail_path, :mime_type, :size_bytes, :width, :height, :thumbnail_status, :uploaded_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, photo); err != nil {
		return fmt.Errorf("create photo: %w", err)
	}
	return nil
}

// UpdateThumbnail records the outcome of thumbnail generation.
func (r *GalleryRepository) UpdateThumbnail(ctx context.Context, id string, status models.ThumbnailStatus, path *string, width, height *int) error {
	const query = `UPDATE gallery_photos SET thumbnail_status = $2, thumbnail_path = $3, width = COALESCE($4, width), height = COALESCE($5, height) WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, string(status), path, width, height); err != nil {
		return fmt.Errorf("update thumbnail: %w", err)
	}
	return nil
}

// DeletePhoto removes photo metadata.
func (r *GalleryRepository) DeletePhoto(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM gallery_photos WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	return nil
}
