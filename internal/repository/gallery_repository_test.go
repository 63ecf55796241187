package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rugby-club-api/internal/models"
)

var photoRowColumns = []string{"id", "album_id", "caption", "file_path", "thumbnail_path", "mime_type", "size_bytes", "width", "height", "thumbnail_status", "uploaded_by", "created_at"}

func TestGalleryRepositoryListAlbumsPublishedOnly(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGalleryRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "title", "description", "event_date", "cover_photo_id", "published", "photo_count", "created_at", "updated_at"}).
		AddRow("al1", "Derby day", nil, now, nil, true, 12, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM gallery_albums a WHERE a.published = TRUE ORDER BY a.event_date DESC NULLS LAST")).
		WillReturnRows(rows)

	albums, err := repo.ListAlbums(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, albums, 1)
	assert.Equal(t, 12, albums[0].PhotoCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGalleryRepositoryDeleteAlbumReturnsPhotos(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGalleryRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM gallery_photos WHERE album_id = $1")).
		WithArgs("al1").
		WillReturnRows(sqlmock.NewRows(photoRowColumns).
			AddRow("p1", "al1", nil, "gallery/al1/p1.jpg", "gallery/al1/p1_thumb.jpg", "image/jpeg", 2048, 800, 600, "READY", nil, now))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM gallery_photos WHERE album_id = $1")).WithArgs("al1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM gallery_albums WHERE id = $1")).WithArgs("al1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	photos, err := repo.DeleteAlbum(context.Background(), "al1")
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, "gallery/al1/p1.jpg", photos[0].FilePath)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGalleryRepositoryUpdateThumbnail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGalleryRepository(db)

	path := "gallery/al1/p1_thumb.jpg"
	width, height := 1200, 900
	mock.ExpectExec("UPDATE gallery_photos SET thumbnail_status").
		WithArgs("p1", "READY", path, width, height).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateThumbnail(context.Background(), "p1", models.ThumbnailReady, &path, &width, &height))
	assert.NoError(t, mock.ExpectationsWereMet())
}
