package models

import "time"

// ThumbnailStatus reports the async thumbnail pipeline state of a photo.
type ThumbnailStatus string

const (
	ThumbnailPending ThumbnailStatus = "PENDING"
	ThumbnailReady   ThumbnailStatus = "READY"
	ThumbnailFailed  ThumbnailStatus = "FAILED"
)

// GalleryAlbum groups photos from a match day or club event.
type GalleryAlbum struct {
	ID           string     `db:"id" json:"id"`
	Title        string     `db:"title" json:"title"`
	Description  *string    `db:"description" json:"description,omitempty"`
	EventDate    *time.Time `db:"event_date" json:"event_date,omitempty"`
	CoverPhotoID *string    `db:"cover_photo_id" json:"cover_photo_id,omitempty"`
	Published    bool       `db:"published" json:"published"`
	PhotoCount   int        `db:"photo_count" json:"photo_count"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// GalleryPhoto is a stored image. Paths stay server side; clients get signed URLs.
type GalleryPhoto struct {
	ID              string          `db:"id" json:"id"`
	AlbumID         string          `db:"album_id" json:"album_id"`
	Caption         *string         `db:"caption" json:"caption,omitempty"`
	FilePath        string          `db:"file_path" json:"-"`
	ThumbnailPath   *string         `db:"thumbnail_path" json:"-"`
	MimeType        string          `db:"mime_type" json:"mime_type"`
	SizeBytes       int64           `db:"size_bytes" json:"size_bytes"`
	Width           *int            `db:"width" json:"width,omitempty"`
	Height          *int            `db:"height" json:"height,omitempty"`
	ThumbnailStatus ThumbnailStatus `db:"thumbnail_status" json:"thumbnail_status"`
	UploadedBy      *string         `db:"uploaded_by" json:"uploaded_by,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	URL             string          `db:"-" json:"url,omitempty"`
	ThumbnailURL    string          `db:"-" json:"thumbnail_url,omitempty"`
}

// AlbumWithPhotos is the album detail payload.
type AlbumWithPhotos struct {
	GalleryAlbum
	Photos []GalleryPhoto `json:"photos"`
}

// UpsertAlbumRequest is the admin payload for albums.
type UpsertAlbumRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	EventDate   *time.Time `json:"event_date"`
	Published   *bool      `json:"published"`
}
