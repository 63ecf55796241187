package models

import "time"

// StreamStatus tracks a live broadcast.
type StreamStatus string

const (
	StreamStatusUpcoming StreamStatus = "UPCOMING"
	StreamStatusLive     StreamStatus = "LIVE"
	StreamStatusEnded    StreamStatus = "ENDED"
)

// LiveStream is an embedded broadcast of a match or club event.
type LiveStream struct {
	ID          string       `db:"id" json:"id"`
	Title       string       `db:"title" json:"title"`
	Description *string      `db:"description" json:"description,omitempty"`
	StreamURL   string       `db:"stream_url" json:"stream_url"`
	Platform    *string      `db:"platform" json:"platform,omitempty"`
	MatchID     *string      `db:"match_id" json:"match_id,omitempty"`
	Status      StreamStatus `db:"status" json:"status"`
	AutoStart   bool         `db:"auto_start" json:"auto_start"`
	ScheduledAt time.Time    `db:"scheduled_at" json:"scheduled_at"`
	StartedAt   *time.Time   `db:"started_at" json:"started_at,omitempty"`
	EndedAt     *time.Time   `db:"ended_at" json:"ended_at,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// ChatMessage is a message posted in a stream's chat.
type ChatMessage struct {
	ID          string    `db:"id" json:"id"`
	StreamID    string    `db:"stream_id" json:"stream_id"`
	UserID      *string   `db:"user_id" json:"user_id,omitempty"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Body        string    `db:"body" json:"body"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// UpsertStreamRequest is the admin payload for streams.
type UpsertStreamRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=2000"`
	StreamURL   string    `json:"stream_url" validate:"required,url"`
	Platform    *string   `json:"platform" validate:"omitempty,max=50"`
	MatchID     *string   `json:"match_id" validate:"omitempty,uuid"`
	AutoStart   bool      `json:"auto_start"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
}

// UpdateStreamStatusRequest moves a stream between states.
type UpdateStreamStatusRequest struct {
	Status StreamStatus `json:"status" validate:"required,stream_status"`
}

// PostChatMessageRequest is the public chat payload.
type PostChatMessageRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=50"`
	Body        string `json:"body" validate:"required,max=500"`
}
