package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/rugby-club-api/internal/models"
)

const streamColumns = "id, title, description, stream_url, platform, match_id, status, auto_start, scheduled_at, started_at, ended_at, created_at, updated_at"

// StreamRepository persists live streams and their chat history.
type StreamRepository struct {
	db *sqlx.DB
}

// NewStreamRepository constructs a stream repository.
func NewStreamRepository(db *sqlx.DB) *StreamRepository {
	return &StreamRepository{db: db}
}

// List returns streams, optionally restricted to one status.
func (r *StreamRepository) List(ctx context.Context, status *models.StreamStatus) ([]models.LiveStream, error) {
	query := fmt.Sprintf("SELECT %s FROM live_streams", streamColumns)
	args := []interface{}{}
	if status != nil {
		query += " WHERE status = $1"
		args = append(args, string(*status))
	}
	query += " ORDER BY scheduled_at DESC"
	var streams []models.LiveStream
	if err := r.db.SelectContext(ctx, &streams, query, args...); err != nil {
		return nil, fmt.Errorf("list streams: %w", err)
	}
	return streams, nil
}

// FindByID fetches a stream.
func (r *StreamRepository) FindByID(ctx context.Context, id string) (*models.LiveStream, error) {
	var stream models.LiveStream
	query := fmt.Sprintf("SELECT %s FROM live_streams WHERE id = $1", streamColumns)
	if err := r.db.GetContext(ctx, &stream, query, id); err != nil {
		return nil, err
	}
	return &stream, nil
}

// Create inserts a stream.
func (r *StreamRepository) Create(ctx context.Context, stream *models.LiveStream) error {
	if stream.ID == "" {
		stream.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	stream.CreatedAt = now
	stream.UpdatedAt = now
	query := `INSERT INTO live_streams (id, title, description, stream_url, platform, match_id, status, auto_start, scheduled_at, started_at, ended_at, created_at, updated_at)
VALUES (:id, :title, :description, :stream_url, :platform, :match_id, :status, :auto_start, :scheduled_at, :started_at, :ended_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, stream); err != nil {
		return fmt.Errorf("create stream: %w", err)
	}
	return nil
}

// Update modifies a stream including its status timestamps.
func (r *StreamRepository) Update(ctx context.Context, stream *models.LiveStream) error {
	stream.UpdatedAt = time.Now().UTC()
	query := `UPDATE live_streams SET title = :title, description = :description, stream_url = :stream_url, platform = :platform,
match_id = :match_id, status = :status, auto_start = :auto_start, scheduled_at = :scheduled_at, started_at = :started_at,
ended_at = :ended_at, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, stream); err != nil {
		return fmt.Errorf("update stream: %w", err)
	}
	return nil
}

// Delete removes a stream and its chat.
func (r *StreamRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM live_streams WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete stream: %w", err)
	}
	return nil
}

// StartDue flips auto-start streams whose scheduled time has passed to LIVE.
func (r *StreamRepository) StartDue(ctx context.Context, now time.Time) (int64, error) {
	const query = `UPDATE live_streams SET status = 'LIVE', started_at = $1, updated_at = $1
WHERE status = 'UPCOMING' AND auto_start = TRUE AND scheduled_at <= $1`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("start due streams: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}

// EndStale marks LIVE streams started before cutoff as ENDED.
func (r *StreamRepository) EndStale(ctx context.Context, cutoff, now time.Time) (int64, error) {
	const query = `UPDATE live_streams SET status = 'ENDED', ended_at = $2, updated_at = $2
WHERE status = 'LIVE' AND COALESCE(started_at, scheduled_at) < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff, now)
	if err != nil {
		return 0, fmt.Errorf("end stale streams: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}

// CreateMessage stores a chat message.
func (r *StreamRepository) CreateMessage(ctx context.Context, message *models.ChatMessage) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO stream_chat_messages (id, stream_id, user_id, display_name, body, created_at)
VALUES (:id, :stream_id, :user_id, :display_name, :body, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, message); err != nil {
		return fmt.Errorf("create chat message: %w", err)
	}
	return nil
}

// RecentMessages returns up to limit latest messages in chronological order.
func (r *StreamRepository) RecentMessages(ctx context.Context, streamID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT id, stream_id, user_id, display_name, body, created_at FROM (
SELECT id, stream_id, user_id, display_name, body, created_at FROM stream_chat_messages WHERE stream_id = $1 ORDER BY created_at DESC LIMIT %d
) recent ORDER BY created_at ASC`, limit)
	var messages []models.ChatMessage
	if err := r.db.SelectContext(ctx, &messages, query, streamID); err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	return messages, nil
}
