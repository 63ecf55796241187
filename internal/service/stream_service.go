package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/rugby-club-api/internal/models"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
	"github.com/noah-isme/rugby-club-api/pkg/realtime"
)

type streamStore interface {
	List(ctx context.Context, status *models.StreamStatus) ([]models.LiveStream, error)
	FindByID(ctx context.Context, id string) (*models.LiveStream, error)
	Create(ctx context.Context, stream *models.LiveStream) error
	Update(ctx context.Context, stream *models.LiveStream) error
	Delete(ctx context.Context, id string) error
	StartDue(ctx context.Context, now time.Time) (int64, error)
	EndStale(ctx context.Context, cutoff, now time.Time) (int64, error)
	CreateMessage(ctx context.Context, message *models.ChatMessage) error
	RecentMessages(ctx context.Context, streamID string, limit int) ([]models.ChatMessage, error)
}

// ChatTopic is the realtime topic carrying chat messages for a stream.
func ChatTopic(streamID string) string {
	return "stream:" + streamID + ":chat"
}

// StreamServiceConfig tunes chat history and the sweep window.
type StreamServiceConfig struct {
	HistoryLimit int
	MaxDuration  time.Duration
}

// SweepResult reports how many streams a sweep moved.
type SweepResult struct {
	Started int64 `json:"started"`
	Ended   int64 `json:"ended"`
}

// StreamService manages live stream listings and their chat.
type StreamService struct {
	repo      streamStore
	broker    realtime.Broker
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       StreamServiceConfig
	now       func() time.Time
}

// NewStreamService constructs the service.
func NewStreamService(repo streamStore, broker realtime.Broker, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg StreamServiceConfig) *StreamService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 50
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = 4 * time.Hour
	}
	return &StreamService{
		repo:      repo,
		broker:    broker,
		metrics:   metrics,
		validator: ensureValidator(validate),
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// List returns streams, optionally filtered by status.
func (s *StreamService) List(ctx context.Context, status string) ([]models.LiveStream, error) {
	var filter *models.StreamStatus
	if status = strings.TrimSpace(status); status != "" {
		st := models.StreamStatus(strings.ToUpper(status))
		if err := s.validator.Var(string(st), "stream_status"); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid stream status")
		}
		filter = &st
	}
	streams, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list streams")
	}
	return streams, nil
}

// Get returns a stream by id.
func (s *StreamService) Get(ctx context.Context, id string) (*models.LiveStream, error) {
	stream, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "stream not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load stream")
	}
	return stream, nil
}

// Create schedules a stream.
func (s *StreamService) Create(ctx context.Context, req models.UpsertStreamRequest) (*models.LiveStream, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid stream payload")
	}
	stream := &models.LiveStream{Status: models.StreamStatusUpcoming}
	applyStreamRequest(stream, req)
	if err := s.repo.Create(ctx, stream); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create stream")
	}
	return stream, nil
}

// Update replaces stream metadata without touching its status.
func (s *StreamService) Update(ctx context.Context, id string, req models.UpsertStreamRequest) (*models.LiveStream, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid stream payload")
	}
	stream, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyStreamRequest(stream, req)
	if err := s.repo.Update(ctx, stream); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update stream")
	}
	return stream, nil
}

// SetStatus moves a stream forward through UPCOMING, LIVE and ENDED.
func (s *StreamService) SetStatus(ctx context.Context, id string, req models.UpdateStreamStatusRequest) (*models.LiveStream, error) {
	req.Status = models.StreamStatus(strings.ToUpper(string(req.Status)))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid stream status")
	}
	stream, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if stream.Status == req.Status {
		return stream, nil
	}
	if stream.Status == models.StreamStatusEnded {
		return nil, appErrors.Clone(appErrors.ErrConflict, "stream already ended")
	}
	now := s.now().UTC()
	switch req.Status {
	case models.StreamStatusLive:
		stream.StartedAt = &now
		stream.EndedAt = nil
	case models.StreamStatusEnded:
		if stream.StartedAt == nil {
			stream.StartedAt = &now
		}
		stream.EndedAt = &now
	case models.StreamStatusUpcoming:
		return nil, appErrors.Clone(appErrors.ErrConflict, "live stream cannot return to upcoming")
	}
	stream.Status = req.Status
	if err := s.repo.Update(ctx, stream); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update stream status")
	}
	return stream, nil
}

// Delete removes a stream.
func (s *StreamService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete stream")
	}
	return nil
}

// Messages returns the recent chat history of a stream.
func (s *StreamService) Messages(ctx context.Context, id string) ([]models.ChatMessage, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	messages, err := s.repo.RecentMessages(ctx, id, s.cfg.HistoryLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load chat")
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	return messages, nil
}

// PostMessage stores a chat message and fans it out to live subscribers.
func (s *StreamService) PostMessage(ctx context.Context, id string, req models.PostChatMessageRequest, viewer models.Viewer) (*models.ChatMessage, error) {
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	req.Body = strings.TrimSpace(req.Body)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid chat message")
	}
	stream, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if stream.Status == models.StreamStatusEnded {
		return nil, appErrors.Clone(appErrors.ErrConflict, "chat is closed for this stream")
	}
	message := &models.ChatMessage{
		StreamID:    id,
		UserID:      viewer.UserID(),
		DisplayName: req.DisplayName,
		Body:        req.Body,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to post message")
	}
	s.broadcast(ctx, message)
	return message, nil
}

// Subscribe opens a live chat subscription for a stream.
func (s *StreamService) Subscribe(ctx context.Context, id string) (*realtime.Subscription, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if s.broker == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "live chat unavailable")
	}
	sub, err := s.broker.Subscribe(ctx, ChatTopic(id))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to subscribe to chat")
	}
	return sub, nil
}

// Sweep starts due auto-start streams and ends streams live for longer than MaxDuration.
func (s *StreamService) Sweep(ctx context.Context) (SweepResult, error) {
	now := s.now().UTC()
	started, err := s.repo.StartDue(ctx, now)
	if err != nil {
		return SweepResult{}, err
	}
	ended, err := s.repo.EndStale(ctx, now.Add(-s.cfg.MaxDuration), now)
	if err != nil {
		return SweepResult{Started: started}, err
	}
	if started > 0 || ended > 0 {
		s.logger.Info("stream sweep", zap.Int64("started", started), zap.Int64("ended", ended))
	}
	return SweepResult{Started: started, Ended: ended}, nil
}

func (s *StreamService) broadcast(ctx context.Context, message *models.ChatMessage) {
	if s.broker == nil {
		return
	}
	payload, err := json.Marshal(message)
	if err != nil {
		s.logger.Warn("encode chat message failed", zap.Error(err))
		return
	}
	if err := s.broker.Publish(ctx, ChatTopic(message.StreamID), payload); err != nil {
		s.logger.Warn("publish chat message failed", zap.String("stream_id", message.StreamID), zap.Error(err))
		return
	}
	s.metrics.ChatMessagePublished()
}

func applyStreamRequest(stream *models.LiveStream, req models.UpsertStreamRequest) {
	stream.Title = strings.TrimSpace(req.Title)
	stream.Description = req.Description
	stream.StreamURL = strings.TrimSpace(req.StreamURL)
	stream.Platform = req.Platform
	stream.MatchID = req.MatchID
	stream.AutoStart = req.AutoStart
	stream.ScheduledAt = req.ScheduledAt.UTC()
}
