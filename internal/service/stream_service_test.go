package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/rugby-club-api/internal/models"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
	"github.com/noah-isme/rugby-club-api/pkg/realtime"
)

type streamStoreStub struct {
	items      map[string]*models.LiveStream
	messages   []models.ChatMessage
	updated    *models.LiveStream
	sweepNow   time.Time
	sweepCut   time.Time
	started    int64
	ended      int64
	historyLen int
}

func (s *streamStoreStub) List(ctx context.Context, status *models.StreamStatus) ([]models.LiveStream, error) {
	var out []models.LiveStream
	for _, item := range s.items {
		if status == nil || item.Status == *status {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *streamStoreStub) FindByID(ctx context.Context, id string) (*models.LiveStream, error) {
	if item, ok := s.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *streamStoreStub) Create(ctx context.Context, stream *models.LiveStream) error {
	stream.ID = "s-new"
	return nil
}

func (s *streamStoreStub) Update(ctx context.Context, stream *models.LiveStream) error {
	s.updated = stream
	return nil
}

func (s *streamStoreStub) Delete(ctx context.Context, id string) error { return nil }

func (s *streamStoreStub) StartDue(ctx context.Context, now time.Time) (int64, error) {
	s.sweepNow = now
	return s.started, nil
}

func (s *streamStoreStub) EndStale(ctx context.Context, cutoff, now time.Time) (int64, error) {
	s.sweepCut = cutoff
	return s.ended, nil
}

func (s *streamStoreStub) CreateMessage(ctx context.Context, message *models.ChatMessage) error {
	message.ID = "msg-1"
	s.messages = append(s.messages, *message)
	return nil
}

func (s *streamStoreStub) RecentMessages(ctx context.Context, streamID string, limit int) ([]models.ChatMessage, error) {
	s.historyLen = limit
	return nil, nil
}

func TestStreamServicePostMessageBroadcasts(t *testing.T) {
	store := &streamStoreStub{items: map[string]*models.LiveStream{"s1": {ID: "s1", Status: models.StreamStatusLive}}}
	broker := realtime.NewMemoryBroker(4)
	defer broker.Close()
	metrics := NewMetricsService()
	svc := NewStreamService(store, broker, metrics, nil, zap.NewNop(), StreamServiceConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := svc.Subscribe(ctx, "s1")
	require.NoError(t, err)
	defer sub.Close()

	msg, err := svc.PostMessage(context.Background(), "s1", models.PostChatMessageRequest{DisplayName: " Prop ", Body: " Come on! "}, models.Viewer{})
	require.NoError(t, err)
	assert.Equal(t, "Prop", msg.DisplayName)
	assert.Equal(t, "Come on!", msg.Body)
	require.Len(t, store.messages, 1)

	select {
	case delivered := <-sub.C:
		var decoded models.ChatMessage
		require.NoError(t, json.Unmarshal(delivered.Payload, &decoded))
		assert.Equal(t, "Come on!", decoded.Body)
		assert.Equal(t, ChatTopic("s1"), delivered.Topic)
	case <-time.After(time.Second):
		t.Fatal("chat message not delivered")
	}
	assert.Equal(t, uint64(1), metrics.Snapshot().ChatMessages)
}

func TestStreamServicePostMessageRejectsEndedStream(t *testing.T) {
	store := &streamStoreStub{items: map[string]*models.LiveStream{"s1": {ID: "s1", Status: models.StreamStatusEnded}}}
	svc := NewStreamService(store, nil, nil, nil, zap.NewNop(), StreamServiceConfig{})

	_, err := svc.PostMessage(context.Background(), "s1", models.PostChatMessageRequest{DisplayName: "Fan", Body: "hello"}, models.Viewer{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	_, err = svc.PostMessage(context.Background(), "s1", models.PostChatMessageRequest{DisplayName: "Fan", Body: "   "}, models.Viewer{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStreamServiceSetStatusStampsTimes(t *testing.T) {
	now := time.Date(2024, 9, 7, 15, 0, 0, 0, time.UTC)
	store := &streamStoreStub{items: map[string]*models.LiveStream{"s1": {ID: "s1", Status: models.StreamStatusUpcoming}}}
	svc := NewStreamService(store, nil, nil, nil, zap.NewNop(), StreamServiceConfig{})
	svc.now = func() time.Time { return now }

	stream, err := svc.SetStatus(context.Background(), "s1", models.UpdateStreamStatusRequest{Status: "live"})
	require.NoError(t, err)
	assert.Equal(t, models.StreamStatusLive, stream.Status)
	require.NotNil(t, stream.StartedAt)
	assert.Equal(t, now, *stream.StartedAt)
	assert.Nil(t, stream.EndedAt)

	store.items["s1"] = store.updated
	stream, err = svc.SetStatus(context.Background(), "s1", models.UpdateStreamStatusRequest{Status: models.StreamStatusEnded})
	require.NoError(t, err)
	require.NotNil(t, stream.EndedAt)

	store.items["s1"] = store.updated
	_, err = svc.SetStatus(context.Background(), "s1", models.UpdateStreamStatusRequest{Status: models.StreamStatusLive})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStreamServiceSweepUsesMaxDuration(t *testing.T) {
	now := time.Date(2024, 9, 7, 20, 0, 0, 0, time.UTC)
	store := &streamStoreStub{started: 1, ended: 2}
	svc := NewStreamService(store, nil, nil, nil, zap.NewNop(), StreamServiceConfig{MaxDuration: 3 * time.Hour})
	svc.now = func() time.Time { return now }

	result, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Started: 1, Ended: 2}, result)
	assert.Equal(t, now, store.sweepNow)
	assert.Equal(t, now.Add(-3*time.Hour), store.sweepCut)
}

func TestStreamServiceListValidatesStatusAndMessagesDefault(t *testing.T) {
	store := &streamStoreStub{items: map[string]*models.LiveStream{
		"s1": {ID: "s1", Status: models.StreamStatusLive},
		"s2": {ID: "s2", Status: models.StreamStatusUpcoming},
	}}
	svc := NewStreamService(store, nil, nil, nil, zap.NewNop(), StreamServiceConfig{HistoryLimit: 25})

	live, err := svc.List(context.Background(), "live")
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "s1", live[0].ID)

	_, err = svc.List(context.Background(), "paused")
	require.Error(t, err)

	messages, err := svc.Messages(context.Background(), "s1")
	require.NoError(t, err)
	assert.NotNil(t, messages)
	assert.Equal(t, 25, store.historyLen)
}
