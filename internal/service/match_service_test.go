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
	"github.com/noah-isme/rugby-club-api/pkg/events"
	"github.com/noah-isme/rugby-club-api/pkg/realtime"
)

type matchStoreStub struct {
	items     map[string]*models.Match
	upcoming  []models.Match
	since     time.Time
	lastScore []interface{}
}

func (s *matchStoreStub) List(ctx context.Context, filter models.MatchFilter) ([]models.Match, int, error) {
	return s.upcoming, len(s.upcoming), nil
}

func (s *matchStoreStub) ListUpcoming(ctx context.Context, since time.Time, limit int) ([]models.Match, error) {
	s.since = since
	return s.upcoming, nil
}

func (s *matchStoreStub) FindByID(ctx context.Context, id string) (*models.Match, error) {
	if m, ok := s.items[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *matchStoreStub) Create(ctx context.Context, match *models.Match) error { return nil }

func (s *matchStoreStub) Update(ctx context.Context, match *models.Match) error { return nil }

func (s *matchStoreStub) UpdateScore(ctx context.Context, id string, home, away int, status models.MatchStatus, updatedAt time.Time) error {
	s.lastScore = []interface{}{id, home, away, status}
	return nil
}

func (s *matchStoreStub) Delete(ctx context.Context, id string) error { return nil }

func TestMatchServiceNextSkipsKickedOffFixtures(t *testing.T) {
	now := time.Date(2024, 9, 7, 15, 30, 0, 0, time.UTC)
	earlier, later := "14:00", "19:45"
	store := &matchStoreStub{upcoming: []models.Match{
		{ID: "m1", Opponent: "Early", MatchDate: time.Date(2024, 9, 7, 0, 0, 0, 0, time.UTC), KickoffTime: &earlier},
		{ID: "m2", Opponent: "Evening", MatchDate: time.Date(2024, 9, 7, 0, 0, 0, 0, time.UTC), KickoffTime: &later},
	}}
	svc := NewMatchService(store, nil, nil, nil, nil, nil, zap.NewNop(), time.UTC)
	svc.now = func() time.Time { return now }

	next, err := svc.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "m2", next.ID)
	assert.Equal(t, time.Date(2024, 9, 7, 0, 0, 0, 0, time.UTC), store.since)
	assert.Equal(t, int64(4), next.Countdown.Hours)
	assert.Equal(t, int64(15), next.Countdown.Minutes)
	assert.False(t, next.Countdown.IsExpired)
}

func TestMatchServiceNextKeepsFixtureDateWestOfUTC(t *testing.T) {
	eastern := time.FixedZone("EDT", -4*3600)
	kickoff := "19:00"
	store := &matchStoreStub{upcoming: []models.Match{
		{ID: "m1", Opponent: "Harbour RFC", MatchDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), KickoffTime: &kickoff},
	}}
	svc := NewMatchService(store, nil, nil, nil, nil, nil, zap.NewNop(), eastern)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 21, 0, 0, 0, eastern) }

	_, err := svc.Next(context.Background())
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), store.since)

	svc.now = func() time.Time { return time.Date(2026, 3, 10, 17, 0, 0, 0, eastern) }
	next, err := svc.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.Countdown.Hours)
}

func TestMatchServiceNextNotFound(t *testing.T) {
	svc := NewMatchService(&matchStoreStub{}, nil, nil, nil, nil, nil, zap.NewNop(), time.UTC)
	_, err := svc.Next(context.Background())
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestMatchServiceUpdateScoreBroadcastsAndPublishes(t *testing.T) {
	store := &matchStoreStub{items: map[string]*models.Match{
		"m1": {ID: "m1", Status: models.MatchStatusScheduled},
	}}
	broker := realtime.NewMemoryBroker(4)
	defer broker.Close()
	publisher := &recordingPublisher{}
	cacheRepo := newMemoryCacheRepo()
	require.NoError(t, cacheRepo.Set(context.Background(), StandingsKey("t1"), []int{1}, time.Minute))
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewMatchService(store, broker, cache, publisher, nil, nil, zap.NewNop(), time.UTC)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := svc.SubscribeScores(ctx, "m1")
	require.NoError(t, err)
	defer sub.Close()

	match, err := svc.UpdateScore(context.Background(), "m1", models.UpdateScoreRequest{HomeScore: intPtr(12), AwayScore: intPtr(7)})
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusLive, match.Status)
	assert.Equal(t, []interface{}{"m1", 12, 7, models.MatchStatusLive}, store.lastScore)
	assert.Equal(t, []string{events.MatchScoreUpdated}, publisher.types())
	assert.False(t, cacheRepo.has(StandingsKey("t1")))

	select {
	case msg := <-sub.C:
		var update models.ScoreUpdate
		require.NoError(t, json.Unmarshal(msg.Payload, &update))
		assert.Equal(t, 12, update.HomeScore)
		assert.Equal(t, 7, update.AwayScore)
	case <-time.After(time.Second):
		t.Fatal("score update not delivered")
	}
}

func TestMatchServiceUpdateScoreRejectsCancelled(t *testing.T) {
	store := &matchStoreStub{items: map[string]*models.Match{
		"m1": {ID: "m1", Status: models.MatchStatusCancelled},
	}}
	svc := NewMatchService(store, nil, nil, nil, nil, nil, zap.NewNop(), time.UTC)

	_, err := svc.UpdateScore(context.Background(), "m1", models.UpdateScoreRequest{HomeScore: intPtr(0), AwayScore: intPtr(0)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, store.lastScore)
}

func TestMatchServiceUpdateScoreValidatesStatus(t *testing.T) {
	store := &matchStoreStub{items: map[string]*models.Match{"m1": {ID: "m1"}}}
	svc := NewMatchService(store, nil, nil, nil, nil, nil, zap.NewNop(), time.UTC)

	_, err := svc.UpdateScore(context.Background(), "m1", models.UpdateScoreRequest{HomeScore: intPtr(3), AwayScore: intPtr(0), Status: "HALFTIME"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
