package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rugby-club-api/internal/models"
	"github.com/noah-isme/rugby-club-api/internal/service"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
	"github.com/noah-isme/rugby-club-api/pkg/realtime"
)

type matchServiceMock struct {
	filter models.MatchFilter
	scores chan realtime.Message
}

func (m *matchServiceMock) Location() *time.Location { return time.UTC }

func (m *matchServiceMock) List(ctx context.Context, filter models.MatchFilter) ([]models.Match, *models.Pagination, error) {
	m.filter = filter
	return []models.Match{}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (m *matchServiceMock) Next(ctx context.Context) (*service.NextMatch, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "no upcoming match")
}

func (m *matchServiceMock) Get(ctx context.Context, id string) (*models.Match, error) {
	return &models.Match{ID: id}, nil
}

func (m *matchServiceMock) CountdownTarget(ctx context.Context, id string) (time.Time, error) {
	return time.Time{}, sql.ErrNoRows
}

func (m *matchServiceMock) Create(ctx context.Context, req models.UpsertMatchRequest) (*models.Match, error) {
	return &models.Match{ID: "m1"}, nil
}

func (m *matchServiceMock) Update(ctx context.Context, id string, req models.UpsertMatchRequest) (*models.Match, error) {
	return &models.Match{ID: id}, nil
}

func (m *matchServiceMock) UpdateScore(ctx context.Context, id string, req models.UpdateScoreRequest) (*models.Match, error) {
	return &models.Match{ID: id}, nil
}

func (m *matchServiceMock) SubscribeScores(ctx context.Context, id string) (*realtime.Subscription, error) {
	return &realtime.Subscription{C: m.scores}, nil
}

func (m *matchServiceMock) Delete(ctx context.Context, id string) error { return nil }

func newMatchRouter(mock *matchServiceMock, gauge *gaugeStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewMatchHandler(mock, gauge)
	router := gin.New()
	router.GET("/matches", h.List)
	router.GET("/matches/next", h.Next)
	router.GET("/matches/:id/score/stream", h.Scores)
	return router
}

func TestMatchHandlerListFilters(t *testing.T) {
	mock := &matchServiceMock{}
	router := newMatchRouter(mock, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/matches?status=finished&tournament_id=t1&from=2024-09-01&page=2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mock.filter.Status)
	assert.Equal(t, models.MatchStatusFinished, *mock.filter.Status)
	assert.Equal(t, "t1", mock.filter.TournamentID)
	assert.Equal(t, 2, mock.filter.Page)
	require.NotNil(t, mock.filter.From)
	assert.Equal(t, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), *mock.filter.From)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/matches?status=abandoned", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMatchHandlerNextNotFound(t *testing.T) {
	router := newMatchRouter(&matchServiceMock{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/matches/next", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMatchHandlerScoresRelaysUpdates(t *testing.T) {
	scores := make(chan realtime.Message, 2)
	scores <- realtime.Message{Topic: "match:m1:score", Payload: []byte(`{"home_score":7,"away_score":0}`)}
	scores <- realtime.Message{Topic: "match:m1:score", Payload: []byte(`{"home_score":14,"away_score":0}`)}
	close(scores)
	gauge := &gaugeStub{}
	router := newMatchRouter(&matchServiceMock{scores: scores}, gauge)

	w := newStreamRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/matches/m1/score/stream", nil))

	body := w.Body.String()
	assert.Contains(t, body, `"home_score":7`)
	assert.Contains(t, body, `"home_score":14`)
	assert.Equal(t, 1, gauge.opened["score"])
	assert.Equal(t, 1, gauge.closed)
}
