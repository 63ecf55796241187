package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rugby-club-api/internal/calendar"
	"github.com/noah-isme/rugby-club-api/internal/middleware"
	"github.com/noah-isme/rugby-club-api/internal/models"
	"github.com/noah-isme/rugby-club-api/internal/service"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
)

// streamRecorder lets gin's Stream run against an in-memory response.
type streamRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}
}

func (r *streamRecorder) CloseNotify() <-chan bool {
	return r.closed
}

type gaugeStub struct {
	opened map[string]int
	closed int
}

func (g *gaugeStub) StreamOpened(kind string) func() {
	if g.opened == nil {
		g.opened = map[string]int{}
	}
	g.opened[kind]++
	return func() { g.closed++ }
}

type activityServiceMock struct {
	listReq      service.ActivityListRequest
	viewer       models.Viewer
	year         int
	month        time.Month
	target       time.Time
	registerErr  error
	registerBody models.RegisterParticipantRequest
}

func (m *activityServiceMock) Location() *time.Location { return time.UTC }

func (m *activityServiceMock) List(ctx context.Context, req service.ActivityListRequest) ([]models.Activity, *models.Pagination, error) {
	m.listReq = req
	return []models.Activity{{ID: "a1", Title: "Quiz night"}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (m *activityServiceMock) Get(ctx context.Context, id string, viewer models.Viewer) (*calendar.ActivityDetail, error) {
	m.viewer = viewer
	if id != "a1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
	}
	return &calendar.ActivityDetail{Activity: models.Activity{ID: "a1"}}, nil
}

func (m *activityServiceMock) CountdownTarget(ctx context.Context, id string) (time.Time, error) {
	return m.target, nil
}

func (m *activityServiceMock) Calendar(ctx context.Context, year int, month time.Month, viewer models.Viewer) (*service.CalendarView, bool, error) {
	m.year, m.month, m.viewer = year, month, viewer
	return &service.CalendarView{MonthGrid: calendar.BuildMonth(year, month, nil, time.UTC), IsAdmin: viewer.IsAdmin}, true, nil
}

func (m *activityServiceMock) Create(ctx context.Context, req models.UpsertActivityRequest, viewer models.Viewer) (*models.Activity, error) {
	return &models.Activity{ID: "new", Title: req.Title}, nil
}

func (m *activityServiceMock) Update(ctx context.Context, id string, req models.UpsertActivityRequest) (*models.Activity, error) {
	return &models.Activity{ID: id, Title: req.Title}, nil
}

func (m *activityServiceMock) Delete(ctx context.Context, id string) error { return nil }

func (m *activityServiceMock) Register(ctx context.Context, id string, req models.RegisterParticipantRequest, viewer models.Viewer) (*models.ActivityParticipant, error) {
	m.registerBody = req
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	return &models.ActivityParticipant{ID: "p1", ActivityID: id, FullName: req.FullName, Email: req.Email}, nil
}

func (m *activityServiceMock) Participants(ctx context.Context, id string) ([]models.ActivityParticipant, error) {
	return []models.ActivityParticipant{}, nil
}

func newActivityRouter(mock *activityServiceMock, gauge *gaugeStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewActivityHandler(mock, gauge)
	h.now = func() time.Time { return time.Date(2024, 9, 15, 10, 0, 0, 0, time.UTC) }
	router := gin.New()
	router.Use(middleware.WithResponseMeta(), middleware.Viewer(nil))
	router.GET("/activities", h.List)
	router.GET("/activities/calendar", h.Calendar)
	router.GET("/activities/:id", h.Get)
	router.POST("/activities/:id/register", h.Register)
	router.GET("/activities/:id/countdown/stream", h.Countdown)
	router.GET("/admin/activities/calendar", h.AdminCalendar)
	return router
}

func TestActivityHandlerListParsesRange(t *testing.T) {
	mock := &activityServiceMock{}
	router := newActivityRouter(mock, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/activities?from=2024-09-01&to=2024-10-01&page=2&search=+quiz+", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mock.listReq.From)
	assert.Equal(t, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), *mock.listReq.From)
	assert.Equal(t, 2, mock.listReq.Page)
	assert.Equal(t, "quiz", mock.listReq.Search)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/activities?from=09/01/2024", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActivityHandlerCalendarDefaultsToCurrentMonth(t *testing.T) {
	mock := &activityServiceMock{}
	router := newActivityRouter(mock, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/activities/calendar", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2024, mock.year)
	assert.Equal(t, time.September, mock.month)

	var body struct {
		Data struct {
			IsAdmin bool `json:"is_admin"`
		} `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Data.IsAdmin)
	assert.Equal(t, true, body.Meta["cache_hit"])
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/activities/calendar?month=2025-13", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActivityHandlerAdminCalendarFlagsAdmin(t *testing.T) {
	mock := &activityServiceMock{}
	router := newActivityRouter(mock, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/activities/calendar?month=2024-02", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mock.viewer.IsAdmin)
	assert.Equal(t, time.February, mock.month)
}

func TestActivityHandlerGetUsesLocale(t *testing.T) {
	mock := &activityServiceMock{}
	router := newActivityRouter(mock, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/activities/a1?lang=fr", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fr", mock.viewer.Locale)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/activities/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestActivityHandlerRegister(t *testing.T) {
	mock := &activityServiceMock{}
	router := newActivityRouter(mock, nil)

	payload := `{"full_name":"Sam Jones","email":"sam@example.com"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/activities/a1/register", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "sam@example.com", mock.registerBody.Email)

	mock.registerErr = appErrors.Clone(appErrors.ErrCapacityReached, "activity is full")
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/activities/a1/register", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, appErrors.ErrCapacityReached.Status, w.Code)
}

func TestActivityHandlerCountdownStreamsUntilExpired(t *testing.T) {
	mock := &activityServiceMock{target: time.Date(2024, 9, 1, 18, 0, 0, 0, time.UTC)}
	gauge := &gaugeStub{}
	router := newActivityRouter(mock, gauge)

	w := newStreamRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/activities/a1/countdown/stream", nil))

	body := w.Body.String()
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, 1, strings.Count(body, "event:countdown"))
	assert.Contains(t, body, `"is_expired":true`)
	assert.Equal(t, 1, gauge.opened["countdown"])
	assert.Equal(t, 1, gauge.closed)
}
