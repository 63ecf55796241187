package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rugby-club-api/internal/models"
	"github.com/noah-isme/rugby-club-api/internal/service"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
)

type feedRendererStub struct {
	opts service.FeedOptions
}

func (s *feedRendererStub) Render(ctx context.Context, opts service.FeedOptions) (string, error) {
	s.opts = opts
	return "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n", nil
}

func TestFeedHandlerCalendar(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stub := &feedRendererStub{}
	h := NewFeedHandler(stub)
	router := gin.New()
	router.GET("/calendar.ics", h.Calendar)
	router.GET("/activities/feed.ics", h.Activities)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/calendar.ics?training=false&reminder=30", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "BEGIN:VCALENDAR")
	assert.True(t, stub.opts.IncludeMatches)
	assert.False(t, stub.opts.IncludeTraining)
	assert.Equal(t, 30*time.Minute, stub.opts.Reminder)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/activities/feed.ics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, stub.opts.IncludeMatches)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/calendar.ics?reminder=soon", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type exportServiceStub struct {
	req  models.ExportRequest
	path string
}

func (s *exportServiceStub) Location() *time.Location { return time.UTC }

func (s *exportServiceStub) Fixtures(ctx context.Context, req models.ExportRequest) (*models.ExportResult, error) {
	s.req = req
	return &models.ExportResult{Kind: models.ExportKindFixtures, Format: models.ExportFormatPDF, Token: "tok"}, nil
}

func (s *exportServiceStub) Activities(ctx context.Context, req models.ExportRequest) (*models.ExportResult, error) {
	s.req = req
	return &models.ExportResult{Kind: models.ExportKindActivities, Format: models.ExportFormatCSV, Token: "tok"}, nil
}

func (s *exportServiceStub) Open(token string) (*os.File, string, error) {
	if token != "tok" {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "export link invalid or expired")
	}
	file, err := os.Open(s.path)
	if err != nil {
		return nil, "", err
	}
	return file, filepath.Base(s.path), nil
}

func TestExportHandlerGenerateAndDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	path := filepath.Join(t.TempDir(), "fixtures_20240901_120000.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Opponent\n"), 0o600))
	stub := &exportServiceStub{path: path}
	h := NewExportHandler(stub)
	router := gin.New()
	router.GET("/admin/matches/export", h.Fixtures)
	router.GET("/exports/:token", h.Download)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/matches/export?format=pdf&to=2024-12-31", nil))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.ExportFormat("pdf"), stub.req.Format)
	require.NotNil(t, stub.req.To)
	assert.Nil(t, stub.req.From)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/exports/tok", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "fixtures_20240901_120000.csv")
	assert.Equal(t, "Date,Opponent\n", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/exports/forged", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
