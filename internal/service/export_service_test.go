package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/rugby-club-api/internal/models"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
	"github.com/noah-isme/rugby-club-api/pkg/storage"
)

func newExportServiceForTest(t *testing.T, activities *feedActivitiesStub, matches *feedMatchesStub) (*ExportService, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	club := NewClubService(&models.ClubProfile{Name: "Riverside RFC"}, nil)
	svc := NewExportService(activities, matches, store, signer, club, ExportConfig{APIPrefix: "/api/v1/", Retention: time.Hour}, zap.NewNop(), time.UTC)
	return svc, store
}

func TestExportServiceFixturesCSV(t *testing.T) {
	kickoff := "15:00"
	tournament := "County Cup"
	matches := &feedMatchesStub{items: []models.Match{
		{ID: "m1", Opponent: "Harbour RFC", IsHome: true, Venue: "The Meadows", MatchDate: time.Date(2024, 9, 7, 0, 0, 0, 0, time.UTC), KickoffTime: &kickoff, TournamentName: &tournament, Status: models.MatchStatusFinished, HomeScore: intPtr(24), AwayScore: intPtr(17)},
	}}
	svc, _ := newExportServiceForTest(t, &feedActivitiesStub{}, matches)

	result, err := svc.Fixtures(context.Background(), models.ExportRequest{Format: "CSV"})
	require.NoError(t, err)
	assert.Equal(t, models.ExportFormatCSV, result.Format)
	assert.Equal(t, 1, result.Rows)
	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/exports/"))
	assert.True(t, strings.HasPrefix(result.RelativePath, "exports/fixtures_"))

	file, name, err := svc.Open(result.Token)
	require.NoError(t, err)
	defer file.Close()
	assert.True(t, strings.HasSuffix(name, ".csv"))
	body, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Date,Kickoff,Opponent,H/A,Venue,Tournament,Status,Score")
	assert.Contains(t, string(body), "2024-09-07,15:00,Harbour RFC,Home,The Meadows,County Cup,FINISHED,24-17")
}

func TestExportServiceActivitiesPDF(t *testing.T) {
	activities := &feedActivitiesStub{items: []models.Activity{
		{ID: "a1", Title: "Quiz night", Date: time.Date(2024, 9, 6, 0, 0, 0, 0, time.UTC), Location: "Clubhouse", ParticipantCount: 12, MaxParticipants: intPtr(40)},
	}}
	svc, _ := newExportServiceForTest(t, activities, &feedMatchesStub{})
	from := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)

	result, err := svc.Activities(context.Background(), models.ExportRequest{Format: models.ExportFormatPDF, From: &from})
	require.NoError(t, err)
	assert.Equal(t, from, activities.from)

	file, _, err := svc.Open(result.Token)
	require.NoError(t, err)
	defer file.Close()
	header := make([]byte, 4)
	_, err = io.ReadFull(file, header)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(header))
}

func TestExportServiceRejectsUnknownFormatAndBadToken(t *testing.T) {
	svc, _ := newExportServiceForTest(t, &feedActivitiesStub{}, &feedMatchesStub{})

	_, err := svc.Fixtures(context.Background(), models.ExportRequest{Format: "xlsx"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, _, err = svc.Open("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestExportServiceCleanupRemovesOldFiles(t *testing.T) {
	svc, _ := newExportServiceForTest(t, &feedActivitiesStub{}, &feedMatchesStub{})
	_, err := svc.Activities(context.Background(), models.ExportRequest{})
	require.NoError(t, err)

	removed, err := svc.Cleanup(time.Hour)
	require.NoError(t, err)
	assert.Empty(t, removed)

	removed, err = svc.Cleanup(-1)
	require.NoError(t, err)
	assert.Empty(t, removed)

	svc.cfg.Retention = time.Nanosecond
	time.Sleep(5 * time.Millisecond)
	removed, err = svc.Cleanup(0)
	require.NoError(t, err)
	assert.Len(t, removed, 1)
}
