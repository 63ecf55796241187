package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rugby-club-api/internal/models"
)

var matchRowColumns = []string{"id", "tournament_id", "tournament_name", "opponent", "is_home", "venue", "match_date", "kickoff_time", "status", "home_score", "away_score", "notes", "created_at", "updated_at"}

func TestMatchRepositoryListUpcoming(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMatchRepository(db)

	since := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	kickoff := time.Date(2024, 9, 7, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(matchRowColumns).
		AddRow("m1", "t1", "County League", "Harbour RFC", true, "Home Park", kickoff, "15:00", "SCHEDULED", nil, nil, nil, since, since)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE m.status = $1 AND m.match_date >= $2::date ORDER BY m.match_date ASC, m.kickoff_time ASC NULLS FIRST LIMIT 1")).
		WithArgs("SCHEDULED", since).
		WillReturnRows(rows)

	matches, err := repo.ListUpcoming(context.Background(), since, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "County League", *matches[0].TournamentName)
	assert.Equal(t, "15:00", matches[0].Kickoff())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepositoryListFiltersStatusAndTournament(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMatchRepository(db)

	status := models.MatchStatusFinished
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND m.status = $1 AND m.tournament_id = $2 ORDER BY m.match_date DESC")).
		WithArgs("FINISHED", "t1").
		WillReturnRows(sqlmock.NewRows(matchRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM matches m WHERE 1=1 AND m.status = $1 AND m.tournament_id = $2")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	matches, total, err := repo.List(context.Background(), models.MatchFilter{Status: &status, TournamentID: "t1", SortOrder: "desc"})
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepositoryUpdateScore(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMatchRepository(db)

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE matches SET home_score = $2, away_score = $3, status = $4, updated_at = $5 WHERE id = $1")).
		WithArgs("m1", 21, 14, "LIVE", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateScore(context.Background(), "m1", 21, 14, models.MatchStatusLive, now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTournamentRepositoryStandings(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTournamentRepository(db)

	rows := sqlmock.NewRows([]string{"tournament_id", "position", "team_name", "played", "won", "drawn", "lost", "points_for", "points_against", "points_diff", "bonus_points", "total_points"}).
		AddRow("t1", 1, "Our Club", 5, 4, 0, 1, 120, 70, 50, 3, 19).
		AddRow("t1", 2, "Harbour RFC", 5, 3, 1, 1, 100, 80, 20, 2, 16)
	mock.ExpectQuery(regexp.QuoteMeta("FROM tournament_standings WHERE tournament_id = $1 ORDER BY position ASC")).
		WithArgs("t1").
		WillReturnRows(rows)

	standings, err := repo.Standings(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, standings, 2)
	assert.Equal(t, "Our Club", standings[0].TeamName)
	assert.Equal(t, 19, standings[0].TotalPoints)
	assert.NoError(t, mock.ExpectationsWereMet())
}
