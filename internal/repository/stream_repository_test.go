package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamRepositorySweepQueries(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStreamRepository(db)

	now := time.Date(2024, 9, 7, 15, 0, 0, 0, time.UTC)
	cutoff := now.Add(-4 * time.Hour)
	mock.ExpectExec("WHERE status = 'UPCOMING' AND auto_start = TRUE AND scheduled_at <= \\$1").
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("WHERE status = 'LIVE' AND COALESCE\\(started_at, scheduled_at\\) < \\$1").
		WithArgs(cutoff, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	started, err := repo.StartDue(context.Background(), now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, started)
	ended, err := repo.EndStale(context.Background(), cutoff, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, ended)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStreamRepositoryRecentMessagesChronological(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStreamRepository(db)

	base := time.Date(2024, 9, 7, 15, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "stream_id", "user_id", "display_name", "body", "created_at"}).
		AddRow("c1", "s1", nil, "Fan", "Come on!", base).
		AddRow("c2", "s1", nil, "Coach", "Great try", base.Add(time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT 20\n) recent ORDER BY created_at ASC")).
		WithArgs("s1").
		WillReturnRows(rows)

	messages, err := repo.RecentMessages(context.Background(), "s1", 20)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "c1", messages[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
