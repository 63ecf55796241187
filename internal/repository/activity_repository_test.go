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

var activityRowColumns = []string{"id", "title", "description", "date", "start_time", "location", "max_participants", "participant_count", "created_by", "created_at", "updated_at"}

func TestActivityRepositoryListAppliesRangeAndOrder(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	rows := sqlmock.NewRows(activityRowColumns).
		AddRow("a1", "Open training", "", from, "18:30", "Main pitch", 20, 4, nil, now, now)
	mock.ExpectQuery(`SELECT a.id, a.title.+FROM activities a WHERE 1=1 AND a.date >= \$1::date AND a.date < \$2::date ORDER BY a.date DESC, a.start_time DESC NULLS FIRST LIMIT 50 OFFSET 0`).
		WithArgs(from, to).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM activities a WHERE 1=1 AND a.date >= $1::date AND a.date < $2::date")).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.ActivityFilter{From: &from, To: &to, SortOrder: "desc"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, 4, list[0].ParticipantCount)
	require.NotNil(t, list[0].MaxParticipants)
	assert.Equal(t, 20, *list[0].MaxParticipants)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryRegisterInsertsWithinCapacity(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT max_participants FROM activities WHERE id = $1 FOR UPDATE")).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"max_participants"}).AddRow(10))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM activity_participants WHERE activity_id = \\$1 AND LOWER\\(email\\)").
		WithArgs("a1", "fan@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM activity_participants WHERE activity_id = $1")).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(9))
	mock.ExpectExec("INSERT INTO activity_participants").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	participant := &models.ActivityParticipant{ActivityID: "a1", FullName: "Fan", Email: "fan@example.com"}
	require.NoError(t, repo.Register(context.Background(), participant))
	assert.NotEmpty(t, participant.ID)
	assert.False(t, participant.RegisteredAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryRegisterRejectsWhenFull(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT max_participants FROM activities WHERE id = $1 FOR UPDATE")).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"max_participants"}).AddRow(10))
	mock.ExpectQuery("LOWER\\(email\\)").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM activity_participants WHERE activity_id = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))
	mock.ExpectRollback()

	err := repo.Register(context.Background(), &models.ActivityParticipant{ActivityID: "a1", FullName: "Fan", Email: "fan@example.com"})
	assert.ErrorIs(t, err, ErrActivityFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryRegisterRejectsDuplicateEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"max_participants"}).AddRow(nil))
	mock.ExpectQuery("LOWER\\(email\\)").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.Register(context.Background(), &models.ActivityParticipant{ActivityID: "a1", FullName: "Fan", Email: "FAN@example.com"})
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryRegisterUnlimitedSkipsCount(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"max_participants"}).AddRow(nil))
	mock.ExpectQuery("LOWER\\(email\\)").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO activity_participants").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Register(context.Background(), &models.ActivityParticipant{ActivityID: "a1", FullName: "Fan", Email: "fan@example.com"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryCreateAndDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectExec("INSERT INTO activities").WillReturnResult(sqlmock.NewResult(1, 1))
	activity := &models.Activity{Title: "Club BBQ", Date: time.Now(), Location: "Clubhouse"}
	require.NoError(t, repo.Create(context.Background(), activity))
	assert.NotEmpty(t, activity.ID)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM activities WHERE id = $1")).
		WithArgs(activity.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), activity.ID))
	assert.NoError(t, mock.ExpectationsWereMet())
}
