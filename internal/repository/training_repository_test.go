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

func TestTrainingRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTrainingRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "description", "age_group", "coach_name", "location", "recurrence", "starts_on", "start_time", "duration_minutes", "ends_on", "excluded_dates", "active", "created_at", "updated_at"}).
		AddRow("tp1", "Senior squad", nil, "Senior", "Alex", "Main pitch", "FREQ=WEEKLY;BYDAY=TU,TH", now, "19:00", 90, nil, "{2024-12-24,2024-12-26}", true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM training_programs WHERE active = TRUE ORDER BY name ASC")).
		WillReturnRows(rows)

	programs, err := repo.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, programs, 1)
	assert.Equal(t, []string{"2024-12-24", "2024-12-26"}, []string(programs[0].ExcludedDates))
	assert.NoError(t, mock.ExpectationsWereMet())
}
