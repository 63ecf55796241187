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

func TestTeamRepositoryListFiltersActiveRole(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeamRepository(db)

	role := models.MemberRolePlayer
	active := true
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "full_name", "role", "position", "jersey_number", "photo_url", "bio", "active", "sort_order", "created_at", "updated_at"}).
		AddRow("m1", "Sam Hooker", "PLAYER", "Hooker", 2, nil, nil, true, 0, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + teamMemberColumns + " FROM team_members WHERE 1=1 AND role = $1 AND active = $2 ORDER BY sort_order ASC, jersey_number ASC NULLS LAST, full_name ASC LIMIT 100 OFFSET 0")).
		WithArgs("PLAYER", true).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM team_members WHERE 1=1 AND role = $1 AND active = $2")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	members, total, err := repo.List(context.Background(), models.TeamMemberFilter{Role: &role, Active: &active})
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, 2, *members[0].JerseyNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamRepositoryJerseyTaken(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeamRepository(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(9, "m1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := repo.JerseyTaken(context.Background(), 9, "m1")
	require.NoError(t, err)
	assert.True(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}
