package migrations

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyRunsEmbeddedScripts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS users")).WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := Apply(context.Background(), sqlx.NewDb(db, "sqlmock"))
	require.NoError(t, err)
	assert.Equal(t, []string{"001_rugby_club.sql"}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaDeclaresStandingsView(t *testing.T) {
	script, err := FS.ReadFile("001_rugby_club.sql")
	require.NoError(t, err)
	assert.Contains(t, string(script), "CREATE OR REPLACE VIEW tournament_standings")
	assert.Contains(t, string(script), "activity_participants_email_key")
}
