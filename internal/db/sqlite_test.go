package db

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrationsIsIdempotent(t *testing.T) {
	database, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "pomodoro.db"))
	require.NoError(t, err)
	defer database.Close()

	ctx := context.Background()
	applied, err := RunMigrations(ctx, database, Migrations())
	require.NoError(t, err)
	assert.Equal(t, []string{"001_completion_events.sql"}, applied)

	applied, err = RunMigrations(ctx, database, Migrations())
	require.NoError(t, err)
	assert.Empty(t, applied)

	var count int
	require.NoError(t, database.QueryRow(`SELECT COUNT(1) FROM completion_events`).Scan(&count))
	assert.Zero(t, count)
}

func TestRunMigrationsRollsBackFailure(t *testing.T) {
	database, err := OpenSQLite(filepath.Join(t.TempDir(), "pomodoro.db"))
	require.NoError(t, err)
	defer database.Close()

	migrations := fstest.MapFS{
		"001_ok.sql":     {Data: []byte(`CREATE TABLE ok (id INTEGER);`)},
		"002_broken.sql": {Data: []byte(`CREATE TABLE;`)},
		"README.txt":     {Data: []byte(`ignored`)},
	}

	applied, err := RunMigrations(context.Background(), database, migrations)
	require.Error(t, err)
	assert.Equal(t, []string{"001_ok.sql"}, applied)

	var count int
	require.NoError(t, database.QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&count))
	assert.Equal(t, 1, count)
}
