package postgres

import (
	"context"
	"strings"
	"testing"

	"github.com/phrazzld/taskmanager-api/internal/platform/postgres/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateRejectsUnknownCommand(t *testing.T) {
	db, _ := newMockDB(t)

	err := Migrate(context.Background(), db, "sideways", nil)
	assert.ErrorContains(t, err, `unknown migration command "sideways"`)
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrations.FS.ReadDir(".")
	require.NoError(t, err)

	var sqlFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			sqlFiles = append(sqlFiles, e.Name())
		}
	}
	assert.Len(t, sqlFiles, 2)

	for _, name := range sqlFiles {
		body, err := migrations.FS.ReadFile(name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}
}
