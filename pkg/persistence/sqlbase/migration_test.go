package sqlbase

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMigrator_SortsByVersion(t *testing.T) {
	migrator, err := NewMigrator(slog.Default(), nil, []Migration{
		{Version: 3, SQL: "SELECT 3"},
		{Version: 1, SQL: "SELECT 1"},
		{Version: 2, SQL: "SELECT 2"},
	})
	require.NoError(t, err)

	versions := make([]int, 0, len(migrator.migrations))
	for _, migration := range migrator.migrations {
		versions = append(versions, migration.Version)
	}

	assert.Equal(t, []int{1, 2, 3}, versions)
}

func TestNewMigrator_RejectsDuplicateVersions(t *testing.T) {
	_, err := NewMigrator(slog.Default(), nil, []Migration{
		{Version: 1, SQL: "SELECT 1"},
		{Version: 1, SQL: "SELECT 2"},
	})
	require.ErrorIs(t, err, ErrDuplicateMigration)
}
