package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/dukex/operion-assistant/pkg/persistence/persistencetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPersistence(t *testing.T) {
	// Test with regular path
	persistence := NewPersistence("/tmp/test")
	assert.Equal(t, "/tmp/test", persistence.root)

	// Test with file:// prefix
	persistence = NewPersistence("file:///tmp/test")
	assert.Equal(t, "/tmp/test", persistence.root)
}

func TestPersistence_Close(t *testing.T) {
	persistence := NewPersistence("./test-data")
	err := persistence.Close(t.Context())
	assert.NoError(t, err)
}

func TestPersistence_Suite(t *testing.T) {
	persistencetest.RunSuite(context.Background(), t, NewPersistence(t.TempDir()))
}

func TestPersistence_SaveContext_WritesJSONFile(t *testing.T) {
	testDir := t.TempDir()
	persistence := NewPersistence(testDir)

	session := models.NewSessionContext(models.SessionKey{AgentID: "agent-1", SessionID: "session-1"})
	session.AppendTurn(models.RoleUser, "hello")

	err := persistence.SaveContext(t.Context(), session)
	require.NoError(t, err)

	filePath := filepath.Join(testDir, "sessions", "agent-1", "session-1.json")
	assert.FileExists(t, filePath)
	assert.False(t, session.UpdatedAt.IsZero())

	entries, err := os.ReadDir(filepath.Dir(filePath))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPersistence_SessionPathIsEscaped(t *testing.T) {
	testDir := t.TempDir()
	persistence := NewPersistence(testDir)

	key := models.SessionKey{AgentID: "../agent", SessionID: "../../etc/passwd"}
	path := persistence.sessionPath(key)

	rel, err := filepath.Rel(filepath.Join(testDir, "sessions"), path)
	require.NoError(t, err)
	assert.NotContains(t, rel, "..")

	require.NoError(t, persistence.SaveContext(t.Context(), models.NewSessionContext(key)))

	loaded, err := persistence.GetContext(t.Context(), key)
	require.NoError(t, err)
	assert.Equal(t, key, loaded.Key)
}

func TestPersistence_HealthCheck(t *testing.T) {
	persistence := NewPersistence(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, persistence.HealthCheck(t.Context()), os.ErrNotExist)
}
