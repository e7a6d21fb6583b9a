// Package file provides file-based persistence for session contexts, one JSON document
// per session.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/dukex/operion-assistant/pkg/persistence"
)

const sessionsDir = "sessions"

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root string
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{root: cleanRoot}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) GetContext(_ context.Context, key models.SessionKey) (*models.SessionContext, error) {
	body, err := os.ReadFile(fp.sessionPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewSessionError("GetContext", key.String(), persistence.ErrSessionNotFound)
		}

		return nil, persistence.NewSessionError("GetContext", key.String(), fmt.Errorf("failed to read session: %w", err))
	}

	var session models.SessionContext

	err = json.Unmarshal(body, &session)
	if err != nil {
		return nil, persistence.NewSessionError("GetContext", key.String(), fmt.Errorf("failed to unmarshal session: %w", err))
	}

	return &session, nil
}

// SaveContext writes the session through a temporary file and a rename, so readers
// never observe a partially written document.
func (fp *Persistence) SaveContext(_ context.Context, session *models.SessionContext) error {
	if session == nil || session.Key.SessionID == "" {
		return persistence.NewSessionError("SaveContext", "", persistence.ErrInvalidSession)
	}

	key := session.Key.String()
	filePath := fp.sessionPath(session.Key)

	err := os.MkdirAll(filepath.Dir(filePath), 0750)
	if err != nil {
		return persistence.NewSessionError("SaveContext", key, fmt.Errorf("failed to create sessions directory: %w", err))
	}

	session.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return persistence.NewSessionError("SaveContext", key, fmt.Errorf("failed to marshal session: %w", err))
	}

	tmp, err := os.CreateTemp(filepath.Dir(filePath), ".session-*")
	if err != nil {
		return persistence.NewSessionError("SaveContext", key, err)
	}

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()

	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(tmp.Name())

		return persistence.NewSessionError("SaveContext", key, fmt.Errorf("failed to write session: %w", err))
	}

	err = os.Rename(tmp.Name(), filePath)
	if err != nil {
		_ = os.Remove(tmp.Name())

		return persistence.NewSessionError("SaveContext", key, fmt.Errorf("failed to write session: %w", err))
	}

	return nil
}

func (fp *Persistence) DeleteContext(_ context.Context, key models.SessionKey) error {
	err := os.Remove(fp.sessionPath(key))
	if err != nil && !os.IsNotExist(err) {
		return persistence.NewSessionError("DeleteContext", key.String(), err)
	}

	return nil
}

// sessionPath escapes the key parts so ids can never leave the sessions directory.
func (fp *Persistence) sessionPath(key models.SessionKey) string {
	agent := key.AgentID
	if agent == "" {
		agent = "_"
	}

	return filepath.Join(fp.root, sessionsDir, url.PathEscape(agent), url.PathEscape(key.SessionID)+".json")
}
