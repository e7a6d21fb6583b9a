// Package memory provides an in-process persistence implementation for session contexts.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/dukex/operion-assistant/pkg/persistence"
)

// Persistence keeps serialized session contexts in a map, so callers never share
// mutable state with the store or with each other.
type Persistence struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

func NewPersistence() *Persistence {
	return &Persistence{sessions: make(map[string][]byte)}
}

func (p *Persistence) GetContext(_ context.Context, key models.SessionKey) (*models.SessionContext, error) {
	p.mu.RLock()
	data, ok := p.sessions[key.String()]
	p.mu.RUnlock()

	if !ok {
		return nil, persistence.NewSessionError("GetContext", key.String(), persistence.ErrSessionNotFound)
	}

	var session models.SessionContext

	err := json.Unmarshal(data, &session)
	if err != nil {
		return nil, persistence.NewSessionError("GetContext", key.String(), fmt.Errorf("failed to unmarshal session: %w", err))
	}

	return &session, nil
}

func (p *Persistence) SaveContext(_ context.Context, session *models.SessionContext) error {
	if session == nil || session.Key.SessionID == "" {
		return persistence.NewSessionError("SaveContext", "", persistence.ErrInvalidSession)
	}

	session.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(session)
	if err != nil {
		return persistence.NewSessionError("SaveContext", session.Key.String(), fmt.Errorf("failed to marshal session: %w", err))
	}

	p.mu.Lock()
	p.sessions[session.Key.String()] = data
	p.mu.Unlock()

	return nil
}

func (p *Persistence) DeleteContext(_ context.Context, key models.SessionKey) error {
	p.mu.Lock()
	delete(p.sessions, key.String())
	p.mu.Unlock()

	return nil
}

func (p *Persistence) HealthCheck(_ context.Context) error {
	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	return nil
}
