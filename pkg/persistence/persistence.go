// Package persistence provides the conversation memory storage abstraction.
package persistence

import (
	"context"

	"github.com/dukex/operion-assistant/pkg/models"
)

// Persistence stores one SessionContext per agent and session. Implementations must
// allow independent reads and writes for different sessions.
type Persistence interface {
	// GetContext returns the stored context or ErrSessionNotFound.
	GetContext(ctx context.Context, key models.SessionKey) (*models.SessionContext, error)
	SaveContext(ctx context.Context, session *models.SessionContext) error
	DeleteContext(ctx context.Context, key models.SessionKey) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}

// LoadOrNew returns the stored context of key, or a brand-new one when nothing is stored.
func LoadOrNew(ctx context.Context, store Persistence, key models.SessionKey) (*models.SessionContext, error) {
	session, err := store.GetContext(ctx, key)
	if err != nil {
		if IsSessionNotFound(err) {
			return models.NewSessionContext(key), nil
		}

		return nil, err
	}

	return session, nil
}
