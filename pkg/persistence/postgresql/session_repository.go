package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/dukex/operion-assistant/pkg/persistence"
)

// SessionRepository handles session-related database operations.
type SessionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sql.DB, logger *slog.Logger) *SessionRepository {
	return &SessionRepository{db: db, logger: logger}
}

// Get returns the stored context of key or persistence.ErrSessionNotFound.
func (r *SessionRepository) Get(ctx context.Context, key models.SessionKey) (*models.SessionContext, error) {
	query := `
		SELECT
			context
		  , updated_at
		FROM sessions
		WHERE agent_id = $1 AND session_id = $2
	`

	var (
		data      []byte
		updatedAt time.Time
	)

	err := r.db.QueryRowContext(ctx, query, key.AgentID, key.SessionID).Scan(&data, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewSessionError("GetContext", key.String(), persistence.ErrSessionNotFound)
		}

		return nil, persistence.NewSessionError("GetContext", key.String(), fmt.Errorf("failed to query session: %w", err))
	}

	var session models.SessionContext

	err = json.Unmarshal(data, &session)
	if err != nil {
		return nil, persistence.NewSessionError("GetContext", key.String(), fmt.Errorf("failed to unmarshal session: %w", err))
	}

	session.UpdatedAt = updatedAt.UTC()

	return &session, nil
}

// Save upserts the whole context of a session.
func (r *SessionRepository) Save(ctx context.Context, session *models.SessionContext) error {
	if session == nil || session.Key.SessionID == "" {
		return persistence.NewSessionError("SaveContext", "", persistence.ErrInvalidSession)
	}

	key := session.Key.String()
	session.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(session)
	if err != nil {
		return persistence.NewSessionError("SaveContext", key, fmt.Errorf("failed to marshal session: %w", err))
	}

	query := `
		INSERT INTO sessions (agent_id, session_id, state, context, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (agent_id, session_id) DO UPDATE SET
			state = EXCLUDED.state
		  , context = EXCLUDED.context
		  , updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		session.Key.AgentID,
		session.Key.SessionID,
		string(session.State),
		data,
		session.UpdatedAt,
	)
	if err != nil {
		return persistence.NewSessionError("SaveContext", key, fmt.Errorf("failed to save session: %w", err))
	}

	r.logger.DebugContext(ctx, "Saved session", "session", key, "state", session.State)

	return nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, key models.SessionKey) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE agent_id = $1 AND session_id = $2", key.AgentID, key.SessionID)
	if err != nil {
		return persistence.NewSessionError("DeleteContext", key.String(), fmt.Errorf("failed to delete session: %w", err))
	}

	return nil
}

// CountByState returns how many sessions are in each dialog state.
func (r *SessionRepository) CountByState(ctx context.Context) (map[models.DialogState]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT state, COUNT(*) FROM sessions GROUP BY state")
	if err != nil {
		return nil, fmt.Errorf("failed to query session states: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	counts := make(map[models.DialogState]int)

	for rows.Next() {
		var (
			state string
			count int
		)

		err := rows.Scan(&state, &count)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session state: %w", err)
		}

		counts[models.DialogState(state)] = count
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating session states: %w", err)
	}

	return counts, nil
}
