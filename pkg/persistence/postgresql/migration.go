package postgresql

import "github.com/dukex/operion-assistant/pkg/persistence/sqlbase"

func migrations() []sqlbase.Migration {
	return []sqlbase.Migration{
		{
			Version:     1,
			Description: "create sessions",
			SQL: `
				CREATE TABLE sessions (
					agent_id VARCHAR(255) NOT NULL,
					session_id VARCHAR(255) NOT NULL,
					state VARCHAR(50) NOT NULL,
					context JSONB NOT NULL,
					created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
					PRIMARY KEY (agent_id, session_id)
				);

				CREATE INDEX idx_sessions_updated_at ON sessions(updated_at);
			`,
		},
		{
			Version:     2,
			Description: "index sessions by dialog state",
			SQL:         `CREATE INDEX idx_sessions_state ON sessions(state);`,
		},
	}
}
