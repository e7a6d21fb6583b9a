// Package persistencetest holds the behaviour every persistence implementation shares.
package persistencetest

import (
	"context"
	"sync"
	"testing"

	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/dukex/operion-assistant/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSuite exercises store against the Persistence contract.
func RunSuite(ctx context.Context, t *testing.T, store persistence.Persistence) {
	t.Helper()

	t.Run("missing session", func(t *testing.T) {
		_, err := store.GetContext(ctx, models.SessionKey{AgentID: "agent", SessionID: "missing"})
		require.Error(t, err)
		assert.True(t, persistence.IsSessionNotFound(err))
	})

	t.Run("round trip", func(t *testing.T) {
		key := models.SessionKey{AgentID: "agent", SessionID: "round-trip"}

		session := models.NewSessionContext(key)
		session.AppendTurn(models.RoleUser, "Send an email to alice@example.com")
		session.AppendTurn(models.RoleAssistant, "What should the subject of the email be?")
		session.Remember(models.ScratchLastRecipient, "bob@example.com")
		session.Clarifications["email_send_1.subject"] = 1

		graph := models.NewWorkflowGraph("wf-1")
		email := graph.AppendNode(models.NodeTypeEmailSend, "Send an email")
		email.SetParam(models.ParamToEmail, "alice@example.com")
		email.SetParam(models.ParamSubject, models.Placeholder(models.ParamSubject))
		email.SetParam(models.ParamCC, []string{"carol@example.com"})
		session.PendingGraph = graph

		require.NoError(t, store.SaveContext(ctx, session))

		loaded, err := store.GetContext(ctx, key)
		require.NoError(t, err)

		assert.Equal(t, key, loaded.Key)
		assert.Equal(t, models.DialogStateCollecting, loaded.State)
		require.Len(t, loaded.Turns, 2)
		assert.Equal(t, "What should the subject of the email be?", loaded.Turns[1].Text)
		assert.Equal(t, "bob@example.com", loaded.Scratchpad[models.ScratchLastRecipient])
		assert.Equal(t, 1, loaded.Clarifications["email_send_1.subject"])

		require.NotNil(t, loaded.PendingGraph)
		assert.Equal(t, []string{"manual_trigger_1", "email_send_1"}, loaded.PendingGraph.NodeIDs())
		assert.Equal(t, "alice@example.com", loaded.PendingGraph.Node("email_send_1").Parameters[models.ParamToEmail])
		assert.False(t, loaded.PendingGraph.Node("email_send_1").HasValue(models.ParamSubject))
		assert.NoError(t, loaded.PendingGraph.Validate())
	})

	t.Run("overwrite", func(t *testing.T) {
		key := models.SessionKey{AgentID: "agent", SessionID: "overwrite"}

		session := models.NewSessionContext(key)
		session.AppendTurn(models.RoleUser, "first")
		require.NoError(t, store.SaveContext(ctx, session))

		session.AppendTurn(models.RoleUser, "second")
		session.State = models.DialogStateDone
		require.NoError(t, store.SaveContext(ctx, session))

		loaded, err := store.GetContext(ctx, key)
		require.NoError(t, err)
		assert.Len(t, loaded.Turns, 2)
		assert.Equal(t, models.DialogStateDone, loaded.State)
		assert.Nil(t, loaded.PendingGraph)
	})

	t.Run("colons in ids do not collide", func(t *testing.T) {
		first := models.NewSessionContext(models.SessionKey{AgentID: "colon", SessionID: "b:c"})
		first.PendingGraph = models.NewWorkflowGraph("wf-colon")
		require.NoError(t, store.SaveContext(ctx, first))

		_, err := store.GetContext(ctx, models.SessionKey{AgentID: "colon:b", SessionID: "c"})
		require.Error(t, err)
		assert.True(t, persistence.IsSessionNotFound(err))

		loaded, err := store.GetContext(ctx, first.Key)
		require.NoError(t, err)
		assert.True(t, loaded.HasPendingAutomation())
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		first := models.NewSessionContext(models.SessionKey{AgentID: "agent-a", SessionID: "shared-id"})
		first.PendingGraph = models.NewWorkflowGraph("wf-a")
		first.PendingGraph.AppendNode(models.NodeTypeEmailSend, "Send an email")

		second := models.NewSessionContext(models.SessionKey{AgentID: "agent-b", SessionID: "shared-id"})

		require.NoError(t, store.SaveContext(ctx, first))
		require.NoError(t, store.SaveContext(ctx, second))

		loaded, err := store.GetContext(ctx, second.Key)
		require.NoError(t, err)
		assert.Nil(t, loaded.PendingGraph)

		loaded, err = store.GetContext(ctx, first.Key)
		require.NoError(t, err)
		assert.Equal(t, "wf-a", loaded.PendingGraph.WorkflowID)
	})

	t.Run("loaded contexts are copies", func(t *testing.T) {
		key := models.SessionKey{AgentID: "agent", SessionID: "copies"}
		require.NoError(t, store.SaveContext(ctx, models.NewSessionContext(key)))

		loaded, err := store.GetContext(ctx, key)
		require.NoError(t, err)
		loaded.AppendTurn(models.RoleUser, "not saved")

		again, err := store.GetContext(ctx, key)
		require.NoError(t, err)
		assert.Empty(t, again.Turns)
	})

	t.Run("concurrent sessions", func(t *testing.T) {
		var wg sync.WaitGroup

		for i := range 8 {
			wg.Add(1)

			go func() {
				defer wg.Done()

				key := models.SessionKey{AgentID: "agent", SessionID: "concurrent-" + string(rune('a'+i))}
				session := models.NewSessionContext(key)
				session.AppendTurn(models.RoleUser, key.SessionID)
				assert.NoError(t, store.SaveContext(ctx, session))
			}()
		}

		wg.Wait()

		for i := range 8 {
			key := models.SessionKey{AgentID: "agent", SessionID: "concurrent-" + string(rune('a'+i))}
			loaded, err := store.GetContext(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, key.SessionID, loaded.Turns[0].Text)
		}
	})

	t.Run("delete", func(t *testing.T) {
		key := models.SessionKey{AgentID: "agent", SessionID: "delete"}
		require.NoError(t, store.SaveContext(ctx, models.NewSessionContext(key)))
		require.NoError(t, store.DeleteContext(ctx, key))

		_, err := store.GetContext(ctx, key)
		assert.True(t, persistence.IsSessionNotFound(err))
	})

	t.Run("invalid session", func(t *testing.T) {
		err := store.SaveContext(ctx, &models.SessionContext{})
		assert.ErrorIs(t, err, persistence.ErrInvalidSession)
	})

	t.Run("health", func(t *testing.T) {
		assert.NoError(t, store.HealthCheck(ctx))
	})
}
