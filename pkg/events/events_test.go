package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = models.SessionKey{AgentID: "agent-1", SessionID: "session-1"}

func TestEvents_GetType(t *testing.T) {
	assert.Equal(t, IntentClassifiedEvent, IntentClassified{}.GetType())
	assert.Equal(t, ClarificationExhaustedEvent, ClarificationExhausted{}.GetType())
	assert.Equal(t, AutomationProposedEvent, AutomationProposed{}.GetType())
	assert.Equal(t, AutomationConfirmedEvent, AutomationConfirmed{}.GetType())
	assert.Equal(t, AutomationCancelledEvent, AutomationCancelled{}.GetType())
	assert.Equal(t, AutomationExecutedEvent, AutomationExecuted{}.GetType())
}

func TestNewBaseEvent(t *testing.T) {
	event := NewBaseEvent(AutomationConfirmedEvent, testKey, "wf-1")

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, AutomationConfirmedEvent, event.Type)
	assert.Equal(t, "agent-1", event.AgentID)
	assert.Equal(t, "session-1", event.SessionID)
	assert.Equal(t, "wf-1", event.WorkflowID)
	assert.Equal(t, "agent-1:session-1", event.Key())
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, time.Second)
}

func TestAutomationExecuted_JSONSerialization(t *testing.T) {
	original := &AutomationExecuted{
		BaseEvent: NewBaseEvent(AutomationExecutedEvent, testKey, "wf-1"),
		Success:   false,
		PerNodeResults: []models.NodeResult{
			{NodeID: "email_send_1", Success: false, Detail: "connection refused"},
		},
		Error:    "connection refused",
		Duration: 2 * time.Second,
	}

	jsonData, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"type":"assistant.automation.executed"`)
	assert.Contains(t, string(jsonData), `"session_id":"session-1"`)
	assert.Contains(t, string(jsonData), `"node_id":"email_send_1"`)

	var deserialized AutomationExecuted

	err = json.Unmarshal(jsonData, &deserialized)
	require.NoError(t, err)

	assert.Equal(t, original.Type, deserialized.Type)
	assert.Equal(t, original.Success, deserialized.Success)
	assert.Equal(t, original.PerNodeResults, deserialized.PerNodeResults)
	assert.Equal(t, original.Duration, deserialized.Duration)
}

func TestIntentClassified_JSONSerialization(t *testing.T) {
	original := IntentClassified{
		BaseEvent:  NewBaseEvent(IntentClassifiedEvent, testKey, ""),
		Intent:     models.IntentAutomationNew,
		Category:   models.CategoryEmailOnly,
		Source:     models.ClassificationSourceHeuristic,
		Confidence: 0.5,
	}

	jsonData, err := json.Marshal(original)
	require.NoError(t, err)
	assert.NotContains(t, string(jsonData), "workflow_id")

	var deserialized IntentClassified

	require.NoError(t, json.Unmarshal(jsonData, &deserialized))
	assert.Equal(t, original.Intent, deserialized.Intent)
	assert.Equal(t, original.Category, deserialized.Category)
	assert.InDelta(t, 0.5, deserialized.Confidence, 0.0001)
}
