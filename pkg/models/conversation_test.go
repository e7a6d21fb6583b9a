package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionKey_String(t *testing.T) {
	assert.Equal(t, "agent-1:session-1", SessionKey{AgentID: "agent-1", SessionID: "session-1"}.String())
	assert.Equal(t, "session-1", SessionKey{SessionID: "session-1"}.String())
}

func TestSessionKey_String_NoCollisions(t *testing.T) {
	keys := []SessionKey{
		{AgentID: "a", SessionID: "b:c"},
		{AgentID: "a:b", SessionID: "c"},
		{SessionID: "a:b:c"},
		{AgentID: "a", SessionID: "b%3Ac"},
	}

	seen := make(map[string]SessionKey, len(keys))

	for _, key := range keys {
		other, exists := seen[key.String()]
		assert.False(t, exists, "%+v collides with %+v", key, other)
		seen[key.String()] = key
	}
}

func TestSessionContext_Turns(t *testing.T) {
	session := NewSessionContext(SessionKey{SessionID: "s-1"})
	assert.Equal(t, DialogStateCollecting, session.State)

	for _, text := range []string{"one", "two", "three", "four"} {
		session.AppendTurn(RoleUser, text)
	}

	require.Len(t, session.Turns, 4)

	last := session.LastTurns(2)
	require.Len(t, last, 2)
	assert.Equal(t, "three", last[0].Text)
	assert.Equal(t, "four", last[1].Text)

	assert.Len(t, session.LastTurns(10), 4)
	assert.Len(t, session.LastTurns(0), 4)
}

func TestSessionContext_Remember(t *testing.T) {
	session := &SessionContext{}

	session.Remember(ScratchLastRecipient, "alice@example.com")
	assert.Equal(t, "alice@example.com", session.Scratchpad[ScratchLastRecipient])

	session.Remember(ScratchLastRecipient, "")
	assert.NotContains(t, session.Scratchpad, ScratchLastRecipient)
}

func TestSessionContext_ResetAutomation(t *testing.T) {
	session := NewSessionContext(SessionKey{SessionID: "s-1"})
	session.PendingGraph = NewWorkflowGraph("wf-1")
	session.PendingGraph.AppendNode(NodeTypeEmailSend, "Send email")
	session.State = DialogStateAwaitingConfirmation
	session.Clarifications["email_send_1.to_email"] = 2
	session.Remember(ScratchAskedParameter, "email_send_1.to_email")
	session.Remember(ScratchLastRecipient, "alice@example.com")

	assert.True(t, session.HasPendingAutomation())

	session.ResetAutomation(DialogStateDone)

	assert.Nil(t, session.PendingGraph)
	assert.Equal(t, DialogStateDone, session.State)
	assert.Empty(t, session.Clarifications)
	assert.NotContains(t, session.Scratchpad, ScratchAskedParameter)
	assert.Equal(t, "alice@example.com", session.Scratchpad[ScratchLastRecipient])
	assert.False(t, session.HasPendingAutomation())
}

func TestSessionContext_HasPendingAutomation_IgnoresTriggerOnlyGraph(t *testing.T) {
	session := NewSessionContext(SessionKey{SessionID: "s-1"})
	session.PendingGraph = NewWorkflowGraph("wf-1")

	assert.False(t, session.HasPendingAutomation())
}

func TestResponse_Text(t *testing.T) {
	assert.Equal(t, "Who?", AskResponse("Who?").Text())
	assert.Equal(t, "Plan", ConfirmResponse("Plan").Text())
	assert.Equal(t, "Dropped", CancelledResponse("Dropped").Text())
	assert.Equal(t, "Done", ExecutedResponse(true, nil, "Done").Text())
	assert.Equal(t, "Hi", ConversationalResponse("Hi").Text())

	assert.Equal(t, DialogStateDone, ExecutedResponse(false, nil, "").State)
}
