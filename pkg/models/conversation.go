package models

import (
	"net/url"
	"time"
)

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one message of the session history.
type ConversationTurn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// DialogState is the parameter collection state of a session.
type DialogState string

const (
	DialogStateCollecting           DialogState = "COLLECTING"
	DialogStateAwaitingConfirmation DialogState = "AWAITING_CONFIRMATION"
	DialogStateExecuting            DialogState = "EXECUTING"
	DialogStateDone                 DialogState = "DONE"
)

// Scratchpad keys remembered across automations.
const (
	ScratchLastRecipient   = "last_recipient"
	ScratchLastURL         = "last_url"
	ScratchLastSubject     = "last_subject"
	ScratchEmailCandidates = "email_candidates"
	ScratchAskedParameter  = "asked_parameter"
)

// SessionKey identifies one agent conversation.
type SessionKey struct {
	AgentID   string `json:"agent_id"`
	SessionID string `json:"session_id"`
}

// String returns the storage key of the session. Both ids are query-escaped so a
// ":" inside an id cannot make two different keys collide.
func (k SessionKey) String() string {
	if k.AgentID == "" {
		return url.QueryEscape(k.SessionID)
	}

	return url.QueryEscape(k.AgentID) + ":" + url.QueryEscape(k.SessionID)
}

// AgentContext describes the assistant persona the session talks to.
type AgentContext struct {
	Name   string            `json:"name"`
	Role   string            `json:"role"`
	Traits map[string]string `json:"traits,omitempty"`
}

// SessionContext is everything remembered for one session: the ordered history,
// the scratchpad and the automation under construction.
type SessionContext struct {
	Key            SessionKey         `json:"key"`
	Turns          []ConversationTurn `json:"turns"`
	Scratchpad     map[string]string  `json:"scratchpad"`
	PendingGraph   *WorkflowGraph     `json:"pending_graph,omitempty"`
	State          DialogState        `json:"state"`
	Clarifications map[string]int     `json:"clarifications"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// NewSessionContext returns the initial context of a brand-new session.
func NewSessionContext(key SessionKey) *SessionContext {
	return &SessionContext{
		Key:            key,
		Turns:          make([]ConversationTurn, 0),
		Scratchpad:     make(map[string]string),
		State:          DialogStateCollecting,
		Clarifications: make(map[string]int),
		UpdatedAt:      time.Now().UTC(),
	}
}

// AppendTurn adds a turn to the history. History is never truncated.
func (s *SessionContext) AppendTurn(role Role, text string) {
	s.Turns = append(s.Turns, ConversationTurn{
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC(),
	})
	s.UpdatedAt = time.Now().UTC()
}

// LastTurns returns at most n of the most recent turns.
func (s *SessionContext) LastTurns(n int) []ConversationTurn {
	if n <= 0 || len(s.Turns) <= n {
		return s.Turns
	}

	return s.Turns[len(s.Turns)-n:]
}

// Remember stores a scratchpad fact.
func (s *SessionContext) Remember(key, value string) {
	if s.Scratchpad == nil {
		s.Scratchpad = make(map[string]string)
	}

	if value == "" {
		delete(s.Scratchpad, key)

		return
	}

	s.Scratchpad[key] = value
}

// ResetAutomation discards the pending graph and clarification bookkeeping.
func (s *SessionContext) ResetAutomation(state DialogState) {
	s.PendingGraph = nil
	s.State = state
	s.Clarifications = make(map[string]int)
	s.Remember(ScratchAskedParameter, "")
	s.Remember(ScratchEmailCandidates, "")
}

// HasPendingAutomation reports whether a non-empty graph awaits completion or confirmation.
func (s *SessionContext) HasPendingAutomation() bool {
	if s.PendingGraph.IsEmpty() {
		return false
	}

	return s.State == DialogStateCollecting || s.State == DialogStateAwaitingConfirmation
}
