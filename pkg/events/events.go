// Package events defines event types and structures for assistant lifecycle notifications.
package events

import (
	"time"

	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries every assistant event.
const Topic = "operion.assistant.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Conversation events.
	IntentClassifiedEvent       EventType = "assistant.intent.classified"
	ClarificationExhaustedEvent EventType = "assistant.clarification.exhausted"

	// Automation lifecycle events.
	AutomationProposedEvent  EventType = "assistant.automation.proposed"
	AutomationConfirmedEvent EventType = "assistant.automation.confirmed"
	AutomationCancelledEvent EventType = "assistant.automation.cancelled"
	AutomationExecutedEvent  EventType = "assistant.automation.executed"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	AgentID    string         `json:"agent_id,omitempty"`
	SessionID  string         `json:"session_id"`
	WorkflowID string         `json:"workflow_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// NewBaseEvent stamps a new event for a session. workflowID may be empty.
func NewBaseEvent(eventType EventType, key models.SessionKey, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		AgentID:    key.AgentID,
		SessionID:  key.SessionID,
		WorkflowID: workflowID,
		Metadata:   make(map[string]any),
	}
}

// Key returns the partition key of the event: the session it belongs to.
func (b BaseEvent) Key() string {
	return models.SessionKey{AgentID: b.AgentID, SessionID: b.SessionID}.String()
}

type IntentClassified struct {
	BaseEvent

	Intent     models.Intent               `json:"intent"`
	Category   string                      `json:"category,omitempty"`
	Source     models.ClassificationSource `json:"source"`
	Confidence float64                     `json:"confidence"`
}

func (e IntentClassified) GetType() EventType {
	return IntentClassifiedEvent
}

type ClarificationExhausted struct {
	BaseEvent

	Parameter string `json:"parameter"`
	Attempts  int    `json:"attempts"`
}

func (e ClarificationExhausted) GetType() EventType {
	return ClarificationExhaustedEvent
}

type AutomationProposed struct {
	BaseEvent

	Graph   *models.WorkflowGraph `json:"graph"`
	Summary string                `json:"summary"`
}

func (e AutomationProposed) GetType() EventType {
	return AutomationProposedEvent
}

type AutomationConfirmed struct {
	BaseEvent

	Graph *models.WorkflowGraph `json:"graph"`
}

func (e AutomationConfirmed) GetType() EventType {
	return AutomationConfirmedEvent
}

type AutomationCancelled struct {
	BaseEvent

	State models.DialogState `json:"state"`
}

func (e AutomationCancelled) GetType() EventType {
	return AutomationCancelledEvent
}

type AutomationExecuted struct {
	BaseEvent

	Success        bool                `json:"success"`
	PerNodeResults []models.NodeResult `json:"per_node_results,omitempty"`
	Error          string              `json:"error,omitempty"`
	Duration       time.Duration       `json:"duration"`
}

func (e AutomationExecuted) GetType() EventType {
	return AutomationExecutedEvent
}
