// Package web provides HTTP request and response types for the assistant API.
package web

import (
	"time"

	"github.com/dukex/operion-assistant/pkg/models"
)

// SendMessageRequest represents one user turn posted to a session.
type SendMessageRequest struct {
	Message      string               `json:"message"       validate:"required,max=4000"`
	AgentContext *AgentContextRequest `json:"agent_context" validate:"omitempty"`
}

// AgentContextRequest describes the persona that answers the session.
type AgentContextRequest struct {
	Name   string            `json:"name"   validate:"max=100"`
	Role   string            `json:"role"   validate:"max=200"`
	Traits map[string]string `json:"traits" validate:"max=20"`
}

// MessageResponse wraps the engine response with the text to show the user.
type MessageResponse struct {
	AgentID   string          `json:"agent_id"`
	SessionID string          `json:"session_id"`
	Text      string          `json:"text"`
	Response  models.Response `json:"response"`
}

// SessionResponse represents the stored state of a conversation.
type SessionResponse struct {
	AgentID      string                    `json:"agent_id"`
	SessionID    string                    `json:"session_id"`
	State        models.DialogState        `json:"state"`
	Turns        []models.ConversationTurn `json:"turns"`
	Scratchpad   map[string]string         `json:"scratchpad,omitempty"`
	PendingGraph *models.WorkflowGraph     `json:"pending_graph,omitempty"`
	Missing      []string                  `json:"missing_parameters,omitempty"`
	Complete     []string                  `json:"complete_nodes,omitempty"`
	UpdatedAt    time.Time                 `json:"updated_at"`
}

// NodeTypeResponse represents one catalog entry.
type NodeTypeResponse struct {
	Type        string              `json:"type"`
	Name        string              `json:"name"`
	Category    models.CategoryType `json:"category"`
	Description string              `json:"description"`
	Required    []string            `json:"required_params"`
	Optional    []string            `json:"optional_params"`
	Schema      map[string]any      `json:"schema,omitempty"`
}

func toAgentContext(req *AgentContextRequest) models.AgentContext {
	if req == nil {
		return models.AgentContext{}
	}

	return models.AgentContext{Name: req.Name, Role: req.Role, Traits: req.Traits}
}

func toNodeTypeResponse(spec *models.NodeTypeSpec, schema map[string]any) NodeTypeResponse {
	required := spec.RequiredParams
	if required == nil {
		required = []string{}
	}

	optional := spec.OptionalParams
	if optional == nil {
		optional = []string{}
	}

	return NodeTypeResponse{
		Type:        spec.TypeName,
		Name:        spec.Name,
		Category:    spec.Category,
		Description: spec.Description,
		Required:    required,
		Optional:    optional,
		Schema:      schema,
	}
}
