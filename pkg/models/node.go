// Package models defines the core domain models for conversational workflow assembly
package models

import (
	"regexp"
	"strings"
)

// CategoryType represents the category of node.
type CategoryType string

const (
	CategoryTypeAction  CategoryType = "action"  // Regular action nodes (http, email, openai, etc.)
	CategoryTypeTrigger CategoryType = "trigger" // Entry node of a graph
)

// Built-in node types.
const (
	NodeTypeManualTrigger = "manual_trigger"
	NodeTypeHTTPRequest   = "http_request"
	NodeTypeOpenAI        = "openai"
	NodeTypeEmailSend     = "email_send"
	NodeTypeAutomation    = "automation"
)

// Parameter names shared across the extractor, assembler and drivers.
const (
	ParamToEmail    = "to_email"
	ParamRecipients = "recipients"
	ParamCC         = "cc"
	ParamFromEmail  = "from_email"
	ParamSubject    = "subject"
	ParamBody       = "body"
	ParamTopic      = "topic"
	ParamURL        = "url"
	ParamMethod     = "method"
	ParamPrompt     = "prompt"
	ParamInput      = "input"
	ParamIntent     = "intent"
)

var placeholderPattern = regexp.MustCompile(`^\{\{\s*[A-Za-z_][A-Za-z0-9_]*\s*\}\}$`)

// Placeholder returns the unresolved placeholder value for a parameter, e.g. "{{to_email}}".
func Placeholder(param string) string {
	return "{{" + param + "}}"
}

// NodeReference returns a template expression that resolves to an output field of an
// upstream node at execution time, e.g. "{{ .nodes.openai_1.text }}".
func NodeReference(nodeID, field string) string {
	return "{{ .nodes." + nodeID + "." + field + " }}"
}

// IsPlaceholder reports whether v is an unresolved placeholder awaiting collection.
// Upstream references such as "{{ .nodes.openai_1.text }}" are not placeholders.
func IsPlaceholder(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}

	return placeholderPattern.MatchString(strings.TrimSpace(s))
}

// WorkflowNode represents one step of an automation.
type WorkflowNode struct {
	ID          string         `json:"id"          validate:"required"`
	Type        string         `json:"type"        validate:"required"`
	Category    CategoryType   `json:"category"    validate:"required,oneof=action trigger"`
	Parameters  map[string]any `json:"parameters"`
	Description string         `json:"description"`
}

// IsTriggerNode reports whether the node is the graph entry node.
func (n *WorkflowNode) IsTriggerNode() bool {
	return n.Category == CategoryTypeTrigger
}

// HasValue reports whether param is bound to a concrete, non-placeholder value.
func (n *WorkflowNode) HasValue(param string) bool {
	if n.Parameters == nil {
		return false
	}

	v, ok := n.Parameters[param]
	if !ok || v == nil {
		return false
	}

	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val) != "" && !IsPlaceholder(val)
	case []string:
		return len(val) > 0
	case []any:
		return len(val) > 0
	}

	return true
}

// StringParam returns the string value of param, or "" when unset or a placeholder.
func (n *WorkflowNode) StringParam(param string) string {
	if !n.HasValue(param) {
		return ""
	}

	s, _ := n.Parameters[param].(string)

	return s
}

// SetParam binds a parameter value, allocating the map on first use.
func (n *WorkflowNode) SetParam(param string, value any) {
	if n.Parameters == nil {
		n.Parameters = make(map[string]any)
	}

	n.Parameters[param] = value
}

// NodeResult is the outcome of running one node.
type NodeResult struct {
	NodeID  string         `json:"node_id"`
	Success bool           `json:"success"`
	Detail  string         `json:"detail"`
	Data    map[string]any `json:"data,omitempty"`
}

// MissingParameter identifies a required parameter that is not yet bound.
type MissingParameter struct {
	NodeID    string `json:"node_id"`
	NodeType  string `json:"node_type"`
	Parameter string `json:"parameter"`
}

// Key returns a stable identifier for the requirement, e.g. "email_send_1.to_email".
func (m MissingParameter) Key() string {
	return m.NodeID + "." + m.Parameter
}
