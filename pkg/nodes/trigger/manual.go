// Package trigger provides the manual trigger node that starts a confirmed automation.
package trigger

import (
	"context"
	"time"
)

// ManualTriggerNode fires once when the user confirms an automation.
type ManualTriggerNode struct {
	id  string
	now func() time.Time
}

// NewManualTriggerNode creates a new manual trigger node. The trigger takes no parameters.
func NewManualTriggerNode(id string) *ManualTriggerNode {
	return &ManualTriggerNode{
		id:  id,
		now: time.Now,
	}
}

// ID returns the node ID.
func (n *ManualTriggerNode) ID() string {
	return n.id
}

// Type returns the node type.
func (n *ManualTriggerNode) Type() string {
	return "manual_trigger"
}

// Execute records when the automation started.
func (n *ManualTriggerNode) Execute(_ context.Context) (map[string]any, error) {
	return map[string]any{
		"triggered_at": n.now().UTC().Format(time.RFC3339),
	}, nil
}
