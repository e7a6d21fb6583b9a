// Package automation provides the generic automation node. It stands in for a step the
// user has not described concretely and only logs its intent when executed.
package automation

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dukex/operion-assistant/pkg/log"
)

// AutomationNode logs the described intent and does nothing else.
type AutomationNode struct {
	id     string
	intent string
	logger *slog.Logger
}

// NewAutomationNode creates a new automation node.
func NewAutomationNode(id string, config map[string]any, logger *slog.Logger) (*AutomationNode, error) {
	intent, ok := config["intent"].(string)
	if !ok || strings.TrimSpace(intent) == "" {
		return nil, errors.New("missing required field 'intent'")
	}

	return &AutomationNode{
		id:     id,
		intent: intent,
		logger: logger.With("node_id", id, "node_type", "automation"),
	}, nil
}

// ID returns the node ID.
func (n *AutomationNode) ID() string {
	return n.id
}

// Type returns the node type.
func (n *AutomationNode) Type() string {
	return "automation"
}

func (n *AutomationNode) Execute(ctx context.Context) (map[string]any, error) {
	log.FromContext(ctx, n.logger).InfoContext(ctx, "Automation step has no driver, logging intent only", "intent", n.intent)

	return map[string]any{
		"intent": n.intent,
		"logged": true,
	}, nil
}
