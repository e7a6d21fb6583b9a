package automation

import (
	"context"
	"log/slog"

	"github.com/dukex/operion-assistant/pkg/protocol"
)

// AutomationNodeFactory creates AutomationNode instances.
type AutomationNodeFactory struct {
	logger *slog.Logger
}

// NewAutomationNodeFactory creates a new factory instance.
func NewAutomationNodeFactory(logger *slog.Logger) *AutomationNodeFactory {
	return &AutomationNodeFactory{logger: logger}
}

// Create creates a new AutomationNode instance.
func (f *AutomationNodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewAutomationNode(id, config, f.logger)
}

// ID returns the factory ID.
func (f *AutomationNodeFactory) ID() string {
	return "automation"
}

// Name returns the factory name.
func (f *AutomationNodeFactory) Name() string {
	return "Automation"
}

// Description returns the factory description.
func (f *AutomationNodeFactory) Description() string {
	return "Logs a generic automation intent that has no concrete driver"
}
