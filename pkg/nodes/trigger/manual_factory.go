package trigger

import (
	"context"

	"github.com/dukex/operion-assistant/pkg/protocol"
)

// ManualTriggerNodeFactory creates ManualTriggerNode instances.
type ManualTriggerNodeFactory struct{}

// NewManualTriggerNodeFactory creates a new factory instance.
func NewManualTriggerNodeFactory() *ManualTriggerNodeFactory {
	return &ManualTriggerNodeFactory{}
}

// Create creates a new ManualTriggerNode instance.
func (f *ManualTriggerNodeFactory) Create(_ context.Context, id string, _ map[string]any) (protocol.Node, error) {
	return NewManualTriggerNode(id), nil
}

// ID returns the factory ID.
func (f *ManualTriggerNodeFactory) ID() string {
	return "manual_trigger"
}

// Name returns the factory name.
func (f *ManualTriggerNodeFactory) Name() string {
	return "Manual Trigger"
}

// Description returns the factory description.
func (f *ManualTriggerNodeFactory) Description() string {
	return "Starts the automation when the user confirms it"
}
