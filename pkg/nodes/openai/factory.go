package openai

import (
	"context"

	"github.com/dukex/operion-assistant/pkg/protocol"
)

// OpenAINodeFactory creates OpenAINode instances sharing one model client.
type OpenAINodeFactory struct {
	chatter Chatter
}

// NewOpenAINodeFactory creates a new factory instance.
func NewOpenAINodeFactory(chatter Chatter) *OpenAINodeFactory {
	return &OpenAINodeFactory{chatter: chatter}
}

// Create creates a new OpenAINode instance.
func (f *OpenAINodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewOpenAINode(id, config, f.chatter)
}

// ID returns the factory ID.
func (f *OpenAINodeFactory) ID() string {
	return "openai"
}

// Name returns the factory name.
func (f *OpenAINodeFactory) Name() string {
	return "AI Content"
}

// Description returns the factory description.
func (f *OpenAINodeFactory) Description() string {
	return "Generates or summarizes content with an OpenAI chat model"
}
