// Package openai provides the AI content node backed by a chat completion model.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const systemPrompt = "You write content for automated workflows. Reply with the requested content only, without preamble."

// Chatter runs one chat completion.
type Chatter interface {
	Chat(ctx context.Context, system, user, model string, maxTokens int64) (string, error)
}

// OpenAINode generates text from a prompt, optionally grounded on upstream input.
type OpenAINode struct {
	id        string
	chatter   Chatter
	prompt    string
	topic     string
	input     string
	model     string
	maxTokens int64
}

// NewOpenAINode creates a new AI content node from rendered parameters.
func NewOpenAINode(id string, config map[string]any, chatter Chatter) (*OpenAINode, error) {
	if chatter == nil {
		return nil, errors.New("no language model configured")
	}

	prompt, ok := config["prompt"].(string)
	if !ok || strings.TrimSpace(prompt) == "" {
		return nil, errors.New("missing required field 'prompt'")
	}

	node := &OpenAINode{
		id:      id,
		chatter: chatter,
		prompt:  strings.TrimSpace(prompt),
	}

	node.topic, _ = config["topic"].(string)
	node.input, _ = config["input"].(string)
	node.model, _ = config["model"].(string)

	switch tokens := config["max_tokens"].(type) {
	case int:
		node.maxTokens = int64(tokens)
	case int64:
		node.maxTokens = tokens
	case float64:
		node.maxTokens = int64(tokens)
	}

	if node.maxTokens < 0 {
		return nil, fmt.Errorf("invalid max_tokens: %d", node.maxTokens)
	}

	return node, nil
}

// ID returns the node ID.
func (n *OpenAINode) ID() string {
	return n.id
}

// Type returns the node type.
func (n *OpenAINode) Type() string {
	return "openai"
}

// Execute asks the model and returns the generated text.
func (n *OpenAINode) Execute(ctx context.Context) (map[string]any, error) {
	text, err := n.chatter.Chat(ctx, systemPrompt, n.userMessage(), n.model, n.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("content generation failed: %w", err)
	}

	return map[string]any{
		"text": text,
	}, nil
}

func (n *OpenAINode) userMessage() string {
	var b strings.Builder

	b.WriteString(n.prompt)

	if n.topic != "" && !strings.Contains(strings.ToLower(n.prompt), strings.ToLower(n.topic)) {
		b.WriteString("\n\nTopic: ")
		b.WriteString(n.topic)
	}

	if n.input != "" {
		b.WriteString("\n\nContent:\n")
		b.WriteString(n.input)
	}

	return b.String()
}
