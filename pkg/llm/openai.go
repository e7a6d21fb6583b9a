package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// OpenAIConfig configures the OpenAI completer.
type OpenAIConfig struct {
	APIKey       string `validate:"required"`
	BaseURL      string `validate:"omitempty,url"`
	Model        string
	SystemPrompt string
	MaxTokens    int64
}

// OpenAICompleter completes prompts with the chat completions API.
type OpenAICompleter struct {
	client openai.Client
	config OpenAIConfig
	logger *slog.Logger
}

func NewOpenAICompleter(config OpenAIConfig, logger *slog.Logger) *OpenAICompleter {
	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.Model == "" {
		config.Model = DefaultModel
	}

	return &OpenAICompleter{
		client: openai.NewClient(opts...),
		config: config,
		logger: logger.With("module", "llm", "model", config.Model),
	}
}

func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return c.Chat(ctx, c.config.SystemPrompt, prompt, "", 0)
}

// Chat runs a single chat completion. Empty system prompt and model fall back to the
// configured ones; a zero maxTokens falls back to the configured limit.
func (c *OpenAICompleter) Chat(ctx context.Context, system, user, model string, maxTokens int64) (string, error) {
	if model == "" {
		model = c.config.Model
	}

	if maxTokens == 0 {
		maxTokens = c.config.MaxTokens
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}

	messages = append(messages, openai.UserMessage(user))

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: messages,
	}

	if maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(maxTokens)
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		c.logger.DebugContext(ctx, "Chat completion failed", "error", err)

		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}
