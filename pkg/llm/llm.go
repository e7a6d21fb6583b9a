// Package llm provides the narrow completion interface used by the classifier,
// the extractor and the conversational reply path.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultTimeout bounds a completion whose caller configured no budget.
const DefaultTimeout = 5 * time.Second

var (
	// ErrTimeout indicates the completion did not finish within its budget.
	ErrTimeout = errors.New("llm completion timed out")

	// ErrEmptyResponse indicates the backend answered without any content.
	ErrEmptyResponse = errors.New("llm returned an empty response")

	// ErrNoJSONObject indicates a completion did not contain a JSON object.
	ErrNoJSONObject = errors.New("llm response contains no JSON object")
)

// Completer turns a prompt into text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// CompleteWithTimeout runs the completion under a hard deadline. A deadline hit is
// reported as ErrTimeout even when the backend ignores context cancellation. A
// non-positive timeout falls back to DefaultTimeout.
func CompleteWithTimeout(ctx context.Context, completer Completer, prompt string, timeout time.Duration) (string, error) {
	if completer == nil {
		return "", errors.New("no llm completer configured")
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		text, err := completer.Complete(ctx, prompt)
		done <- result{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && errors.Is(res.err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}

		return res.text, res.err
	case <-ctx.Done():
		return "", fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
}

// ParseJSONObject decodes the first JSON object found in a completion, tolerating
// markdown code fences and surrounding prose.
func ParseJSONObject(text string, target any) error {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")

	if start < 0 || end <= start {
		return ErrNoJSONObject
	}

	err := json.Unmarshal([]byte(text[start:end+1]), target)
	if err != nil {
		return fmt.Errorf("failed to decode llm JSON: %w", err)
	}

	return nil
}
