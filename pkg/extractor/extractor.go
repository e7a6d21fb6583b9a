// Package extractor pulls known parameter values out of free text.
package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/dukex/operion-assistant/pkg/llm"
	"github.com/dukex/operion-assistant/pkg/models"
)

// SummarizePrompt is the prompt bound when the user asks for a summary.
const SummarizePrompt = "Summarize the following content concisely."

var (
	methodPattern = regexp.MustCompile(`\b(GET|POST|PUT|PATCH|DELETE)\b`)
	orPattern     = regexp.MustCompile(`(?i)\bor\b`)
	listPattern   = regexp.MustCompile(`(?i)(,|&|\band\b|\bplus\b|\bcc\b|\bwell as\b)`)
)

// patternFields are extracted with regular expressions only and are never asked of the LLM.
var patternFields = []string{
	models.ParamToEmail,
	models.ParamRecipients,
	models.ParamCC,
	models.ParamFromEmail,
	models.ParamURL,
	models.ParamMethod,
}

var defaultLLMFields = []string{models.ParamSubject, models.ParamBody, models.ParamTopic}

// IsPatternField reports whether param is extracted deterministically from patterns.
func IsPatternField(param string) bool {
	return slices.Contains(patternFields, param)
}

// Extractor produces best-effort parameter maps. It is safe for concurrent use.
type Extractor struct {
	completer llm.Completer
	timeout   time.Duration
	logger    *slog.Logger
}

// NewExtractor returns an extractor. A nil completer disables LLM extraction.
func NewExtractor(logger *slog.Logger, completer llm.Completer, timeout time.Duration) *Extractor {
	return &Extractor{
		completer: completer,
		timeout:   timeout,
		logger:    logger.With("module", "extractor"),
	}
}

// Extract returns the parameters found in text. When scope is non-empty only the
// scoped parameters are returned. Absent values are absent keys; Extract never fails.
func (e *Extractor) Extract(ctx context.Context, text string, scope []string) map[string]any {
	extracted := make(map[string]any)

	recipients := Recipients(text)
	if len(recipients) > 0 {
		extracted[models.ParamToEmail] = recipients[0]

		if len(recipients) > 1 || slices.Contains(scope, models.ParamRecipients) {
			extracted[models.ParamRecipients] = recipients
		}
	}

	if sender := senderEmail(text); sender != "" {
		extracted[models.ParamFromEmail] = sender
	}

	if urls := URLs(text); len(urls) > 0 {
		extracted[models.ParamURL] = urls[0]
	}

	if method := methodPattern.FindString(text); method != "" {
		extracted[models.ParamMethod] = method
	}

	if fields := llmFields(scope); e.completer != nil && len(fields) > 0 {
		values, err := e.extractWithLLM(ctx, text, fields)
		if err != nil {
			e.logger.DebugContext(ctx, "LLM extraction unavailable, using heuristics", "error", err)
		}

		for key, value := range values {
			if _, exists := extracted[key]; !exists {
				extracted[key] = value
			}
		}
	}

	heuristics := map[string]func(string) string{
		models.ParamSubject: heuristicSubject,
		models.ParamBody:    heuristicBody,
		models.ParamTopic:   heuristicTopic,
		models.ParamPrompt:  heuristicPrompt,
	}

	for key, heuristic := range heuristics {
		if _, exists := extracted[key]; exists {
			continue
		}

		if value := heuristic(text); value != "" {
			extracted[key] = value
		}
	}

	return filterScope(extracted, scope)
}

// IsAmbiguous reports whether text names several recipients without presenting them
// as a list, e.g. "alice@example.com or bob@example.com".
func IsAmbiguous(text string) bool {
	sender := senderEmail(text)

	var spans [][]int

	for _, span := range emailPattern.FindAllStringIndex(text, -1) {
		if sender != "" && strings.EqualFold(strings.TrimRight(text[span[0]:span[1]], trailingPunct), sender) {
			continue
		}

		spans = append(spans, span)
	}

	if len(spans) < 2 {
		return false
	}

	for i := 1; i < len(spans); i++ {
		between := text[spans[i-1][1]:spans[i][0]]

		if orPattern.MatchString(between) || !listPattern.MatchString(between) || len(strings.TrimSpace(between)) > 20 {
			return true
		}
	}

	return false
}

func (e *Extractor) extractWithLLM(ctx context.Context, text string, fields []string) (map[string]any, error) {
	prompt := fmt.Sprintf(`Extract the following fields from the user message: %s.
Answer with a single flat JSON object whose keys are exactly those field names and whose values are strings.
Use an empty string if a field is not present in the message. Never invent a value.

Message: %q`, strings.Join(fields, ", "), text)

	answer, err := llm.CompleteWithTimeout(ctx, e.completer, prompt, e.timeout)
	if err != nil {
		return nil, err
	}

	var raw map[string]any

	err = llm.ParseJSONObject(answer, &raw)
	if err != nil {
		return nil, err
	}

	values := make(map[string]any, len(fields))

	for _, field := range fields {
		value, ok := raw[field].(string)
		if !ok {
			continue
		}

		value = strings.TrimSpace(value)
		if value != "" && !models.IsPlaceholder(value) {
			values[field] = value
		}
	}

	return values, nil
}

func llmFields(scope []string) []string {
	if len(scope) == 0 {
		return defaultLLMFields
	}

	fields := make([]string, 0, len(scope))

	for _, param := range scope {
		if !IsPatternField(param) && !slices.Contains(fields, param) {
			fields = append(fields, param)
		}
	}

	return fields
}

func filterScope(extracted map[string]any, scope []string) map[string]any {
	if len(scope) == 0 {
		return extracted
	}

	for key := range extracted {
		if slices.Contains(scope, key) {
			continue
		}

		if key == models.ParamRecipients && slices.Contains(scope, models.ParamToEmail) {
			continue
		}

		delete(extracted, key)
	}

	return extracted
}
