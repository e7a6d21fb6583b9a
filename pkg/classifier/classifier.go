// Package classifier decides what a user turn means for the session: small talk,
// a new automation, more details for a pending one, or a yes/no on a plan.
package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dukex/operion-assistant/pkg/llm"
	"github.com/dukex/operion-assistant/pkg/models"
)

// HeuristicConfidence is reported by the keyword fallback for every decision.
const HeuristicConfidence = 0.5

// ConversationContext is the read-only session view a classifier may use.
type ConversationContext struct {
	Turns        []models.ConversationTurn
	Scratchpad   map[string]string
	PendingGraph *models.WorkflowGraph
	State        models.DialogState
}

// ContextFromSession builds the classifier view of a session, keeping the last n turns.
func ContextFromSession(session *models.SessionContext, n int) ConversationContext {
	return ConversationContext{
		Turns:        session.LastTurns(n),
		Scratchpad:   session.Scratchpad,
		PendingGraph: session.PendingGraph,
		State:        session.State,
	}
}

func (c ConversationContext) hasPendingGraph() bool {
	session := models.SessionContext{PendingGraph: c.PendingGraph, State: c.State}

	return session.HasPendingAutomation()
}

// Classifier produces one ClassificationResult per turn and never fails.
type Classifier interface {
	Classify(ctx context.Context, text string, conversation ConversationContext) models.ClassificationResult
}

// IntentClassifier applies the dialog state rules, then asks the LLM, then falls back
// to keyword heuristics when the LLM is missing, slow or unparsable.
type IntentClassifier struct {
	completer llm.Completer
	timeout   time.Duration
	logger    *slog.Logger
}

// NewIntentClassifier returns a classifier. A nil completer means heuristics only.
func NewIntentClassifier(logger *slog.Logger, completer llm.Completer, timeout time.Duration) *IntentClassifier {
	return &IntentClassifier{
		completer: completer,
		timeout:   timeout,
		logger:    logger.With("module", "classifier"),
	}
}

func (c *IntentClassifier) Classify(ctx context.Context, text string, conversation ConversationContext) models.ClassificationResult {
	if result, ok := ClassifyByState(text, conversation); ok {
		c.logger.DebugContext(ctx, "Classified by dialog state", "intent", result.Intent, "state", conversation.State)

		return result
	}

	if c.completer != nil {
		result, err := c.classifyWithLLM(ctx, text, conversation)
		if err == nil {
			return result
		}

		c.logger.WarnContext(ctx, "LLM classification failed, using heuristics", "error", err)
	}

	return Heuristic(text, conversation)
}

type llmAnswer struct {
	Intent             string  `json:"intent"`
	AutomationCategory string  `json:"automation_category"`
	Description        string  `json:"description"`
	Confidence         float64 `json:"confidence"`
}

var knownIntents = []models.Intent{
	models.IntentConversational,
	models.IntentAutomationNew,
	models.IntentAutomationContinuation,
	models.IntentConfirmation,
	models.IntentCancellation,
}

func (c *IntentClassifier) classifyWithLLM(ctx context.Context, text string, conversation ConversationContext) (models.ClassificationResult, error) {
	answer, err := llm.CompleteWithTimeout(ctx, c.completer, classificationPrompt(text, conversation), c.timeout)
	if err != nil {
		return models.ClassificationResult{}, err
	}

	var parsed llmAnswer

	err = llm.ParseJSONObject(answer, &parsed)
	if err != nil {
		return models.ClassificationResult{}, err
	}

	intent := models.Intent(strings.ToLower(strings.TrimSpace(parsed.Intent)))
	if !slices.Contains(knownIntents, intent) {
		return models.ClassificationResult{}, fmt.Errorf("unknown intent %q", parsed.Intent)
	}

	// Without a pending graph there is nothing to continue, confirm or cancel.
	switch intent {
	case models.IntentAutomationContinuation:
		intent = models.IntentAutomationNew
	case models.IntentConfirmation, models.IntentCancellation:
		intent = models.IntentConversational
	}

	category := strings.TrimSpace(parsed.AutomationCategory)
	if !slices.Contains(Categories, category) {
		category = ""
	}

	if intent == models.IntentAutomationNew && category == "" {
		category = DetectCategory(text)
	}

	description := strings.TrimSpace(parsed.Description)
	if description == "" && intent == models.IntentAutomationNew {
		description = describe(text)
	}

	result := models.ClassificationResult{
		Intent:      intent,
		Description: description,
		Confidence:  min(max(parsed.Confidence, 0), 1),
		Source:      models.ClassificationSourceLLM,
	}

	if intent == models.IntentAutomationNew {
		result.AutomationCategory = category
	}

	return result, nil
}

func classificationPrompt(text string, conversation ConversationContext) string {
	var b strings.Builder

	b.WriteString(`You classify messages sent to a workflow automation assistant.
Answer with a single JSON object: {"intent": "...", "automation_category": "...", "description": "...", "confidence": 0.0}.
intent is "conversational" for small talk or questions, "automation_new" when the user asks for something to be done
(send an email, fetch data, summarize, schedule, automate).
automation_category is one of: `)
	b.WriteString(strings.Join(Categories, ", "))
	b.WriteString(`, or "" when none fits.
description is a one-sentence summary of the automation, empty for conversational messages.
`)

	if len(conversation.Turns) > 0 {
		b.WriteString("\nRecent conversation:\n")

		for _, turn := range conversation.Turns {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Text)
		}
	}

	fmt.Fprintf(&b, "\nMessage: %q\n", text)

	return b.String()
}

func describe(text string) string {
	text = strings.Join(strings.Fields(text), " ")

	const maxLen = 200
	if len(text) > maxLen {
		return strings.TrimSpace(text[:maxLen]) + "..."
	}

	return text
}
