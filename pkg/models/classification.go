package models

// Intent is the classified purpose of a user turn.
type Intent string

const (
	IntentConversational         Intent = "conversational"
	IntentAutomationNew          Intent = "automation_new"
	IntentAutomationContinuation Intent = "automation_continuation"
	IntentConfirmation           Intent = "confirmation"
	IntentCancellation           Intent = "cancellation"
)

// Automation categories known to the assembler.
const (
	CategoryEmailOnly          = "email_only"
	CategoryEmailWithAIContent = "email_with_ai_content"
	CategoryFetchThenEmail     = "fetch_then_email"
	CategoryFetchThenSummarize = "fetch_then_summarize"
	CategoryFetchData          = "fetch_data"
	CategoryAIContent          = "ai_content"
)

// ClassificationSource records which strategy produced a classification.
type ClassificationSource string

const (
	ClassificationSourceLLM       ClassificationSource = "llm"
	ClassificationSourceHeuristic ClassificationSource = "heuristic"
	ClassificationSourceState     ClassificationSource = "state"
)

// ClassificationResult is produced once per turn.
type ClassificationResult struct {
	Intent             Intent               `json:"intent"`
	AutomationCategory string               `json:"automation_category,omitempty"`
	Description        string               `json:"description,omitempty"`
	Confidence         float64              `json:"confidence"`
	RawExtracted       map[string]any       `json:"raw_extracted,omitempty"`
	Source             ClassificationSource `json:"source"`
}

// IsAutomation reports whether the intent builds or edits an automation.
func (c ClassificationResult) IsAutomation() bool {
	return c.Intent == IntentAutomationNew || c.Intent == IntentAutomationContinuation
}
