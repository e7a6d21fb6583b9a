package classifier

import (
	"regexp"
	"slices"
	"strings"

	"github.com/dukex/operion-assistant/pkg/models"
)

var (
	affirmatives = []string{
		"yes", "y", "yeah", "yep", "yup", "sure", "ok", "okay", "confirm", "confirmed",
		"send it", "go ahead", "do it", "run it", "execute", "proceed", "go", "correct",
		"sounds good", "looks good", "please do", "absolutely", "of course", "lgtm",
	}

	negatives = []string{
		"no", "n", "nope", "nah", "cancel", "stop", "abort", "dont", "do not",
		"never mind", "nevermind", "forget it", "start over", "not now", "no thanks",
	}

	cancelPhrase = regexp.MustCompile(`\b(?:never\s*mind|cancel|start over|forget it|abort)\b`)

	punctuation = regexp.MustCompile(`[^\p{L}\p{N}@.:/\s]+|[.:]+(?:\s|$)`)
)

// maxReplyWords bounds how long a bare yes/no reply can be before it is read as an edit.
const maxReplyWords = 4

// ClassifyByState applies the rules that depend only on the dialog state. It reports
// false when the state leaves the decision to the text itself.
func ClassifyByState(text string, conversation ConversationContext) (models.ClassificationResult, bool) {
	if !conversation.hasPendingGraph() {
		return models.ClassificationResult{}, false
	}

	normalized := normalize(text)

	result := models.ClassificationResult{Confidence: 1, Source: models.ClassificationSourceState}

	switch conversation.State {
	case models.DialogStateAwaitingConfirmation:
		switch {
		case isShortReply(normalized, affirmatives):
			result.Intent = models.IntentConfirmation
		case isShortReply(normalized, negatives):
			result.Intent = models.IntentCancellation
		default:
			result.Intent = models.IntentAutomationContinuation
		}
	case models.DialogStateCollecting:
		if cancelPhrase.MatchString(normalized) || normalized == "stop" || normalized == "no" {
			result.Intent = models.IntentCancellation
		} else {
			result.Intent = models.IntentAutomationContinuation
		}
	default:
		return models.ClassificationResult{}, false
	}

	if result.Intent == models.IntentAutomationContinuation && onlyGenericNodes(conversation.PendingGraph) {
		result.AutomationCategory = DetectCategory(text)
		result.Description = describe(text)
	}

	return result, true
}

// isShortReply reports whether normalized consists of phrases and filler words such as
// "please" only, e.g. "yes please" or "ok go ahead".
func isShortReply(normalized string, phrases []string) bool {
	words := strings.Fields(normalized)
	if len(words) == 0 || len(words) > maxReplyWords || strings.ContainsAny(normalized, "@/") {
		return false
	}

	matched := false

	for len(words) > 0 {
		if n := matchPhrase(words, phrases); n > 0 {
			words = words[n:]
			matched = true

			continue
		}

		if !slices.Contains(fillerWords, words[0]) {
			return false
		}

		words = words[1:]
	}

	return matched
}

var fillerWords = []string{"please", "thanks", "thank", "you", "it", "that", "now", "then", "ahead", "just"}

func matchPhrase(words []string, phrases []string) int {
	for _, phrase := range phrases {
		phraseWords := strings.Fields(phrase)
		if len(phraseWords) <= len(words) && slices.Equal(words[:len(phraseWords)], phraseWords) {
			return len(phraseWords)
		}
	}

	return 0
}

func onlyGenericNodes(graph *models.WorkflowGraph) bool {
	for _, node := range graph.Actions() {
		if node.Type != models.NodeTypeAutomation {
			return false
		}
	}

	return true
}

func normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = strings.ReplaceAll(text, "'", "")
	text = strings.ReplaceAll(text, "’", "")
	text = punctuation.ReplaceAllString(text, " ")

	return strings.Join(strings.Fields(text), " ")
}
