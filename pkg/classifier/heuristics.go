package classifier

import (
	"regexp"
	"strings"

	"github.com/dukex/operion-assistant/pkg/extractor"
	"github.com/dukex/operion-assistant/pkg/models"
)

// Categories lists the automation categories the assembler knows how to build.
var Categories = []string{
	models.CategoryEmailOnly,
	models.CategoryEmailWithAIContent,
	models.CategoryFetchThenEmail,
	models.CategoryFetchThenSummarize,
	models.CategoryFetchData,
	models.CategoryAIContent,
}

// triggerPhrases mark a message as an automation request. They are matched against
// normalized text with articles removed.
var triggerPhrases = []string{
	"send email", "send mail", "send e-mail", "send message to", "email to", "mail to",
	"write email", "compose email", "draft email",
	"create workflow", "create automation", "build workflow",
	"fetch data", "fetch", "scrape", "download data", "http request", "api call",
	"schedule", "automate", "automation", "workflow",
	"summarize", "summarise",
}

var (
	articles = regexp.MustCompile(`\b(?:a|an|the|some|my|our)\b`)
	quoted   = regexp.MustCompile(`"[^"]*"|'[^']*'|“[^”]*”`)

	fetchWords = regexp.MustCompile(`\b(?:fetch\w*|scrap\w*|crawl\w*|download\w*|get data|pull data|http|api|endpoint|web ?page|website)\b`)
	emailWords = regexp.MustCompile(`\b(?:e-?mail\w*|mail)\b`)
	aiWords    = regexp.MustCompile(`\b(?:write|writes|generate\w*|compose|draft|ai|gpt|rewrite|translate)\b`)
	sendVerbs  = regexp.MustCompile(`^(?:e-?mail|mail)\b|\bsend\b`)

	// literalBody marks messages whose content the user dictates verbatim.
	literalBody = regexp.MustCompile(`\b(?:saying|message|body)\b`)
)

// Heuristic classifies text with keyword rules only. Any trigger phrase or a URL makes
// the message an automation request; everything else is conversational.
func Heuristic(text string, conversation ConversationContext) models.ClassificationResult {
	if result, ok := ClassifyByState(text, conversation); ok {
		return result
	}

	result := models.ClassificationResult{
		Intent:     models.IntentConversational,
		Confidence: HeuristicConfidence,
		Source:     models.ClassificationSourceHeuristic,
	}

	if !isAutomationRequest(text) {
		return result
	}

	result.Intent = models.IntentAutomationNew
	if conversation.hasPendingGraph() {
		result.Intent = models.IntentAutomationContinuation
	}

	result.AutomationCategory = DetectCategory(text)
	result.Description = describe(text)

	return result
}

func isAutomationRequest(text string) bool {
	normalized := articles.ReplaceAllString(normalize(text), " ")
	normalized = strings.Join(strings.Fields(normalized), " ")

	for _, phrase := range triggerPhrases {
		if containsPhrase(normalized, phrase) {
			return true
		}
	}

	if len(extractor.URLs(text)) > 0 {
		return true
	}

	return len(extractor.Emails(text)) > 0 && sendVerbs.MatchString(normalized)
}

func containsPhrase(text, phrase string) bool {
	idx := strings.Index(text, phrase)
	for idx >= 0 {
		end := idx + len(phrase)

		before := idx == 0 || text[idx-1] == ' '
		after := end == len(text) || text[end] == ' '

		if before && after {
			return true
		}

		next := strings.Index(text[idx+1:], phrase)
		if next < 0 {
			return false
		}

		idx += next + 1
	}

	return false
}

// DetectCategory maps an automation request to one of Categories, or "" when no
// category fits. Quoted values such as subjects and literal addresses are ignored.
func DetectCategory(text string) string {
	stripped := quoted.ReplaceAllString(text, " ")

	urls := extractor.URLs(stripped)
	emails := extractor.Emails(stripped)

	words := stripped
	for _, ref := range append(urls, emails...) {
		words = strings.ReplaceAll(words, ref, " ")
	}

	lower := strings.ToLower(words)

	email := emailWords.MatchString(lower) || len(emails) > 0
	fetch := fetchWords.MatchString(lower) || (len(urls) > 0 && !email)
	summarize := strings.Contains(lower, "summar")
	ai := summarize || (aiWords.MatchString(lower) && !literalBody.MatchString(lower))

	switch {
	case fetch && email:
		return models.CategoryFetchThenEmail
	case fetch && summarize:
		return models.CategoryFetchThenSummarize
	case fetch:
		return models.CategoryFetchData
	case email && ai:
		return models.CategoryEmailWithAIContent
	case email:
		return models.CategoryEmailOnly
	case ai:
		return models.CategoryAIContent
	}

	return ""
}
