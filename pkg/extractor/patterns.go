package extractor

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	urlPattern   = regexp.MustCompile(`(?i)\b(?:https?|ftp)://[^\s<>"']+`)
	fromPattern  = regexp.MustCompile(`(?i)\bfrom\s+(?:my\s+address\s+|address\s+)?([A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,})`)

	subjectQuoted = regexp.MustCompile(`(?i)\bsubject\b(?:\s+line)?\s*(?:(?:is|of|to|as)\b|:|=)?\s*(?:"([^"]+)"|'(.+?)'(?:[\s.,!?;]|$)|“([^”]+)”)`)
	subjectPlain  = regexp.MustCompile(`(?i)\bsubject\b(?:\s+line)?\s*(?:(?:is|of|to|as)\b|:|=)?\s*([^.!?\n"']+)`)
	subjectStop   = regexp.MustCompile(`(?i)(?:\s+(?:and\s+|with\s+)?(?:the\s+)?(?:message|body|saying|text)\b|\s+(?:to|for)\s+\S*@|\s+and\s+send\b).*$`)

	bodyQuoted = regexp.MustCompile(`(?i)\b(?:message|saying|body|text|says)\b\s*(?:(?:is|of|to|as)\b|:|=)?\s*(?:"([^"]+)"|'(.+?)'(?:[\s.,!?;]|$)|“([^”]+)”)`)
	bodyPlain  = regexp.MustCompile(`(?i)(?:\bsaying\s+|\b(?:message|body)\s*:\s*)([^"\n]+)$`)

	topicPattern = regexp.MustCompile(`(?i)\babout\s+(.+?)(?:[.!?](?:\s|$)|$)`)
	topicStop    = regexp.MustCompile(`(?i)(?:\s+and\s+(?:then\s+)?(?:send|email|mail|fetch)\b.*|\s+to\s+[A-Za-z0-9._%+\-]+@\S+.*|\s+with\s+(?:the\s+)?subject\b.*)$`)

	summarizePattern = regexp.MustCompile(`(?i)\bsummar(?:y|ies|ize|ise|izing|ising|ized)\b`)

	trailingPunct = ".,;:!?)]}>"
)

// Emails returns every email address in text in order of appearance, without duplicates.
func Emails(text string) []string {
	matches := emailPattern.FindAllString(text, -1)
	emails := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))

	for _, match := range matches {
		match = strings.TrimRight(match, trailingPunct)

		key := strings.ToLower(match)
		if seen[key] {
			continue
		}

		seen[key] = true
		emails = append(emails, match)
	}

	return emails
}

// URLs returns every URL in text with trailing sentence punctuation removed.
func URLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	urls := make([]string, 0, len(matches))

	for _, match := range matches {
		urls = append(urls, strings.TrimRight(match, trailingPunct))
	}

	return urls
}

// Recipients returns the addresses in text that are not the sender address.
func Recipients(text string) []string {
	sender := senderEmail(text)

	var recipients []string

	for _, email := range Emails(text) {
		if sender != "" && strings.EqualFold(email, sender) {
			continue
		}

		recipients = append(recipients, email)
	}

	return recipients
}

func senderEmail(text string) string {
	match := fromPattern.FindStringSubmatch(text)
	if match == nil {
		return ""
	}

	return strings.TrimRight(match[1], trailingPunct)
}

func firstGroup(match []string) string {
	for _, group := range match[1:] {
		if group != "" {
			return group
		}
	}

	return ""
}

func heuristicSubject(text string) string {
	if match := subjectQuoted.FindStringSubmatch(text); match != nil {
		return strings.TrimSpace(firstGroup(match))
	}

	match := subjectPlain.FindStringSubmatch(text)
	if match == nil {
		return ""
	}

	subject := subjectStop.ReplaceAllString(match[1], "")

	return cleanValue(subject)
}

func heuristicBody(text string) string {
	if match := bodyQuoted.FindStringSubmatch(text); match != nil {
		return strings.TrimSpace(firstGroup(match))
	}

	match := bodyPlain.FindStringSubmatch(text)
	if match == nil {
		return ""
	}

	return cleanValue(match[1])
}

func heuristicTopic(text string) string {
	match := topicPattern.FindStringSubmatch(text)
	if match == nil {
		return ""
	}

	topic := topicStop.ReplaceAllString(match[1], "")

	return cleanValue(topic)
}

func heuristicPrompt(text string) string {
	if summarizePattern.MatchString(text) {
		return SummarizePrompt
	}

	return ""
}

func cleanValue(value string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(value), trailingPunct))
}
