package engine

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/dukex/operion-assistant/pkg/llm"
	"github.com/dukex/operion-assistant/pkg/models"
)

// conversationalReply answers small talk in the agent's voice. Without an LLM, or when it
// fails, the canned prompt steers the user back to automations.
func (e *Engine) conversationalReply(ctx context.Context, session *models.SessionContext, req models.Request) models.Response {
	if e.replier == nil {
		return models.ConversationalResponse(CannedReply)
	}

	prompt := personaPrompt(req.AgentContext, session.LastTurns(e.config.HistoryTurns), req.UserText)

	reply, err := llm.CompleteWithTimeout(ctx, e.replier, prompt, e.config.ReplyTimeout)
	if err != nil {
		e.logger.WarnContext(ctx, "Conversational reply failed, using canned reply",
			"session", session.Key.String(),
			"error", err,
		)

		return models.ConversationalResponse(CannedReply)
	}

	return models.ConversationalResponse(reply)
}

func personaPrompt(agent models.AgentContext, turns []models.ConversationTurn, text string) string {
	var b strings.Builder

	name := agent.Name
	if name == "" {
		name = "an assistant"
	}

	fmt.Fprintf(&b, "You are %s", name)

	if agent.Role != "" {
		fmt.Fprintf(&b, ", working as %s", agent.Role)
	}

	b.WriteString(". You help users automate tasks such as sending emails, fetching data from URLs and generating content with AI.\n")

	if len(agent.Traits) > 0 {
		b.WriteString("Personality:\n")

		for _, key := range slices.Sorted(maps.Keys(agent.Traits)) {
			fmt.Fprintf(&b, "- %s: %s\n", key, agent.Traits[key])
		}
	}

	if len(turns) > 0 {
		b.WriteString("\nConversation so far:\n")

		for _, turn := range turns {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Text)
		}
	}

	fmt.Fprintf(&b, "\nuser: %s\n", text)
	b.WriteString("\nReply briefly and in character. If it fits, mention what you can automate.")

	return b.String()
}
