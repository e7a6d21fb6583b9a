// Package dialog drives parameter collection for a session: it asks for missing
// parameters one at a time, presents the plan for confirmation and hands a confirmed
// graph over for execution.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/dukex/operion-assistant/pkg/assembler"
	"github.com/dukex/operion-assistant/pkg/extractor"
	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/dukex/operion-assistant/pkg/registry"
)

// DefaultMaxClarifications bounds how often the same parameter is asked for.
const DefaultMaxClarifications = 5

const (
	GiveUpMessage    = "I couldn't gather enough information to proceed with this automation, so I've set it aside. What would you like to automate?"
	CancelledMessage = "Okay, I've cancelled that automation."
	NothingToCancel  = "There's nothing to cancel right now."
)

// ErrNotAutomation indicates a conversational turn was handed to the dialog.
var ErrNotAutomation = errors.New("turn is not part of an automation")

// ParameterExtractor extracts parameter values from user text.
type ParameterExtractor interface {
	Extract(ctx context.Context, text string, scope []string) map[string]any
}

// Step is the outcome of one dialog turn. Execute is set when the session moved to
// EXECUTING and the graph must be run before the turn is finished. Exhausted names the
// requirement that used up its clarification rounds.
type Step struct {
	Response  models.Response
	Execute   *models.WorkflowGraph
	Exhausted *models.MissingParameter
}

// Dialog is stateless; all state lives in the session passed to each call.
type Dialog struct {
	registry          *registry.Registry
	extractor         ParameterExtractor
	assembler         *assembler.Assembler
	maxClarifications int
	logger            *slog.Logger
}

func NewDialog(
	logger *slog.Logger,
	reg *registry.Registry,
	ext ParameterExtractor,
	asm *assembler.Assembler,
	maxClarifications int,
) *Dialog {
	if maxClarifications <= 0 {
		maxClarifications = DefaultMaxClarifications
	}

	return &Dialog{
		registry:          reg,
		extractor:         ext,
		assembler:         asm,
		maxClarifications: maxClarifications,
		logger:            logger.With("module", "dialog"),
	}
}

// MaxClarifications returns how often a parameter is asked for before giving up.
func (d *Dialog) MaxClarifications() int {
	return d.maxClarifications
}

// Handle advances the session by one user turn.
func (d *Dialog) Handle(
	ctx context.Context,
	session *models.SessionContext,
	text string,
	classification models.ClassificationResult,
) (Step, error) {
	logger := d.logger.With("session", session.Key.String(), "state", session.State, "intent", classification.Intent)

	switch classification.Intent {
	case models.IntentCancellation:
		return d.cancel(ctx, logger, session), nil
	case models.IntentConfirmation:
		return d.confirm(ctx, logger, session)
	case models.IntentAutomationNew:
		return d.start(ctx, session, text, classification)
	case models.IntentAutomationContinuation:
		if session.PendingGraph.IsEmpty() {
			classification.Intent = models.IntentAutomationNew

			return d.start(ctx, session, text, classification)
		}

		if session.State == models.DialogStateAwaitingConfirmation {
			return d.edit(ctx, session, text)
		}

		return d.collect(ctx, session, text, classification)
	}

	return Step{}, ErrNotAutomation
}

func (d *Dialog) cancel(ctx context.Context, logger *slog.Logger, session *models.SessionContext) Step {
	if session.PendingGraph.IsEmpty() {
		return Step{Response: models.CancelledResponse(NothingToCancel)}
	}

	logger.InfoContext(ctx, "Automation cancelled", "workflow_id", session.PendingGraph.WorkflowID)
	session.ResetAutomation(models.DialogStateDone)

	return Step{Response: models.CancelledResponse(CancelledMessage)}
}

func (d *Dialog) confirm(ctx context.Context, logger *slog.Logger, session *models.SessionContext) (Step, error) {
	if session.State != models.DialogStateAwaitingConfirmation || session.PendingGraph.IsEmpty() {
		return d.next(session), nil
	}

	if missing := d.registry.MissingParameters(session.PendingGraph); len(missing) > 0 {
		return d.next(session), nil
	}

	session.State = models.DialogStateExecuting
	logger.InfoContext(ctx, "Automation confirmed", "workflow_id", session.PendingGraph.WorkflowID)

	return Step{Execute: session.PendingGraph}, nil
}

func (d *Dialog) start(
	ctx context.Context,
	session *models.SessionContext,
	text string,
	classification models.ClassificationResult,
) (Step, error) {
	session.ResetAutomation(models.DialogStateCollecting)

	extracted := classification.RawExtracted
	if extracted == nil {
		extracted = d.extractor.Extract(ctx, text, nil)
	}

	extracted = cloneParams(extracted)
	d.resolveReferences(session, text, extracted)
	candidates := d.holdAmbiguousRecipients(session, text, extracted)

	graph, err := d.assembler.Assemble(classification, extracted, nil)
	if err != nil {
		return Step{}, err
	}

	session.PendingGraph = graph

	if len(candidates) > 0 {
		return d.askForRecipient(session, candidates), nil
	}

	return d.next(session), nil
}

func (d *Dialog) collect(
	ctx context.Context,
	session *models.SessionContext,
	text string,
	classification models.ClassificationResult,
) (Step, error) {
	graph := session.PendingGraph

	var extracted map[string]any

	if classification.AutomationCategory != "" {
		extracted = d.extractor.Extract(ctx, text, nil)
	} else {
		extracted = d.extractor.Extract(ctx, text, d.missingScope(graph))
	}

	extracted = cloneParams(extracted)

	if choice := d.chooseCandidate(session, text); choice != "" {
		extracted[models.ParamToEmail] = choice
		delete(extracted, models.ParamRecipients)
	}

	d.resolveReferences(session, text, extracted)
	candidates := d.holdAmbiguousRecipients(session, text, extracted)

	if len(candidates) == 0 {
		d.bareAnswer(session, text, extracted)
	}

	updated, err := d.assembler.Assemble(classification, extracted, graph)
	if err != nil {
		return Step{}, err
	}

	session.PendingGraph = updated

	if len(candidates) > 0 {
		return d.askForRecipient(session, candidates), nil
	}

	return d.next(session), nil
}

func (d *Dialog) edit(ctx context.Context, session *models.SessionContext, text string) (Step, error) {
	graph := session.PendingGraph

	extracted := cloneParams(d.extractor.Extract(ctx, text, d.fullScope(graph)))
	d.resolveReferences(session, text, extracted)
	candidates := d.holdAmbiguousRecipients(session, text, extracted)

	edited, applied, err := d.assembler.MergeEdit(graph, extracted)
	if err != nil {
		return Step{}, err
	}

	session.PendingGraph = edited

	if len(candidates) > 0 {
		return d.askForRecipient(session, candidates), nil
	}

	if len(applied) == 0 {
		summary := "I didn't catch a change to the plan. Reply \"yes\" to run it or \"cancel\" to drop it.\n\n" +
			Summarize(d.registry, edited)

		return Step{Response: models.ConfirmResponse(summary)}, nil
	}

	d.logger.Debug("Applied edit to pending automation", "session", session.Key.String(), "parameters", applied)

	return d.next(session), nil
}

// next emits the first unmet requirement as a question, or the plan summary when the
// graph is complete.
func (d *Dialog) next(session *models.SessionContext) Step {
	graph := session.PendingGraph

	missing := d.registry.MissingParameters(graph)
	if len(missing) == 0 {
		session.State = models.DialogStateAwaitingConfirmation
		session.Remember(models.ScratchAskedParameter, "")

		return Step{Response: models.ConfirmResponse(Summarize(d.registry, graph))}
	}

	first := missing[0]

	if !d.countClarification(session, first) {
		return Step{Response: models.AskResponse(GiveUpMessage), Exhausted: &first}
	}

	session.State = models.DialogStateCollecting
	session.Remember(models.ScratchAskedParameter, first.Key())

	return Step{Response: models.AskResponse(d.registry.Question(first.NodeType, first.Parameter))}
}

// countClarification records one more question for requirement and reports false,
// resetting the session, once the bound is exceeded.
func (d *Dialog) countClarification(session *models.SessionContext, requirement models.MissingParameter) bool {
	if session.Clarifications == nil {
		session.Clarifications = make(map[string]int)
	}

	session.Clarifications[requirement.Key()]++

	if session.Clarifications[requirement.Key()] > d.maxClarifications {
		d.logger.Warn("Giving up on automation after repeated clarifications",
			"session", session.Key.String(),
			"parameter", requirement.Key(),
			"rounds", d.maxClarifications,
		)
		session.ResetAutomation(models.DialogStateCollecting)

		return false
	}

	return true
}

func (d *Dialog) missingScope(graph *models.WorkflowGraph) []string {
	var scope []string

	for _, requirement := range d.registry.MissingParameters(graph) {
		if requirement.Parameter == models.ParamIntent || slices.Contains(scope, requirement.Parameter) {
			continue
		}

		scope = append(scope, requirement.Parameter)
		if requirement.Parameter == models.ParamToEmail {
			scope = append(scope, models.ParamRecipients)
		}
	}

	return scope
}

func (d *Dialog) fullScope(graph *models.WorkflowGraph) []string {
	var scope []string

	for _, node := range graph.Actions() {
		spec, err := d.registry.GetSpec(node.Type)
		if err != nil {
			continue
		}

		for _, param := range spec.Params() {
			if param != models.ParamIntent && !slices.Contains(scope, param) {
				scope = append(scope, param)
			}
		}
	}

	return scope
}

// bareAnswer binds the whole reply to the parameter that was just asked for when the
// extractor found nothing for it, e.g. "Quarterly results" after asking for a subject.
func (d *Dialog) bareAnswer(session *models.SessionContext, text string, extracted map[string]any) {
	asked := session.Scratchpad[models.ScratchAskedParameter]
	if asked == "" {
		return
	}

	_, param, ok := strings.Cut(asked, ".")
	if !ok || param == models.ParamIntent || extractor.IsPatternField(param) {
		return
	}

	if _, exists := extracted[param]; exists {
		return
	}

	answer := strings.TrimSpace(text)
	if answer == "" || strings.HasSuffix(answer, "?") {
		return
	}

	extracted[param] = strings.Trim(answer, `"'“”`)
}

var sameRecipient = regexp.MustCompile(`(?i)\b(?:same (?:person|recipient|address|email|one)|another one|them again|him again|her again)\b`)

// resolveReferences binds recipient references such as "the same person" to the last
// recipient remembered for the session.
func (d *Dialog) resolveReferences(session *models.SessionContext, text string, extracted map[string]any) {
	if _, exists := extracted[models.ParamToEmail]; exists {
		return
	}

	last := session.Scratchpad[models.ScratchLastRecipient]
	if last != "" && sameRecipient.MatchString(text) {
		extracted[models.ParamToEmail] = last
	}
}

// holdAmbiguousRecipients removes recipients the user did not clearly choose between
// and remembers them as candidates.
func (d *Dialog) holdAmbiguousRecipients(session *models.SessionContext, text string, extracted map[string]any) []string {
	if !extractor.IsAmbiguous(text) {
		return nil
	}

	candidates := extractor.Recipients(text)

	delete(extracted, models.ParamToEmail)
	delete(extracted, models.ParamRecipients)
	session.Remember(models.ScratchEmailCandidates, strings.Join(candidates, ","))

	return candidates
}

func (d *Dialog) askForRecipient(session *models.SessionContext, candidates []string) Step {
	for _, node := range session.PendingGraph.NodesOfType(models.NodeTypeEmailSend) {
		if node.HasValue(models.ParamToEmail) {
			continue
		}

		requirement := models.MissingParameter{NodeID: node.ID, NodeType: node.Type, Parameter: models.ParamToEmail}
		if !d.countClarification(session, requirement) {
			return Step{Response: models.AskResponse(GiveUpMessage), Exhausted: &requirement}
		}

		session.Remember(models.ScratchAskedParameter, requirement.Key())

		break
	}

	session.State = models.DialogStateCollecting

	return Step{Response: models.AskResponse(fmt.Sprintf(
		"I found %d email addresses (%s). Which one should I send to?",
		len(candidates), strings.Join(candidates, ", "),
	))}
}

var ordinals = map[string]int{
	"first": 0, "1": 0, "1st": 0, "former": 0,
	"second": 1, "2": 1, "2nd": 1,
	"third": 2, "3": 2, "3rd": 2,
}

// chooseCandidate resolves a reply to a recipient question, either by address or by
// position ("the second one", "last").
func (d *Dialog) chooseCandidate(session *models.SessionContext, text string) string {
	stored := session.Scratchpad[models.ScratchEmailCandidates]
	if stored == "" {
		return ""
	}

	session.Remember(models.ScratchEmailCandidates, "")
	candidates := strings.Split(stored, ",")

	emails := extractor.Emails(text)
	if len(emails) == 1 {
		return emails[0]
	}

	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?")

		if word == "last" || word == "latter" {
			return candidates[len(candidates)-1]
		}

		if idx, ok := ordinals[word]; ok && idx < len(candidates) {
			return candidates[idx]
		}
	}

	return ""
}

func cloneParams(params map[string]any) map[string]any {
	clone := make(map[string]any, len(params))
	for key, value := range params {
		clone[key] = value
	}

	return clone
}
