// Package engine processes one user turn at a time per session: it loads the session,
// classifies the turn, advances the parameter collection dialog, runs confirmed
// automations and stores the updated session.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/dukex/operion-assistant/pkg/classifier"
	"github.com/dukex/operion-assistant/pkg/dialog"
	"github.com/dukex/operion-assistant/pkg/eventbus"
	"github.com/dukex/operion-assistant/pkg/llm"
	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/dukex/operion-assistant/pkg/otelhelper"
	"github.com/dukex/operion-assistant/pkg/persistence"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	BusyMessage    = "I'm still processing your previous message, please wait a moment."
	ApologyMessage = "Sorry, something went wrong on my side. Could you try that again?"
	CannedReply    = "What would you like to automate?"
)

// ErrMissingDependency indicates the engine was built without a required collaborator.
var ErrMissingDependency = errors.New("missing engine dependency")

// Config tunes the engine. Zero values are replaced by DefaultConfig.
type Config struct {
	HistoryTurns    int           `validate:"min=1"`
	ExecutorTimeout time.Duration `validate:"gt=0"`
	ReplyTimeout    time.Duration `validate:"gte=0"`
}

func DefaultConfig() Config {
	return Config{
		HistoryTurns:    10,
		ExecutorTimeout: 60 * time.Second,
		ReplyTimeout:    10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()

	if c.HistoryTurns == 0 {
		c.HistoryTurns = defaults.HistoryTurns
	}

	if c.ExecutorTimeout == 0 {
		c.ExecutorTimeout = defaults.ExecutorTimeout
	}

	return c
}

// Executor runs a confirmed workflow graph.
type Executor interface {
	Execute(ctx context.Context, graph *models.WorkflowGraph) (*models.ExecutionResult, error)
}

// Dependencies are the collaborators of the engine. Replier, Publisher and Tracer are
// optional.
type Dependencies struct {
	Store      persistence.Persistence
	Classifier classifier.Classifier
	Dialog     *dialog.Dialog
	Executor   Executor
	Replier    llm.Completer
	Publisher  eventbus.EventPublisher
	Tracer     trace.Tracer
}

type Engine struct {
	config     Config
	store      persistence.Persistence
	classifier classifier.Classifier
	dialog     *dialog.Dialog
	executor   Executor
	replier    llm.Completer
	publisher  eventbus.EventPublisher
	tracer     trace.Tracer
	locks      *sessionLocks
	logger     *slog.Logger
}

func NewEngine(logger *slog.Logger, deps Dependencies, config Config) (*Engine, error) {
	config = config.withDefaults()

	err := validator.New().Struct(config)
	if err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	switch {
	case deps.Store == nil:
		return nil, fmt.Errorf("%w: store", ErrMissingDependency)
	case deps.Classifier == nil:
		return nil, fmt.Errorf("%w: classifier", ErrMissingDependency)
	case deps.Dialog == nil:
		return nil, fmt.Errorf("%w: dialog", ErrMissingDependency)
	case deps.Executor == nil:
		return nil, fmt.Errorf("%w: executor", ErrMissingDependency)
	}

	tracer := deps.Tracer
	if tracer == nil {
		tracer = otelhelper.NoopTracer()
	}

	return &Engine{
		config:     config,
		store:      deps.Store,
		classifier: deps.Classifier,
		dialog:     deps.Dialog,
		executor:   deps.Executor,
		replier:    deps.Replier,
		publisher:  deps.Publisher,
		tracer:     tracer,
		locks:      newSessionLocks(),
		logger:     logger.With("module", "engine"),
	}, nil
}

// Process handles one user turn. It never returns an error: failures become a
// conversational apology, and a turn arriving while the same session is busy is answered
// immediately with BusyMessage.
func (e *Engine) Process(ctx context.Context, req models.Request) (resp models.Response) {
	key := req.Key()
	logger := e.logger.With("session", key.String())

	if !e.locks.tryAcquire(key.String()) {
		logger.InfoContext(ctx, "Session busy, rejecting turn")

		return models.ConversationalResponse(BusyMessage)
	}
	defer e.locks.release(key.String())

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "engine.process",
		attribute.String(otelhelper.AgentIDKey, key.AgentID),
		attribute.String(otelhelper.SessionIDKey, key.SessionID),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "Recovered from panic while processing turn",
				"panic", r,
				"stack", string(debug.Stack()),
			)
			otelhelper.SetError(span, fmt.Errorf("panic: %v", r))

			resp = models.ConversationalResponse(ApologyMessage)
		}
	}()

	resp, err := e.process(ctx, logger, req)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to process turn", "error", err)
		otelhelper.SetError(span, err)

		return models.ConversationalResponse(ApologyMessage)
	}

	span.SetAttributes(attribute.String(otelhelper.ResponseKindKey, string(resp.Kind)))

	return resp
}

func (e *Engine) process(ctx context.Context, logger *slog.Logger, req models.Request) (models.Response, error) {
	session, err := persistence.LoadOrNew(ctx, e.store, req.Key())
	if err != nil {
		return models.Response{}, fmt.Errorf("failed to load session: %w", err)
	}

	classification := e.classifier.Classify(ctx, req.UserText, classifier.ContextFromSession(session, e.config.HistoryTurns))

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String(otelhelper.IntentKey, string(classification.Intent)),
		attribute.String(otelhelper.CategoryKey, classification.AutomationCategory),
	)
	logger.DebugContext(ctx, "Turn classified",
		"intent", classification.Intent,
		"category", classification.AutomationCategory,
		"source", classification.Source,
		"confidence", classification.Confidence,
	)
	e.publishClassified(ctx, session.Key, classification)

	resp, err := e.respond(ctx, session, req, classification)
	if err != nil {
		return models.Response{}, err
	}

	session.AppendTurn(models.RoleUser, req.UserText)
	session.AppendTurn(models.RoleAssistant, resp.Text())

	err = e.store.SaveContext(ctx, session)
	if err != nil {
		return models.Response{}, fmt.Errorf("failed to save session: %w", err)
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.String(otelhelper.DialogStateKey, string(session.State)))

	return resp, nil
}

func (e *Engine) respond(
	ctx context.Context,
	session *models.SessionContext,
	req models.Request,
	classification models.ClassificationResult,
) (models.Response, error) {
	if classification.Intent == models.IntentConversational {
		return e.conversationalReply(ctx, session, req), nil
	}

	workflowID := ""
	if session.PendingGraph != nil {
		workflowID = session.PendingGraph.WorkflowID
	}

	step, err := e.dialog.Handle(ctx, session, req.UserText, classification)
	if err != nil {
		if errors.Is(err, dialog.ErrNotAutomation) {
			return e.conversationalReply(ctx, session, req), nil
		}

		return models.Response{}, fmt.Errorf("dialog failed: %w", err)
	}

	if step.Exhausted != nil {
		e.publishExhausted(ctx, session.Key, workflowID, *step.Exhausted)
	}

	if step.Execute != nil {
		return e.execute(ctx, session, step.Execute), nil
	}

	switch step.Response.Kind {
	case models.ResponseKindConfirm:
		e.publishProposed(ctx, session, step.Response.PlanSummary)
	case models.ResponseKindCancelled:
		if workflowID != "" {
			e.publishCancelled(ctx, session.Key, workflowID)
		}
	}

	return step.Response, nil
}

// execute runs a confirmed graph under the executor budget and closes the dialog.
func (e *Engine) execute(ctx context.Context, session *models.SessionContext, graph *models.WorkflowGraph) models.Response {
	e.publishConfirmed(ctx, session.Key, graph)

	start := time.Now()
	result, err := e.runExecutor(ctx, graph)
	duration := time.Since(start)

	resp := e.dialog.Finish(ctx, session, result, err)
	otelhelper.SetOutcome(trace.SpanFromContext(ctx), resp.Success, resp.Message)
	e.publishExecuted(ctx, session.Key, graph.WorkflowID, resp, err, duration)

	return resp
}

// runExecutor bounds the executor by ExecutorTimeout even when it does not honor
// its context. A late result is dropped; the executor goroutine finishes on its own.
func (e *Engine) runExecutor(ctx context.Context, graph *models.WorkflowGraph) (*models.ExecutionResult, error) {
	execCtx, cancel := context.WithTimeout(ctx, e.config.ExecutorTimeout)
	defer cancel()

	type outcome struct {
		result   *models.ExecutionResult
		err      error
		panicked any
	}

	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{panicked: r}
			}
		}()

		result, err := e.executor.Execute(execCtx, graph)
		done <- outcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		if out.panicked != nil {
			panic(out.panicked)
		}

		return out.result, out.err
	case <-execCtx.Done():
		e.logger.WarnContext(ctx, "Executor did not return within its budget",
			"workflow_id", graph.WorkflowID, "timeout", e.config.ExecutorTimeout)

		return nil, execCtx.Err()
	}
}

// InFlight returns the number of sessions with a turn in progress.
func (e *Engine) InFlight() int {
	return e.locks.inFlight()
}
