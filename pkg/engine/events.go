package engine

import (
	"context"
	"time"

	"github.com/dukex/operion-assistant/pkg/eventbus"
	"github.com/dukex/operion-assistant/pkg/events"
	"github.com/dukex/operion-assistant/pkg/models"
)

// publish sends a lifecycle event. Publishing is best effort and never fails the turn.
func (e *Engine) publish(ctx context.Context, key models.SessionKey, event eventbus.Event) {
	if e.publisher == nil {
		return
	}

	err := e.publisher.Publish(ctx, key.String(), event)
	if err != nil {
		e.logger.WarnContext(ctx, "Failed to publish event",
			"session", key.String(),
			"event_type", event.GetType(),
			"error", err,
		)
	}
}

func (e *Engine) publishClassified(ctx context.Context, key models.SessionKey, c models.ClassificationResult) {
	e.publish(ctx, key, events.IntentClassified{
		BaseEvent:  events.NewBaseEvent(events.IntentClassifiedEvent, key, ""),
		Intent:     c.Intent,
		Category:   c.AutomationCategory,
		Source:     c.Source,
		Confidence: c.Confidence,
	})
}

func (e *Engine) publishExhausted(ctx context.Context, key models.SessionKey, workflowID string, requirement models.MissingParameter) {
	e.publish(ctx, key, events.ClarificationExhausted{
		BaseEvent: events.NewBaseEvent(events.ClarificationExhaustedEvent, key, workflowID),
		Parameter: requirement.Key(),
		Attempts:  e.dialog.MaxClarifications(),
	})
}

func (e *Engine) publishProposed(ctx context.Context, session *models.SessionContext, summary string) {
	graph := session.PendingGraph
	if graph == nil {
		return
	}

	e.publish(ctx, session.Key, events.AutomationProposed{
		BaseEvent: events.NewBaseEvent(events.AutomationProposedEvent, session.Key, graph.WorkflowID),
		Graph:     graph,
		Summary:   summary,
	})
}

func (e *Engine) publishConfirmed(ctx context.Context, key models.SessionKey, graph *models.WorkflowGraph) {
	e.publish(ctx, key, events.AutomationConfirmed{
		BaseEvent: events.NewBaseEvent(events.AutomationConfirmedEvent, key, graph.WorkflowID),
		Graph:     graph,
	})
}

func (e *Engine) publishCancelled(ctx context.Context, key models.SessionKey, workflowID string) {
	e.publish(ctx, key, events.AutomationCancelled{
		BaseEvent: events.NewBaseEvent(events.AutomationCancelledEvent, key, workflowID),
		State:     models.DialogStateDone,
	})
}

func (e *Engine) publishExecuted(
	ctx context.Context,
	key models.SessionKey,
	workflowID string,
	resp models.Response,
	execErr error,
	duration time.Duration,
) {
	event := events.AutomationExecuted{
		BaseEvent:      events.NewBaseEvent(events.AutomationExecutedEvent, key, workflowID),
		Success:        resp.Success,
		PerNodeResults: resp.PerNodeResults,
		Duration:       duration,
	}

	if !resp.Success {
		event.Error = resp.Message
	}

	if execErr != nil {
		event.Error = execErr.Error()
	}

	e.publish(ctx, key, event)
}
