package cmd

import (
	"context"
	"log/slog"

	"github.com/dukex/operion-assistant/pkg/eventbus"
	"github.com/dukex/operion-assistant/pkg/events"
)

var auditedEvents = []events.EventType{
	events.ClarificationExhaustedEvent,
	events.AutomationProposedEvent,
	events.AutomationConfirmedEvent,
	events.AutomationCancelledEvent,
	events.AutomationExecutedEvent,
}

// SubscribeAuditLog logs every automation lifecycle event received from bus.
func SubscribeAuditLog(ctx context.Context, bus eventbus.EventBus, logger *slog.Logger) error {
	logger = logger.With("module", "audit")

	for _, eventType := range auditedEvents {
		err := bus.Handle(eventType, func(ctx context.Context, event any) error {
			logAuditEvent(ctx, logger, event)

			return nil
		})
		if err != nil {
			return err
		}
	}

	return bus.Subscribe(ctx)
}

func logAuditEvent(ctx context.Context, logger *slog.Logger, event any) {
	switch e := event.(type) {
	case *events.ClarificationExhausted:
		logger.InfoContext(ctx, "Clarification exhausted", "session", e.Key(), "parameter", e.Parameter, "attempts", e.Attempts)
	case *events.AutomationProposed:
		logger.InfoContext(ctx, "Automation proposed", "session", e.Key(), "workflow_id", e.WorkflowID)
	case *events.AutomationConfirmed:
		logger.InfoContext(ctx, "Automation confirmed", "session", e.Key(), "workflow_id", e.WorkflowID)
	case *events.AutomationCancelled:
		logger.InfoContext(ctx, "Automation cancelled", "session", e.Key(), "workflow_id", e.WorkflowID)
	case *events.AutomationExecuted:
		logger.InfoContext(ctx, "Automation executed",
			"session", e.Key(),
			"workflow_id", e.WorkflowID,
			"success", e.Success,
			"duration", e.Duration,
			"error", e.Error,
		)
	}
}
