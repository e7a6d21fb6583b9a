package dialog

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukex/operion-assistant/pkg/models"
)

// Finish closes an EXECUTING turn with the executor outcome. Executor errors become an
// unsuccessful executed response; the session always ends in DONE without a graph.
func (d *Dialog) Finish(
	ctx context.Context,
	session *models.SessionContext,
	result *models.ExecutionResult,
	execErr error,
) models.Response {
	graph := session.PendingGraph
	logger := d.logger.With("session", session.Key.String())

	defer session.ResetAutomation(models.DialogStateDone)

	if graph != nil {
		logger = logger.With("workflow_id", graph.WorkflowID)
	}

	if execErr != nil {
		logger.ErrorContext(ctx, "Automation execution failed", "error", execErr)

		var results []models.NodeResult
		if result != nil {
			results = result.PerNodeResults
		}

		return models.ExecutedResponse(false, results, failureMessage(execErr))
	}

	if result == nil {
		logger.ErrorContext(ctx, "Executor returned no result")

		return models.ExecutedResponse(false, nil, "The automation did not report a result.")
	}

	if !result.Success {
		logger.WarnContext(ctx, "Automation finished with failures", "error", result.Error)

		return models.ExecutedResponse(false, result.PerNodeResults, executionFailure(result))
	}

	d.remember(session, graph)
	logger.InfoContext(ctx, "Automation executed", "steps", len(result.PerNodeResults))

	return models.ExecutedResponse(true, result.PerNodeResults,
		fmt.Sprintf("Done! The automation ran successfully (%d %s).", len(result.PerNodeResults), plural(len(result.PerNodeResults), "step", "steps")))
}

func failureMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "The automation took too long and was stopped."
	}

	return "The automation failed: " + err.Error()
}

func executionFailure(result *models.ExecutionResult) string {
	for _, node := range result.PerNodeResults {
		if !node.Success {
			return fmt.Sprintf("The automation failed at %s: %s", node.NodeID, node.Detail)
		}
	}

	if result.Error != "" {
		return "The automation failed: " + result.Error
	}

	return "The automation failed."
}

// remember keeps facts about a successful automation for references in later turns.
func (d *Dialog) remember(session *models.SessionContext, graph *models.WorkflowGraph) {
	if graph == nil {
		return
	}

	for _, node := range graph.Ordered() {
		switch node.Type {
		case models.NodeTypeEmailSend:
			if to := node.StringParam(models.ParamToEmail); to != "" {
				session.Remember(models.ScratchLastRecipient, to)
			}

			if subject := node.StringParam(models.ParamSubject); subject != "" {
				session.Remember(models.ScratchLastSubject, subject)
			}
		case models.NodeTypeHTTPRequest:
			if url := node.StringParam(models.ParamURL); url != "" {
				session.Remember(models.ScratchLastURL, url)
			}
		}
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}

	return many
}
