// Package workflow runs confirmed automation graphs node by node.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/operion-assistant/pkg/log"
	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/dukex/operion-assistant/pkg/otelhelper"
	"github.com/dukex/operion-assistant/pkg/registry"
	"github.com/dukex/operion-assistant/pkg/template"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrNilGraph indicates Execute was called without a graph.
	ErrNilGraph = errors.New("no workflow graph to execute")

	// ErrIncompleteGraph indicates a graph still has unbound required parameters.
	ErrIncompleteGraph = errors.New("workflow graph has missing parameters")
)

// Executor runs every node of a graph in chain order, starting at the trigger. Node outputs
// feed later nodes through template references; the first failing node stops the run.
type Executor struct {
	registry *registry.Registry
	logger   *slog.Logger
	tracer   trace.Tracer
}

func NewExecutor(logger *slog.Logger, registry *registry.Registry, tracer trace.Tracer) *Executor {
	if tracer == nil {
		tracer = otelhelper.NoopTracer()
	}

	return &Executor{
		registry: registry,
		logger:   logger.With("module", "workflow_executor"),
		tracer:   tracer,
	}
}

// Execute runs graph. Per-node results exclude the trigger node. A nil error with an
// unsuccessful result means a node failed; an error means the run could not start or was
// interrupted, in which case the partial result is still returned.
func (e *Executor) Execute(ctx context.Context, graph *models.WorkflowGraph) (*models.ExecutionResult, error) {
	if graph == nil {
		return nil, ErrNilGraph
	}

	logger := e.logger.With("workflow_id", graph.WorkflowID)

	err := graph.Validate()
	if err != nil {
		return nil, err
	}

	if missing := e.registry.MissingParameters(graph); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s.%s", ErrIncompleteGraph, missing[0].NodeID, missing[0].Parameter)
	}

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.execute",
		attribute.String(otelhelper.WorkflowIDKey, graph.WorkflowID),
	)
	defer span.End()

	logger.InfoContext(ctx, "Starting execution of workflow", "nodes", len(graph.Nodes))

	result := &models.ExecutionResult{
		WorkflowID:     graph.WorkflowID,
		Success:        true,
		PerNodeResults: make([]models.NodeResult, 0, len(graph.Nodes)),
	}

	outputs := make(map[string]map[string]any, len(graph.Nodes))

	for _, node := range graph.Ordered() {
		if ctx.Err() != nil {
			result.Success = false
			result.Error = ctx.Err().Error()

			return result, ctx.Err()
		}

		nodeCtx := log.ContextWithLogger(ctx, logger.With("node_id", node.ID, "node_type", node.Type))

		output, err := e.executeNode(nodeCtx, graph.WorkflowID, node, outputs)
		if err != nil {
			logger.ErrorContext(ctx, "Node failed", "node_id", node.ID, "node_type", node.Type, "error", err)
			otelhelper.SetError(span, err, attribute.String(otelhelper.NodeIDKey, node.ID))

			result.Success = false
			result.Error = err.Error()
			result.PerNodeResults = append(result.PerNodeResults, models.NodeResult{
				NodeID:  node.ID,
				Success: false,
				Detail:  err.Error(),
			})

			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}

			return result, nil
		}

		outputs[node.ID] = output

		if node.IsTriggerNode() {
			continue
		}

		result.PerNodeResults = append(result.PerNodeResults, models.NodeResult{
			NodeID:  node.ID,
			Success: true,
			Detail:  nodeDetail(node),
			Data:    output,
		})
	}

	logger.InfoContext(ctx, "Completed execution of workflow", "steps", len(result.PerNodeResults))

	return result, nil
}

func (e *Executor) executeNode(
	ctx context.Context,
	workflowID string,
	node *models.WorkflowNode,
	outputs map[string]map[string]any,
) (map[string]any, error) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.node",
		attribute.String(otelhelper.NodeIDKey, node.ID),
		attribute.String(otelhelper.NodeTypeKey, node.Type),
	)
	defer span.End()

	params, err := template.RenderParameters(node.Parameters, template.Data(workflowID, outputs))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve parameters: %w", err)
	}

	err = e.registry.ValidateParameters(node.Type, params)
	if err != nil {
		return nil, err
	}

	executable, err := e.registry.CreateNode(ctx, node.Type, node.ID, params)
	if err != nil {
		return nil, err
	}

	output, err := executable.Execute(ctx)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if output == nil {
		output = map[string]any{}
	}

	return output, nil
}

func nodeDetail(node *models.WorkflowNode) string {
	if node.Description != "" {
		return node.Description + ": completed"
	}

	return node.Type + ": completed"
}
