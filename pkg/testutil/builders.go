// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/google/uuid"
)

// CreateTestGraph creates a trigger-only graph with a random workflow id.
func CreateTestGraph(overrides ...func(*models.WorkflowGraph)) *models.WorkflowGraph {
	graph := models.NewWorkflowGraph("wf-" + uuid.New().String())

	for _, override := range overrides {
		override(graph)
	}

	return graph
}

// WithNode appends a node of nodeType with the given parameters.
func WithNode(nodeType string, params map[string]any) func(*models.WorkflowGraph) {
	return func(g *models.WorkflowGraph) {
		node := g.AppendNode(nodeType, "Test "+nodeType)
		for param, value := range params {
			node.SetParam(param, value)
		}
	}
}

// WithEmailNode appends an email_send node with every required parameter bound.
func WithEmailNode(to string) func(*models.WorkflowGraph) {
	return WithNode(models.NodeTypeEmailSend, map[string]any{
		models.ParamToEmail: to,
		models.ParamSubject: "Test subject",
		models.ParamBody:    "Test body",
	})
}

// WithPlaceholderEmailNode appends an email_send node whose parameters are all unfilled.
func WithPlaceholderEmailNode() func(*models.WorkflowGraph) {
	return WithNode(models.NodeTypeEmailSend, map[string]any{
		models.ParamToEmail: models.Placeholder(models.ParamToEmail),
		models.ParamSubject: models.Placeholder(models.ParamSubject),
		models.ParamBody:    models.Placeholder(models.ParamBody),
	})
}

// CreateTestSession creates a fresh session context that can be overridden.
func CreateTestSession(overrides ...func(*models.SessionContext)) *models.SessionContext {
	session := models.NewSessionContext(models.SessionKey{
		AgentID:   "agent-" + uuid.New().String()[:8],
		SessionID: uuid.New().String(),
	})

	for _, override := range overrides {
		override(session)
	}

	return session
}

// WithPendingGraph attaches graph to the session in the given dialog state.
func WithPendingGraph(graph *models.WorkflowGraph, state models.DialogState) func(*models.SessionContext) {
	return func(s *models.SessionContext) {
		s.PendingGraph = graph
		s.State = state
	}
}

// WithTurns appends alternating user and assistant turns.
func WithTurns(texts ...string) func(*models.SessionContext) {
	return func(s *models.SessionContext) {
		for i, text := range texts {
			role := models.RoleUser
			if i%2 == 1 {
				role = models.RoleAssistant
			}

			s.AppendTurn(role, text)
		}
	}
}

// WithScratchpad stores a scratchpad fact.
func WithScratchpad(key, value string) func(*models.SessionContext) {
	return func(s *models.SessionContext) {
		s.Remember(key, value)
	}
}
