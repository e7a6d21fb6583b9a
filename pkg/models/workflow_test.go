package models

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkflowGraph_StartsWithTrigger(t *testing.T) {
	graph := NewWorkflowGraph("wf-1")

	require.Len(t, graph.Nodes, 1)
	assert.Equal(t, "manual_trigger_1", graph.Trigger().ID)
	assert.True(t, graph.IsEmpty())
	assert.Empty(t, graph.Actions())
	assert.Equal(t, graph.Trigger(), graph.Tail())
	require.NoError(t, graph.Validate())
}

func TestWorkflowGraph_AppendNode_BuildsChain(t *testing.T) {
	graph := NewWorkflowGraph("wf-1")

	fetch := graph.AppendNode(NodeTypeHTTPRequest, "Fetch data")
	ai := graph.AppendNode(NodeTypeOpenAI, "Summarize")
	mail := graph.AppendNode(NodeTypeEmailSend, "Send summary")
	second := graph.AppendNode(NodeTypeEmailSend, "Send copy")

	assert.Equal(t, "http_request_1", fetch.ID)
	assert.Equal(t, "openai_1", ai.ID)
	assert.Equal(t, "email_send_1", mail.ID)
	assert.Equal(t, "email_send_2", second.ID)

	assert.Equal(t, []Edge{
		{From: "manual_trigger_1", To: "http_request_1"},
		{From: "http_request_1", To: "openai_1"},
		{From: "openai_1", To: "email_send_1"},
		{From: "email_send_1", To: "email_send_2"},
	}, graph.Edges)

	assert.Equal(t, []string{"manual_trigger_1", "http_request_1", "openai_1", "email_send_1", "email_send_2"}, graph.NodeIDs())
	assert.Len(t, graph.Actions(), 4)
	assert.Len(t, graph.NodesOfType(NodeTypeEmailSend), 2)
	assert.True(t, graph.HasNodeType(NodeTypeOpenAI))
	assert.False(t, graph.HasNodeType(NodeTypeAutomation))
	assert.Equal(t, second, graph.Tail())
	require.NoError(t, graph.Validate())
}

func TestWorkflowGraph_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(g *WorkflowGraph)
		message string
	}{
		{
			name:    "no nodes",
			mutate:  func(g *WorkflowGraph) { g.Nodes = nil; g.Edges = nil },
			message: "graph has no nodes",
		},
		{
			name: "duplicate id",
			mutate: func(g *WorkflowGraph) {
				g.Nodes = append(g.Nodes, &WorkflowNode{ID: "email_send_1", Type: NodeTypeEmailSend, Category: CategoryTypeAction})
			},
			message: "duplicate node id",
		},
		{
			name:    "dangling edge",
			mutate:  func(g *WorkflowGraph) { g.Edges = append(g.Edges, Edge{From: "email_send_1", To: "ghost"}) },
			message: "edge to unknown node",
		},
		{
			name: "orphan action",
			mutate: func(g *WorkflowGraph) {
				g.Nodes = append(g.Nodes, &WorkflowNode{ID: "openai_1", Type: NodeTypeOpenAI, Category: CategoryTypeAction})
			},
			message: "node openai_1 has no incoming edge",
		},
		{
			name: "branch",
			mutate: func(g *WorkflowGraph) {
				g.Nodes = append(g.Nodes, &WorkflowNode{ID: "openai_1", Type: NodeTypeOpenAI, Category: CategoryTypeAction})
				g.Edges = append(g.Edges, Edge{From: "manual_trigger_1", To: "openai_1"})
			},
			message: "branches",
		},
		{
			name:    "cycle",
			mutate:  func(g *WorkflowGraph) { g.Edges = append(g.Edges, Edge{From: "email_send_1", To: "manual_trigger_1"}) },
			message: "expected exactly one trigger, found 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			graph := NewWorkflowGraph("wf-1")
			graph.AppendNode(NodeTypeEmailSend, "Send email")

			tt.mutate(graph)

			err := graph.Validate()
			require.ErrorIs(t, err, ErrInvalidGraph)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestWorkflowGraph_StructValidation(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	graph := NewWorkflowGraph("wf-1")
	graph.AppendNode(NodeTypeEmailSend, "Send email")
	require.NoError(t, validate.Struct(graph))

	graph.WorkflowID = ""
	err := validate.Struct(graph)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WorkflowID")

	graph.WorkflowID = "wf-1"
	graph.Nodes[1].Category = "sink"
	err = validate.Struct(graph)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Category")
}

func TestWorkflowGraph_Clone(t *testing.T) {
	graph := NewWorkflowGraph("wf-1")
	node := graph.AppendNode(NodeTypeEmailSend, "Send email")
	node.SetParam(ParamToEmail, "alice@example.com")

	clone, err := graph.Clone()
	require.NoError(t, err)

	clone.Node("email_send_1").SetParam(ParamToEmail, "bob@example.com")
	clone.AppendNode(NodeTypeEmailSend, "Send copy")

	assert.Equal(t, "alice@example.com", graph.Node("email_send_1").StringParam(ParamToEmail))
	assert.Len(t, graph.Nodes, 2)
	assert.Equal(t, "email_send_2", clone.Tail().ID)

	var nilGraph *WorkflowGraph

	clone, err = nilGraph.Clone()
	require.NoError(t, err)
	assert.Nil(t, clone)
}
