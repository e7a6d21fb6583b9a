// Package models defines the core domain models for conversational workflow assembly
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	// ErrInvalidGraph indicates a workflow graph violates the linear chain invariants.
	ErrInvalidGraph = errors.New("invalid workflow graph")
)

// Edge connects two nodes of a graph.
type Edge struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to"   validate:"required"`
}

// WorkflowGraph is the automation under construction or ready to execute.
// Nodes are kept in insertion order, starting with exactly one trigger node,
// and edges always form a simple chain.
type WorkflowGraph struct {
	WorkflowID string          `json:"workflow_id" validate:"required"`
	Nodes      []*WorkflowNode `json:"nodes"       validate:"required,min=1,dive"`
	Edges      []Edge          `json:"edges"       validate:"dive"`
	Counters   map[string]int  `json:"counters"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewWorkflowGraph creates a trigger-only graph.
func NewWorkflowGraph(workflowID string) *WorkflowGraph {
	now := time.Now().UTC()
	graph := &WorkflowGraph{
		WorkflowID: workflowID,
		Nodes:      make([]*WorkflowNode, 0, 4),
		Edges:      make([]Edge, 0, 3),
		Counters:   make(map[string]int),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	trigger := &WorkflowNode{
		ID:          graph.nextID(NodeTypeManualTrigger),
		Type:        NodeTypeManualTrigger,
		Category:    CategoryTypeTrigger,
		Parameters:  map[string]any{},
		Description: "Start manually",
	}
	graph.Nodes = append(graph.Nodes, trigger)

	return graph
}

func (g *WorkflowGraph) nextID(nodeType string) string {
	if g.Counters == nil {
		g.Counters = make(map[string]int)
	}

	g.Counters[nodeType]++

	return nodeType + "_" + strconv.Itoa(g.Counters[nodeType])
}

// Trigger returns the sole node with in-degree zero.
func (g *WorkflowGraph) Trigger() *WorkflowNode {
	for _, node := range g.Nodes {
		if node.IsTriggerNode() {
			return node
		}
	}

	return nil
}

// Node returns the node with the given id.
func (g *WorkflowGraph) Node(id string) *WorkflowNode {
	for _, node := range g.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// Tail returns the last node of the chain, or the trigger for a trigger-only graph.
func (g *WorkflowGraph) Tail() *WorkflowNode {
	ordered := g.Ordered()
	if len(ordered) == 0 {
		return nil
	}

	return ordered[len(ordered)-1]
}

// Ordered walks the chain from the trigger following edges.
func (g *WorkflowGraph) Ordered() []*WorkflowNode {
	trigger := g.Trigger()
	if trigger == nil {
		return nil
	}

	next := make(map[string]string, len(g.Edges))
	for _, edge := range g.Edges {
		next[edge.From] = edge.To
	}

	ordered := make([]*WorkflowNode, 0, len(g.Nodes))
	seen := make(map[string]bool, len(g.Nodes))

	for current := trigger; current != nil && !seen[current.ID]; {
		seen[current.ID] = true
		ordered = append(ordered, current)

		nextID, ok := next[current.ID]
		if !ok {
			break
		}

		current = g.Node(nextID)
	}

	return ordered
}

// Actions returns the non-trigger nodes in chain order.
func (g *WorkflowGraph) Actions() []*WorkflowNode {
	ordered := g.Ordered()
	if len(ordered) <= 1 {
		return nil
	}

	return ordered[1:]
}

// NodesOfType returns the nodes of the given type in chain order.
func (g *WorkflowGraph) NodesOfType(nodeType string) []*WorkflowNode {
	var nodes []*WorkflowNode

	for _, node := range g.Ordered() {
		if node.Type == nodeType {
			nodes = append(nodes, node)
		}
	}

	return nodes
}

// HasNodeType reports whether a node of the given type is already present.
func (g *WorkflowGraph) HasNodeType(nodeType string) bool {
	for _, node := range g.Nodes {
		if node.Type == nodeType {
			return true
		}
	}

	return false
}

// IsEmpty reports whether the graph holds only its trigger.
func (g *WorkflowGraph) IsEmpty() bool {
	return g == nil || len(g.Nodes) <= 1
}

// AppendNode adds a node of the given type after the current tail and wires the edge.
func (g *WorkflowGraph) AppendNode(nodeType, description string) *WorkflowNode {
	tail := g.Tail()

	node := &WorkflowNode{
		ID:          g.nextID(nodeType),
		Type:        nodeType,
		Category:    CategoryTypeAction,
		Parameters:  make(map[string]any),
		Description: description,
	}

	g.Nodes = append(g.Nodes, node)
	if tail != nil {
		g.Edges = append(g.Edges, Edge{From: tail.ID, To: node.ID})
	}

	g.UpdatedAt = time.Now().UTC()

	return node
}

// NodeIDs returns the ids of all nodes in insertion order.
func (g *WorkflowGraph) NodeIDs() []string {
	ids := make([]string, 0, len(g.Nodes))
	for _, node := range g.Nodes {
		ids = append(ids, node.ID)
	}

	return ids
}

// Validate checks the chain invariants: exactly one node with in-degree 0,
// every other node with in-degree 1, and no cycles.
func (g *WorkflowGraph) Validate() error {
	if len(g.Nodes) == 0 {
		return fmt.Errorf("%w: graph has no nodes", ErrInvalidGraph)
	}

	inDegree := make(map[string]int, len(g.Nodes))
	for _, node := range g.Nodes {
		if _, dup := inDegree[node.ID]; dup {
			return fmt.Errorf("%w: duplicate node id %s", ErrInvalidGraph, node.ID)
		}

		inDegree[node.ID] = 0
	}

	outDegree := make(map[string]int, len(g.Nodes))

	for _, edge := range g.Edges {
		if _, ok := inDegree[edge.From]; !ok {
			return fmt.Errorf("%w: edge from unknown node %s", ErrInvalidGraph, edge.From)
		}

		if _, ok := inDegree[edge.To]; !ok {
			return fmt.Errorf("%w: edge to unknown node %s", ErrInvalidGraph, edge.To)
		}

		inDegree[edge.To]++
		outDegree[edge.From]++
	}

	roots := 0

	for _, node := range g.Nodes {
		switch inDegree[node.ID] {
		case 0:
			roots++

			if !node.IsTriggerNode() {
				return fmt.Errorf("%w: node %s has no incoming edge", ErrInvalidGraph, node.ID)
			}
		case 1:
		default:
			return fmt.Errorf("%w: node %s has %d incoming edges", ErrInvalidGraph, node.ID, inDegree[node.ID])
		}

		if outDegree[node.ID] > 1 {
			return fmt.Errorf("%w: node %s branches", ErrInvalidGraph, node.ID)
		}
	}

	if roots != 1 {
		return fmt.Errorf("%w: expected exactly one trigger, found %d", ErrInvalidGraph, roots)
	}

	if len(g.Ordered()) != len(g.Nodes) {
		return fmt.Errorf("%w: chain does not reach every node", ErrInvalidGraph)
	}

	return nil
}

// Clone returns a deep copy of the graph.
func (g *WorkflowGraph) Clone() (*WorkflowGraph, error) {
	if g == nil {
		return nil, nil
	}

	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graph: %w", err)
	}

	var clone WorkflowGraph

	err = json.Unmarshal(data, &clone)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph: %w", err)
	}

	return &clone, nil
}
