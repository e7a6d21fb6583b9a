// Package protocol defines the interfaces and contracts for pluggable nodes.
package protocol

import (
	"context"
)

// Node is one executable step bound to its rendered parameters.
type Node interface {
	ID() string
	Type() string

	// Execute runs the step. The returned fields are the node outputs later steps
	// reference as {{ .nodes.<id>.<field> }}.
	Execute(ctx context.Context) (map[string]any, error)
}

// NodeFactory creates node instances and provides metadata about the node type.
type NodeFactory interface {
	// Create creates a new node instance with the given configuration
	Create(ctx context.Context, id string, config map[string]any) (Node, error)

	// ID returns the node type this factory builds
	ID() string

	// Name returns the human-readable name for this node type
	Name() string

	// Description returns a description of what this node does
	Description() string
}
