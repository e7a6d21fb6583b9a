package registry

import (
	"context"
	"errors"

	"github.com/dukex/operion-assistant/pkg/protocol"
)

// ErrNodeFactoryNotFound indicates no executable node is registered for a node type.
var ErrNodeFactoryNotFound = errors.New("node factory not found")

// RegisterNode adds the factory that executes nodes of factory.ID(). Registering a type
// twice replaces the previous factory.
func (r *Registry) RegisterNode(factory protocol.NodeFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.factories == nil {
		r.factories = make(map[string]protocol.NodeFactory)
	}

	r.factories[factory.ID()] = factory

	r.logger.Debug("Registered node factory", "node_type", factory.ID())
}

// CreateNode builds an executable node of typeName bound to config.
//
// nolint:ireturn // Returning interface is intentional, nodes are pluggable
func (r *Registry) CreateNode(ctx context.Context, typeName, id string, config map[string]any) (protocol.Node, error) {
	r.mu.RLock()
	factory, ok := r.factories[typeName]
	r.mu.RUnlock()

	if !ok {
		return nil, &NodeTypeError{Op: "CreateNode", NodeType: typeName, Err: ErrNodeFactoryNotFound}
	}

	node, err := factory.Create(ctx, id, config)
	if err != nil {
		return nil, &NodeTypeError{Op: "CreateNode", NodeType: typeName, Err: err}
	}

	return node, nil
}

// MissingFactories returns the catalog node types without a registered factory, in
// registration order.
func (r *Registry) MissingFactories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var missing []string

	for _, name := range r.order {
		if _, ok := r.factories[name]; !ok {
			missing = append(missing, name)
		}
	}

	return missing
}
