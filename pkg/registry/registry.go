// Package registry provides the static catalog of node types and their parameter schemas.
package registry

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/dukex/operion-assistant/pkg/protocol"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var (
	// ErrNodeTypeNotFound indicates the requested node type is not registered.
	ErrNodeTypeNotFound = errors.New("node type not found")

	// ErrNodeTypeAlreadyRegistered indicates a duplicate registration.
	ErrNodeTypeAlreadyRegistered = errors.New("node type already registered")

	// ErrInvalidParameters indicates parameters do not satisfy the node type schema.
	ErrInvalidParameters = errors.New("invalid node parameters")
)

// NodeTypeError wraps registry errors with the node type involved.
type NodeTypeError struct {
	Op       string
	NodeType string
	Err      error
}

func (e *NodeTypeError) Error() string {
	return fmt.Sprintf("%s failed for node type %s: %v", e.Op, e.NodeType, e.Err)
}

func (e *NodeTypeError) Unwrap() error {
	return e.Err
}

func (e *NodeTypeError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

type catalog struct {
	NodeTypes []*models.NodeTypeSpec `yaml:"node_types"`
}

// Registry holds node type specs. It is populated at start-up and read-only afterwards.
type Registry struct {
	logger    *slog.Logger
	mu        sync.RWMutex
	specs     map[string]*models.NodeTypeSpec
	order     []string
	factories map[string]protocol.NodeFactory
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:    log,
		specs:     make(map[string]*models.NodeTypeSpec),
		factories: make(map[string]protocol.NodeFactory),
	}
}

// NewDefaultRegistry returns a registry loaded with the built-in catalog.
func NewDefaultRegistry(log *slog.Logger) (*Registry, error) {
	reg := NewRegistry(log)

	err := reg.LoadCatalog(defaultCatalog)
	if err != nil {
		return nil, err
	}

	return reg, nil
}

// LoadCatalog parses a YAML catalog and registers every node type in it.
func (r *Registry) LoadCatalog(data []byte) error {
	var c catalog

	err := yaml.Unmarshal(data, &c)
	if err != nil {
		return fmt.Errorf("failed to parse node type catalog: %w", err)
	}

	for _, spec := range c.NodeTypes {
		err := r.Register(spec)
		if err != nil {
			return err
		}
	}

	r.logger.Info("Loaded node type catalog", "node_types", len(c.NodeTypes))

	return nil
}

// Register adds a node type spec.
func (r *Registry) Register(spec *models.NodeTypeSpec) error {
	if spec == nil || spec.TypeName == "" {
		return &NodeTypeError{Op: "Register", NodeType: "", Err: ErrInvalidParameters}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.specs[spec.TypeName]; exists {
		return &NodeTypeError{Op: "Register", NodeType: spec.TypeName, Err: ErrNodeTypeAlreadyRegistered}
	}

	if spec.Category == "" {
		spec.Category = models.CategoryTypeAction
	}

	r.specs[spec.TypeName] = spec
	r.order = append(r.order, spec.TypeName)

	return nil
}

// GetSpec returns the spec of typeName or ErrNodeTypeNotFound.
func (r *Registry) GetSpec(typeName string) (*models.NodeTypeSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.specs[typeName]
	if !ok {
		return nil, &NodeTypeError{Op: "GetSpec", NodeType: typeName, Err: ErrNodeTypeNotFound}
	}

	return spec, nil
}

// List returns all specs in registration order.
func (r *Registry) List() []*models.NodeTypeSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]*models.NodeTypeSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.specs[name])
	}

	return specs
}

// Declares reports whether typeName declares param as required or optional.
func (r *Registry) Declares(typeName, param string) bool {
	spec, err := r.GetSpec(typeName)
	if err != nil {
		return false
	}

	return spec.Declares(param)
}

// Question returns the phrasing used to ask for a missing parameter.
func (r *Registry) Question(typeName, param string) string {
	spec, err := r.GetSpec(typeName)
	if err == nil {
		if q, ok := spec.Questions[param]; ok && q != "" {
			return q
		}

		return fmt.Sprintf("I need a value for %s (%s step). What should it be?", param, spec.Name)
	}

	return fmt.Sprintf("I need a value for %s. What should it be?", param)
}

// MissingParameters lists the unbound required parameters of every node, in chain
// order and in each type's declaration order. Nodes of unknown type contribute nothing.
func (r *Registry) MissingParameters(graph *models.WorkflowGraph) []models.MissingParameter {
	if graph == nil {
		return nil
	}

	var missing []models.MissingParameter

	for _, node := range graph.Ordered() {
		spec, err := r.GetSpec(node.Type)
		if err != nil {
			r.logger.Warn("Node with unknown type in graph", "node_id", node.ID, "node_type", node.Type)

			continue
		}

		for _, param := range spec.RequiredParams {
			if !node.HasValue(param) {
				missing = append(missing, models.MissingParameter{
					NodeID:    node.ID,
					NodeType:  node.Type,
					Parameter: param,
				})
			}
		}
	}

	return missing
}

// IsComplete reports whether every required parameter of node is bound.
func (r *Registry) IsComplete(node *models.WorkflowNode) bool {
	spec, err := r.GetSpec(node.Type)
	if err != nil {
		return false
	}

	return !slices.ContainsFunc(spec.RequiredParams, func(param string) bool {
		return !node.HasValue(param)
	})
}

// HealthCheck reports whether the catalog is loaded.
func (r *Registry) HealthCheck() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.specs) == 0 {
		return "Registry has no node types", false
	}

	return fmt.Sprintf("Registry has %d node types", len(r.specs)), true
}
