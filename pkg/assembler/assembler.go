// Package assembler builds and grows the linear workflow graph of a session from
// classified, extracted user input.
package assembler

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/dukex/operion-assistant/pkg/registry"
	"github.com/google/uuid"
)

// categoryNodes maps an automation category to the node types it needs, in chain order.
var categoryNodes = map[string][]string{
	models.CategoryEmailOnly:          {models.NodeTypeEmailSend},
	models.CategoryEmailWithAIContent: {models.NodeTypeOpenAI, models.NodeTypeEmailSend},
	models.CategoryFetchThenEmail:     {models.NodeTypeHTTPRequest, models.NodeTypeOpenAI, models.NodeTypeEmailSend},
	models.CategoryFetchThenSummarize: {models.NodeTypeHTTPRequest, models.NodeTypeOpenAI},
	models.CategoryFetchData:          {models.NodeTypeHTTPRequest},
	models.CategoryAIContent:          {models.NodeTypeOpenAI},
}

// NodeTypesFor returns the node types of a category and whether the category is known.
func NodeTypesFor(category string) ([]string, bool) {
	types, ok := categoryNodes[category]

	return slices.Clone(types), ok
}

// binding wires a parameter of a new node to an output field of the closest upstream
// node of the given type.
type binding struct {
	param        string
	upstreamType string
	field        string
}

var upstreamBindings = map[string][]binding{
	models.NodeTypeOpenAI: {
		{param: models.ParamInput, upstreamType: models.NodeTypeHTTPRequest, field: "body"},
	},
	models.NodeTypeEmailSend: {
		{param: models.ParamBody, upstreamType: models.NodeTypeOpenAI, field: "text"},
		{param: models.ParamBody, upstreamType: models.NodeTypeHTTPRequest, field: "body"},
	},
}

var nodeDescriptions = map[string]string{
	models.NodeTypeHTTPRequest: "Fetch data from a URL",
	models.NodeTypeOpenAI:      "Generate content with AI",
	models.NodeTypeEmailSend:   "Send an email",
}

// Assembler turns classifications and extracted parameters into workflow graphs.
type Assembler struct {
	registry *registry.Registry
	logger   *slog.Logger
}

func NewAssembler(logger *slog.Logger, reg *registry.Registry) *Assembler {
	return &Assembler{
		registry: reg,
		logger:   logger.With("module", "assembler"),
	}
}

// Assemble returns the updated graph for one turn. A fresh trigger-only graph is
// started when there is no existing graph or the intent is a new automation. Existing
// nodes are never removed or reordered. existing is left untouched.
func (a *Assembler) Assemble(
	classification models.ClassificationResult,
	extracted map[string]any,
	existing *models.WorkflowGraph,
) (*models.WorkflowGraph, error) {
	var graph *models.WorkflowGraph

	if existing == nil || classification.Intent == models.IntentAutomationNew {
		graph = models.NewWorkflowGraph(uuid.NewString())
	} else {
		clone, err := existing.Clone()
		if err != nil {
			return nil, err
		}

		graph = clone
	}

	types, known := NodeTypesFor(classification.AutomationCategory)
	if !known && graph.IsEmpty() {
		types = inferNodeTypes(extracted)
	}

	if len(types) == 0 && graph.IsEmpty() {
		types = []string{models.NodeTypeAutomation}
	}

	for _, nodeType := range types {
		if graph.HasNodeType(nodeType) {
			continue
		}

		_, err := a.appendNode(graph, nodeType, classification.Description)
		if err != nil {
			return nil, err
		}
	}

	applied := a.Merge(graph, extracted)

	a.resolveGenericNodes(graph, classification.Description)

	err := graph.Validate()
	if err != nil {
		return nil, err
	}

	a.logger.Debug("Assembled workflow graph",
		"workflow_id", graph.WorkflowID,
		"intent", classification.Intent,
		"category", classification.AutomationCategory,
		"nodes", graph.NodeIDs(),
		"applied", applied,
	)

	return graph, nil
}

// MergeEdit applies a correction to a copy of a complete graph against the full node
// set. It returns the edited copy and the parameters that changed.
func (a *Assembler) MergeEdit(graph *models.WorkflowGraph, extracted map[string]any) (*models.WorkflowGraph, []string, error) {
	if graph == nil {
		return nil, nil, fmt.Errorf("%w: no graph to edit", models.ErrInvalidGraph)
	}

	edited, err := graph.Clone()
	if err != nil {
		return nil, nil, err
	}

	applied := a.Merge(edited, extracted)

	return edited, applied, nil
}

func inferNodeTypes(extracted map[string]any) []string {
	var types []string

	if hasAny(extracted, models.ParamURL) {
		types = append(types, models.NodeTypeHTTPRequest)
	}

	if hasAny(extracted, models.ParamToEmail, models.ParamRecipients) {
		types = append(types, models.NodeTypeEmailSend)
	}

	return types
}

func hasAny(extracted map[string]any, keys ...string) bool {
	for _, key := range keys {
		if _, ok := extracted[key]; ok {
			return true
		}
	}

	return false
}

func (a *Assembler) appendNode(graph *models.WorkflowGraph, nodeType, description string) (*models.WorkflowNode, error) {
	spec, err := a.registry.GetSpec(nodeType)
	if err != nil {
		return nil, err
	}

	upstream := graph.Ordered()

	if d, ok := nodeDescriptions[nodeType]; ok || description == "" {
		description = d
	}

	if description == "" {
		description = spec.Description
	}

	node := graph.AppendNode(nodeType, description)

	for _, param := range spec.RequiredParams {
		node.SetParam(param, models.Placeholder(param))
	}

	for _, b := range upstreamBindings[nodeType] {
		if node.HasValue(b.param) {
			continue
		}

		if source := closest(upstream, b.upstreamType); source != nil {
			node.SetParam(b.param, models.NodeReference(source.ID, b.field))
		}
	}

	// Values held by a generic node while the automation was unclear move to the new node.
	for _, generic := range graph.NodesOfType(models.NodeTypeAutomation) {
		for param, value := range generic.Parameters {
			if param == models.ParamIntent || !spec.Declares(param) || node.HasValue(param) {
				continue
			}

			node.SetParam(param, value)
		}
	}

	return node, nil
}

func closest(nodes []*models.WorkflowNode, nodeType string) *models.WorkflowNode {
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i].Type == nodeType {
			return nodes[i]
		}
	}

	return nil
}

// Merge binds extracted values to the graph in place and returns the parameters it
// set. A value goes to the earliest node in the chain that declares the parameter and
// has not filled it yet; when every declaring node is filled the last one is
// overwritten. Values no node declares are kept on the generic automation node.
func (a *Assembler) Merge(graph *models.WorkflowGraph, extracted map[string]any) []string {
	keys := make([]string, 0, len(extracted))
	for key := range extracted {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	var applied []string

	for _, key := range keys {
		if key == models.ParamRecipients {
			continue
		}

		value := extracted[key]
		if isBlank(value) {
			continue
		}

		target := a.target(graph, key)
		if target == nil {
			generic := closest(graph.Ordered(), models.NodeTypeAutomation)
			if generic == nil {
				a.logger.Debug("No node declares extracted parameter", "parameter", key)

				continue
			}

			target = generic
		}

		target.SetParam(key, value)
		applied = append(applied, key)
	}

	if recipients := stringList(extracted[models.ParamRecipients]); len(recipients) > 1 {
		if a.addCC(graph, recipients) {
			applied = append(applied, models.ParamCC)
		}
	}

	a.derive(graph)

	return applied
}

func (a *Assembler) target(graph *models.WorkflowGraph, param string) *models.WorkflowNode {
	var last *models.WorkflowNode

	for _, node := range graph.Actions() {
		if node.Type == models.NodeTypeAutomation || !a.registry.Declares(node.Type, param) {
			continue
		}

		if !node.HasValue(param) {
			return node
		}

		last = node
	}

	return last
}

func (a *Assembler) addCC(graph *models.WorkflowGraph, recipients []string) bool {
	for _, node := range graph.NodesOfType(models.NodeTypeEmailSend) {
		if !strings.EqualFold(node.StringParam(models.ParamToEmail), recipients[0]) {
			continue
		}

		cc := stringList(node.Parameters[models.ParamCC])
		for _, recipient := range recipients[1:] {
			if !slices.ContainsFunc(cc, func(existing string) bool { return strings.EqualFold(existing, recipient) }) {
				cc = append(cc, recipient)
			}
		}

		node.SetParam(models.ParamCC, cc)

		return true
	}

	return false
}

// derive fills parameters that follow from others, such as an AI prompt from a topic.
func (a *Assembler) derive(graph *models.WorkflowGraph) {
	for _, node := range graph.NodesOfType(models.NodeTypeOpenAI) {
		if node.HasValue(models.ParamPrompt) {
			continue
		}

		if topic := node.StringParam(models.ParamTopic); topic != "" {
			node.SetParam(models.ParamPrompt, fmt.Sprintf("Write a short, friendly message about %s.", topic))
		}
	}
}

// resolveGenericNodes marks generic automation nodes as understood once concrete
// nodes exist, so they no longer block completion.
func (a *Assembler) resolveGenericNodes(graph *models.WorkflowGraph, description string) {
	concrete := false

	for _, node := range graph.Actions() {
		if node.Type != models.NodeTypeAutomation {
			concrete = true

			break
		}
	}

	if !concrete {
		return
	}

	for _, node := range graph.NodesOfType(models.NodeTypeAutomation) {
		if node.HasValue(models.ParamIntent) {
			continue
		}

		intent := description
		if intent == "" {
			intent = node.Description
		}

		if intent == "" {
			intent = "resolved"
		}

		node.SetParam(models.ParamIntent, intent)
	}
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == "" || models.IsPlaceholder(v)
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}

	return false
}

func stringList(value any) []string {
	switch v := value.(type) {
	case []string:
		return slices.Clone(v)
	case []any:
		list := make([]string, 0, len(v))

		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				list = append(list, s)
			}
		}

		return list
	case string:
		if v == "" || models.IsPlaceholder(v) {
			return nil
		}

		return []string{v}
	}

	return nil
}
