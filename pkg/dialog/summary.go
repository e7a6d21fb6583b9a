package dialog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/dukex/operion-assistant/pkg/registry"
)

var referencePattern = regexp.MustCompile(`\{\{\s*\.nodes\.([A-Za-z0-9_]+)\.([A-Za-z0-9_]+)\s*\}\}`)

const maxSummaryValue = 80

// Summarize renders the node-by-node plan shown to the user for confirmation.
func Summarize(reg *registry.Registry, graph *models.WorkflowGraph) string {
	var b strings.Builder

	b.WriteString("Here's the automation I'm ready to run:\n")

	for i, node := range graph.Ordered() {
		fmt.Fprintf(&b, "%d. %s [%s]", i+1, node.Description, node.ID)

		if params := describeParams(reg, node); params != "" {
			b.WriteString(": ")
			b.WriteString(params)
		}

		b.WriteString("\n")
	}

	b.WriteString("Shall I go ahead?")

	return b.String()
}

func describeParams(reg *registry.Registry, node *models.WorkflowNode) string {
	spec, err := reg.GetSpec(node.Type)
	if err != nil {
		return ""
	}

	parts := make([]string, 0, len(node.Parameters))

	for _, param := range spec.Params() {
		if param == models.ParamIntent || !node.HasValue(param) {
			continue
		}

		parts = append(parts, param+"="+describeValue(node.Parameters[param]))
	}

	return strings.Join(parts, ", ")
}

func describeValue(value any) string {
	var text string

	switch v := value.(type) {
	case string:
		text = v
	case []string:
		text = strings.Join(v, ", ")
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, fmt.Sprint(item))
		}

		text = strings.Join(items, ", ")
	default:
		text = fmt.Sprint(v)
	}

	if match := referencePattern.FindStringSubmatch(text); match != nil && match[0] == strings.TrimSpace(text) {
		return fmt.Sprintf("<%s of %s>", match[2], match[1])
	}

	text = strings.Join(strings.Fields(text), " ")
	if len(text) > maxSummaryValue {
		text = text[:maxSummaryValue] + "..."
	}

	if strings.ContainsAny(text, " ,") {
		return fmt.Sprintf("%q", text)
	}

	return text
}
