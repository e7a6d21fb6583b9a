// Package template renders upstream node references inside node parameters at execution time.
package template

import (
	"fmt"
	"maps"
	"regexp"
	"strings"
	"text/template"
	"time"
)

// Data builds the template data for a run: node outputs keyed by node id under "nodes".
func Data(workflowID string, outputs map[string]map[string]any) map[string]any {
	return map[string]any{
		"nodes": outputs,
		"execution": map[string]any{
			"workflow_id": workflowID,
		},
	}
}

var referencePattern = regexp.MustCompile(`^\{\{\s*\.nodes\.[A-Za-z0-9_]+\.[A-Za-z0-9_]+\s*\}\}$`)

// NeedsTemplating reports whether input is exactly an upstream node reference.
// Any other text, braces included, is a literal value typed by the user.
func NeedsTemplating(input string) bool {
	return referencePattern.MatchString(input)
}

// Render executes templateStr against data. Missing keys are errors, so a reference to
// a node that produced no such output fails instead of rendering "<no value>".
func Render(templateStr string, data any) (string, error) {
	tmpl, err := template.
		New("parameter").
		Option("missingkey=error").
		Funcs(template.FuncMap{
			"now": func() string {
				return time.Now().UTC().Format(time.RFC3339)
			},
			"truncate": func(n int, s string) string {
				runes := []rune(s)
				if n < 0 || len(runes) <= n {
					return s
				}

				return string(runes[:n])
			},
		}).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template '%s': %w", templateStr, err)
	}

	var buf strings.Builder

	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("failed to execute template '%s': %w", templateStr, err)
	}

	return buf.String(), nil
}

// RenderParameters returns a copy of params with every node reference resolved.
// Strings inside []string and []any values are resolved too; everything else is copied as is.
func RenderParameters(params map[string]any, data any) (map[string]any, error) {
	rendered := make(map[string]any, len(params))
	maps.Copy(rendered, params)

	for name, value := range params {
		switch v := value.(type) {
		case string:
			if !NeedsTemplating(v) {
				continue
			}

			out, err := Render(v, data)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %w", name, err)
			}

			rendered[name] = out
		case []string:
			items := make([]string, len(v))

			for i, item := range v {
				out, err := renderItem(item, data)
				if err != nil {
					return nil, fmt.Errorf("parameter %s[%d]: %w", name, i, err)
				}

				items[i] = out
			}

			rendered[name] = items
		case []any:
			items := make([]any, len(v))

			for i, item := range v {
				s, ok := item.(string)
				if !ok {
					items[i] = item

					continue
				}

				out, err := renderItem(s, data)
				if err != nil {
					return nil, fmt.Errorf("parameter %s[%d]: %w", name, i, err)
				}

				items[i] = out
			}

			rendered[name] = items
		}
	}

	return rendered, nil
}

func renderItem(item string, data any) (string, error) {
	if !NeedsTemplating(item) {
		return item, nil
	}

	return Render(item, data)
}
