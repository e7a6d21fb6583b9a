package registry

import (
	"log/slog"
	"testing"

	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	reg, err := NewDefaultRegistry(slog.Default())
	require.NoError(t, err)

	return reg
}

func TestNewDefaultRegistry_LoadsCatalog(t *testing.T) {
	reg := newTestRegistry(t)

	names := make([]string, 0)
	for _, spec := range reg.List() {
		names = append(names, spec.TypeName)
	}

	assert.Equal(t, []string{
		models.NodeTypeManualTrigger,
		models.NodeTypeHTTPRequest,
		models.NodeTypeOpenAI,
		models.NodeTypeEmailSend,
		models.NodeTypeAutomation,
	}, names)

	_, ok := reg.HealthCheck()
	assert.True(t, ok)
}

func TestRegistry_GetSpec(t *testing.T) {
	reg := newTestRegistry(t)

	spec, err := reg.GetSpec(models.NodeTypeEmailSend)
	require.NoError(t, err)
	assert.Equal(t, []string{"to_email", "subject", "body"}, spec.RequiredParams)
	assert.True(t, spec.Declares("cc"))
	assert.False(t, spec.Requires("cc"))

	trigger, err := reg.GetSpec(models.NodeTypeManualTrigger)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryTypeTrigger, trigger.Category)
	assert.Empty(t, trigger.RequiredParams)

	_, err = reg.GetSpec("slack_post")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNodeTypeNotFound)
	assert.Contains(t, err.Error(), "slack_post")
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	reg := newTestRegistry(t)

	err := reg.Register(&models.NodeTypeSpec{TypeName: models.NodeTypeOpenAI})
	assert.ErrorIs(t, err, ErrNodeTypeAlreadyRegistered)
}

func TestRegistry_Question(t *testing.T) {
	reg := newTestRegistry(t)

	assert.Contains(t, reg.Question(models.NodeTypeEmailSend, "to_email"), "email address")
	assert.Contains(t, reg.Question(models.NodeTypeHTTPRequest, "request_body"), "request_body")
	assert.Contains(t, reg.Question("unknown", "thing"), "thing")
}

func TestRegistry_MissingParameters(t *testing.T) {
	reg := newTestRegistry(t)

	graph := models.NewWorkflowGraph("wf-1")
	email := graph.AppendNode(models.NodeTypeEmailSend, "Send an email")
	email.SetParam("to_email", "alice@example.com")
	email.SetParam("subject", models.Placeholder("subject"))

	missing := reg.MissingParameters(graph)
	require.Len(t, missing, 2)
	assert.Equal(t, models.MissingParameter{NodeID: "email_send_1", NodeType: "email_send", Parameter: "subject"}, missing[0])
	assert.Equal(t, "body", missing[1].Parameter)
	assert.False(t, reg.IsComplete(email))

	email.SetParam("subject", "Hi")
	email.SetParam("body", "Hello there")

	assert.Empty(t, reg.MissingParameters(graph))
	assert.True(t, reg.IsComplete(email))
}

// A node is absent from the missing set iff all its required params are concrete.
func TestRegistry_MissingParameters_PlaceholderAndEmptyValues(t *testing.T) {
	reg := newTestRegistry(t)

	values := []struct {
		name     string
		value    any
		complete bool
	}{
		{"placeholder", "{{url}}", false},
		{"spaced placeholder", "{{ url }}", false},
		{"empty string", "   ", false},
		{"nil", nil, false},
		{"concrete", "https://example.com", true},
		{"upstream reference", "{{ .nodes.openai_1.text }}", true},
	}

	for _, tc := range values {
		t.Run(tc.name, func(t *testing.T) {
			graph := models.NewWorkflowGraph("wf")
			node := graph.AppendNode(models.NodeTypeHTTPRequest, "Fetch")
			node.SetParam("url", tc.value)

			missing := reg.MissingParameters(graph)
			assert.Equal(t, !tc.complete, len(missing) == 1)
			assert.Equal(t, tc.complete, reg.IsComplete(node))
		})
	}
}

func TestRegistry_ValidateParameters(t *testing.T) {
	reg := newTestRegistry(t)

	err := reg.ValidateParameters(models.NodeTypeEmailSend, map[string]any{
		"to_email": "alice@example.com",
		"subject":  "Hi",
		"body":     "Hello there",
		"cc":       []string{"bob@example.com"},
	})
	require.NoError(t, err)

	err = reg.ValidateParameters(models.NodeTypeEmailSend, map[string]any{
		"to_email": "not-an-email",
		"subject":  "Hi",
		"body":     "Hello there",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidParameters)

	err = reg.ValidateParameters(models.NodeTypeHTTPRequest, map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "url")

	err = reg.ValidateParameters(models.NodeTypeManualTrigger, nil)
	assert.NoError(t, err)
}

func TestRegistry_Schema(t *testing.T) {
	reg := newTestRegistry(t)

	schema, err := reg.Schema(models.NodeTypeHTTPRequest)
	require.NoError(t, err)

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"url"}, schema["required"])

	properties := schema["properties"].(map[string]any)
	assert.Equal(t, "uri", properties["url"].(map[string]any)["format"])
	assert.Equal(t, "object", properties["headers"].(map[string]any)["type"])
}
