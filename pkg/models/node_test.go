package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPlaceholder(t *testing.T) {
	assert.True(t, IsPlaceholder(Placeholder(ParamToEmail)))
	assert.True(t, IsPlaceholder(" {{ subject }} "))
	assert.False(t, IsPlaceholder(NodeReference("openai_1", "text")))
	assert.False(t, IsPlaceholder("alice@example.com"))
	assert.False(t, IsPlaceholder(42))
}

func TestWorkflowNode_HasValue(t *testing.T) {
	node := &WorkflowNode{ID: "email_send_1", Type: NodeTypeEmailSend, Category: CategoryTypeAction}

	assert.False(t, node.HasValue(ParamToEmail))

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{name: "nil", value: nil, want: false},
		{name: "blank", value: "  ", want: false},
		{name: "placeholder", value: "{{to_email}}", want: false},
		{name: "reference", value: "{{ .nodes.openai_1.text }}", want: true},
		{name: "plain", value: "alice@example.com", want: true},
		{name: "empty list", value: []string{}, want: false},
		{name: "list", value: []any{"a@example.com"}, want: true},
		{name: "number", value: 3, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node.SetParam(ParamToEmail, tt.value)
			assert.Equal(t, tt.want, node.HasValue(ParamToEmail))
		})
	}
}

func TestWorkflowNode_StringParam(t *testing.T) {
	node := &WorkflowNode{}

	node.SetParam(ParamSubject, Placeholder(ParamSubject))
	assert.Empty(t, node.StringParam(ParamSubject))

	node.SetParam(ParamSubject, "Launch")
	assert.Equal(t, "Launch", node.StringParam(ParamSubject))

	node.SetParam(ParamRecipients, []string{"a@example.com"})
	assert.Empty(t, node.StringParam(ParamRecipients))
}

func TestMissingParameter_Key(t *testing.T) {
	missing := MissingParameter{NodeID: "email_send_1", NodeType: NodeTypeEmailSend, Parameter: ParamToEmail}
	assert.Equal(t, "email_send_1.to_email", missing.Key())
}

func TestNodeTypeSpec_Params(t *testing.T) {
	spec := &NodeTypeSpec{
		TypeName:       NodeTypeOpenAI,
		RequiredParams: []string{ParamPrompt},
		OptionalParams: []string{ParamTopic, ParamInput},
	}

	assert.Equal(t, []string{ParamPrompt, ParamTopic, ParamInput}, spec.Params())
	assert.True(t, spec.Requires(ParamPrompt))
	assert.False(t, spec.Requires(ParamTopic))
	assert.True(t, spec.Declares(ParamTopic))
	assert.False(t, spec.Declares(ParamToEmail))
}
