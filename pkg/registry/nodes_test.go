package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/dukex/operion-assistant/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNode struct {
	id string
}

func (n *stubNode) ID() string   { return n.id }
func (n *stubNode) Type() string { return "stub" }

func (n *stubNode) Execute(_ context.Context) (map[string]any, error) {
	return map[string]any{"ok": true}, nil
}

type stubFactory struct {
	typeName string
	err      error
}

func (f *stubFactory) Create(_ context.Context, id string, _ map[string]any) (protocol.Node, error) {
	if f.err != nil {
		return nil, f.err
	}

	return &stubNode{id: id}, nil
}

func (f *stubFactory) ID() string          { return f.typeName }
func (f *stubFactory) Name() string        { return "Stub" }
func (f *stubFactory) Description() string { return "stub" }

func TestRegistry_CreateNode(t *testing.T) {
	reg := newTestRegistry(t)
	reg.RegisterNode(&stubFactory{typeName: models.NodeTypeOpenAI})

	node, err := reg.CreateNode(t.Context(), models.NodeTypeOpenAI, "openai_1", nil)
	require.NoError(t, err)
	assert.Equal(t, "openai_1", node.ID())

	_, err = reg.CreateNode(t.Context(), models.NodeTypeEmailSend, "email_send_1", nil)
	require.ErrorIs(t, err, ErrNodeFactoryNotFound)
	assert.Contains(t, err.Error(), models.NodeTypeEmailSend)

	reg.RegisterNode(&stubFactory{typeName: models.NodeTypeEmailSend, err: errors.New("bad config")})

	_, err = reg.CreateNode(t.Context(), models.NodeTypeEmailSend, "email_send_1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad config")
}

func TestRegistry_MissingFactories(t *testing.T) {
	reg := newTestRegistry(t)
	assert.Len(t, reg.MissingFactories(), 5)

	reg.RegisterNode(&stubFactory{typeName: models.NodeTypeManualTrigger})
	reg.RegisterNode(&stubFactory{typeName: models.NodeTypeHTTPRequest})

	assert.Equal(t, []string{models.NodeTypeOpenAI, models.NodeTypeEmailSend, models.NodeTypeAutomation}, reg.MissingFactories())
}
