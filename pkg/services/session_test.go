package services

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/dukex/operion-assistant/pkg/persistence/memory"
	"github.com/dukex/operion-assistant/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoProcessor struct {
	requests []models.Request
}

func (p *echoProcessor) Process(_ context.Context, req models.Request) models.Response {
	p.requests = append(p.requests, req)

	return models.ConversationalResponse("echo: " + req.UserText)
}

func newTestSession(t *testing.T) (*Session, *echoProcessor, *memory.Persistence) {
	t.Helper()

	reg, err := registry.NewDefaultRegistry(slog.Default())
	require.NoError(t, err)

	processor := &echoProcessor{}
	store := memory.NewPersistence()

	return NewSession(processor, store, reg), processor, store
}

func TestSession_SendMessage(t *testing.T) {
	service, processor, _ := newTestSession(t)

	resp, err := service.SendMessage(context.Background(), models.Request{
		AgentID:   "agent-1",
		SessionID: "session-1",
		UserText:  "  hello  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "echo: hello", resp.Reply)
	require.Len(t, processor.requests, 1)
	assert.Equal(t, "hello", processor.requests[0].UserText)
}

func TestSession_SendMessageValidation(t *testing.T) {
	service, processor, _ := newTestSession(t)

	tests := []struct {
		name string
		req  models.Request
		want error
	}{
		{"empty session", models.Request{UserText: "hi"}, ErrEmptySessionID},
		{"bad session chars", models.Request{SessionID: "a:b", UserText: "hi"}, ErrSessionIDChars},
		{"bad agent chars", models.Request{AgentID: "a/b", SessionID: "s", UserText: "hi"}, ErrSessionIDChars},
		{"blank message", models.Request{SessionID: "s", UserText: "   "}, ErrEmptyMessage},
		{"long message", models.Request{SessionID: "s", UserText: strings.Repeat("a", MaxMessageLength+1)}, ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.SendMessage(context.Background(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsValidationError(err))
		})
	}

	assert.Empty(t, processor.requests)
}

func TestSession_GetAndReset(t *testing.T) {
	service, _, store := newTestSession(t)
	ctx := context.Background()
	key := models.SessionKey{AgentID: "agent-1", SessionID: "session-1"}

	_, err := service.GetSession(ctx, key)
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))

	session := models.NewSessionContext(key)
	session.AppendTurn(models.RoleUser, "hello")
	require.NoError(t, store.SaveContext(ctx, session))

	got, err := service.GetSession(ctx, key)
	require.NoError(t, err)
	assert.Len(t, got.Turns, 1)

	require.NoError(t, service.ResetSession(ctx, key))

	_, err = service.GetSession(ctx, key)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSession_NodeTypes(t *testing.T) {
	service, _, _ := newTestSession(t)

	assert.Len(t, service.ListNodeTypes(), 5)

	spec, schema, err := service.GetNodeType(models.NodeTypeEmailSend)
	require.NoError(t, err)
	assert.Equal(t, models.NodeTypeEmailSend, spec.TypeName)
	assert.Equal(t, []string{"to_email", "subject", "body"}, schema["required"])

	_, _, err = service.GetNodeType("slack_post")
	assert.ErrorIs(t, err, ErrNodeTypeNotFound)
}

func TestSession_HealthCheck(t *testing.T) {
	service, _, _ := newTestSession(t)

	message, ok := service.HealthCheck(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "Persistence layer is healthy", message)
}
