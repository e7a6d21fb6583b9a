package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProcessor struct {
	requests []models.Request
}

func (p *recordingProcessor) Process(_ context.Context, req models.Request) models.Response {
	p.requests = append(p.requests, req)

	return models.ConversationalResponse("echo: " + req.UserText)
}

func TestChat_ForwardsLinesUntilExit(t *testing.T) {
	processor := &recordingProcessor{}
	template := models.Request{AgentID: "cli", SessionID: "s-1", AgentContext: models.AgentContext{Name: "Operion"}}

	in := strings.NewReader("hello\n\n  send a report  \nexit\nignored\n")

	var out bytes.Buffer

	err := chat(context.Background(), processor, template, in, &out)
	require.NoError(t, err)

	require.Len(t, processor.requests, 2)
	assert.Equal(t, "hello", processor.requests[0].UserText)
	assert.Equal(t, "send a report", processor.requests[1].UserText)
	assert.Equal(t, "s-1", processor.requests[1].SessionID)
	assert.Equal(t, "Operion", processor.requests[1].AgentContext.Name)

	assert.Contains(t, out.String(), "echo: hello\n")
	assert.Contains(t, out.String(), "echo: send a report\n")
	assert.NotContains(t, out.String(), "ignored")
}

func TestChat_StopsAtEndOfInput(t *testing.T) {
	processor := &recordingProcessor{}

	var out bytes.Buffer

	err := chat(context.Background(), processor, models.Request{SessionID: "s-1"}, strings.NewReader("hi"), &out)
	require.NoError(t, err)
	assert.Len(t, processor.requests, 1)
}

func TestChat_CancelledContext(t *testing.T) {
	processor := &recordingProcessor{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer

	err := chat(ctx, processor, models.Request{SessionID: "s-1"}, strings.NewReader("hi\n"), &out)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, processor.requests)
}
