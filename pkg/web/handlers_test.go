package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukex/operion-assistant/pkg/assembler"
	"github.com/dukex/operion-assistant/pkg/classifier"
	"github.com/dukex/operion-assistant/pkg/dialog"
	"github.com/dukex/operion-assistant/pkg/engine"
	"github.com/dukex/operion-assistant/pkg/extractor"
	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/dukex/operion-assistant/pkg/persistence/file"
	"github.com/dukex/operion-assistant/pkg/registry"
	"github.com/dukex/operion-assistant/pkg/services"
	"github.com/dukex/operion-assistant/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type okExecutor struct{}

func (okExecutor) Execute(_ context.Context, graph *models.WorkflowGraph) (*models.ExecutionResult, error) {
	result := &models.ExecutionResult{WorkflowID: graph.WorkflowID, Success: true}
	for _, node := range graph.Actions() {
		result.PerNodeResults = append(result.PerNodeResults, models.NodeResult{NodeID: node.ID, Success: true, Detail: "completed"})
	}

	return result, nil
}

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := slog.Default()

	reg, err := registry.NewDefaultRegistry(logger)
	require.NoError(t, err)

	store := file.NewPersistence(t.TempDir())

	eng, err := engine.NewEngine(logger, engine.Dependencies{
		Store:      store,
		Classifier: classifier.NewIntentClassifier(logger, nil, time.Second),
		Dialog: dialog.NewDialog(logger, reg,
			extractor.NewExtractor(logger, nil, time.Second),
			assembler.NewAssembler(logger, reg),
			0,
		),
		Executor: okExecutor{},
	}, engine.DefaultConfig())
	require.NoError(t, err)

	handlers := web.NewAPIHandlers(
		services.NewSession(eng, store, reg),
		validator.New(validator.WithRequiredStructEnabled()),
		reg,
		logger,
	)

	app := fiber.New()
	handlers.Register(app)

	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader

	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)

		reader = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, data
}

func sendMessage(t *testing.T, app *fiber.App, message string) web.MessageResponse {
	t.Helper()

	status, body := doRequest(t, app, http.MethodPost, "/agents/agent-1/sessions/session-1/messages",
		web.SendMessageRequest{Message: message})
	require.Equal(t, http.StatusOK, status, string(body))

	var resp web.MessageResponse
	require.NoError(t, json.Unmarshal(body, &resp))

	return resp
}

func TestAPIHandlers_ConversationFlow(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp := sendMessage(t, app, "Send an email to alice@example.com with subject 'Hi' and message 'Hello there'")
	assert.Equal(t, "agent-1", resp.AgentID)
	assert.Equal(t, "session-1", resp.SessionID)
	assert.Equal(t, models.ResponseKindConfirm, resp.Response.Kind)
	assert.Equal(t, resp.Response.PlanSummary, resp.Text)

	status, body := doRequest(t, app, http.MethodGet, "/agents/agent-1/sessions/session-1", nil)
	require.Equal(t, http.StatusOK, status)

	var session web.SessionResponse
	require.NoError(t, json.Unmarshal(body, &session))
	assert.Equal(t, models.DialogStateAwaitingConfirmation, session.State)
	assert.Len(t, session.Turns, 2)
	require.NotNil(t, session.PendingGraph)
	assert.Empty(t, session.Missing)
	assert.Equal(t, []string{"email_send_1"}, session.Complete)

	resp = sendMessage(t, app, "yes")
	assert.Equal(t, models.ResponseKindExecuted, resp.Response.Kind)
	assert.True(t, resp.Response.Success)
	require.Len(t, resp.Response.PerNodeResults, 1)
	assert.Equal(t, "email_send_1", resp.Response.PerNodeResults[0].NodeID)
}

func TestAPIHandlers_SessionReportsMissingParameters(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp := sendMessage(t, app, "Send an email to notify customers about our launch")
	assert.Equal(t, models.ResponseKindAsk, resp.Response.Kind)

	status, body := doRequest(t, app, http.MethodGet, "/agents/agent-1/sessions/session-1", nil)
	require.Equal(t, http.StatusOK, status)

	var session web.SessionResponse
	require.NoError(t, json.Unmarshal(body, &session))
	assert.Equal(t, models.DialogStateCollecting, session.State)
	assert.Contains(t, session.Missing, "email_send_1.to_email")
	assert.NotContains(t, session.Complete, "email_send_1")
}

func TestAPIHandlers_SendMessageValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		path          string
		body          any
		expectedError string
	}{
		{
			name:          "invalid JSON",
			path:          "/agents/agent-1/sessions/session-1/messages",
			body:          "invalid-json",
			expectedError: "Invalid JSON format",
		},
		{
			name:          "missing message",
			path:          "/agents/agent-1/sessions/session-1/messages",
			body:          web.SendMessageRequest{},
			expectedError: "Message",
		},
		{
			name:          "blank message",
			path:          "/agents/agent-1/sessions/session-1/messages",
			body:          web.SendMessageRequest{Message: "   "},
			expectedError: "message cannot be empty",
		},
		{
			name:          "invalid session id",
			path:          "/agents/agent-1/sessions/bad%3Aid/messages",
			body:          web.SendMessageRequest{Message: "hello"},
			expectedError: "IDs may only contain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := setupTestApp(t)

			status, body := doRequest(t, app, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Contains(t, string(body), tt.expectedError)
		})
	}
}

func TestAPIHandlers_GetSessionNotFound(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	status, body := doRequest(t, app, http.MethodGet, "/agents/agent-1/sessions/unknown", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), "session_not_found")
}

func TestAPIHandlers_ResetSession(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	sendMessage(t, app, "Send an email to notify customers about our launch")

	status, _ := doRequest(t, app, http.MethodDelete, "/agents/agent-1/sessions/session-1", nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = doRequest(t, app, http.MethodGet, "/agents/agent-1/sessions/session-1", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPIHandlers_NodeTypes(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	status, body := doRequest(t, app, http.MethodGet, "/node-types", nil)
	require.Equal(t, http.StatusOK, status)

	var list struct {
		NodeTypes  []web.NodeTypeResponse `json:"node_types"`
		TotalCount int                    `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, 5, list.TotalCount)
	assert.Equal(t, models.NodeTypeManualTrigger, list.NodeTypes[0].Type)
	assert.Empty(t, list.NodeTypes[0].Required)

	status, body = doRequest(t, app, http.MethodGet, "/node-types/email_send", nil)
	require.Equal(t, http.StatusOK, status)

	var nodeType web.NodeTypeResponse
	require.NoError(t, json.Unmarshal(body, &nodeType))
	assert.Equal(t, []string{"to_email", "subject", "body"}, nodeType.Required)
	assert.Equal(t, "object", nodeType.Schema["type"])

	status, body = doRequest(t, app, http.MethodGet, "/node-types/slack_post", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), "node_type_not_found")
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	status, body := doRequest(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"status":"healthy"`)
}
