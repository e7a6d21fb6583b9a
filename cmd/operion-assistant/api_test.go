package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukex/operion-assistant/pkg/cmd"
	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/dukex/operion-assistant/pkg/web"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	ctx := context.Background()

	assistant, err := cmd.NewAssistant(ctx, slog.Default(), cmd.Options{DatabaseURL: t.TempDir()})
	require.NoError(t, err)

	t.Cleanup(func() { _ = assistant.Close(ctx) })

	return NewAPI(slog.Default(), assistant).App()
}

func TestAPI_RootEndpoint(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Operion Assistant API", string(body))
}

func TestAPI_HealthCheck(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(body))
}

func TestAPI_CORS_Headers(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/node-types", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestAPI_SendMessage_ProposesAutomation(t *testing.T) {
	app := setupTestApp(t)

	payload, err := json.Marshal(web.SendMessageRequest{
		Message: "Send an email to alice@example.com with subject 'Hi' and message 'Hello there'",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/agents/agent-1/sessions/session-1/messages", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	var message web.MessageResponse

	err = json.NewDecoder(resp.Body).Decode(&message)
	require.NoError(t, err)
	assert.Equal(t, models.ResponseKindConfirm, message.Response.Kind)
	assert.Contains(t, message.Text, "alice@example.com")
}
