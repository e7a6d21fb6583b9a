package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
	}

	for in, expected := range cases {
		assert.Equal(t, expected, parseLevel(in), in)
	}
}

func TestSetupWithWriter_JSON(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	SetupWithWriter(&buf, "debug", "json")

	WithModule("engine").Debug("hello", "session", "s-1")

	assert.Contains(t, buf.String(), `"module":"engine"`)
	assert.Contains(t, buf.String(), `"session":"s-1"`)
}

func TestFromContext(t *testing.T) {
	fallback := slog.Default()
	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	assert.Same(t, fallback, FromContext(context.Background(), fallback))
	assert.Same(t, custom, FromContext(ContextWithLogger(context.Background(), custom), fallback))
}
