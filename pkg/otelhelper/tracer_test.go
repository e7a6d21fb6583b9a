package otelhelper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpan_SetError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")

	_, span := StartSpan(t.Context(), tracer, "engine.process", attribute.String(SessionIDKey, "session-1"))
	SetError(span, errors.New("boom"), attribute.String(NodeIDKey, "email_send_1"))
	span.End()

	spans := recorder.Ended()
	if assert.Len(t, spans, 1) {
		assert.Equal(t, "engine.process", spans[0].Name())
		assert.Equal(t, codes.Error, spans[0].Status().Code)
		assert.Contains(t, spans[0].Attributes(), attribute.String(SessionIDKey, "session-1"))
		if assert.Len(t, spans[0].Events(), 1) {
			assert.Equal(t, "exception", spans[0].Events()[0].Name)
			assert.Contains(t, spans[0].Events()[0].Attributes, attribute.String(NodeIDKey, "email_send_1"))
		}
	}
}

func TestSetError_IgnoresNil(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := StartSpan(t.Context(), provider.Tracer("test"), "noop")
	SetError(span, nil)
	span.End()

	assert.Equal(t, codes.Unset, recorder.Ended()[0].Status().Code)
	assert.Empty(t, recorder.Ended()[0].Events())
}

func TestSetOutcome(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")

	_, ok := StartSpan(t.Context(), tracer, "ok")
	SetOutcome(ok, true, "")
	ok.End()

	_, failed := StartSpan(t.Context(), tracer, "failed")
	SetOutcome(failed, false, "email_send_1 failed")
	failed.End()

	spans := recorder.Ended()
	if assert.Len(t, spans, 2) {
		assert.Contains(t, spans[0].Attributes(), attribute.Bool(SuccessKey, true))
		assert.Equal(t, codes.Unset, spans[0].Status().Code)

		assert.Contains(t, spans[1].Attributes(), attribute.Bool(SuccessKey, false))
		assert.Equal(t, codes.Error, spans[1].Status().Code)
		assert.Equal(t, "email_send_1 failed", spans[1].Status().Description)
	}
}

func TestNoopTracer(t *testing.T) {
	_, span := StartSpan(t.Context(), NoopTracer(), "noop")
	defer span.End()

	assert.False(t, span.SpanContext().IsValid())
}
