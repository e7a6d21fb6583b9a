package otelhelper

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SetError marks span as failed. attrs are attached to the recorded exception event.
func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if err == nil {
		return
	}

	span.RecordError(err, trace.WithAttributes(attrs...))
	span.SetStatus(codes.Error, err.Error())
}

// SetOutcome records the success flag of an automation run, marking the span failed with
// message when it did not succeed.
func SetOutcome(span trace.Span, success bool, message string) {
	span.SetAttributes(attribute.Bool(SuccessKey, success))

	if !success {
		span.SetStatus(codes.Error, message)
	}
}
