package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
)

// TracingCollector implements datalayer.TracingCollector using OpenTelemetry tracing.
// It provides distributed tracing for operation invocations, gateway queries, and
// cache store access with automatic span lifecycle management.
type TracingCollector struct {
	tracer trace.Tracer
}

// NewTracingCollector creates a new OpenTelemetry tracing collector with the provided tracer.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan starts a new span with the given name and attributes.
// It returns a new context containing the span and a span context for later completion.
func (t *TracingCollector) StartSpan(
	ctx context.Context,
	name string,
	attrs map[string]string,
) (context.Context, datalayer.SpanContext) {
	otelAttrs := make([]attribute.KeyValue, 0, len(attrs))
	for key, value := range attrs {
		otelAttrs = append(otelAttrs, attribute.String(key, value))
	}

	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(otelAttrs...))

	return spanCtx, &OTelSpanContext{span: span}
}

// FinishSpan completes the span with the given status and additional attributes.
func (t *TracingCollector) FinishSpan(spanCtx datalayer.SpanContext, status string, attrs map[string]string) {
	otelSpan, ok := spanCtx.(*OTelSpanContext)
	if !ok {
		return // Invalid span context, nothing to finish
	}

	// Add final attributes
	for key, value := range attrs {
		otelSpan.span.SetAttributes(attribute.String(key, value))
	}

	// Set span status based on operation result
	otelSpan.setSpanStatus(status)

	otelSpan.span.End()
}

// OTelSpanContext wraps an OpenTelemetry span to implement datalayer.SpanContext.
type OTelSpanContext struct {
	span trace.Span
}

// SetStatus sets the OpenTelemetry span status based on the provided status string.
// It maps common status strings to appropriate OpenTelemetry status codes.
func (s *OTelSpanContext) SetStatus(status string) {
	s.setSpanStatus(status)
}

// AddAttribute adds an attribute to the OpenTelemetry span.
func (s *OTelSpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

// setSpanStatus maps operation status strings to OpenTelemetry span status codes.
func (s *OTelSpanContext) setSpanStatus(status string) {
	switch status {
	case "ok", "success", "completed":
		s.span.SetStatus(codes.Ok, "")
	case "cache_hit", "cache_miss", "short_circuit":
		// Expected outcomes, not failures - keep the detail as an attribute
		s.span.SetStatus(codes.Ok, "")
		s.span.SetAttributes(attribute.String("status", status))
	case "error", "failed", "failure":
		s.span.SetStatus(codes.Error, "Operation failed")
	case "cancelled", "canceled":
		s.span.SetStatus(codes.Error, "Operation cancelled")
	case "timeout":
		s.span.SetStatus(codes.Error, "Operation timed out")
	default:
		// Unknown status, add as attribute for debugging
		s.span.SetAttributes(attribute.String("status", status))
	}
}

// Ensure the OpenTelemetry implementations satisfy the datalayer interfaces.
var (
	_ datalayer.TracingCollector = (*TracingCollector)(nil)
	_ datalayer.SpanContext      = (*OTelSpanContext)(nil)
)
