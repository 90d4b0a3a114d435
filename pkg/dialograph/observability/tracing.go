package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the dialograph tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("dialograph")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartTurnSpan starts a span for one submit call.
	// Returns the context with span and the span itself.
	StartTurnSpan(ctx context.Context, graphName, conversationID string, turn int) (context.Context, trace.Span)

	// StartCompletionSpan starts a span for a model completion call.
	// The completion span should be a child of the turn span.
	StartCompletionSpan(ctx context.Context, model, nodeID string) (context.Context, trace.Span)

	// StartActionSpan starts a span for an action handler dispatch.
	StartActionSpan(ctx context.Context, actionType, nodeID string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartTurnSpan starts a span for one submit call.
func (m *otelSpanManager) StartTurnSpan(ctx context.Context, graphName, conversationID string, turn int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "dialograph.turn",
		trace.WithAttributes(
			attribute.String("graph.name", graphName),
			attribute.String("conversation.id", conversationID),
			attribute.Int("turn", turn),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartCompletionSpan starts a span for a model completion call.
func (m *otelSpanManager) StartCompletionSpan(ctx context.Context, model, nodeID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "dialograph.completion",
		trace.WithAttributes(
			attribute.String("model", model),
			attribute.String("node.id", nodeID),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// StartActionSpan starts a span for an action handler dispatch.
func (m *otelSpanManager) StartActionSpan(ctx context.Context, actionType, nodeID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "dialograph.action."+actionType,
		trace.WithAttributes(
			attribute.String("action.type", actionType),
			attribute.String("node.id", nodeID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
