package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records conversation engine metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordTurn records a completed submit call with its duration and
	// how many node transitions it performed.
	RecordTurn(ctx context.Context, success bool, duration time.Duration, transitions int)

	// RecordCompletion records a model completion round trip.
	RecordCompletion(ctx context.Context, model string, duration time.Duration, inputTokens, outputTokens int, err error)

	// RecordTransition records an outcome-driven node transition.
	RecordTransition(ctx context.Context, fromNode, outcome string)

	// RecordAction records an action handler dispatch.
	RecordAction(ctx context.Context, actionType string, duration time.Duration, err error)

	// RecordInvalidOutcome records a model selection outside the node's
	// outcome set.
	RecordInvalidOutcome(ctx context.Context, nodeID string)

	// RecordSnapshot records a snapshot save operation.
	RecordSnapshot(ctx context.Context, nodeID string, sizeBytes int64)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	turns              metric.Int64Counter
	turnLatency        metric.Float64Histogram
	transitions        metric.Int64Counter
	completionRequests metric.Int64Counter
	completionLatency  metric.Float64Histogram
	completionTokens   metric.Int64Counter
	completionErrors   metric.Int64Counter
	actionExecutions   metric.Int64Counter
	actionLatency      metric.Float64Histogram
	actionErrors       metric.Int64Counter
	invalidOutcomes    metric.Int64Counter
	snapshotSize       metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("dialograph")

	turns, err := meter.Int64Counter("dialograph.turns",
		metric.WithDescription("Number of completed submit calls"),
	)
	if err != nil {
		return nil, err
	}

	turnLatency, err := meter.Float64Histogram("dialograph.turn.latency_ms",
		metric.WithDescription("Submit call latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	transitions, err := meter.Int64Counter("dialograph.transitions",
		metric.WithDescription("Number of outcome-driven node transitions"),
	)
	if err != nil {
		return nil, err
	}

	completionRequests, err := meter.Int64Counter("dialograph.completion.requests",
		metric.WithDescription("Number of model completion calls"),
	)
	if err != nil {
		return nil, err
	}

	completionLatency, err := meter.Float64Histogram("dialograph.completion.latency_ms",
		metric.WithDescription("Model completion latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	completionTokens, err := meter.Int64Counter("dialograph.completion.tokens",
		metric.WithDescription("Tokens consumed by completion calls"),
	)
	if err != nil {
		return nil, err
	}

	completionErrors, err := meter.Int64Counter("dialograph.completion.errors",
		metric.WithDescription("Number of failed completion calls"),
	)
	if err != nil {
		return nil, err
	}

	actionExecutions, err := meter.Int64Counter("dialograph.action.executions",
		metric.WithDescription("Number of action handler dispatches"),
	)
	if err != nil {
		return nil, err
	}

	actionLatency, err := meter.Float64Histogram("dialograph.action.latency_ms",
		metric.WithDescription("Action handler latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	actionErrors, err := meter.Int64Counter("dialograph.action.errors",
		metric.WithDescription("Number of failed action handler dispatches"),
	)
	if err != nil {
		return nil, err
	}

	invalidOutcomes, err := meter.Int64Counter("dialograph.invalid_outcomes",
		metric.WithDescription("Number of model selections outside the node's outcome set"),
	)
	if err != nil {
		return nil, err
	}

	snapshotSize, err := meter.Int64Histogram("dialograph.snapshot.size_bytes",
		metric.WithDescription("Snapshot size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		turns:              turns,
		turnLatency:        turnLatency,
		transitions:        transitions,
		completionRequests: completionRequests,
		completionLatency:  completionLatency,
		completionTokens:   completionTokens,
		completionErrors:   completionErrors,
		actionExecutions:   actionExecutions,
		actionLatency:      actionLatency,
		actionErrors:       actionErrors,
		invalidOutcomes:    invalidOutcomes,
		snapshotSize:       snapshotSize,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordTurn records a completed submit call.
// Transitions are counted individually via RecordTransition; the count
// here only labels the turn.
func (m *otelMetrics) RecordTurn(ctx context.Context, success bool, duration time.Duration, transitions int) {
	attrs := []attribute.KeyValue{
		attribute.Bool("success", success),
		attribute.Int("transitions", transitions),
	}
	m.turns.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.turnLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordCompletion records a model completion round trip.
func (m *otelMetrics) RecordCompletion(ctx context.Context, model string, duration time.Duration, inputTokens, outputTokens int, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("model", model),
	}

	m.completionRequests.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.completionLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if inputTokens > 0 {
		m.completionTokens.Add(ctx, int64(inputTokens), metric.WithAttributes(
			append(attrs, attribute.String("direction", "input"))...))
	}
	if outputTokens > 0 {
		m.completionTokens.Add(ctx, int64(outputTokens), metric.WithAttributes(
			append(attrs, attribute.String("direction", "output"))...))
	}
	if err != nil {
		m.completionErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordTransition records an outcome-driven node transition.
func (m *otelMetrics) RecordTransition(ctx context.Context, fromNode, outcome string) {
	attrs := []attribute.KeyValue{
		attribute.String("from_node", fromNode),
		attribute.String("outcome", outcome),
	}
	m.transitions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordAction records an action handler dispatch.
func (m *otelMetrics) RecordAction(ctx context.Context, actionType string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("action_type", actionType),
	}

	m.actionExecutions.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.actionLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.actionErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordInvalidOutcome records a selection outside the node's outcome set.
func (m *otelMetrics) RecordInvalidOutcome(ctx context.Context, nodeID string) {
	attrs := []attribute.KeyValue{
		attribute.String("node_id", nodeID),
	}
	m.invalidOutcomes.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSnapshot records a snapshot save.
func (m *otelMetrics) RecordSnapshot(ctx context.Context, nodeID string, sizeBytes int64) {
	attrs := []attribute.KeyValue{
		attribute.String("node_id", nodeID),
	}
	m.snapshotSize.Record(ctx, sizeBytes, metric.WithAttributes(attrs...))
}
