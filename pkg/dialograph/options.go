package dialograph

import (
	"log/slog"

	"github.com/dialograph/dialograph/pkg/dialograph/observability"
	"github.com/dialograph/dialograph/pkg/dialograph/snapshot"
)

// DefaultMaxTransitions bounds how many node transitions a single Submit
// may make before the engine stops the turn with a TransitionLimitError.
const DefaultMaxTransitions = 16

// SelectionPolicy controls how the engine treats a model selection that is
// not among the current node's outcomes. The enum in the selection tool
// already constrains well-behaved providers; the policy decides what
// happens when one misbehaves anyway.
type SelectionPolicy int

const (
	// SelectionLenient keeps the assistant message for audit, logs and
	// counts the rejected key, and ends the turn at the current node as if
	// no selection was made. The default.
	SelectionLenient SelectionPolicy = iota

	// SelectionStrict rejects the whole submit: the pre-submit state is
	// restored and Submit returns an InvalidOutcomeError.
	SelectionStrict
)

// ActionPolicy controls how the engine treats action handler failures.
type ActionPolicy int

const (
	// ActionContinue logs the failure, records it in Turn.ActionErrors,
	// and keeps going. The transition still happens. The default.
	ActionContinue ActionPolicy = iota

	// ActionAbort rejects the whole submit at the first handler failure:
	// the pre-submit state is restored and Submit returns the ActionError.
	ActionAbort
)

// engineConfig holds the assembled configuration for an Engine.
type engineConfig struct {
	conversationID string
	vars           map[string]any

	model       string
	maxTokens   int
	temperature float64

	maxTransitions  int
	selectionPolicy SelectionPolicy
	actionPolicy    ActionPolicy

	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool

	snapshotStore        snapshot.Store
	snapshotFailureFatal bool
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		maxTransitions: DefaultMaxTransitions,
		metrics:        observability.NoopMetrics{},
		spans:          observability.NoopSpanManager{},
	}
}

// Option configures an Engine at construction.
type Option func(*engineConfig)

// WithConversationID pins the conversation ID instead of generating a UUID.
// Useful when the ID comes from an external system (a ticket, a session).
func WithConversationID(id string) Option {
	return func(c *engineConfig) {
		c.conversationID = id
	}
}

// WithVars seeds the conversation vars before the start node's entry runs,
// so the first instructions and the system prompt can reference them.
//
// Example:
//
//	engine, err := dialograph.New(ctx, graph, client, actions,
//		dialograph.WithVars(map[string]any{"customer_name": "Ada"}),
//	)
func WithVars(vars map[string]any) Option {
	return func(c *engineConfig) {
		c.vars = vars
	}
}

// WithModel sets the model name passed on every completion request.
func WithModel(model string) Option {
	return func(c *engineConfig) {
		c.model = model
	}
}

// WithMaxTokens caps the response size of every completion request.
func WithMaxTokens(n int) Option {
	return func(c *engineConfig) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature of every completion
// request. Outcome selection benefits from low values.
func WithTemperature(t float64) Option {
	return func(c *engineConfig) {
		c.temperature = t
	}
}

// WithMaxTransitions bounds node transitions per Submit.
// Default: DefaultMaxTransitions.
//
// The bound protects against graphs that auto-advance in a cycle without
// awaiting input. When a submit trips it, Submit returns a
// TransitionLimitError and keeps the state reached so far for audit.
func WithMaxTransitions(n int) Option {
	return func(c *engineConfig) {
		if n > 0 {
			c.maxTransitions = n
		}
	}
}

// WithSelectionPolicy sets how out-of-enum selections are handled.
// Default: SelectionLenient.
func WithSelectionPolicy(p SelectionPolicy) Option {
	return func(c *engineConfig) {
		c.selectionPolicy = p
	}
}

// WithActionPolicy sets how action handler failures are handled.
// Default: ActionContinue.
func WithActionPolicy(p ActionPolicy) Option {
	return func(c *engineConfig) {
		c.actionPolicy = p
	}
}

// WithLogger sets the structured logger for conversation lifecycle events.
// Without it the engine is silent except for graph validation warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics: turn latency and counts,
// completion latency and token usage, transitions, action outcomes,
// invalid selections, and snapshot sizes. Recording is a no-op unless the
// process has a meter provider installed.
func WithMetrics(enabled bool) Option {
	return func(c *engineConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry spans around each turn, completion
// call, and action dispatch.
func WithTracing(enabled bool) Option {
	return func(c *engineConfig) {
		c.tracingEnabled = enabled
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithSnapshotStore enables snapshot persistence. The engine saves a
// snapshot right after construction and after every successful Submit;
// Resume rebuilds an engine from the latest one.
//
// Save failures are logged and the turn still succeeds, unless
// WithSnapshotFailureFatal is set.
func WithSnapshotStore(store snapshot.Store) Option {
	return func(c *engineConfig) {
		c.snapshotStore = store
	}
}

// WithSnapshotFailureFatal makes snapshot save failures fail the submit
// that hit them. Use when losing a resumable state is worse than failing
// the turn.
func WithSnapshotFailureFatal(fatal bool) Option {
	return func(c *engineConfig) {
		c.snapshotFailureFatal = fatal
	}
}
