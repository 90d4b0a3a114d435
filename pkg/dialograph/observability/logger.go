// Package observability provides production-grade observability features
// for dialograph: structured logging, metrics, and distributed tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds conversation context to a logger.
// Returns a new logger with conversation_id, node_id, and turn fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "conv-123", "greeting", 1)
//	enriched.Info("processing") // includes conversation_id, node_id, turn
func EnrichLogger(logger *slog.Logger, conversationID, nodeID string, turn int) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("conversation_id", conversationID),
		slog.String("node_id", nodeID),
		slog.Int("turn", turn),
	)
}

// LogConversationStart logs the creation of a new conversation.
func LogConversationStart(logger *slog.Logger, conversationID, graph, startNode string) {
	if logger == nil {
		return
	}
	logger.Info("conversation starting",
		slog.String("conversation_id", conversationID),
		slog.String("graph", graph),
		slog.String("node_id", startNode),
	)
}

// LogTurnStart logs the start of a conversation turn.
func LogTurnStart(logger *slog.Logger, conversationID, nodeID string, turn int) {
	if logger == nil {
		return
	}
	logger.Info("turn starting",
		slog.String("conversation_id", conversationID),
		slog.String("node_id", nodeID),
		slog.Int("turn", turn),
	)
}

// LogTurnComplete logs successful turn completion.
func LogTurnComplete(logger *slog.Logger, conversationID string, turn int, durationMs float64, transitions int, nodeID string) {
	if logger == nil {
		return
	}
	logger.Info("turn completed",
		slog.String("conversation_id", conversationID),
		slog.Int("turn", turn),
		slog.Float64("duration_ms", durationMs),
		slog.Int("transitions", transitions),
		slog.String("node_id", nodeID),
	)
}

// LogTurnError logs turn failure.
func LogTurnError(logger *slog.Logger, conversationID string, turn int, err error, durationMs float64, nodeID string) {
	if logger == nil {
		return
	}
	logger.Error("turn failed",
		slog.String("conversation_id", conversationID),
		slog.Int("turn", turn),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
		slog.String("node_id", nodeID),
	)
}

// LogConversationFinished logs a conversation reaching a terminal outcome.
func LogConversationFinished(logger *slog.Logger, conversationID string, turns int) {
	if logger == nil {
		return
	}
	logger.Info("conversation finished",
		slog.String("conversation_id", conversationID),
		slog.Int("turns", turns),
	)
}

// LogCompletion logs a model completion round trip.
func LogCompletion(logger *slog.Logger, model string, durationMs float64, inputTokens, outputTokens int) {
	if logger == nil {
		return
	}
	logger.Debug("completion received",
		slog.String("model", model),
		slog.Float64("duration_ms", durationMs),
		slog.Int("input_tokens", inputTokens),
		slog.Int("output_tokens", outputTokens),
	)
}

// LogTransition logs an outcome-driven node transition.
func LogTransition(logger *slog.Logger, fromNode, outcome, toNode string) {
	if logger == nil {
		return
	}
	logger.Debug("transition",
		slog.String("from_node", fromNode),
		slog.String("outcome", outcome),
		slog.String("to_node", toNode),
	)
}

// LogInvalidOutcome logs a model selection outside the node's outcome set.
func LogInvalidOutcome(logger *slog.Logger, nodeID, outcome string, valid []string) {
	if logger == nil {
		return
	}
	logger.Warn("invalid outcome selected",
		slog.String("node_id", nodeID),
		slog.String("outcome", outcome),
		slog.Any("valid_outcomes", valid),
	)
}

// LogAction logs a completed action dispatch.
func LogAction(logger *slog.Logger, actionType, nodeID string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("action executed",
		slog.String("action_type", actionType),
		slog.String("node_id", nodeID),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogActionError logs action handler failure.
func LogActionError(logger *slog.Logger, actionType, nodeID string, err error) {
	if logger == nil {
		return
	}
	logger.Error("action failed",
		slog.String("action_type", actionType),
		slog.String("node_id", nodeID),
		slog.String("error", err.Error()),
	)
}

// LogSnapshot logs snapshot creation.
func LogSnapshot(logger *slog.Logger, nodeID string, sizeBytes int) {
	if logger == nil {
		return
	}
	logger.Debug("snapshot saved",
		slog.String("node_id", nodeID),
		slog.Int("size_bytes", sizeBytes),
	)
}

// LogSnapshotError logs snapshot failure (non-fatal).
func LogSnapshotError(logger *slog.Logger, nodeID string, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("snapshot failed",
		slog.String("node_id", nodeID),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
