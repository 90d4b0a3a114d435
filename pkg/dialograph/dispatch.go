package dialograph

import (
	"context"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/dialograph/dialograph/pkg/dialograph/config"
	"github.com/dialograph/dialograph/pkg/dialograph/observability"
	"github.com/dialograph/dialograph/pkg/dialograph/template"
)

// Action trigger phases, recorded on action errors and log lines.
const (
	phaseEnter   = "on_enter"
	phaseOutcome = "on_outcome"
)

// runActions dispatches a node's actions for one trigger phase, in list
// order. Each success folds its result into the vars before the next
// action runs. Failures are collected; under ActionAbort dispatch stops at
// the first one. Deciding whether the errors reject the submit is the
// caller's job.
func (e *Engine) runActions(ctx context.Context, nodeID, phase string, actions []Action) []error {
	var errs []error
	for _, action := range actions {
		if err := e.runAction(ctx, nodeID, phase, action); err != nil {
			errs = append(errs, err)
			if e.cfg.actionPolicy == ActionAbort {
				break
			}
		}
	}
	return errs
}

// runAction dispatches one action through the registry: expand its config
// against the current vars, execute the handler, fold the result back in.
func (e *Engine) runAction(ctx context.Context, nodeID, phase string, action Action) error {
	handler, ok := e.actions.Get(action.Type)
	if !ok {
		err := &ActionError{NodeID: nodeID, Type: action.Type, Phase: phase, Err: ErrUnknownActionType}
		observability.LogActionError(e.cfg.logger, action.Type, nodeID, err)
		return err
	}

	cfg := config.New(template.ExpandMap(action.Config, e.state.vars))
	vars := config.New(e.state.varsSnapshot())

	actionCtx := ctx
	var span trace.Span
	if e.cfg.tracingEnabled {
		actionCtx, span = e.cfg.spans.StartActionSpan(ctx, action.Type, nodeID)
	}

	start := time.Now()
	result, err := executeHandler(actionCtx, action.Type, handler, cfg, vars)
	duration := time.Since(start)

	e.cfg.metrics.RecordAction(ctx, action.Type, duration, err)
	if e.cfg.tracingEnabled {
		e.cfg.spans.EndSpanWithError(span, err)
	}

	if err != nil {
		observability.LogActionError(e.cfg.logger, action.Type, nodeID, err)
		return &ActionError{NodeID: nodeID, Type: action.Type, Phase: phase, Err: err}
	}

	observability.LogAction(e.cfg.logger, action.Type, nodeID, float64(duration.Milliseconds()))

	if result != nil {
		e.state.vars["last_"+action.Type] = result
	}
	return nil
}

// executeHandler invokes a handler with panic recovery, so one bad handler
// cannot take down the conversation.
func executeHandler(ctx context.Context, actionType string, handler Handler, cfg, vars config.Config) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &ActionPanicError{
				Type:  actionType,
				Value: r,
				Stack: string(debug.Stack()),
			}
		}
	}()

	return handler.Execute(ctx, cfg, vars)
}
