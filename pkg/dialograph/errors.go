package dialograph

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for graph building and validation.
var (
	// ErrNoStartNode indicates the graph has no start node set.
	ErrNoStartNode = errors.New("start node not set")

	// ErrStartNotFound indicates the start node references a non-existent node.
	ErrStartNotFound = errors.New("start node not found")

	// ErrInvalidNodeID indicates a node ID is empty, reserved, or contains
	// whitespace. The builder panics on these; the declarative loaders
	// report them as errors.
	ErrInvalidNodeID = errors.New("invalid node ID")

	// ErrDanglingOutcome indicates an outcome targets a node that does not
	// exist in the graph.
	ErrDanglingOutcome = errors.New("outcome targets unknown node")
)

// Sentinel errors for conversation execution.
var (
	// ErrConversationFinished indicates Submit was called after the
	// conversation reached a terminal outcome.
	ErrConversationFinished = errors.New("conversation already finished")

	// ErrCompletionFailed indicates the completion client returned an error.
	// The submit that hit it left no trace: state is exactly as it was
	// before the call, so the same input can be resubmitted.
	ErrCompletionFailed = errors.New("completion failed")

	// ErrInvalidOutcome indicates the model selected an outcome key the
	// current node does not offer. Only surfaced under SelectionStrict.
	ErrInvalidOutcome = errors.New("invalid outcome selected")

	// ErrTransitionLimit indicates a single submit exceeded the transition
	// limit, usually a sign of a graph that loops without awaiting input.
	ErrTransitionLimit = errors.New("transition limit exceeded")
)

// Sentinel errors for action dispatch.
var (
	// ErrUnknownActionType indicates a graph names an action type with no
	// registered handler.
	ErrUnknownActionType = errors.New("unknown action type")
)

// Sentinel errors for snapshots and resume.
var (
	// ErrSerializeState indicates conversation state could not be serialized.
	ErrSerializeState = errors.New("failed to serialize conversation state")

	// ErrDeserializeState indicates stored conversation state could not be
	// deserialized.
	ErrDeserializeState = errors.New("failed to deserialize conversation state")

	// ErrNoSnapshots indicates Resume found no snapshots for the conversation.
	ErrNoSnapshots = errors.New("no snapshots found for conversation")

	// ErrSnapshotVersionMismatch indicates a snapshot was written by an
	// incompatible version.
	ErrSnapshotVersionMismatch = errors.New("snapshot version mismatch")

	// ErrInvalidResumeNode indicates a snapshot references a node that no
	// longer exists in the graph.
	ErrInvalidResumeNode = errors.New("invalid resume node")
)

// DanglingReferenceError identifies the exact outcome whose target is
// missing from the graph.
type DanglingReferenceError struct {
	NodeID     string
	OutcomeKey string
	Target     string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("node %s outcome %q targets unknown node %q", e.NodeID, e.OutcomeKey, e.Target)
}

func (e *DanglingReferenceError) Unwrap() error {
	return ErrDanglingOutcome
}

// CompletionError wraps a completion client failure with the node where it
// happened. It matches ErrCompletionFailed via errors.Is and unwraps to the
// client's error so transport causes stay inspectable.
type CompletionError struct {
	NodeID string
	Err    error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion at node %s: %v", e.NodeID, e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

func (e *CompletionError) Is(target error) bool {
	return target == ErrCompletionFailed
}

// InvalidOutcomeError reports a model selection outside the current node's
// outcome set, along with the keys that were offered.
type InvalidOutcomeError struct {
	NodeID  string
	Outcome string
	Offered []string
}

func (e *InvalidOutcomeError) Error() string {
	return fmt.Sprintf("node %s: outcome %q not offered (valid: %s)",
		e.NodeID, e.Outcome, strings.Join(e.Offered, ", "))
}

func (e *InvalidOutcomeError) Unwrap() error {
	return ErrInvalidOutcome
}

// TransitionLimitError reports that a submit stopped after too many
// transitions. State up to the stopping point is kept for audit.
type TransitionLimitError struct {
	Limit  int
	NodeID string
}

func (e *TransitionLimitError) Error() string {
	return fmt.Sprintf("exceeded transition limit (%d) at node %s", e.Limit, e.NodeID)
}

func (e *TransitionLimitError) Unwrap() error {
	return ErrTransitionLimit
}

// ActionError wraps a handler failure with the node, action type, and
// trigger phase where it happened. Unwrap exposes the handler's error, so
// errors.Is(err, ErrUnknownActionType) matches missing-handler dispatches.
type ActionError struct {
	NodeID string
	Type   string
	Phase  string
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %s (%s) at node %s: %v", e.Type, e.Phase, e.NodeID, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// ActionPanicError captures a panic recovered from an action handler,
// including the stack trace at the panic site.
type ActionPanicError struct {
	Type  string
	Value any
	Stack string
}

func (e *ActionPanicError) Error() string {
	return fmt.Sprintf("action %s panicked: %v", e.Type, e.Value)
}

// SnapshotError wraps a snapshot save failure. Saves are non-fatal by
// default; with WithSnapshotFailureFatal the submit that hit one returns
// this error instead of logging it.
type SnapshotError struct {
	NodeID string
	Op     string
	Err    error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot %s at node %s: %v", e.Op, e.NodeID, e.Err)
}

func (e *SnapshotError) Unwrap() error {
	return e.Err
}
