package dialograph

import (
	"context"
	"errors"
	"fmt"

	"github.com/dialograph/dialograph/pkg/dialograph/llm"
	"github.com/dialograph/dialograph/pkg/dialograph/observability"
	"github.com/dialograph/dialograph/pkg/dialograph/snapshot"
)

// Snapshot serializes the conversation into a versioned snapshot document.
// Feed it to NewFromSnapshot, possibly in another process, to continue the
// conversation where it left off.
func (e *Engine) Snapshot() ([]byte, error) {
	state, err := e.state.marshal()
	if err != nil {
		return nil, err
	}

	snap := snapshot.New(e.state.id, e.state.node, e.state.turns, state)
	if e.state.lastOutcome != "" {
		snap = snap.WithLastOutcome(e.state.lastOutcome)
	}
	if e.state.finished {
		snap = snap.WithFinished(true)
	}
	return snap.Marshal()
}

// saveSnapshot persists the conversation after construction and after each
// successful submit. Failures are logged and swallowed unless
// WithSnapshotFailureFatal is set.
func (e *Engine) saveSnapshot(ctx context.Context) error {
	data, err := e.Snapshot()
	if err != nil {
		if e.cfg.snapshotFailureFatal {
			return &SnapshotError{NodeID: e.state.node, Op: "serialize", Err: err}
		}
		observability.LogSnapshotError(e.cfg.logger, e.state.node, "serialize", err)
		return nil
	}

	if _, err := e.cfg.snapshotStore.Save(e.state.id, e.state.node, data); err != nil {
		if e.cfg.snapshotFailureFatal {
			return &SnapshotError{NodeID: e.state.node, Op: "save", Err: err}
		}
		observability.LogSnapshotError(e.cfg.logger, e.state.node, "save", err)
		return nil
	}

	observability.LogSnapshot(e.cfg.logger, e.state.node, len(data))
	e.cfg.metrics.RecordSnapshot(ctx, e.state.node, int64(len(data)))
	return nil
}

// Resume continues a conversation from its latest snapshot in a store.
//
// The graph does not have to be the same object the snapshot was taken
// with, only compatible: the stored current node must still exist.
//
// Example:
//
//	// Previous process crashed mid-conversation
//	engine, err := dialograph.Resume(store, graph, client, actions, "conv-123",
//		dialograph.WithSnapshotStore(store),
//	)
func Resume(store snapshot.Store, graph *Graph, client llm.Client, actions *ActionRegistry, conversationID string, opts ...Option) (*Engine, error) {
	data, err := store.Latest(conversationID)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoSnapshots, conversationID)
		}
		return nil, fmt.Errorf("load latest snapshot: %w", err)
	}
	return NewFromSnapshot(data, graph, client, actions, opts...)
}

// NewFromSnapshot rebuilds an engine from a serialized snapshot.
//
// Entry actions do not rerun: the transcript already contains everything
// the original entry produced. The next Submit picks up exactly where the
// snapshot stopped.
func NewFromSnapshot(data []byte, graph *Graph, client llm.Client, actions *ActionRegistry, opts ...Option) (*Engine, error) {
	if graph == nil {
		return nil, fmt.Errorf("dialograph: graph cannot be nil")
	}
	if client == nil {
		return nil, fmt.Errorf("dialograph: completion client cannot be nil")
	}

	snap, err := snapshot.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserializeState, err)
	}
	if snap.Version != snapshot.Version {
		return nil, fmt.Errorf("%w: got %d, expected %d",
			ErrSnapshotVersionMismatch, snap.Version, snapshot.Version)
	}

	state, err := unmarshalState(snap.State)
	if err != nil {
		return nil, err
	}

	// A finished conversation has no current node; anything else must
	// resume at a node the graph still has.
	if !state.finished {
		if _, ok := graph.Node(state.node); !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidResumeNode, state.node)
		}
	}

	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if actions == nil {
		actions = NewActionRegistry()
	}

	return &Engine{
		graph:   graph,
		client:  client,
		actions: actions,
		cfg:     cfg,
		state:   state,
	}, nil
}
