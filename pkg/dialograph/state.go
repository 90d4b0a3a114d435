package dialograph

import (
	"encoding/json"
	"fmt"
)

// executionState is the engine's record of one conversation: where it is,
// everything said so far, and the accumulated vars. It is owned by a single
// Engine and never shared.
type executionState struct {
	id          string
	node        string // empty once finished
	transcript  []Message
	vars        map[string]any
	finished    bool
	turns       int
	lastOutcome string
}

func newExecutionState(id string) *executionState {
	return &executionState{
		id:   id,
		vars: make(map[string]any),
	}
}

func (s *executionState) append(msg Message) {
	s.transcript = append(s.transcript, msg)
}

// varsSnapshot returns a shallow copy of the vars. Handlers receive these
// copies so their reads never race the engine and their writes never leak
// back in.
func (s *executionState) varsSnapshot() map[string]any {
	snap := make(map[string]any, len(s.vars))
	for k, v := range s.vars {
		snap[k] = v
	}
	return snap
}

// rollback captures the mutable fields at the top of a submit. A failed
// submit restores them exactly, so the caller can retry the same input
// against an unchanged conversation.
type rollback struct {
	transcriptLen int
	vars          map[string]any
	node          string
	finished      bool
	turns         int
	lastOutcome   string
}

func (s *executionState) mark() rollback {
	return rollback{
		transcriptLen: len(s.transcript),
		vars:          s.varsSnapshot(),
		node:          s.node,
		finished:      s.finished,
		turns:         s.turns,
		lastOutcome:   s.lastOutcome,
	}
}

func (s *executionState) rollbackTo(rb rollback) {
	s.transcript = s.transcript[:rb.transcriptLen]
	s.vars = rb.vars
	s.node = rb.node
	s.finished = rb.finished
	s.turns = rb.turns
	s.lastOutcome = rb.lastOutcome
}

// stateJSON is the serialized shape of a conversation. The vars travel
// under the context key.
type stateJSON struct {
	ConversationID string         `json:"conversation_id"`
	CurrentNode    string         `json:"current_node_id,omitempty"`
	Transcript     []Message      `json:"transcript"`
	Vars           map[string]any `json:"context"`
	Finished       bool           `json:"finished,omitempty"`
	Turns          int            `json:"turns"`
	LastOutcome    string         `json:"last_outcome,omitempty"`
}

// marshal serializes the conversation state for snapshotting.
func (s *executionState) marshal() ([]byte, error) {
	data, err := json.Marshal(stateJSON{
		ConversationID: s.id,
		CurrentNode:    s.node,
		Transcript:     s.transcript,
		Vars:           s.vars,
		Finished:       s.finished,
		Turns:          s.turns,
		LastOutcome:    s.lastOutcome,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializeState, err)
	}
	return data, nil
}

// unmarshalState rebuilds conversation state from its serialized form.
func unmarshalState(data []byte) (*executionState, error) {
	var doc stateJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserializeState, err)
	}

	s := &executionState{
		id:          doc.ConversationID,
		node:        doc.CurrentNode,
		transcript:  doc.Transcript,
		vars:        doc.Vars,
		finished:    doc.Finished,
		turns:       doc.Turns,
		lastOutcome: doc.LastOutcome,
	}
	if s.vars == nil {
		s.vars = make(map[string]any)
	}
	return s, nil
}
