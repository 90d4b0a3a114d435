package snapshot

import (
	"encoding/json"
	"time"
)

// Version is the current snapshot format version.
// Increment when making breaking changes to snapshot structure.
const Version = 1

// Snapshot is the persisted record of conversation state.
// It contains all information needed to resume a conversation.
type Snapshot struct {
	// Metadata
	Version        int       `json:"version"`
	ConversationID string    `json:"conversation_id"`
	NodeID         string    `json:"node_id"`
	Turn           int       `json:"turn"`
	Timestamp      time.Time `json:"timestamp"`

	// Conversation state
	State json.RawMessage `json:"state"`

	// Turn context
	LastOutcome string `json:"last_outcome,omitempty"`
	Finished    bool   `json:"finished,omitempty"`
}

// Marshal serializes a snapshot to JSON.
func (s *Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// Unmarshal deserializes a snapshot from JSON.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// New creates a new snapshot with the given parameters.
// State must already be JSON-serialized.
func New(conversationID, nodeID string, turn int, state []byte) *Snapshot {
	return &Snapshot{
		Version:        Version,
		ConversationID: conversationID,
		NodeID:         nodeID,
		Turn:           turn,
		Timestamp:      time.Now().UTC(),
		State:          state,
	}
}

// WithLastOutcome sets the outcome that ended the snapshotted turn.
func (s *Snapshot) WithLastOutcome(outcome string) *Snapshot {
	s.LastOutcome = outcome
	return s
}

// WithFinished marks the conversation as terminal.
func (s *Snapshot) WithFinished(finished bool) *Snapshot {
	s.Finished = finished
	return s
}
