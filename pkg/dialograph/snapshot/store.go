// Package snapshot provides persistent conversation state storage for
// resuming conversations across process restarts.
package snapshot

import (
	"errors"
	"time"
)

// Store persists conversation snapshots.
// Implementations must be safe for concurrent use.
//
// Snapshots are append-only: each Save adds a new entry with the next
// sequence number for the conversation. Nodes can be visited more than
// once over a conversation's life, so entries are keyed by sequence
// rather than node.
type Store interface {
	// Save appends a snapshot for a conversation taken at the given node.
	// Returns the sequence number assigned to the snapshot.
	Save(conversationID, nodeID string, data []byte) (int, error)

	// Load retrieves a snapshot by sequence.
	// Returns ErrNotFound if the snapshot doesn't exist.
	Load(conversationID string, sequence int) ([]byte, error)

	// Latest retrieves the most recent snapshot for a conversation.
	// Returns ErrNotFound if the conversation has no snapshots.
	Latest(conversationID string) ([]byte, error)

	// List returns all snapshots for a conversation, ordered by sequence.
	// Returns empty slice (not error) if the conversation has no snapshots.
	List(conversationID string) ([]Info, error)

	// Delete removes a specific snapshot.
	// Returns nil if the snapshot doesn't exist.
	Delete(conversationID string, sequence int) error

	// DeleteConversation removes all snapshots for a conversation.
	// Returns nil if the conversation has no snapshots.
	DeleteConversation(conversationID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info provides metadata without loading full state.
type Info struct {
	ConversationID string
	NodeID         string
	Sequence       int
	Timestamp      time.Time
	Size           int64
}

// Sentinel errors for snapshot operations.
var (
	// ErrNotFound indicates a snapshot doesn't exist.
	ErrNotFound = errors.New("snapshot not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("snapshot store closed")
)
