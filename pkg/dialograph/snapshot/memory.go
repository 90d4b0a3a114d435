package snapshot

import (
	"sync"
	"time"
)

// MemoryStore is an in-memory snapshot store for testing.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]storedSnapshot // conversationID -> snapshots ordered by sequence
	closed bool
}

// storedSnapshot holds snapshot data with metadata for List().
type storedSnapshot struct {
	data      []byte
	nodeID    string
	sequence  int
	timestamp time.Time
}

// NewMemoryStore creates a new in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]storedSnapshot),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(conversationID, nodeID string, data []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrStoreClosed
	}

	// Next sequence follows the highest existing one
	snaps := m.data[conversationID]
	seq := 1
	if len(snaps) > 0 {
		seq = snaps[len(snaps)-1].sequence + 1
	}

	// Copy data to avoid retaining caller's slice
	stored := make([]byte, len(data))
	copy(stored, data)

	m.data[conversationID] = append(snaps, storedSnapshot{
		data:      stored,
		nodeID:    nodeID,
		sequence:  seq,
		timestamp: time.Now().UTC(),
	})

	return seq, nil
}

// Load implements Store.
func (m *MemoryStore) Load(conversationID string, sequence int) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	for _, snap := range m.data[conversationID] {
		if snap.sequence == sequence {
			// Return a copy to prevent modification
			result := make([]byte, len(snap.data))
			copy(result, snap.data)
			return result, nil
		}
	}
	return nil, ErrNotFound
}

// Latest implements Store.
func (m *MemoryStore) Latest(conversationID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	snaps := m.data[conversationID]
	if len(snaps) == 0 {
		return nil, ErrNotFound
	}

	last := snaps[len(snaps)-1]
	result := make([]byte, len(last.data))
	copy(result, last.data)
	return result, nil
}

// List implements Store.
func (m *MemoryStore) List(conversationID string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	snaps, ok := m.data[conversationID]
	if !ok {
		return nil, nil
	}

	// Snapshots are stored in sequence order
	infos := make([]Info, 0, len(snaps))
	for _, snap := range snaps {
		infos = append(infos, Info{
			ConversationID: conversationID,
			NodeID:         snap.nodeID,
			Sequence:       snap.sequence,
			Timestamp:      snap.timestamp,
			Size:           int64(len(snap.data)),
		})
	}

	return infos, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(conversationID string, sequence int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	snaps := m.data[conversationID]
	for i, snap := range snaps {
		if snap.sequence == sequence {
			m.data[conversationID] = append(snaps[:i], snaps[i+1:]...)
			break
		}
	}
	return nil
}

// DeleteConversation implements Store.
func (m *MemoryStore) DeleteConversation(conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.data, conversationID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}

// Len returns the total number of snapshots across all conversations.
// Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, snaps := range m.data {
		count += len(snaps)
	}
	return count
}
