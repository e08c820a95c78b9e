package companionsdk

import "sync"

// ──────────────────────────────────────────────
// State storage
// ──────────────────────────────────────────────

// StateStore is the pluggable persistence backend for companion state
// blobs, keyed by user id.
type StateStore interface {
	// Load returns the stored blob, or (nil, nil) for an unknown user.
	Load(userID string) ([]byte, error)
	// Save overwrites the stored blob for a user.
	Save(userID string, blob []byte) error
	// Delete removes a user's state.
	Delete(userID string) error
	// ListUsers returns all user ids with stored state.
	ListUsers() ([]string, error)
}

// InMemoryStateStore is a thread-safe in-memory StateStore for development
// and tests. Data is lost on restart.
type InMemoryStateStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewInMemoryStateStore creates a new in-memory store.
func NewInMemoryStateStore() *InMemoryStateStore {
	return &InMemoryStateStore{blobs: make(map[string][]byte)}
}

func (s *InMemoryStateStore) Load(userID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[userID]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}

func (s *InMemoryStateStore) Save(userID string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(blob))
	copy(stored, blob)
	s.blobs[userID] = stored
	return nil
}

func (s *InMemoryStateStore) Delete(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, userID)
	return nil
}

func (s *InMemoryStateStore) ListUsers() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]string, 0, len(s.blobs))
	for id := range s.blobs {
		users = append(users, id)
	}
	return users, nil
}
