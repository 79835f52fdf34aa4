package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/cockroachdb/errors"
)

// MemoryStore is an in-process Store for tests and single-process
// deployments. Attributes round-trip through JSON so values behave the same
// as they would coming back from an external store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, sessionID string) (map[string]any, error) {
	s.mu.RLock()
	raw, ok := s.data[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var attrs map[string]any
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return nil, errors.Wrap(err, "failed to decode session attributes")
	}
	return attrs, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, sessionID string, attrs map[string]any) error {
	raw, err := json.Marshal(attrs)
	if err != nil {
		return errors.Wrap(err, "failed to encode session attributes")
	}
	s.mu.Lock()
	s.data[sessionID] = raw
	s.mu.Unlock()
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.data, sessionID)
	s.mu.Unlock()
	return nil
}
