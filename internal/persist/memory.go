package persist

import (
	"encoding/json"
	"sync"
)

// MemStore implements Store in memory. It is used for testing and as
// the fallback when the durable store cannot be opened (persistence
// is best-effort; the session must stay usable without it).
type MemStore struct {
	mu     sync.RWMutex
	values map[string]json.RawMessage
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]json.RawMessage)}
}

// Ensure MemStore implements Store.
var _ Store = (*MemStore)(nil)

// Get unmarshals the value for key into dest.
func (m *MemStore) Get(key string, dest any) (bool, error) {
	m.mu.RLock()
	raw, ok := m.values[Namespace+key]
	m.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set marshals value and stores it under key.
func (m *MemStore) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[Namespace+key] = raw
	return nil
}

// Delete removes a key.
func (m *MemStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, Namespace+key)
	return nil
}

// Close is a no-op.
func (m *MemStore) Close() error {
	return nil
}
