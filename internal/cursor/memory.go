package cursor

import "sync"

// MemoryStore is a pure in-memory [Store] for environments without durable
// local storage (tests, ephemeral containers, callers that manage their own
// resumption state).
//
// A MemoryStore starts empty, so the first poll after construction always
// fetches the full feed.
type MemoryStore struct {
	mu      sync.RWMutex
	cursors map[string]string
}

// NewMemoryStore creates an empty in-memory [Store].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cursors: make(map[string]string),
	}
}

// Get returns the cursor stored under key.
func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cursors[key]
	return c, ok
}

// Set stores cursor under key, replacing any previous value.
func (m *MemoryStore) Set(key, cursor string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursors[key] = cursor
}

// Clear removes the given keys, or every entry when called with none.
func (m *MemoryStore) Clear(keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(keys) == 0 {
		m.cursors = make(map[string]string)
		return
	}
	for _, key := range keys {
		delete(m.cursors, key)
	}
}
