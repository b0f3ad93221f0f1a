package kvstore

import (
	"sync"
)

// Memory is an in-process Store for tests and ephemeral runs.
// It counts writes and can be made to fail Set on demand, which is how the
// queue tests exercise persistence-failure paths and the no-write guarantee
// of an empty flush.
type Memory struct {
	mu     sync.Mutex
	data   map[string]string
	sets   int
	setErr error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get returns the value for key, with found=false on absence.
func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set writes value under key. When a failure has been injected via FailSets,
// the write is rejected and the previous value is left intact.
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.sets++
	return nil
}

// Delete removes key.
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// FailSets makes every subsequent Set return err. Pass nil to heal.
func (m *Memory) FailSets(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setErr = err
}

// SetCount returns the number of successful writes so far.
func (m *Memory) SetCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}
