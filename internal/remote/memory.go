package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Memory implements Store in memory. It is used as a test double for the
// sync engine and as a stand-in when no remote is configured.
//
// Write counters let tests assert that a second reconciliation pass
// performs no additional network writes.
type Memory struct {
	mu   sync.Mutex
	data map[string]json.RawMessage // flattened: "users/u1/history/abc" -> record

	// Fail, when set, makes every operation return ErrOffline.
	Fail bool

	writes int
	reads  int
}

// NewMemory creates an empty in-memory remote store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]json.RawMessage)}
}

// GetTree implements Store.GetTree.
func (m *Memory) GetTree(ctx context.Context, path string) (map[string]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return nil, fmt.Errorf("%w: simulated outage", ErrOffline)
	}
	m.reads++

	prefix := strings.Trim(path, "/") + "/"
	out := make(map[string]json.RawMessage)
	for key, raw := range m.data {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		child := strings.TrimPrefix(key, prefix)
		if strings.Contains(child, "/") {
			// Deeper descendant; only direct children are collection records.
			continue
		}
		out[child] = raw
	}
	return out, nil
}

// UpdateTree implements Store.UpdateTree.
func (m *Memory) UpdateTree(ctx context.Context, path string, values map[string]interface{}) error {
	if len(values) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return fmt.Errorf("%w: simulated outage", ErrOffline)
	}
	m.writes++

	prefix := strings.Trim(path, "/")
	for key, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", key, err)
		}
		m.data[prefix+"/"+key] = raw
	}
	return nil
}

// Put implements Store.Put.
func (m *Memory) Put(ctx context.Context, path string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return fmt.Errorf("%w: simulated outage", ErrOffline)
	}
	m.writes++

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	m.data[strings.Trim(path, "/")] = raw
	return nil
}

// Delete implements Store.Delete.
func (m *Memory) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return fmt.Errorf("%w: simulated outage", ErrOffline)
	}
	m.writes++

	prefix := strings.Trim(path, "/")
	delete(m.data, prefix)
	// Also remove any subtree rooted at the path.
	for key := range m.data {
		if strings.HasPrefix(key, prefix+"/") {
			delete(m.data, key)
		}
	}
	return nil
}

// WriteCount returns the number of write operations performed.
func (m *Memory) WriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Has reports whether a record exists at the flattened path.
func (m *Memory) Has(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[strings.Trim(path, "/")]
	return ok
}

// Get returns the raw record at the flattened path.
func (m *Memory) Get(path string) (json.RawMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[strings.Trim(path, "/")]
	return raw, ok
}
