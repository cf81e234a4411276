package broker

import (
	"context"
	"sync"
)

// Memory is an in-process map-backed broker.
//
// It is the reference implementation of the contract for tests and demos:
// no durability, but full handle accounting and concurrency safety.
type Memory struct {
	handles

	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory broker.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Read implements Broker. The returned value is a copy; callers may retain
// or wipe it without affecting the store.
func (m *Memory) Read(ctx context.Context, path string) ([]byte, bool, error) {
	release := m.acquire()
	defer release()

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[NormalizePath(path)]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

// Write implements Broker. The value is copied on entry.
func (m *Memory) Write(ctx context.Context, path string, value []byte) error {
	release := m.acquire()
	defer release()

	if err := ctx.Err(); err != nil {
		return err
	}

	cp := make([]byte, len(value))
	copy(cp, value)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[NormalizePath(path)] = cp
	return nil
}

// Delete implements Broker.
func (m *Memory) Delete(ctx context.Context, path string) error {
	release := m.acquire()
	defer release()

	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, NormalizePath(path))
	return nil
}

// Close implements Broker. The map is dropped so later reads see an empty
// store rather than stale values.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
	return nil
}

// Len returns the number of stored paths. Used for testing.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
