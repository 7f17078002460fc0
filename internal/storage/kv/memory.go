package kv

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Memory is an in-process Store used in tests and single-node development.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get implements Store. TTLs are ignored: entries live for the process.
func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set implements Store.
func (m *Memory) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Incr implements Store.
func (m *Memory) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(m.values[key], 10, 64)
	n++
	m.values[key] = strconv.FormatInt(n, 10)
	return n, nil
}

// Update implements Store. The whole read-modify-write runs under the lock,
// so no retry is needed.
func (m *Memory) Update(ctx context.Context, key string, fn func(current string, exists bool) (string, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, exists := m.values[key]
	next, err := fn(current, exists)
	if err != nil {
		return err
	}
	m.values[key] = next
	return nil
}
