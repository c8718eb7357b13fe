package store

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrNotFound is returned by ContentStore.Get when the key is absent.
var ErrNotFound = errors.New("store: key not found")

// ContentStore is the string-keyed, string-valued persistent store used for
// exclusion records, resolution caches and review items. Values are
// JSON-serialized by callers.
type ContentStore interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every key starting with prefix and returns
	// how many were removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// MemoryContentStore is a process-local ContentStore, used in tests and
// when no persistent backend is configured.
type MemoryContentStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryContentStore creates an empty in-memory store.
func NewMemoryContentStore() *MemoryContentStore {
	return &MemoryContentStore{data: make(map[string]string)}
}

func (m *MemoryContentStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryContentStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryContentStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryContentStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored keys.
func (m *MemoryContentStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
