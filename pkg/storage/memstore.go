package storage

import (
	"sort"
	"sync"
)

var (
	_ Store = (*MemStore)(nil)
)

// MemStore is an in-process Store for tests.
type MemStore struct {
	mu      sync.RWMutex
	entries map[uint64][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{
		entries: make(map[uint64][]byte),
	}
}

func (m *MemStore) Put(height uint64, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	m.entries[height] = v

	return nil
}

func (m *MemStore) Get(height uint64) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.entries[height]
	if !ok {
		return nil, ErrNotFound
	}

	return cloneValue(v), nil
}

// cloneValue detaches a returned value from the backing map, matching
// Pebble's copy-on-read semantics.
func cloneValue(v []byte) []byte {
	out := make([]byte, len(v))
	copy(out, v)

	return out
}

func (m *MemStore) Height() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.entries)) - 1, nil
}

func (m *MemStore) keysInOrder() []uint64 {
	keys := make([]uint64, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return keys
}

func (m *MemStore) ScanFirst(pred func(value []byte) bool) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, k := range m.keysInOrder() {
		if pred(m.entries[k]) {
			return cloneValue(m.entries[k]), nil
		}
	}

	return nil, ErrNotFound
}

func (m *MemStore) ScanAll(pred func(value []byte) bool) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := [][]byte{}
	for _, k := range m.keysInOrder() {
		if pred(m.entries[k]) {
			matches = append(matches, cloneValue(m.entries[k]))
		}
	}

	return matches, nil
}

func (m *MemStore) Close() error {
	return nil
}
