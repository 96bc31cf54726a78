package repository

import (
	"context"
	"sync"
)

// MemoryStore keeps snapshots in process memory. Used for development and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string]Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string]Snapshot)}
}

func (m *MemoryStore) Load(_ context.Context, slot string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, ok := m.slots[slot]
	if !ok {
		return nil, ErrNoRecord
	}
	snap.Data = append([]byte(nil), snap.Data...)
	return &snap, nil
}

func (m *MemoryStore) Save(_ context.Context, slot string, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap.Data = append([]byte(nil), snap.Data...)
	m.slots[slot] = snap
	return nil
}
