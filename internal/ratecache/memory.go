package ratecache

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore keeps snapshots in process memory. It is used in tests and
// when persistence is disabled.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string]Snapshot),
	}
}

// Load implements Store
func (m *MemoryStore) Load(_ context.Context, code string) (Snapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.snapshots[code]
	if !ok {
		return Snapshot{}, false, nil
	}
	return cloneSnapshot(s), true, nil
}

// Save implements Store
func (m *MemoryStore) Save(_ context.Context, code string, s Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshots[code] = cloneSnapshot(s)
	return nil
}

func cloneSnapshot(s Snapshot) Snapshot {
	return Snapshot{
		CapturedAt: s.CapturedAt,
		Rates:      maps.Clone(s.Rates),
	}
}
