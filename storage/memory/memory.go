package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/davidvella/fortio/storage"
)

// Storage keeps snapshots in memory.
type Storage struct {
	mu        sync.RWMutex
	snapshots map[string]storage.Snapshot
}

func NewStorage() *Storage {
	return &Storage{
		snapshots: make(map[string]storage.Snapshot),
	}
}

func (m *Storage) Save(_ context.Context, snap storage.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap.Entries = slices.Clone(snap.Entries)
	m.snapshots[snap.Path] = snap
	return nil
}

func (m *Storage) Load(_ context.Context, path string) (storage.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, ok := m.snapshots[path]
	if !ok {
		return storage.Snapshot{}, storage.ErrNotFound
	}
	snap.Entries = slices.Clone(snap.Entries)
	return snap, nil
}

func (m *Storage) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.snapshots, path)
	return nil
}

func (m *Storage) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.snapshots))
	for path := range m.snapshots {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

func (m *Storage) Close() error {
	return nil
}
