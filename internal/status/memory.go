package status

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps statuses in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (m *MemoryStore) SetIfAbsent(_ context.Context, ref string, value Status) (bool, error) {
	if err := checkValue("set if absent", value); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.entries[ref]; ok && !existing.Status.Reclaimable() {
		return false, nil
	}
	m.entries[ref] = Entry{Reference: ref, Status: value, UpdatedAt: time.Now().UTC()}
	return true, nil
}

func (m *MemoryStore) Get(_ context.Context, ref string) (Status, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[ref]
	return entry.Status, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, ref string, value Status) error {
	if err := checkValue("set", value); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[ref] = Entry{Reference: ref, Status: value, UpdatedAt: time.Now().UTC()}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, ref)
	return nil
}

func (m *MemoryStore) Exists(_ context.Context, ref string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[ref]
	return ok, nil
}

// Len returns the number of tracked references.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
