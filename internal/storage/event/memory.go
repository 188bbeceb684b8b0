// internal/storage/event/memory.go
package event

import (
	"context"
	"sort"
	"sync"

	"github.com/catalystlab/catalyst/internal/core"
)

// MemoryStore is an in-memory event store.
type MemoryStore struct {
	events []core.Event
	mu     sync.RWMutex
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Add appends events to the store.
func (m *MemoryStore) Add(events ...core.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
}

// Load returns events matching the filter ordered by date ascending.
func (m *MemoryStore) Load(ctx context.Context, filter Filter) ([]core.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []core.Event
	for _, ev := range m.events {
		if filter.Matches(ev) {
			result = append(result, ev)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// Count returns the count of matching events.
func (m *MemoryStore) Count(ctx context.Context, filter Filter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, ev := range m.events {
		if filter.Matches(ev) {
			count++
		}
	}
	return count, nil
}
