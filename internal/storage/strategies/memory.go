package strategies

import (
	"context"
	"sync"

	"github.com/catalystlab/catalyst/internal/core"
)

// MemoryStore is an in-memory stored-strategy source.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]Stored
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]Stored)}
}

// Put stores a strategy.
func (m *MemoryStore) Put(s Stored) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[s.ID] = s
}

// LoadStrategy retrieves a stored strategy by ID.
func (m *MemoryStore) LoadStrategy(ctx context.Context, id string) (*Stored, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.byID[id]
	if !ok {
		return nil, core.ErrStrategyNotFound
	}
	out := s
	return &out, nil
}
