// Package social exposes the social-sentiment signal source consumed
// by the backtest engine. The scanner pipeline that produces these
// readings lives outside this repository.
package social

import (
	"context"
	"sync"

	"github.com/catalystlab/catalyst/internal/core"
)

// Source looks up the social signal attached to an event.
// Implementations return core.ErrNoData when no reading exists;
// callers treat absence as a skippable gap, never a failure.
type Source interface {
	GetSignal(ctx context.Context, eventID string) (*core.SocialSignal, error)
}

// MemorySource is an in-memory social signal source for tests and
// pre-loaded datasets.
type MemorySource struct {
	mu      sync.RWMutex
	signals map[string]core.SocialSignal
}

// NewMemorySource creates an empty in-memory source.
func NewMemorySource() *MemorySource {
	return &MemorySource{signals: make(map[string]core.SocialSignal)}
}

// Put stores a signal for an event.
func (m *MemorySource) Put(eventID string, sig core.SocialSignal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signals[eventID] = sig
}

// GetSignal returns the signal for an event.
func (m *MemorySource) GetSignal(ctx context.Context, eventID string) (*core.SocialSignal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sig, ok := m.signals[eventID]
	if !ok {
		return nil, core.ErrNoData
	}
	out := sig
	return &out, nil
}
