package run

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/catalystlab/catalyst/internal/core"
)

// MemoryStore is an in-memory run store.
type MemoryStore struct {
	runs   map[string]*Record
	trades map[string][]TradeResult
	mu     sync.RWMutex
}

// NewMemoryStore creates a new in-memory run store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:   make(map[string]*Record),
		trades: make(map[string][]TradeResult),
	}
}

// CreateRun persists a new run and returns its ID.
func (m *MemoryStore) CreateRun(ctx context.Context, rec Record) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = StatusRunning
	}
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	stored := rec
	m.runs[rec.ID] = &stored
	return rec.ID, nil
}

// SaveTradeResult appends one trade row.
func (m *MemoryStore) SaveTradeResult(ctx context.Context, runID string, tr TradeResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.runs[runID]; !ok {
		return core.ErrRunNotFound
	}
	tr.RunID = runID
	m.trades[runID] = append(m.trades[runID], tr)
	return nil
}

// UpdateRun transitions the run status and writes summary fields.
func (m *MemoryStore) UpdateRun(ctx context.Context, runID string, status Status, errMsg string, summary *Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.runs[runID]
	if !ok {
		return core.ErrRunNotFound
	}
	rec.Status = status
	rec.Error = errMsg
	if summary != nil {
		rec.FinalEquity = summary.FinalEquity
		rec.TotalReturnPct = summary.TotalReturnPct
		rec.TotalTrades = summary.TotalTrades
		rec.WinRatePct = summary.WinRatePct
		rec.MaxDrawdownPct = summary.MaxDrawdownPct
		rec.SharpeRatio = summary.SharpeRatio
	}
	rec.UpdatedAt = time.Now()
	return nil
}

// GetRun retrieves a run by ID.
func (m *MemoryStore) GetRun(ctx context.Context, runID string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.runs[runID]
	if !ok {
		return nil, core.ErrRunNotFound
	}
	out := *rec
	return &out, nil
}

// ListTradeResults returns trade rows ordered by trade ID.
func (m *MemoryStore) ListTradeResults(ctx context.Context, runID string) ([]TradeResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := append([]TradeResult(nil), m.trades[runID]...)
	sort.Slice(rows, func(i, j int) bool { return rows[i].TradeID < rows[j].TradeID })
	return rows, nil
}
