package pricing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/catalystlab/catalyst/internal/core"
)

// Bar is one dated close price.
type Bar struct {
	Date  time.Time
	Close float64
}

// MemorySource is an in-memory price source, used in tests and for
// backtests over pre-fetched price files.
type MemorySource struct {
	mu   sync.RWMutex
	bars map[string][]Bar // ticker -> bars sorted by date
}

// NewMemorySource creates an empty in-memory source.
func NewMemorySource() *MemorySource {
	return &MemorySource{bars: make(map[string][]Bar)}
}

// Add inserts a close price for a ticker, keeping bars date-sorted.
func (m *MemorySource) Add(ticker string, date time.Time, close float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bars := append(m.bars[ticker], Bar{Date: date, Close: close})
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	m.bars[ticker] = bars
}

// GetClose returns the first close on or after the date.
func (m *MemorySource) GetClose(ctx context.Context, ticker string, onOrAfter time.Time) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, bar := range m.bars[ticker] {
		if !bar.Date.Before(onOrAfter) {
			return bar.Close, nil
		}
	}
	return 0, core.ErrNoData
}
