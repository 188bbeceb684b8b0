// internal/storage/event/interface.go
package event

import (
	"context"
	"time"

	"github.com/catalystlab/catalyst/internal/core"
)

// Store defines the interface for loading historical events.
type Store interface {
	// Load retrieves events matching the filter, ordered by date ascending.
	Load(ctx context.Context, filter Filter) ([]core.Event, error)

	// Count returns the number of events matching the filter.
	Count(ctx context.Context, filter Filter) (int, error)
}

// Filter defines criteria for loading events. Empty slices mean
// "no restriction"; MinScore matches the ML-adjusted score when
// present, else the base impact score.
type Filter struct {
	From     time.Time
	To       time.Time
	Tickers  []string
	Sectors  []string
	MinScore *float64
}

// Matches reports whether an event passes the filter. Shared by the
// in-memory store and by tests building expected sets.
func (f Filter) Matches(ev core.Event) bool {
	if !f.From.IsZero() && ev.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && ev.Date.After(f.To) {
		return false
	}
	if len(f.Tickers) > 0 && !contains(f.Tickers, ev.Ticker) {
		return false
	}
	if len(f.Sectors) > 0 && !contains(f.Sectors, ev.Sector) {
		return false
	}
	if f.MinScore != nil && ev.Score() < *f.MinScore {
		return false
	}
	return true
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
