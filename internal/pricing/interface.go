// Package pricing resolves historical close prices for the backtest
// engine. Sources return the first close on or after a requested
// date; a per-run cache keeps each (ticker, date) lookup to one
// source call.
package pricing

import (
	"context"
	"time"
)

// Source provides historical close prices. Implementations return
// core.ErrNoData when no price exists on or after the requested date.
type Source interface {
	// GetClose returns the first close price on or after the date.
	GetClose(ctx context.Context, ticker string, onOrAfter time.Time) (float64, error)
}
