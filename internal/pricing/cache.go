package pricing

import (
	"context"
	"time"
)

type cachedPrice struct {
	price float64
	err   error
}

// Cache memoizes lookups against an underlying Source for the
// lifetime of one backtest run. Misses are cached too, so an
// unavailable price costs one source call per run, not one per use.
// A Cache is owned by a single run and is not safe for concurrent
// use; parallel backtests each get their own.
type Cache struct {
	source  Source
	entries map[string]cachedPrice
}

// NewCache wraps a source with a fresh per-run cache.
func NewCache(source Source) *Cache {
	return &Cache{
		source:  source,
		entries: make(map[string]cachedPrice),
	}
}

// GetClose implements Source.
func (c *Cache) GetClose(ctx context.Context, ticker string, onOrAfter time.Time) (float64, error) {
	key := ticker + "@" + onOrAfter.Format("2006-01-02")
	if hit, ok := c.entries[key]; ok {
		return hit.price, hit.err
	}
	price, err := c.source.GetClose(ctx, ticker, onOrAfter)
	c.entries[key] = cachedPrice{price: price, err: err}
	return price, err
}

// Len reports the number of cached lookups.
func (c *Cache) Len() int {
	return len(c.entries)
}
