// Package strategies persists user-defined strategies as the JSON
// blobs the web layer writes. Deserialization into a runnable
// definition happens in the strategy package; malformed blobs degrade
// to permissive defaults instead of failing the load.
package strategies

import (
	"context"
	"encoding/json"
)

// Stored is a persisted user strategy in its wire form.
type Stored struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	EntryConditions   json.RawMessage `json:"entry_conditions,omitempty"`
	ExitConditions    json.RawMessage `json:"exit_conditions,omitempty"`
	PositionSizing    json.RawMessage `json:"position_sizing,omitempty"`
	Tickers           []string        `json:"tickers,omitempty"`
	Sectors           []string        `json:"sectors,omitempty"`
	MinScoreThreshold *float64        `json:"min_score_threshold,omitempty"`
}

// Store defines the interface for stored-strategy lookup.
type Store interface {
	// LoadStrategy retrieves a stored strategy by ID.
	LoadStrategy(ctx context.Context, id string) (*Stored, error)
}
