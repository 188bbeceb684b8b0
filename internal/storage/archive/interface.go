// Package archive provides cold storage for finished backtest
// results. Completed result JSON is written once under a run-scoped
// key and read back for later inspection or reporting.
package archive

import "context"

// Storage defines the interface for archive backends.
type Storage interface {
	// Put stores a blob at the given key.
	Put(ctx context.Context, key string, data []byte) error

	// Get retrieves the blob at the given key.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns all keys under the prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Remove deletes the blob at the given key.
	Remove(ctx context.Context, key string) error

	// Exists checks whether a blob exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)
}

// ResultKey is the canonical archive key for a run's result document.
func ResultKey(runID string) string {
	return "runs/" + runID + ".json"
}
