package storage

import (
	"context"
)

// Storage is the read-only view of the counter store: pattern-based key
// enumeration plus hash retrieval. The rate limiter that writes the counters
// is a separate system; nothing on this side ever mutates the keyspace.
type Storage interface {
	// ScanKeys returns every key matching the glob pattern. Implementations
	// must iterate incrementally rather than issuing a blocking full listing.
	ScanKeys(ctx context.Context, pattern string) ([]string, error)

	// GetCounters returns all field->value pairs of the hash stored at key.
	GetCounters(ctx context.Context, key string) (map[string]string, error)
}
