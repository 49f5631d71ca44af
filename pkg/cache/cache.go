// Package cache provides the result cache behind the layout pipeline.
//
// Layout results are cached by a key derived from the document content and
// the layout options, so repeated requests for the same document skip the
// measure and place passes entirely.
//
// # Backends
//
//   - [FileCache] stores entries as JSON files under a directory (CLI use)
//   - [RedisCache] stores entries in Redis (server use)
//   - [NullCache] never stores anything (--no-cache, tests)
//
// # Keys
//
// A [Keyer] turns content hashes and options into cache keys. Wrap a keyer
// with [NewScopedKeyer] to isolate namespaces that share one backend.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values for cached entries.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is reported through the bool,
	// not the error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}
