// Package cache stores serialized layouts and rendered artifacts.
//
// Layout computation is deterministic, so a layout is fully identified by
// the diagram hash and the resolved configuration. The pipeline runner keys
// cache entries that way through a [Keyer] and stores the layout JSON in a
// [Cache] backend:
//
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per key, used by the CLI
//   - [RedisCache]: shared cache for the HTTP server
//
// Backends never interpret the bytes they store.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiration.
//
// Get reports a miss with hit == false and a nil error. Errors are reserved
// for backend failures; callers treat them like a miss.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs by entry kind.
const (
	// TTLLayout applies to computed layouts. Layouts never go stale for a
	// given key, so the TTL only bounds disk and memory use.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact applies to rendered DOT and SVG outputs.
	TTLArtifact = 7 * 24 * time.Hour
)
