// Package store defines the key-value abstraction used by pagecache.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte previously passed to SetWithTTL for a key (no prepended or
// appended metadata, no re-encoding, no mutation). Counters written by Incr
// are stored as their decimal ASCII representation so Get on a counter key
// returns parseable digits.
//
// Important: the keyspaces "count:" and "page:" are owned by pagecache.
// External code MUST NOT write values under these prefixes. Foreign writes
// under "page:" may be treated as corruption by entry-format validation and
// deleted.
package store

import (
	"context"
	"errors"
	"time"
)

// Errors every implementation wraps its transport failures in, so callers
// can classify with errors.Is regardless of backend.
var (
	// ErrUnavailable reports that the backend could not be reached.
	ErrUnavailable = errors.New("store: backend unavailable")
	// ErrTimeout reports that an operation exceeded its deadline.
	ErrTimeout = errors.New("store: operation timed out")
)

// Store is a minimal byte store with TTLs and an atomic counter.
// Must be safe for concurrent use.
type Store interface {
	// Incr atomically increments the integer at key, creating it at zero
	// when absent, and returns the new value. No lost updates under
	// concurrent callers.
	Incr(ctx context.Context, key string) (int64, error)

	// Get returns (value, true, nil) on hit; (nil, false, nil) when the key
	// is missing or expired. If an IO/remote error happens, return
	// (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// SetWithTTL stores value at key, overwriting any prior value, expiring
	// ttl from now. After expiry Get must report a miss: no read ever
	// returns an entry past its deadline. ttl <= 0 means no expiry.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Del removes a key (best-effort; deleting a missing key is not an error).
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}
