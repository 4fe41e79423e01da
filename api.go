package pagecache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/pagecache/codec"
	"github.com/unkn0wn-root/pagecache/fetch"
	st "github.com/unkn0wn-root/pagecache/store"
)

// Cache is the high-level page cache API. V is the caller's page type;
// serialization is handled by a pluggable Codec[V].
type Cache[V any] interface {
	// GetPage returns the page at url, from cache when a fresh entry exists,
	// otherwise via the fetcher (storing the result with the default TTL).
	// The per-URL access counter is incremented on every call, including
	// cache hits and failed fetches.
	GetPage(ctx context.Context, url string) (V, error)

	// GetPageTTL is GetPage with a per-call TTL for the entry written on a
	// miss. Non-positive ttl falls back to the default TTL.
	GetPageTTL(ctx context.Context, url string, ttl time.Duration) (V, error)

	// GetCount returns how many times url has been requested through
	// GetPage. A URL that was never requested yields 0, not an error.
	GetCount(ctx context.Context, url string) (int64, error)

	// Invalidate drops the cached page for url. The access counter is
	// untouched.
	Invalidate(ctx context.Context, url string) error

	// Close releases the underlying store.
	Close(ctx context.Context) error
}

// Options tune the behavior of the page cache.
// Store, Fetcher and Codec are required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Store   st.Store
	Fetcher fetch.Fetcher[V]
	Codec   c.Codec[V]

	Logger     Logger        // if nil, NopLogger is used
	Hooks      Hooks         // if nil, NopHooks is used
	DefaultTTL time.Duration // entry lifetime written on a miss; 0 => 10s

	// CoalesceFetches shares one in-flight fetch between concurrent misses
	// for the same URL. Counter increments stay per-caller. The shared fetch
	// runs on the first caller's context: if that caller is cancelled, all
	// sharers see the error. Default off: concurrent misses fetch redundantly.
	CoalesceFetches bool

	// DisableCache bypasses the content cache (every call fetches).
	// Accesses are still counted.
	DisableCache bool
}

// New builds a Cache from opts.
func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
