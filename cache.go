package pagecache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	c "github.com/unkn0wn-root/pagecache/codec"
	"github.com/unkn0wn-root/pagecache/fetch"
	"github.com/unkn0wn-root/pagecache/internal/wire"
	st "github.com/unkn0wn-root/pagecache/store"
)

// Counter and page entries must never collide, so they live under disjoint
// key prefixes. The count: prefix is part of the storage contract; external
// tooling may read counters directly.
const (
	countPrefix = "count:"
	pagePrefix  = "page:"
)

type cache[V any] struct {
	store   st.Store
	fetcher fetch.Fetcher[V]
	codec   c.Codec[V]
	log     Logger
	hooks   Hooks

	defaultTTL    time.Duration
	cacheDisabled bool

	// nil unless CoalesceFetches is set
	flight *singleflight.Group
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("pagecache: store is required")
	}
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("pagecache: fetcher is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("pagecache: codec is required")
	}

	cc := &cache[V]{
		store:         opts.Store,
		fetcher:       opts.Fetcher,
		codec:         opts.Codec,
		cacheDisabled: opts.DisableCache,
	}

	// defaults
	cc.log = coalesce[Logger](opts.Logger, NopLogger{})
	cc.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	cc.defaultTTL = coalesce[time.Duration](opts.DefaultTTL, 10*time.Second)

	if opts.CoalesceFetches {
		cc.flight = new(singleflight.Group)
	}
	return cc, nil
}

func (cc *cache[V]) Close(ctx context.Context) error {
	if cc.store != nil {
		return cc.store.Close(ctx)
	}
	return nil
}

func (cc *cache[V]) GetPage(ctx context.Context, url string) (V, error) {
	return cc.getPage(ctx, url, cc.defaultTTL)
}

func (cc *cache[V]) GetPageTTL(ctx context.Context, url string, ttl time.Duration) (V, error) {
	if ttl <= 0 {
		ttl = cc.defaultTTL
	}
	return cc.getPage(ctx, url, ttl)
}

func (cc *cache[V]) getPage(ctx context.Context, url string, ttl time.Duration) (V, error) {
	var zero V

	// The access counter comes first, unconditionally: hits, misses and
	// failed fetches all count, and the increment is never rolled back.
	if _, err := cc.store.Incr(ctx, countKey(url)); err != nil {
		return zero, err
	}

	pk := pageKey(url)
	if !cc.cacheDisabled {
		v, ok, err := cc.lookup(ctx, url, pk)
		if err != nil {
			return zero, err
		}
		if ok {
			return v, nil
		}
	}

	cc.hooks.PageMiss(url)

	if cc.flight != nil {
		res, err, shared := cc.flight.Do(pk, func() (any, error) {
			return cc.fetchAndStore(ctx, url, pk, ttl)
		})
		if err != nil {
			return zero, err
		}
		if shared {
			cc.hooks.FetchCoalesced(url)
			cc.log.Debug("shared in-flight fetch", Fields{"url": url})
		}
		return res.(V), nil
	}
	return cc.fetchAndStore(ctx, url, pk, ttl)
}

// lookup reads and decodes the page entry at pk. Corrupt or undecodable
// entries are deleted and reported as a miss (self-heal).
func (cc *cache[V]) lookup(ctx context.Context, url, pk string) (V, bool, error) {
	var zero V
	raw, ok, err := cc.store.Get(ctx, pk)
	if err != nil || !ok {
		return zero, false, err
	}
	fetchedAt, payload, err := wire.DecodePage(raw)
	if err != nil {
		_ = cc.store.Del(ctx, pk) // self-heal foreign/corrupt writes
		cc.hooks.SelfHeal(pk, "corrupt")
		cc.log.Warn("corrupt page entry dropped", Fields{"url": url})
		return zero, false, nil
	}
	v, err := cc.codec.Decode(payload)
	if err != nil {
		_ = cc.store.Del(ctx, pk) // self-heal
		cc.hooks.SelfHeal(pk, "value_decode")
		cc.log.Warn("undecodable page entry dropped", Fields{"url": url, "err": err})
		return zero, false, nil
	}
	cc.hooks.PageHit(url, time.Since(fetchedAt))
	return v, true, nil
}

func (cc *cache[V]) fetchAndStore(ctx context.Context, url, pk string, ttl time.Duration) (V, error) {
	var zero V
	v, err := cc.fetcher.Fetch(ctx, url)
	if err != nil {
		// Nothing is written on a failed fetch; the counter increment stands.
		cc.hooks.FetchFailed(url, err)
		return zero, err
	}
	if cc.cacheDisabled {
		return v, nil
	}
	payload, err := cc.codec.Encode(v)
	if err != nil {
		return zero, fmt.Errorf("pagecache: encode page for %q: %w", url, err)
	}
	if err := cc.store.SetWithTTL(ctx, pk, wire.EncodePage(time.Now(), payload), ttl); err != nil {
		return zero, err
	}
	return v, nil
}

func (cc *cache[V]) GetCount(ctx context.Context, url string) (int64, error) {
	raw, ok, err := cc.store.Get(ctx, countKey(url))
	if err != nil {
		return 0, err
	}
	if !ok {
		// never accessed is not an error
		return 0, nil
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("pagecache: parse counter for %q: %w", url, err)
	}
	return n, nil
}

func (cc *cache[V]) Invalidate(ctx context.Context, url string) error {
	return cc.store.Del(ctx, pageKey(url))
}

func countKey(url string) string { return countPrefix + url }
func pageKey(url string) string  { return pagePrefix + url }
