// Package asynchook moves hook delivery off the cache's hot paths.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    HitEvery:  10, // sample logs: ~every 10th hit
//	    MissEvery: 1,  // log every miss
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := pagecache.New[string](pagecache.Options[string]{
//	    Store:   st,
//	    Fetcher: fetcher,
//	    Codec:   codec.String{},
//	    Hooks:   hooks, // or `raw` if you don't want async
//	})
//
// Events are dropped when the queue is full; hook delivery never blocks a
// GetPage call.
package asynchook

import (
	"sync"
	"time"

	"github.com/unkn0wn-root/pagecache"
)

type Hooks struct {
	inner pagecache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ pagecache.Hooks = (*Hooks)(nil)

func New(inner pagecache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) PageHit(url string, age time.Duration) {
	h.try(func() { h.inner.PageHit(url, age) })
}
func (h *Hooks) PageMiss(url string)       { h.try(func() { h.inner.PageMiss(url) }) }
func (h *Hooks) FetchCoalesced(url string) { h.try(func() { h.inner.FetchCoalesced(url) }) }
func (h *Hooks) FetchFailed(url string, err error) {
	h.try(func() { h.inner.FetchFailed(url, err) })
}
func (h *Hooks) SelfHeal(k, reason string) { h.try(func() { h.inner.SelfHeal(k, reason) }) }
