package asynchook

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingHooks struct {
	hits, misses, failed, coalesced, heals atomic.Int64
}

func (h *countingHooks) PageHit(string, time.Duration) { h.hits.Add(1) }
func (h *countingHooks) PageMiss(string)               { h.misses.Add(1) }
func (h *countingHooks) FetchFailed(string, error)     { h.failed.Add(1) }
func (h *countingHooks) FetchCoalesced(string)         { h.coalesced.Add(1) }
func (h *countingHooks) SelfHeal(string, string)       { h.heals.Add(1) }

func TestDeliversAllEventsBeforeClose(t *testing.T) {
	inner := &countingHooks{}
	h := New(inner, 2, 64)

	for i := 0; i < 10; i++ {
		h.PageHit("u", time.Second)
		h.PageMiss("u")
	}
	h.FetchFailed("u", errors.New("x"))
	h.FetchCoalesced("u")
	h.SelfHeal("page:u", "corrupt")

	h.Close() // drains the queue

	if inner.hits.Load() != 10 || inner.misses.Load() != 10 {
		t.Fatalf("delivered hits=%d misses=%d, want 10/10", inner.hits.Load(), inner.misses.Load())
	}
	if inner.failed.Load() != 1 || inner.coalesced.Load() != 1 || inner.heals.Load() != 1 {
		t.Fatalf("delivered failed=%d coalesced=%d heals=%d, want 1/1/1",
			inner.failed.Load(), inner.coalesced.Load(), inner.heals.Load())
	}
}

func TestDropsWhenQueueFull(t *testing.T) {
	block := make(chan struct{})
	inner := &countingHooks{}
	h := New(blockingHooks{inner: inner, block: block}, 1, 1)

	// one event occupies the worker, one fills the queue, the rest drop
	for i := 0; i < 50; i++ {
		h.PageMiss("u")
	}
	close(block)
	h.Close()

	if got := inner.misses.Load(); got >= 50 {
		t.Fatalf("delivered %d events through a full queue, expected drops", got)
	}
	if got := inner.misses.Load(); got == 0 {
		t.Fatalf("no events delivered at all")
	}
}

func TestCloseIdempotent(t *testing.T) {
	h := New(&countingHooks{}, 1, 8)
	h.Close()
	h.Close() // must not panic
}

type blockingHooks struct {
	inner *countingHooks
	block chan struct{}
}

func (b blockingHooks) PageMiss(url string) {
	<-b.block
	b.inner.PageMiss(url)
}
func (b blockingHooks) PageHit(u string, d time.Duration) { b.inner.PageHit(u, d) }
func (b blockingHooks) FetchFailed(u string, err error)   { b.inner.FetchFailed(u, err) }
func (b blockingHooks) FetchCoalesced(u string)           { b.inner.FetchCoalesced(u) }
func (b blockingHooks) SelfHeal(k, r string)              { b.inner.SelfHeal(k, r) }
