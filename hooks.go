package pagecache

import "time"

// Hooks are lightweight callbacks for high-signal cache events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// A cached page was served. age is the time since the entry was written.
	PageHit(url string, age time.Duration)

	// No fresh cached page existed; a fetch is about to happen.
	PageMiss(url string)

	// The origin fetch failed. The error also propagates to the caller.
	FetchFailed(url string, err error)

	// This caller shared another caller's in-flight fetch
	// (only with Options.CoalesceFetches).
	FetchCoalesced(url string)

	// A page entry was deleted by the cache on read.
	// reason ∈ {"corrupt", "value_decode"}
	SelfHeal(storageKey, reason string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) PageHit(string, time.Duration) {}
func (NopHooks) PageMiss(string)               {}
func (NopHooks) FetchFailed(string, error)     {}
func (NopHooks) FetchCoalesced(string)         {}
func (NopHooks) SelfHeal(string, string)       {}
