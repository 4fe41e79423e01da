// Package sloghooks sinks pagecache hook events into log/slog, with sampling
// for the hot hit/miss events and URL redaction for logs that must not leak
// full request targets.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/pagecache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	HitEvery  uint64
	MissEvery uint64
	// Optional URL redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr  atomic.Uint64
	missCtr atomic.Uint64
}

var _ pagecache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(u string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(u)
	}
	sum := sha256.Sum256([]byte(u))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) PageHit(url string, age time.Duration) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("pagecache.page_hit",
		"url", h.redact(url),
		"age", age)
}

func (h *Hooks) PageMiss(url string) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	h.l.Debug("pagecache.page_miss",
		"url", h.redact(url))
}

func (h *Hooks) FetchFailed(url string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("pagecache.fetch_failed",
		"url", h.redact(url),
		"err", err)
}

func (h *Hooks) FetchCoalesced(url string) {
	if h.l == nil {
		return
	}
	h.l.Debug("pagecache.fetch_coalesced",
		"url", h.redact(url))
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil {
		return
	}
	h.l.Warn("pagecache.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}
