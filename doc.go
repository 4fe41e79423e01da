// Package pagecache implements a request-counting web fetch cache over a
// pluggable key-value store. Every GetPage call increments a per-URL access
// counter, then serves the page from cache while a fresh entry exists, and
// fetches + stores the page with a TTL otherwise.
//
// Components:
//   - store.Store: byte store with an atomic counter and per-entry TTLs
//     (Redis, memcached, or in-process).
//   - fetch.Fetcher[V]: origin retrieval (e.g. fetch.Client over HTTP).
//   - codec.Codec[V]: (de)serializes V <-> []byte page payloads.
//
// Keys:
//
//	count:<url> - access counter (decimal ASCII, never expires)
//	page:<url>  - cached page entry (framed, expires after the TTL)
//
// The counter is incremented unconditionally before the cache check: hits,
// misses and failed fetches all count. It measures access attempts, not
// fetch operations, and is never rolled back.
package pagecache
