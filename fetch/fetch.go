// Package fetch defines the origin-retrieval boundary used by pagecache and
// provides an HTTP implementation. Fetchers are purely retrieval primitives:
// no caching, no counting.
package fetch

import (
	"context"
	"fmt"
)

// Fetcher retrieves the document at url. Implementations must be safe for
// concurrent use.
type Fetcher[V any] interface {
	Fetch(ctx context.Context, url string) (V, error)
}

// FetcherFunc adapts a function to a Fetcher.
type FetcherFunc[V any] func(ctx context.Context, url string) (V, error)

func (f FetcherFunc[V]) Fetch(ctx context.Context, url string) (V, error) {
	return f(ctx, url)
}

// Error describes a failed fetch: transport failure, non-2xx response, or
// timeout.
type Error struct {
	URL    string
	Status int   // HTTP status; 0 when the request never completed
	Err    error // underlying cause; may be nil for bare status failures
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("fetch %q: status %d: %v", e.URL, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("fetch %q: unexpected status %d", e.URL, e.Status)
	default:
		return fmt.Sprintf("fetch %q: %v", e.URL, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Decoder turns fetched bytes into a V. codec.Codec[V] satisfies it.
type Decoder[V any] interface {
	Decode([]byte) (V, error)
}

// As lifts a byte-level fetcher (like Client) to a typed one by decoding
// each fetched body with dec. The same codec usually serves both the fetched
// representation and the cached payload.
func As[V any](inner Fetcher[[]byte], dec Decoder[V]) Fetcher[V] {
	return FetcherFunc[V](func(ctx context.Context, url string) (V, error) {
		var zero V
		b, err := inner.Fetch(ctx, url)
		if err != nil {
			return zero, err
		}
		v, err := dec.Decode(b)
		if err != nil {
			return zero, &Error{URL: url, Err: err}
		}
		return v, nil
	})
}
