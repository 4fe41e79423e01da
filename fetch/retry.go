package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig tunes the Retry wrapper.
type RetryConfig struct {
	InitialInterval time.Duration // 0 => 200ms
	MaxInterval     time.Duration // 0 => 5s
	MaxRetries      uint64        // retries after the first attempt; 0 => 3
}

// Retry wraps inner with exponential backoff on transient failures.
// 4xx responses are permanent and returned immediately; everything else
// (network errors, timeouts, 5xx) is retried up to MaxRetries times.
//
// The page cache never retries internally; wrap the fetcher when a retry
// policy is wanted.
func Retry[V any](inner Fetcher[V], cfg RetryConfig) Fetcher[V] {
	initial := cfg.InitialInterval
	if initial <= 0 {
		initial = 200 * time.Millisecond
	}
	maxIv := cfg.MaxInterval
	if maxIv <= 0 {
		maxIv = 5 * time.Second
	}
	retries := cfg.MaxRetries
	if retries == 0 {
		retries = 3
	}

	return FetcherFunc[V](func(ctx context.Context, url string) (V, error) {
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = initial
		bo.MaxInterval = maxIv
		bo.MaxElapsedTime = 0 // bounded by MaxRetries, not wall time

		var out V
		op := func() error {
			v, err := inner.Fetch(ctx, url)
			if err != nil {
				var fe *Error
				if errors.As(err, &fe) && fe.Status >= 400 && fe.Status < 500 {
					return backoff.Permanent(err)
				}
				return err
			}
			out = v
			return nil
		}

		err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, retries), ctx))
		if err != nil {
			var zero V
			return zero, err
		}
		return out, nil
	})
}
