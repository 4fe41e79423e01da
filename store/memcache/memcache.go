// Package memcache backs pagecache with memcached. The memcached INCR
// protocol command gives the atomic counter; item expiration gives the TTL.
// Note memcached TTLs are whole seconds: sub-second TTLs round up.
package memcache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	gomem "github.com/bradfitz/gomemcache/memcache"

	st "github.com/unkn0wn-root/pagecache/store"
)

type Store struct {
	mc *gomem.Client
}

var _ st.Store = (*Store)(nil)

// New connects to the memcached servers at the given addresses
// ("host:port"). Multiple servers are sharded by key.
func New(servers ...string) *Store {
	return &Store{mc: gomem.New(servers...)}
}

// NewFromClient wraps an existing client.
func NewFromClient(mc *gomem.Client) *Store {
	return &Store{mc: mc}
}

// Incr increments the counter at key. memcached's INCR fails on missing
// keys, so absent counters are seeded with Add; losing the seed race to a
// concurrent caller falls back to INCR again.
func (s *Store) Incr(_ context.Context, key string) (int64, error) {
	for {
		v, err := s.mc.Increment(key, 1)
		if err == nil {
			return int64(v), nil
		}
		if err != gomem.ErrCacheMiss {
			return 0, classify(err)
		}
		err = s.mc.Add(&gomem.Item{Key: key, Value: []byte("1")})
		if err == nil {
			return 1, nil
		}
		if err != gomem.ErrNotStored {
			return 0, classify(err)
		}
		// someone else created the counter between Increment and Add
	}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	item, err := s.mc.Get(key)
	if err == gomem.ErrCacheMiss {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, classify(err)
	}
	return item.Value, true, nil
}

func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var exp int32
	if ttl > 0 {
		exp = int32((ttl + time.Second - 1) / time.Second)
	}
	if err := s.mc.Set(&gomem.Item{Key: key, Value: value, Expiration: exp}); err != nil {
		return classify(err)
	}
	return nil
}

func (s *Store) Del(_ context.Context, key string) error {
	err := s.mc.Delete(key)
	if err != nil && err != gomem.ErrCacheMiss {
		return classify(err)
	}
	return nil
}

// Close is a no-op: the client's idle connections are reclaimed by their
// idle timeout.
func (s *Store) Close(context.Context) error { return nil }

func classify(err error) error {
	var (
		cte *gomem.ConnectTimeoutError
		ne  net.Error
	)
	switch {
	case errors.As(err, &cte):
		return fmt.Errorf("%w: %v", st.ErrTimeout, err)
	case errors.As(err, &ne) && ne.Timeout():
		return fmt.Errorf("%w: %v", st.ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %v", st.ErrUnavailable, err)
	}
}
