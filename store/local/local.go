// Package local is an in-process store for tests and single-binary
// deployments that don't want a backend. Expiry is enforced lazily on every
// read and, optionally, by a background sweep, so no read ever returns an
// entry past its deadline.
package local

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	st "github.com/unkn0wn-root/pagecache/store"
)

type entry struct {
	val []byte
	exp time.Time // zero => no expiry
}

type Store struct {
	mu sync.Mutex
	m  map[string]entry

	ticker    *time.Ticker
	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ st.Store = (*Store)(nil)

// New creates a local store. When sweepInterval > 0, a background loop
// prunes expired entries that are never read again.
func New(sweepInterval time.Duration) *Store {
	s := &Store{m: make(map[string]entry)}
	if sweepInterval > 0 {
		s.ticker = time.NewTicker(sweepInterval)
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-s.ticker.C:
					s.Sweep(time.Now())
				case <-s.stopCh:
					return
				}
			}
		}()
	}
	return s
}

func (s *Store) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	if e, ok := s.m[key]; ok && live(e, time.Now()) {
		v, err := strconv.ParseInt(string(e.val), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("local store: %q holds a non-counter value: %w", key, err)
		}
		n = v
	}
	n++
	// counters never expire
	s.m[key] = entry{val: []byte(strconv.FormatInt(n, 10))}
	return n, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	if !live(e, time.Now()) {
		delete(s.m, key)
		return nil, false, nil
	}
	return e.val, true, nil
}

func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.m[key] = entry{val: value, exp: exp}
	s.mu.Unlock()
	return nil
}

func (s *Store) Del(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
	return nil
}

// Sweep removes every entry expired as of now.
func (s *Store) Sweep(now time.Time) {
	s.mu.Lock()
	for k, e := range s.m {
		if !live(e, now) {
			delete(s.m, k)
		}
	}
	s.mu.Unlock()
}

func (s *Store) Close(context.Context) error {
	s.closeOnce.Do(func() {
		if s.stopCh != nil {
			close(s.stopCh)
			s.ticker.Stop()
			s.wg.Wait()
		}
	})
	return nil
}

// Len reports the number of stored entries, expired ones included until the
// next read or sweep touches them.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

func live(e entry, now time.Time) bool {
	return e.exp.IsZero() || now.Before(e.exp)
}
