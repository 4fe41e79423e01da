package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "pagecache-test" {
			t.Errorf("User-Agent = %q, want pagecache-test", ua)
		}
		fmt.Fprint(w, "HELLO")
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{UserAgent: "pagecache-test"})
	b, err := c.Fetch(context.Background(), srv.URL)
	if err != nil || string(b) != "HELLO" {
		t.Fatalf("Fetch = %q, %v; want HELLO", b, err)
	}
}

func TestClientNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{})
	_, err := c.Fetch(context.Background(), srv.URL)
	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("Fetch err = %v, want *fetch.Error", err)
	}
	if fe.Status != http.StatusNotFound || fe.URL != srv.URL {
		t.Fatalf("Error = %+v, want status 404 for %s", fe, srv.URL)
	}
	if !strings.Contains(fe.Error(), "404") {
		t.Fatalf("Error() = %q, should mention the status", fe.Error())
	}
}

func TestClientMaxBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, strings.Repeat("x", 100))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{MaxBodyBytes: 99})
	if _, err := c.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatalf("Fetch should reject a body over the cap")
	}

	c = NewClient(ClientConfig{MaxBodyBytes: 100})
	b, err := c.Fetch(context.Background(), srv.URL)
	if err != nil || len(b) != 100 {
		t.Fatalf("Fetch at the cap = %d bytes, %v; want 100", len(b), err)
	}
}

func TestClientContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := NewClient(ClientConfig{})
	if _, err := c.Fetch(ctx, srv.URL); err == nil {
		t.Fatalf("Fetch should fail once the context expires")
	}
}

func TestAsDecodes(t *testing.T) {
	inner := FetcherFunc[[]byte](func(_ context.Context, _ string) ([]byte, error) {
		return []byte("42"), nil
	})
	f := As[int](inner, decoderFunc[int](func(b []byte) (int, error) {
		var n int
		_, err := fmt.Sscanf(string(b), "%d", &n)
		return n, err
	}))

	n, err := f.Fetch(context.Background(), "u")
	if err != nil || n != 42 {
		t.Fatalf("Fetch = %d, %v; want 42", n, err)
	}
}

func TestAsWrapsDecodeFailure(t *testing.T) {
	inner := FetcherFunc[[]byte](func(_ context.Context, _ string) ([]byte, error) {
		return []byte("nope"), nil
	})
	f := As[int](inner, decoderFunc[int](func([]byte) (int, error) {
		return 0, errors.New("bad digit")
	}))

	_, err := f.Fetch(context.Background(), "http://example.test/u")
	var fe *Error
	if !errors.As(err, &fe) || fe.URL != "http://example.test/u" {
		t.Fatalf("Fetch err = %v, want *fetch.Error carrying the URL", err)
	}
}

type decoderFunc[V any] func([]byte) (V, error)

func (f decoderFunc[V]) Decode(b []byte) (V, error) { return f(b) }

func TestRetryTransient(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			http.Error(w, "flaky", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, "OK")
	}))
	defer srv.Close()

	f := Retry[[]byte](NewClient(ClientConfig{}), RetryConfig{
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		MaxRetries:      5,
	})
	b, err := f.Fetch(context.Background(), srv.URL)
	if err != nil || string(b) != "OK" {
		t.Fatalf("Fetch = %q, %v; want OK", b, err)
	}
	if got := hits.Load(); got != 3 {
		t.Fatalf("server hit %d times, want 3 (two retries)", got)
	}
}

func TestRetryGivesUp(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := Retry[[]byte](NewClient(ClientConfig{}), RetryConfig{
		InitialInterval: time.Millisecond,
		MaxRetries:      2,
	})
	_, err := f.Fetch(context.Background(), srv.URL)
	var fe *Error
	if !errors.As(err, &fe) || fe.Status != http.StatusServiceUnavailable {
		t.Fatalf("Fetch err = %v, want *fetch.Error with status 503", err)
	}
	if got := hits.Load(); got != 3 {
		t.Fatalf("server hit %d times, want 3 (initial + 2 retries)", got)
	}
}

func TestRetryPermanentOn4xx(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		http.Error(w, "no such page", http.StatusNotFound)
	}))
	defer srv.Close()

	f := Retry[[]byte](NewClient(ClientConfig{}), RetryConfig{
		InitialInterval: time.Millisecond,
		MaxRetries:      5,
	})
	_, err := f.Fetch(context.Background(), srv.URL)
	var fe *Error
	if !errors.As(err, &fe) || fe.Status != http.StatusNotFound {
		t.Fatalf("Fetch err = %v, want *fetch.Error with status 404", err)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("server hit %d times, want 1 (4xx is permanent)", got)
	}
}
