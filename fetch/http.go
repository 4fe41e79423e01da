package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client fetches URLs over HTTP. Any response outside the 2xx range is an
// *Error carrying the status code.
type Client struct {
	hc        *http.Client
	userAgent string
	maxBody   int64
}

var _ Fetcher[[]byte] = (*Client)(nil)

type ClientConfig struct {
	// HTTPClient to issue requests with. If nil, a client with Timeout is
	// built.
	HTTPClient *http.Client
	// Timeout for the built client when HTTPClient is nil; 0 => 30s.
	Timeout time.Duration
	// UserAgent sent with each request when non-empty.
	UserAgent string
	// MaxBodyBytes caps response bodies; 0 => unlimited.
	MaxBodyBytes int64
}

func NewClient(cfg ClientConfig) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{hc: hc, userAgent: cfg.UserAgent, maxBody: cfg.MaxBodyBytes}
}

func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain a little so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &Error{URL: url, Status: resp.StatusCode}
	}

	r := io.Reader(resp.Body)
	if c.maxBody > 0 {
		r = io.LimitReader(r, c.maxBody+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{URL: url, Status: resp.StatusCode, Err: err}
	}
	if c.maxBody > 0 && int64(len(b)) > c.maxBody {
		return nil, &Error{
			URL:    url,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("body exceeds %d bytes", c.maxBody),
		}
	}
	return b, nil
}
