// Package fetch provides the rate-limited, retried HTTP client every source
// adapter shares.
package fetch

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/time/rate"
)

const userAgent = "Skrooge Deal Aggregator/1.0"

// Options configures retry, pacing and timeout behavior.
type Options struct {
	MaxRetries int           // attempts before surfacing the last error
	RetryDelay time.Duration // base backoff, grows linearly per attempt
	RateGap    time.Duration // minimum spacing between outbound requests
	Timeout    time.Duration // per-attempt deadline
}

// DefaultOptions returns the pipeline-wide fetch defaults.
func DefaultOptions() Options {
	return Options{
		MaxRetries: 3,
		RetryDelay: 1 * time.Second,
		RateGap:    500 * time.Millisecond,
		Timeout:    30 * time.Second,
	}
}

// Client performs paced, retried fetches. Each adapter owns its own Client so
// pacing is per upstream, not global.
type Client struct {
	httpClient *http.Client
	opts       Options
	limiter    *rate.Limiter
	robots     *RobotsChecker
}

// NewClient creates a Client with the given options. A nil robots checker
// disables robots.txt checks.
func NewClient(opts Options, robots *RobotsChecker) *Client {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultOptions().MaxRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultOptions().RetryDelay
	}
	if opts.RateGap <= 0 {
		opts.RateGap = DefaultOptions().RateGap
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Every(opts.RateGap), 1),
		robots:  robots,
	}
}

// Gate blocks until the client's pacing allows another request. Simulated
// adapters call this to honor the configured rate limit without fetching.
func (c *Client) Gate(ctx context.Context) error {
	return c.limiter.Wait(ctx)
}

// Fetch GETs url, retrying transport errors and non-2xx responses with
// linearly increasing backoff. The last error is surfaced once retries are
// exhausted.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if c.robots != nil {
		allowed, err := c.robots.IsAllowed(userAgent, url)
		if err == nil && !allowed {
			return nil, fmt.Errorf("blocked by robots.txt: %s", url)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= c.opts.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := c.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if attempt < c.opts.MaxRetries {
			backoff := c.opts.RetryDelay * time.Duration(attempt)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("fetch %s failed after %d attempts: %w", url, c.opts.MaxRetries, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml, text/html;q=0.9, */*;q=0.8")
	req.Header.Set("Accept-Language", "en-AU,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return readBody(resp)
}

// readBody reads and decompresses a response body.
func readBody(resp *http.Response) ([]byte, error) {
	var reader io.ReadCloser
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		var err error
		reader, err = gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer reader.Close()
	case "br":
		reader = io.NopCloser(brotli.NewReader(resp.Body))
	default:
		reader = resp.Body
	}
	return io.ReadAll(reader)
}
