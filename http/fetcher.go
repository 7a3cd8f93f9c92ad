// Package http provides net/http based implementations of pricewatch.Fetcher
// and pricewatch.Notifier.
package http

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/pricewatch"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
// Matches pricewatch.DefaultTimeout; per-item timeouts arrive via the context.
const DefaultFetchTimeout = pricewatch.DefaultTimeout

// DefaultUserAgent identifies the tracker to shops.
const DefaultUserAgent = "Mozilla/5.0 (compatible; PriceTrackerBot/1.0)"

// DefaultAcceptLanguage is sent with every page request.
const DefaultAcceptLanguage = "en-US,en;q=0.9"

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes = 10 << 20

// Ensure Fetcher implements pricewatch.Fetcher at compile time.
var _ pricewatch.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using HTTP requests.
// It does not execute JavaScript; use rod.Fetcher for pages that render
// their price client-side.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	userAgent    string
	maxBodyBytes int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (20s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodyBytes caps the number of body bytes read per response.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodyBytes = n
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		userAgent:    DefaultUserAgent,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the HTML content from the given URL.
// Non-2xx responses, timeouts and transport failures return EUPSTREAM.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", pricewatch.Errorf(pricewatch.EINVALID, "invalid request for %s: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", DefaultAcceptLanguage)

	resp, err := f.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return "", pricewatch.Errorf(pricewatch.EUPSTREAM, "timeout fetching %s", url)
		}
		return "", pricewatch.Errorf(pricewatch.EUPSTREAM, "%v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", pricewatch.Errorf(pricewatch.EUPSTREAM, "HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return "", pricewatch.Errorf(pricewatch.EUPSTREAM, "reading %s: %v", url, err)
	}

	return string(body), nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
