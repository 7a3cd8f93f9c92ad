// Package rod fetches JavaScript-rendered product pages through a headless
// Chrome browser.
package rod

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/fwojciec/pricewatch"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Fetcher implements pricewatch.Fetcher at compile time.
var _ pricewatch.Fetcher = (*Fetcher)(nil)

// DefaultFetchTimeout bounds a single page load when the caller's context
// carries no earlier deadline.
const DefaultFetchTimeout = 30 * time.Second

var errManagerClosed = errors.New("browser manager is closed")

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// The browser is launched by the first Fetch, so a run without rendered
// items never starts Chrome.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager *BrowserManager
	timeout time.Duration
	closed  atomic.Bool
}

// Option configures a Fetcher.
type Option func(*fetcherConfig)

type fetcherConfig struct {
	timeout     time.Duration
	idleTimeout time.Duration
}

// WithFetchTimeout sets the per-page load timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *fetcherConfig) {
		c.timeout = d
	}
}

// WithIdleBrowserTimeout sets how long the browser is kept after the last
// rendered page before it is shut down.
func WithIdleBrowserTimeout(d time.Duration) Option {
	return func(c *fetcherConfig) {
		c.idleTimeout = d
	}
}

// NewFetcher creates a Fetcher. Close must be called when the Fetcher is no
// longer needed, to stop a browser that may still be running.
func NewFetcher(opts ...Option) *Fetcher {
	cfg := fetcherConfig{timeout: DefaultFetchTimeout, idleTimeout: DefaultIdleTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Fetcher{
		manager: NewBrowserManager(WithIdleTimeout(cfg.idleTimeout)),
		timeout: cfg.timeout,
	}
}

// Fetch navigates to the URL, waits for the page to settle and returns the
// rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", pricewatch.Errorf(pricewatch.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	browser, release, err := f.manager.Acquire()
	if errors.Is(err, errManagerClosed) {
		return "", pricewatch.Errorf(pricewatch.EINVALID, "fetcher is closed")
	}
	if err != nil {
		return "", pricewatch.Errorf(pricewatch.EINTERNAL, "starting browser: %v", err)
	}
	defer release()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", pricewatch.Errorf(pricewatch.EUPSTREAM, "opening page: %v", err)
	}
	defer page.Close()

	page = page.Context(ctx)

	html, err := func() (string, error) {
		if err := page.Navigate(url); err != nil {
			return "", err
		}
		if err := page.WaitLoad(); err != nil {
			return "", err
		}
		// Prices are often filled in by scripts after the load event.
		_ = page.WaitIdle(2 * time.Second)
		return page.HTML()
	}()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", pricewatch.Errorf(pricewatch.EUPSTREAM, "timeout rendering %s", url)
		}
		return "", pricewatch.Errorf(pricewatch.EUPSTREAM, "rendering %s: %v", url, err)
	}
	return html, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher, or 0 while no
// browser is running.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}

// Launches returns how many browsers the Fetcher has started.
func (f *Fetcher) Launches() int {
	return f.manager.Launches()
}
