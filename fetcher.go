package pricewatch

import "context"

// Fetcher retrieves page HTML from URLs.
type Fetcher interface {
	// Fetch retrieves the HTML at url.
	// The context controls timeout and cancellation. Failures such as
	// non-2xx responses or timeouts are reported as EUPSTREAM.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}
