package pricewatch

import "context"

// DomainLimiter provides per-host rate limiting so that items sharing a
// shop are not fetched in a burst.
type DomainLimiter interface {
	// Wait blocks until a request to host is allowed or ctx is done.
	Wait(ctx context.Context, host string) error
}
