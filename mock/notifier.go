package mock

import (
	"context"

	"github.com/fwojciec/pricewatch"
)

var _ pricewatch.Notifier = (*Notifier)(nil)

// Notifier is a mock implementation of pricewatch.Notifier.
type Notifier struct {
	NotifyFn func(ctx context.Context, text string) error
}

func (n *Notifier) Notify(ctx context.Context, text string) error {
	return n.NotifyFn(ctx, text)
}
