package pricewatch

import "context"

// Notifier delivers a pre-formatted report to a channel.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
