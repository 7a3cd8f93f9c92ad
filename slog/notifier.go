package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pricewatch"
)

// Ensure LoggingNotifier implements pricewatch.Notifier.
var _ pricewatch.Notifier = (*LoggingNotifier)(nil)

// LoggingNotifier wraps a Notifier with logging.
type LoggingNotifier struct {
	next   pricewatch.Notifier
	logger *slog.Logger
}

// NewLoggingNotifier creates a new LoggingNotifier.
func NewLoggingNotifier(next pricewatch.Notifier, logger *slog.Logger) *LoggingNotifier {
	return &LoggingNotifier{next: next, logger: logger}
}

// Notify delegates to the wrapped notifier and logs the delivery.
func (n *LoggingNotifier) Notify(ctx context.Context, text string) (err error) {
	defer func(begin time.Time) {
		n.logger.Info("notify",
			"bytes", len(text),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return n.next.Notify(ctx, text)
}
