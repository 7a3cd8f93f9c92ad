package pricewatch

import (
	"context"
	"errors"
)

// MultiNotifier delivers a report to every notifier in turn. A failing
// notifier does not stop delivery to the rest; all failures are joined.
type MultiNotifier []Notifier

// Notify implements Notifier.
func (m MultiNotifier) Notify(ctx context.Context, text string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
