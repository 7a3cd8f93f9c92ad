package main

import (
	"fmt"

	"github.com/fwojciec/pricewatch"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	observations, err := deps.Observations.FindObservations(deps.Ctx, pricewatch.ObservationFilter{
		ItemName: &c.Name,
		Limit:    c.Limit,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	if len(observations) == 0 {
		fmt.Fprintf(deps.Stdout, "No prices recorded for %q. Use 'pricewatch run' to record some.\n", c.Name)
		return nil
	}

	for _, o := range observations {
		fmt.Fprintf(deps.Stdout, "%s  %10s  %s\n",
			o.ObservedAt.UTC().Format("2006-01-02 15:04"),
			pricewatch.FormatPrice(o.Currency, o.Price),
			o.ContentHash,
		)
	}

	return nil
}
