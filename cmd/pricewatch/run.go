package main

import (
	"fmt"

	"github.com/fwojciec/pricewatch"
	"github.com/fwojciec/pricewatch/track"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	tracker := *deps.Tracker
	tracker.DryRun = c.DryRun

	report, err := runReport(deps, &tracker, !c.DryRun && !c.NoNotify)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, report.String())
	return nil
}

// runReport loads the items, tracks them and, when notify is set, sends
// the report. A failed notification is logged and does not fail the run.
func runReport(deps *Dependencies, tracker *track.Tracker, notify bool) (*track.Report, error) {
	items, err := deps.LoadItems()
	if err != nil {
		return nil, err
	}

	report, err := tracker.Run(deps.Ctx, items)
	if err != nil {
		return nil, err
	}

	if notify && deps.Notifier != nil {
		if err := deps.Notifier.Notify(deps.Ctx, report.String()); err != nil {
			deps.Logger.Error("sending report failed", "err", err)
			fmt.Fprintf(deps.Stderr, "warning: report not delivered: %s\n", pricewatch.ErrorMessage(err))
		}
	}

	return report, nil
}
