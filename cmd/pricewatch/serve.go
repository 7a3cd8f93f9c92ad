package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/pricewatch"
	pwgin "github.com/fwojciec/pricewatch/gin"
	"github.com/fwojciec/pricewatch/gocron"
)

// Run executes the serve command. It blocks until the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	run := func(ctx context.Context) (string, error) {
		runDeps := *deps
		runDeps.Ctx = ctx
		report, err := runReport(&runDeps, deps.Tracker, true)
		if err != nil {
			return "", err
		}
		return report.String(), nil
	}

	server := pwgin.NewServer(run, c.Token, deps.Logger)

	scheduler, err := gocron.NewScheduler(deps.Ctx, c.At, time.Local, func(ctx context.Context) {
		_, err := server.Run(ctx)
		switch {
		case errors.Is(err, pwgin.ErrRunInProgress):
			deps.Logger.Warn("scheduled run skipped", "reason", err)
		case err != nil:
			deps.Logger.Error("scheduled run failed", "err", err)
		}
	}, deps.Logger)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	if err := server.ListenAndServe(deps.Ctx, c.Addr); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}
	return nil
}
