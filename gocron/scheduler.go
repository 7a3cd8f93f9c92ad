// Package gocron runs the price check once a day at a fixed time of day.
package gocron

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/pricewatch"
	"github.com/go-co-op/gocron/v2"
)

// DefaultAt is the time of day runs start when none is configured.
const DefaultAt = "08:00"

// Scheduler triggers a task daily.
type Scheduler struct {
	scheduler gocron.Scheduler
	job       gocron.Job
	logger    *slog.Logger
}

// ParseAt parses a time of day in HH:MM form.
func ParseAt(at string) (hour, minute uint, err error) {
	h, m, ok := strings.Cut(at, ":")
	if !ok {
		return 0, 0, pricewatch.Errorf(pricewatch.EINVALID, "invalid time of day %q: want HH:MM", at)
	}
	hh, err := strconv.ParseUint(h, 10, 8)
	if err != nil || hh > 23 {
		return 0, 0, pricewatch.Errorf(pricewatch.EINVALID, "invalid hour in %q", at)
	}
	mm, err := strconv.ParseUint(m, 10, 8)
	if err != nil || mm > 59 || len(m) != 2 {
		return 0, 0, pricewatch.Errorf(pricewatch.EINVALID, "invalid minute in %q", at)
	}
	return uint(hh), uint(mm), nil
}

// NewScheduler creates a Scheduler that calls task every day at the given
// HH:MM in loc. A run still in progress when the next one is due causes
// the next one to be skipped. The task receives ctx.
func NewScheduler(ctx context.Context, at string, loc *time.Location, task func(ctx context.Context), logger *slog.Logger) (*Scheduler, error) {
	hour, minute, err := ParseAt(at)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, err
	}

	job, err := s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(hour, minute, 0))),
		gocron.NewTask(func() {
			begin := time.Now()
			logger.Info("scheduled run started")
			task(ctx)
			logger.Info("scheduled run finished", "duration", time.Since(begin))
		}),
		gocron.WithName("daily-price-check"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}

	return &Scheduler{scheduler: s, job: job, logger: logger}, nil
}

// Start begins scheduling.
func (s *Scheduler) Start() {
	s.scheduler.Start()
	if next, err := s.NextRun(); err == nil {
		s.logger.Info("scheduler started", "next_run", next)
	}
}

// NextRun returns when the task runs next.
func (s *Scheduler) NextRun() (time.Time, error) {
	return s.job.NextRun()
}

// Stop shuts the scheduler down, waiting for a running task to finish.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}
