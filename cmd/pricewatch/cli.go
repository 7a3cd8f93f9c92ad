package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/pricewatch"
	"github.com/fwojciec/pricewatch/extract"
	"github.com/fwojciec/pricewatch/track"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// LoadItems reads the configured items.
	LoadItems func() ([]*pricewatch.Item, error)

	Observations  pricewatch.ObservationService
	Fetcher       pricewatch.Fetcher
	RenderFetcher pricewatch.Fetcher
	Extractor     *extract.Extractor
	Detector      pricewatch.HintDetector
	Tracker       *track.Tracker

	// Notifier is nil when neither Telegram nor a report directory is configured.
	Notifier pricewatch.Notifier
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Items       string `short:"i" env:"PRICEWATCH_ITEMS" default:"items.yaml" help:"Items file (YAML or JSON)"`
	DB          string `env:"PRICEWATCH_DB" help:"Database path (default ~/.pricewatch/pricewatch.db)"`
	Concurrency int    `short:"c" default:"4" help:"Items fetched in parallel"`
	Retry       bool   `help:"Retry failed fetches with backoff (1s, 2s, 4s)"`
	ReportDir   string `env:"PRICEWATCH_REPORT_DIR" help:"Also archive each report as a dated markdown file here"`
	Verbose     bool   `short:"v" help:"Enable debug logging"`

	Run     RunCmd     `cmd:"" help:"Check all enabled items and print the report"`
	Check   CheckCmd   `cmd:"" help:"Try extraction hints against a live page"`
	History HistoryCmd `cmd:"" help:"Show recorded prices for an item"`
	Serve   ServeCmd   `cmd:"" help:"Run daily and serve a manual trigger over HTTP"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	DryRun   bool `short:"n" help:"Do not store prices or send notifications"`
	NoNotify bool `help:"Store prices but do not send notifications"`
}

// CheckCmd is the "check" subcommand.
type CheckCmd struct {
	URL       string `arg:"" help:"Product page URL"`
	Selector  string `short:"s" help:"CSS selector for the price element"`
	Pattern   string `short:"p" help:"Regular expression; group 1 or the whole match is parsed"`
	Attribute string `short:"a" help:"Read the price from this attribute of the selected element"`
	Currency  string `default:"€" help:"Currency symbol for output"`
	Render    bool   `short:"r" help:"Render the page in a headless browser"`
	Suggest   bool   `help:"Suggest hints from common price markup"`
	Probe     bool   `help:"Compare plain and rendered fetches to decide whether the item needs render"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Name  string `arg:"" help:"Item name"`
	Limit int    `short:"l" default:"20" help:"Maximum number of observations"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr  string `default:":8080" help:"Listen address for the manual trigger"`
	At    string `default:"08:00" help:"Daily run time (HH:MM, local time)"`
	Token string `env:"PRICEWATCH_TOKEN" help:"Require this bearer token on the trigger"`
}
