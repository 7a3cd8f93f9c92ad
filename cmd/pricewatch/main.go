package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/pricewatch"
	"github.com/fwojciec/pricewatch/extract"
	"github.com/fwojciec/pricewatch/fs"
	"github.com/fwojciec/pricewatch/goquery"
	pwhttp "github.com/fwojciec/pricewatch/http"
	"github.com/fwojciec/pricewatch/rod"
	pwslog "github.com/fwojciec/pricewatch/slog"
	"github.com/fwojciec/pricewatch/sqlite"
	"github.com/fwojciec/pricewatch/track"
	"github.com/fwojciec/pricewatch/yaml"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run(); the --db flag overrides it.
	DBPath string

	// Telegram credentials. Telegram delivery is skipped when either is empty.
	TelegramToken  string
	TelegramChatID string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	StateStore         pricewatch.StateStore
	ObservationService pricewatch.ObservationService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:         defaultDBPath(),
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID: os.Getenv("TELEGRAM_CHAT_ID"),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pricewatch"),
		kong.Description("Track product prices and report daily changes."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'pricewatch --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger

	if cli.DB != "" {
		m.DBPath = cli.DB
	}

	command := kongCtx.Command()
	if command != "check <url>" {
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set PRICEWATCH_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		}
		defer m.Close()

		m.StateStore = sqlite.NewStateStore(m.DB)
		m.ObservationService = sqlite.NewObservationService(m.DB)
		deps.Observations = m.ObservationService
	}

	itemsPath := cli.Items
	deps.LoadItems = func() ([]*pricewatch.Item, error) {
		return yaml.LoadItems(itemsPath)
	}

	// Per-item timeouts arrive via the context; the client timeout is only
	// an upper bound.
	deps.Fetcher = pwslog.NewLoggingFetcher(pwhttp.NewFetcher(pwhttp.WithTimeout(2*time.Minute)), logger)

	// Chrome starts with the first rendered item and stops once idle.
	renderFetcher := pwslog.NewLoggingFetcher(rod.NewFetcher(), logger)
	defer renderFetcher.Close()
	deps.RenderFetcher = renderFetcher

	deps.Extractor = extract.NewExtractor(goquery.NewSelector())
	deps.Detector = pwslog.NewLoggingDetector(goquery.NewDetector(), logger)

	var notifiers pricewatch.MultiNotifier
	if m.TelegramToken != "" && m.TelegramChatID != "" {
		notifiers = append(notifiers, pwhttp.NewTelegramNotifier(nil, m.TelegramToken, m.TelegramChatID))
	}
	if cli.ReportDir != "" {
		notifiers = append(notifiers, fs.NewReportWriter(cli.ReportDir))
	}
	switch len(notifiers) {
	case 0:
	case 1:
		deps.Notifier = pwslog.NewLoggingNotifier(notifiers[0], logger)
	default:
		deps.Notifier = pwslog.NewLoggingNotifier(notifiers, logger)
	}

	var retryDelays []time.Duration
	if cli.Retry {
		retryDelays = track.DefaultRetryDelays()
	}
	deps.Tracker = &track.Tracker{
		Fetcher:       deps.Fetcher,
		RenderFetcher: deps.RenderFetcher,
		Extractor:     pwslog.NewLoggingExtractor(deps.Extractor, logger),
		State:         m.StateStore,
		Observations:  m.ObservationService,
		RateLimiter:   track.NewDomainLimiter(1.0),
		Concurrency:   cli.Concurrency,
		RetryDelays:   retryDelays,
		Logger: func(format string, args ...any) {
			logger.Warn(fmt.Sprintf(format, args...))
		},
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("PRICEWATCH_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "pricewatch.db"
	}
	dir := filepath.Join(home, ".pricewatch")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "pricewatch.db")
}
