package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/pricewatch"
)

// Ensure LoggingExtractor implements pricewatch.PriceExtractor.
var _ pricewatch.PriceExtractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps a PriceExtractor with debug logging.
type LoggingExtractor struct {
	next   pricewatch.PriceExtractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next pricewatch.PriceExtractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// ExtractPrice delegates to the wrapped extractor and logs the outcome.
func (e *LoggingExtractor) ExtractPrice(html string, hints pricewatch.ExtractionHints) (price float64, ok bool, err error) {
	defer func(begin time.Time) {
		e.logger.Debug("extract",
			"selector", hints.Selector,
			"pattern", hints.Pattern,
			"attribute", hints.Attribute,
			"price", price,
			"found", ok,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.ExtractPrice(html, hints)
}

// Ensure LoggingDetector implements pricewatch.HintDetector.
var _ pricewatch.HintDetector = (*LoggingDetector)(nil)

// LoggingDetector wraps a HintDetector with debug logging.
type LoggingDetector struct {
	next   pricewatch.HintDetector
	logger *slog.Logger
}

// NewLoggingDetector creates a new LoggingDetector.
func NewLoggingDetector(next pricewatch.HintDetector, logger *slog.Logger) *LoggingDetector {
	return &LoggingDetector{next: next, logger: logger}
}

// DetectHints delegates to the wrapped detector and logs how many hints it found.
func (d *LoggingDetector) DetectHints(html string) []pricewatch.ExtractionHints {
	begin := time.Now()
	hints := d.next.DetectHints(html)
	d.logger.Info("hint detection",
		"count", len(hints),
		"duration", time.Since(begin),
	)
	return hints
}
