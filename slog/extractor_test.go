package slog_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fwojciec/pricewatch"
	"github.com/fwojciec/pricewatch/mock"
	pwslog "github.com/fwojciec/pricewatch/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingExtractor_ExtractPrice(t *testing.T) {
	t.Parallel()

	t.Run("logs hints and price at debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.PriceExtractor{
			ExtractPriceFn: func(html string, hints pricewatch.ExtractionHints) (float64, bool, error) {
				return 39.99, true, nil
			},
		}

		extractor := pwslog.NewLoggingExtractor(inner, logger)
		price, ok, err := extractor.ExtractPrice("<html></html>", pricewatch.ExtractionHints{Selector: ".price"})

		require.NoError(t, err)
		assert.True(t, ok)
		assert.InDelta(t, 39.99, price, 1e-9)
		output := buf.String()
		assert.Contains(t, output, "extract")
		assert.Contains(t, output, "selector=.price")
		assert.Contains(t, output, "price=39.99")
		assert.Contains(t, output, "found=true")
	})

	t.Run("stays quiet at info level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.PriceExtractor{
			ExtractPriceFn: func(html string, hints pricewatch.ExtractionHints) (float64, bool, error) {
				return 0, false, nil
			},
		}

		_, ok, err := pwslog.NewLoggingExtractor(inner, logger).ExtractPrice("", pricewatch.ExtractionHints{})

		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, buf.String())
	})
}

func TestLoggingDetector_DetectHints(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	want := []pricewatch.ExtractionHints{{Selector: ".price"}, {Selector: "[data-price]", Attribute: "data-price"}}
	inner := &mock.HintDetector{
		DetectHintsFn: func(html string) []pricewatch.ExtractionHints {
			return want
		},
	}

	got := pwslog.NewLoggingDetector(inner, logger).DetectHints("<html></html>")

	assert.Equal(t, want, got)
	output := buf.String()
	assert.Contains(t, output, "hint detection")
	assert.Contains(t, output, "count=2")
	assert.Contains(t, output, "duration=")
}
