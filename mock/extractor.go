package mock

import "github.com/fwojciec/pricewatch"

var _ pricewatch.PriceExtractor = (*PriceExtractor)(nil)

// PriceExtractor is a mock implementation of pricewatch.PriceExtractor.
type PriceExtractor struct {
	ExtractPriceFn func(html string, hints pricewatch.ExtractionHints) (float64, bool, error)
}

func (e *PriceExtractor) ExtractPrice(html string, hints pricewatch.ExtractionHints) (float64, bool, error) {
	return e.ExtractPriceFn(html, hints)
}

var _ pricewatch.TextSelector = (*TextSelector)(nil)

// TextSelector is a mock implementation of pricewatch.TextSelector.
type TextSelector struct {
	SelectTextFn func(html, selector, attribute string) (string, error)
}

func (s *TextSelector) SelectText(html, selector, attribute string) (string, error) {
	return s.SelectTextFn(html, selector, attribute)
}

var _ pricewatch.HintDetector = (*HintDetector)(nil)

// HintDetector is a mock implementation of pricewatch.HintDetector.
type HintDetector struct {
	DetectHintsFn func(html string) []pricewatch.ExtractionHints
}

func (d *HintDetector) DetectHints(html string) []pricewatch.ExtractionHints {
	return d.DetectHintsFn(html)
}
