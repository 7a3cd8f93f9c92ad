// Package extract derives a single price from a product page by running the
// extraction strategies in priority order: pattern, selector, whole document.
package extract

import (
	"github.com/fwojciec/pricewatch"
)

// Ensure Extractor implements pricewatch.PriceExtractor at compile time.
var _ pricewatch.PriceExtractor = (*Extractor)(nil)

// Strategy names the extraction step that produced a result.
type Strategy string

// Strategies in the order they are tried.
const (
	StrategyNone     Strategy = ""
	StrategyPattern  Strategy = "pattern"
	StrategySelector Strategy = "selector"
	StrategyDocument Strategy = "document"
)

// Result describes the outcome of an extraction.
type Result struct {
	Price    float64
	OK       bool
	Strategy Strategy

	// Fragment is the text handed to the numeric parser by Strategy.
	Fragment string
}

// Extractor runs the extraction strategies. It holds no per-call state and
// is safe for concurrent use as long as Selector is.
type Extractor struct {
	Selector pricewatch.TextSelector
}

// NewExtractor creates an Extractor using sel for selector hints.
func NewExtractor(sel pricewatch.TextSelector) *Extractor {
	return &Extractor{Selector: sel}
}

// ExtractPrice returns the price in html according to hints.
func (e *Extractor) ExtractPrice(html string, hints pricewatch.ExtractionHints) (float64, bool, error) {
	res, err := e.Explain(html, hints)
	if err != nil {
		return 0, false, err
	}
	return res.Price, res.OK, nil
}

// Explain is like ExtractPrice but also reports which strategy decided the
// result and the fragment it parsed.
//
// A pattern that matches decides the result on its own: when its fragment
// holds no number the result is not found, even if a selector is configured.
// Only a pattern that does not match at all falls through to the selector.
func (e *Extractor) Explain(html string, hints pricewatch.ExtractionHints) (Result, error) {
	if hints.Pattern != "" {
		frag, matched, err := pricewatch.ExtractByPattern(html, hints.Pattern)
		if err != nil {
			return Result{}, err
		}
		if matched {
			price, ok := pricewatch.ParsePrice(frag)
			return Result{Price: price, OK: ok, Strategy: StrategyPattern, Fragment: frag}, nil
		}
	}

	if hints.Selector != "" {
		frag, err := e.Selector.SelectText(html, hints.Selector, hints.Attribute)
		if err != nil {
			return Result{}, err
		}
		frag = pricewatch.TruncateFragment(frag)
		if price, ok := pricewatch.ParsePrice(frag); ok {
			return Result{Price: price, OK: true, Strategy: StrategySelector, Fragment: frag}, nil
		}
	}

	if price, ok := pricewatch.ParsePrice(html); ok {
		return Result{Price: price, OK: true, Strategy: StrategyDocument}, nil
	}
	return Result{}, nil
}
