package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/pricewatch"
)

// Ensure Detector implements pricewatch.HintDetector at compile time.
var _ pricewatch.HintDetector = (*Detector)(nil)

// knownHints are checked in order. Structured metadata comes first because
// it carries a machine-readable amount; visible price classes come last.
var knownHints = []pricewatch.ExtractionHints{
	{Selector: "meta[property='product:price:amount']", Attribute: "content"},
	{Selector: "meta[property='og:price:amount']", Attribute: "content"},
	{Selector: "[itemprop='price'][content]", Attribute: "content"},
	{Selector: "[itemprop='price']"},
	{Selector: "[data-price]", Attribute: "data-price"},
	{Selector: "[data-testid*='price']"},
	{Selector: ".price"},
	{Selector: ".product-price"},
}

var knownMatchers = func() []cascadia.Matcher {
	ms := make([]cascadia.Matcher, len(knownHints))
	for i, h := range knownHints {
		ms[i] = cascadia.MustCompile(h.Selector)
	}
	return ms
}()

// Detector recognizes common price markup on product pages.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// DetectHints returns hints that yield a price on html, most specific first.
// A hint is only returned when the selector strategy of the extractor would
// parse a price from it: the fragment is captured by the same scanner and
// truncated the same way.
func (d *Detector) DetectHints(html string) []pricewatch.ExtractionHints {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var hints []pricewatch.ExtractionHints
	for i, h := range knownHints {
		frag := pricewatch.TruncateFragment(selectText(doc, knownMatchers[i], h.Attribute))
		if _, ok := pricewatch.ParsePrice(frag); ok {
			hints = append(hints, h)
		}
	}
	return hints
}
