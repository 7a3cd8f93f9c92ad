package pricewatch

// ExtractionHints tell the extractor where a page keeps its price.
// Attribute is only consulted together with Selector.
type ExtractionHints struct {
	// Selector is a CSS selector for the element holding the price.
	Selector string `json:"selector,omitempty" yaml:"selector,omitempty"`

	// Pattern is a regular expression; capture group 1 (or the whole match)
	// is parsed as the price. It takes priority over Selector.
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Attribute reads the price from an attribute of the selected element
	// (e.g. "content" on a meta tag) instead of its text.
	Attribute string `json:"attribute,omitempty" yaml:"attribute,omitempty"`
}

// TextSelector pulls a text fragment out of HTML by CSS selector.
type TextSelector interface {
	// SelectText returns the concatenated text of all elements matching
	// selector, or, when attribute is set, the last non-empty value of that
	// attribute among the matches. No match returns an empty string.
	// An invalid selector returns EINVALID.
	SelectText(html, selector, attribute string) (string, error)
}

// PriceExtractor derives a single price from a page.
type PriceExtractor interface {
	// ExtractPrice returns the price found in html using hints.
	// ok is false when no strategy produced a price; that is not an error.
	// Errors are reserved for broken hints (EINVALID).
	ExtractPrice(html string, hints ExtractionHints) (price float64, ok bool, err error)
}

// HintDetector suggests extraction hints for a page by recognizing common
// price markup such as schema.org microdata and Open Graph product tags.
type HintDetector interface {
	// DetectHints returns candidate hints, most specific first.
	// Each returned hint is known to yield a price on the given HTML.
	DetectHints(html string) []ExtractionHints
}
