// Package goquery implements CSS-selector based extraction over parsed HTML.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/pricewatch"
)

// Ensure Selector implements pricewatch.TextSelector at compile time.
var _ pricewatch.TextSelector = (*Selector)(nil)

// Selector extracts text fragments from HTML using CSS selectors.
// Selector holds no state and is safe for concurrent use.
type Selector struct{}

// NewSelector creates a new Selector.
func NewSelector() *Selector {
	return &Selector{}
}

// SelectText returns the text of every element matching selector,
// concatenated in document order. When attribute is set it returns the
// value of that attribute on the last matching element that has a
// non-empty one. A selector that matches nothing yields "".
func (s *Selector) SelectText(html, selector, attribute string) (string, error) {
	m, err := cascadia.Compile(selector)
	if err != nil {
		return "", pricewatch.Errorf(pricewatch.EINVALID, "invalid selector %q: %v", selector, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", pricewatch.Errorf(pricewatch.EINVALID, "failed to parse HTML: %v", err)
	}

	return selectText(doc, m, attribute), nil
}

// selectText scans an already parsed document.
func selectText(doc *goquery.Document, m cascadia.Matcher, attribute string) string {
	c := newCapture(attribute)
	scanner := NewScanner(m)
	for _, n := range doc.Nodes {
		scanner.Scan(n, c)
	}
	return c.Fragment()
}
