package goquery

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Visitor receives callbacks from a Scanner.
type Visitor interface {
	// OnElement is called for every element matching the scanner's selector.
	OnElement(n *html.Node)

	// OnText is called for every text node inside a matching element,
	// including text of nested descendants.
	OnText(text string)
}

// Scanner walks a parsed document in document order and reports matching
// elements and their text to a Visitor.
type Scanner struct {
	matcher cascadia.Matcher
}

// NewScanner creates a Scanner for the given matcher.
func NewScanner(m cascadia.Matcher) *Scanner {
	return &Scanner{matcher: m}
}

// Scan visits root and all of its descendants. It returns once the whole
// tree has been visited.
func (s *Scanner) Scan(root *html.Node, v Visitor) {
	s.walk(root, v, false)
}

func (s *Scanner) walk(n *html.Node, v Visitor, inside bool) {
	switch n.Type {
	case html.ElementNode:
		if s.matcher.Match(n) {
			v.OnElement(n)
			inside = true
		}
	case html.TextNode:
		if inside {
			v.OnText(n.Data)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		s.walk(c, v, inside)
	}
}

// capture is a Visitor that produces a text fragment once the scan is done.
type capture interface {
	Visitor
	Fragment() string
}

// newCapture picks the capture strategy for a call: attribute values when an
// attribute is requested, accumulated text otherwise.
func newCapture(attribute string) capture {
	if attribute != "" {
		return &attrCapture{name: attribute}
	}
	return &textCapture{}
}

// textCapture appends the text of every matching element.
type textCapture struct {
	b strings.Builder
}

func (c *textCapture) OnElement(*html.Node) {}

func (c *textCapture) OnText(text string) {
	c.b.WriteString(text)
}

func (c *textCapture) Fragment() string {
	return c.b.String()
}

// attrCapture keeps the last non-empty value of one attribute.
type attrCapture struct {
	name  string
	value string
}

func (c *attrCapture) OnElement(n *html.Node) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, c.name) && a.Val != "" {
			c.value = a.Val
		}
	}
}

func (c *attrCapture) OnText(string) {}

func (c *attrCapture) Fragment() string {
	return c.value
}
