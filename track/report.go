package track

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fwojciec/pricewatch"
)

// changeEpsilon is the smallest price difference counted as a change.
const changeEpsilon = 1e-6

// ItemResult is the outcome of tracking one item.
type ItemResult struct {
	Name     string
	Currency string
	Price    float64

	// Previous is the last stored price, nil when the item is new.
	Previous *float64

	// Err is set when the item could not be priced. Price and Previous
	// are meaningless then.
	Err error
}

// Changed reports whether the item is new or its price moved.
func (r ItemResult) Changed() bool {
	if r.Err != nil {
		return false
	}
	return r.Previous == nil || math.Abs(*r.Previous-r.Price) > changeEpsilon
}

// Line renders the result as a single report line.
func (r ItemResult) Line() string {
	prefix := "• *" + r.Name + "*: "
	if r.Err != nil {
		switch pricewatch.ErrorCode(r.Err) {
		case pricewatch.ENOTFOUND:
			return prefix + "could not find price"
		case pricewatch.EINVALID:
			return prefix + "invalid rule: " + pricewatch.ErrorMessage(r.Err)
		default:
			return prefix + "error: " + pricewatch.ErrorMessage(r.Err)
		}
	}

	line := prefix + pricewatch.FormatPrice(r.Currency, r.Price)
	switch {
	case r.Previous == nil:
		return line + " (new)"
	case !r.Changed():
		return line + " (no change)"
	case r.Price > *r.Previous:
		return line + " (+" + pricewatch.FormatPrice(r.Currency, r.Price-*r.Previous) + ")"
	default:
		return line + " (-" + pricewatch.FormatPrice(r.Currency, *r.Previous-r.Price) + ")"
	}
}

// Report summarizes a run over all enabled items, in configuration order.
type Report struct {
	Date    time.Time
	Items   []ItemResult
	Tracked int
	Changes int
	Errors  int
}

// NewReport builds a Report and its counters from results.
func NewReport(date time.Time, results []ItemResult) *Report {
	r := &Report{Date: date, Items: results, Tracked: len(results)}
	for _, res := range results {
		if res.Err != nil {
			r.Errors++
		} else if res.Changed() {
			r.Changes++
		}
	}
	return r
}

// String renders the report as Telegram Markdown.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Daily Price Report: %s*", r.Date.UTC().Format("2006-01-02"))
	for _, res := range r.Items {
		b.WriteString("\n")
		b.WriteString(res.Line())
	}
	if len(r.Items) == 0 {
		b.WriteString("\n_No items configured._")
	}
	if r.Errors > 0 {
		b.WriteString("\n\n_One or more items returned errors. Check selectors/regex or site changes._")
	}
	fmt.Fprintf(&b, "\n\nTracked %d item(s); %d change(s).", r.Tracked, r.Changes)
	return b.String()
}
