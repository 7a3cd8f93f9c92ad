package main

import (
	"fmt"

	"github.com/fwojciec/pricewatch"
	"github.com/fwojciec/pricewatch/extract"
	"github.com/fwojciec/pricewatch/track"
)

// Run executes the check command.
func (c *CheckCmd) Run(deps *Dependencies) error {
	hints := pricewatch.ExtractionHints{
		Selector:  c.Selector,
		Pattern:   c.Pattern,
		Attribute: c.Attribute,
	}

	if c.Probe {
		return c.probe(deps, hints)
	}

	fetcher := deps.Fetcher
	if c.Render {
		fetcher = deps.RenderFetcher
	}

	html, err := fetcher.Fetch(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	res, err := deps.Extractor.Explain(html, hints)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	if res.OK {
		fmt.Fprintf(deps.Stdout, "price:    %s\n", pricewatch.FormatPrice(c.Currency, res.Price))
		fmt.Fprintf(deps.Stdout, "strategy: %s\n", res.Strategy)
		if res.Strategy != extract.StrategyDocument {
			fmt.Fprintf(deps.Stdout, "fragment: %q\n", truncate(res.Fragment, 80))
		}
	} else {
		fmt.Fprintln(deps.Stdout, "price:    not found")
	}

	if c.Suggest || (!res.OK && hints == (pricewatch.ExtractionHints{})) {
		c.suggest(deps, html)
	}

	return nil
}

// probe reports whether the page needs browser rendering for hints.
func (c *CheckCmd) probe(deps *Dependencies, hints pricewatch.ExtractionHints) error {
	res, err := track.ProbeRender(deps.Ctx, c.URL, hints, deps.Fetcher, deps.RenderFetcher, deps.Extractor)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	if res.Found {
		fmt.Fprintf(deps.Stdout, "price:    %s\n", pricewatch.FormatPrice(c.Currency, res.Price))
	} else {
		fmt.Fprintln(deps.Stdout, "price:    not found")
	}
	if res.NeedsRender {
		fmt.Fprintln(deps.Stdout, "render:   needed (set render: true for this item)")
	} else {
		fmt.Fprintln(deps.Stdout, "render:   not needed")
	}
	return nil
}

// suggest prints hints detected from common price markup along with the
// price each one yields.
func (c *CheckCmd) suggest(deps *Dependencies, html string) {
	suggestions := deps.Detector.DetectHints(html)
	if len(suggestions) == 0 {
		fmt.Fprintln(deps.Stdout, "No price markup recognized. Try --render or a --pattern.")
		return
	}

	fmt.Fprintln(deps.Stdout, "\nSuggested hints:")
	for _, h := range suggestions {
		line := fmt.Sprintf("  selector: %q", h.Selector)
		if h.Attribute != "" {
			line += fmt.Sprintf("  attribute: %q", h.Attribute)
		}
		if price, ok, err := deps.Extractor.ExtractPrice(html, h); err == nil && ok {
			line += "  => " + pricewatch.FormatPrice(c.Currency, price)
		}
		fmt.Fprintln(deps.Stdout, line)
	}
}

// truncate shortens s to at most n runes for display.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
