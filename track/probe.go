package track

import (
	"context"

	"github.com/fwojciec/pricewatch"
)

// ProbeResult tells whether a page needs browser rendering to show its price.
type ProbeResult struct {
	NeedsRender bool

	// Price is the price found by the fetcher the probe settled on.
	Price float64
	Found bool
}

// ProbeRender fetches url with plain and, only if that yields no price,
// with rendered, and reports which one to use for the item.
//
// A plain fetch that fails falls back to rendering. When neither fetcher
// yields a price the result recommends the plain fetcher with Found unset.
// Extraction errors (broken hints) are returned as is.
func ProbeRender(ctx context.Context, url string, hints pricewatch.ExtractionHints, plain, rendered pricewatch.Fetcher, extractor pricewatch.PriceExtractor) (ProbeResult, error) {
	plainHTML, plainErr := plain.Fetch(ctx, url)
	if plainErr == nil {
		price, ok, err := extractor.ExtractPrice(plainHTML, hints)
		if err != nil {
			return ProbeResult{}, err
		}
		if ok {
			return ProbeResult{Price: price, Found: true}, nil
		}
	}

	renderedHTML, err := rendered.Fetch(ctx, url)
	if err != nil {
		if plainErr != nil {
			return ProbeResult{}, plainErr
		}
		return ProbeResult{}, nil
	}

	price, ok, err := extractor.ExtractPrice(renderedHTML, hints)
	if err != nil {
		return ProbeResult{}, err
	}
	if ok {
		return ProbeResult{NeedsRender: true, Price: price, Found: true}, nil
	}
	return ProbeResult{NeedsRender: plainErr != nil}, nil
}
