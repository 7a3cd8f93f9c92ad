// Package track runs the daily price check: it fetches every enabled item,
// extracts its price, compares it with the last stored price and builds
// the report.
package track

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/pricewatch"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of items fetched in parallel.
const DefaultConcurrency = 4

// Tracker orchestrates a run over the configured items.
type Tracker struct {
	Fetcher pricewatch.Fetcher

	// RenderFetcher serves items with Render set. Falls back to Fetcher
	// when nil.
	RenderFetcher pricewatch.Fetcher

	Extractor pricewatch.PriceExtractor
	State     pricewatch.StateStore

	// Observations, when set, receives one observation per priced item.
	Observations pricewatch.ObservationService

	RateLimiter pricewatch.DomainLimiter
	Concurrency int

	// RetryDelays are the waits between fetch attempts. Nil disables retry.
	RetryDelays []time.Duration

	// DryRun reads previous prices but writes nothing.
	DryRun bool

	// Logger, if set, receives retry messages.
	Logger LogFunc

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Run tracks the enabled items and returns the report. Per-item failures
// are recorded in the report; Run itself only fails when ctx is done.
func (t *Tracker) Run(ctx context.Context, items []*pricewatch.Item) (*Report, error) {
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	started := now()

	enabled := pricewatch.EnabledItems(items)

	concurrency := t.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]ItemResult, len(enabled))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, item := range enabled {
		g.Go(func() error {
			results[i] = t.trackItem(gctx, item, now)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return NewReport(started, results), nil
}

// trackItem prices a single item and updates its stored state.
func (t *Tracker) trackItem(ctx context.Context, item *pricewatch.Item, now func() time.Time) ItemResult {
	result := ItemResult{
		Name:     item.Name,
		Currency: item.CurrencySymbol(),
	}

	if err := item.Validate(); err != nil {
		result.Err = err
		return result
	}

	html, err := t.fetch(ctx, item)
	if err != nil {
		result.Err = err
		return result
	}

	price, ok, err := t.Extractor.ExtractPrice(html, item.ExtractionHints)
	if err != nil {
		result.Err = err
		return result
	}
	if !ok {
		result.Err = pricewatch.Errorf(pricewatch.ENOTFOUND, "could not find price")
		return result
	}
	result.Price = price

	key := pricewatch.StateKey(item.Name)
	prev, err := t.previous(ctx, key)
	if err != nil {
		result.Err = err
		return result
	}
	result.Previous = prev

	if t.DryRun {
		return result
	}

	if err := t.State.Put(ctx, key, pricewatch.FormatDecimal(price)); err != nil {
		result.Err = fmt.Errorf("saving price: %w", err)
		return result
	}

	if t.Observations != nil {
		obs := &pricewatch.Observation{
			ItemName:    item.Name,
			URL:         item.URL,
			Price:       price,
			Currency:    result.Currency,
			ContentHash: ComputeHash(html),
			ObservedAt:  now(),
		}
		if err := t.Observations.CreateObservation(ctx, obs); err != nil {
			result.Err = fmt.Errorf("recording observation: %w", err)
			return result
		}
	}

	return result
}

// fetch retrieves the item's page within its timeout.
func (t *Tracker) fetch(ctx context.Context, item *pricewatch.Item) (string, error) {
	if t.RateLimiter != nil {
		u, err := url.Parse(item.URL)
		if err != nil {
			return "", pricewatch.Errorf(pricewatch.EINVALID, "item %q: %v", item.Name, err)
		}
		if err := t.RateLimiter.Wait(ctx, u.Host); err != nil {
			return "", err
		}
	}

	fetcher := t.Fetcher
	if item.Render && t.RenderFetcher != nil {
		fetcher = t.RenderFetcher
	}

	ctx, cancel := context.WithTimeout(ctx, item.Timeout())
	defer cancel()

	return FetchWithRetry(ctx, item.URL, fetcher.Fetch, t.Logger, t.RetryDelays)
}

// previous returns the stored price under key, or nil if there is none.
// An unreadable stored value is treated as missing.
func (t *Tracker) previous(ctx context.Context, key string) (*float64, error) {
	s, err := t.State.Get(ctx, key)
	if pricewatch.ErrorCode(err) == pricewatch.ENOTFOUND {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("reading previous price: %w", err)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, nil
	}
	return &v, nil
}

// ComputeHash computes a hash of the content using xxhash.
func ComputeHash(content string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}

