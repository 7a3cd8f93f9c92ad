package track_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/pricewatch"
	"github.com/fwojciec/pricewatch/extract"
	"github.com/fwojciec/pricewatch/goquery"
	"github.com/fwojciec/pricewatch/mock"
	"github.com/fwojciec/pricewatch/track"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memState returns a StateStore mock backed by a map.
func memState(initial map[string]string) (*mock.StateStore, map[string]string) {
	var mu sync.Mutex
	data := make(map[string]string)
	for k, v := range initial {
		data[k] = v
	}
	return &mock.StateStore{
		GetFn: func(ctx context.Context, key string) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			v, ok := data[key]
			if !ok {
				return "", pricewatch.Errorf(pricewatch.ENOTFOUND, "no value for %q", key)
			}
			return v, nil
		},
		PutFn: func(ctx context.Context, key, value string) error {
			mu.Lock()
			defer mu.Unlock()
			data[key] = value
			return nil
		},
	}, data
}

// pages returns a Fetcher mock serving fixed HTML per URL.
func pages(byURL map[string]string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			html, ok := byURL[url]
			if !ok {
				return "", pricewatch.Errorf(pricewatch.EUPSTREAM, "HTTP 404")
			}
			return html, nil
		},
		CloseFn: func() error { return nil },
	}
}

func newTracker(fetcher pricewatch.Fetcher, state pricewatch.StateStore) *track.Tracker {
	return &track.Tracker{
		Fetcher:   fetcher,
		Extractor: extract.NewExtractor(goquery.NewSelector()),
		State:     state,
		Now: func() time.Time {
			return time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
		},
	}
}

func TestTracker_Run(t *testing.T) {
	t.Parallel()

	t.Run("reports new, unchanged and moved prices", func(t *testing.T) {
		t.Parallel()

		fetcher := pages(map[string]string{
			"https://shop.example.com/kettle": `<span class="price">€ 34,50</span>`,
			"https://shop.example.com/lamp":   `<span class="price">€ 89,00</span>`,
			"https://shop.example.com/chair":  `<meta property="product:price:amount" content="129.00">`,
		})
		state, data := memState(map[string]string{
			"last:Kettle": "39.99",
			"last:Lamp":   "89",
		})
		items := []*pricewatch.Item{
			{Name: "Kettle", URL: "https://shop.example.com/kettle", ExtractionHints: pricewatch.ExtractionHints{Selector: ".price"}},
			{Name: "Lamp", URL: "https://shop.example.com/lamp", ExtractionHints: pricewatch.ExtractionHints{Selector: ".price"}},
			{Name: "Chair", URL: "https://shop.example.com/chair", ExtractionHints: pricewatch.ExtractionHints{
				Selector: "meta[property='product:price:amount']", Attribute: "content",
			}},
		}

		report, err := newTracker(fetcher, state).Run(context.Background(), items)

		require.NoError(t, err)
		want := "*Daily Price Report: 2026-10-19*\n" +
			"• *Kettle*: €34.50 (-€5.49)\n" +
			"• *Lamp*: €89.00 (no change)\n" +
			"• *Chair*: €129.00 (new)\n" +
			"\n" +
			"Tracked 3 item(s); 2 change(s)."
		assert.Equal(t, want, report.String())
		assert.Equal(t, "34.5", data["last:Kettle"])
		assert.Equal(t, "89", data["last:Lamp"])
		assert.Equal(t, "129", data["last:Chair"])
	})

	t.Run("skips disabled items", func(t *testing.T) {
		t.Parallel()

		disabled := false
		fetcher := pages(map[string]string{
			"https://shop.example.com/kettle": `<span class="price">39.99</span>`,
		})
		state, _ := memState(nil)
		items := []*pricewatch.Item{
			{Name: "Kettle", URL: "https://shop.example.com/kettle", ExtractionHints: pricewatch.ExtractionHints{Selector: ".price"}},
			{Name: "Old", URL: "https://shop.example.com/old", Enabled: &disabled},
		}

		report, err := newTracker(fetcher, state).Run(context.Background(), items)

		require.NoError(t, err)
		assert.Equal(t, 1, report.Tracked)
		assert.NotContains(t, report.String(), "Old")
	})

	t.Run("isolates per-item failures", func(t *testing.T) {
		t.Parallel()

		fetcher := pages(map[string]string{
			"https://shop.example.com/kettle": `<span class="price">39.99</span>`,
			"https://shop.example.com/empty":  `<p>Sold out</p>`,
			"https://shop.example.com/broken": `<span class="price">12</span>`,
		})
		state, data := memState(nil)
		items := []*pricewatch.Item{
			{Name: "Missing", URL: "https://shop.example.com/missing"},
			{Name: "Empty", URL: "https://shop.example.com/empty", ExtractionHints: pricewatch.ExtractionHints{Selector: ".price"}},
			{Name: "Broken", URL: "https://shop.example.com/broken", ExtractionHints: pricewatch.ExtractionHints{Pattern: "("}},
			{Name: "Kettle", URL: "https://shop.example.com/kettle", ExtractionHints: pricewatch.ExtractionHints{Selector: ".price"}},
		}

		report, err := newTracker(fetcher, state).Run(context.Background(), items)

		require.NoError(t, err)
		require.Len(t, report.Items, 4)
		assert.Equal(t, "• *Missing*: error: HTTP 404", report.Items[0].Line())
		assert.Equal(t, "• *Empty*: could not find price", report.Items[1].Line())
		assert.Contains(t, report.Items[2].Line(), "• *Broken*: invalid rule: ")
		assert.Equal(t, "• *Kettle*: €39.99 (new)", report.Items[3].Line())
		assert.Equal(t, 3, report.Errors)
		assert.Equal(t, 1, report.Changes)
		assert.Contains(t, report.String(), "_One or more items returned errors.")
		assert.Equal(t, map[string]string{"last:Kettle": "39.99"}, data)
	})

	t.Run("reports invalid item as invalid rule", func(t *testing.T) {
		t.Parallel()

		state, _ := memState(nil)
		items := []*pricewatch.Item{{Name: "Relative", URL: "/kettle"}}

		report, err := newTracker(pages(nil), state).Run(context.Background(), items)

		require.NoError(t, err)
		assert.Contains(t, report.Items[0].Line(), "invalid rule: ")
	})

	t.Run("keeps configuration order under concurrency", func(t *testing.T) {
		t.Parallel()

		var inFlight, maxInFlight atomic.Int32
		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				n := inFlight.Add(1)
				defer inFlight.Add(-1)
				for {
					m := maxInFlight.Load()
					if n <= m || maxInFlight.CompareAndSwap(m, n) {
						break
					}
				}
				// Earlier items finish last.
				if url == "https://shop.example.com/0" {
					time.Sleep(30 * time.Millisecond)
				}
				return `<span class="price">10</span>`, nil
			},
		}
		state, _ := memState(nil)
		var items []*pricewatch.Item
		for _, n := range []string{"0", "1", "2", "3", "4", "5"} {
			items = append(items, &pricewatch.Item{
				Name:            "item-" + n,
				URL:             "https://shop.example.com/" + n,
				ExtractionHints: pricewatch.ExtractionHints{Selector: ".price"},
			})
		}
		tracker := newTracker(fetcher, state)
		tracker.Concurrency = 2

		report, err := tracker.Run(context.Background(), items)

		require.NoError(t, err)
		require.Len(t, report.Items, 6)
		for i, res := range report.Items {
			assert.Equal(t, items[i].Name, res.Name)
		}
		assert.LessOrEqual(t, maxInFlight.Load(), int32(2))
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		t.Parallel()

		fetcher := pages(map[string]string{
			"https://shop.example.com/kettle": `<span class="price">34.50</span>`,
		})
		state, data := memState(map[string]string{"last:Kettle": "39.99"})
		observations := &mock.ObservationService{
			CreateObservationFn: func(ctx context.Context, obs *pricewatch.Observation) error {
				t.Error("observation recorded during dry run")
				return nil
			},
		}
		tracker := newTracker(fetcher, state)
		tracker.Observations = observations
		tracker.DryRun = true

		report, err := tracker.Run(context.Background(), []*pricewatch.Item{
			{Name: "Kettle", URL: "https://shop.example.com/kettle", ExtractionHints: pricewatch.ExtractionHints{Selector: ".price"}},
		})

		require.NoError(t, err)
		assert.Equal(t, "• *Kettle*: €34.50 (-€5.49)", report.Items[0].Line())
		assert.Equal(t, "39.99", data["last:Kettle"])
	})

	t.Run("records observation with content hash", func(t *testing.T) {
		t.Parallel()

		html := `<span class="price">£ 12.00</span>`
		fetcher := pages(map[string]string{"https://shop.example.co.uk/mug": html})
		state, _ := memState(nil)
		var recorded []*pricewatch.Observation
		tracker := newTracker(fetcher, state)
		tracker.Observations = &mock.ObservationService{
			CreateObservationFn: func(ctx context.Context, obs *pricewatch.Observation) error {
				recorded = append(recorded, obs)
				return nil
			},
		}

		_, err := tracker.Run(context.Background(), []*pricewatch.Item{
			{Name: "Mug", URL: "https://shop.example.co.uk/mug", Currency: "£", ExtractionHints: pricewatch.ExtractionHints{Selector: ".price"}},
		})

		require.NoError(t, err)
		require.Len(t, recorded, 1)
		assert.Equal(t, "Mug", recorded[0].ItemName)
		assert.Equal(t, "£", recorded[0].Currency)
		assert.InDelta(t, 12.0, recorded[0].Price, 1e-9)
		assert.Equal(t, track.ComputeHash(html), recorded[0].ContentHash)
		assert.Equal(t, time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC), recorded[0].ObservedAt)
	})

	t.Run("uses render fetcher for rendered items", func(t *testing.T) {
		t.Parallel()

		plain := pages(map[string]string{"https://shop.example.com/spa": `<div id="app"></div>`})
		rendered := pages(map[string]string{"https://shop.example.com/spa": `<div id="app"><b class="price">19.99</b></div>`})
		state, _ := memState(nil)
		tracker := newTracker(plain, state)
		tracker.RenderFetcher = rendered

		report, err := tracker.Run(context.Background(), []*pricewatch.Item{
			{Name: "Spa", URL: "https://shop.example.com/spa", Render: true, ExtractionHints: pricewatch.ExtractionHints{Selector: ".price"}},
		})

		require.NoError(t, err)
		assert.Equal(t, "• *Spa*: €19.99 (new)", report.Items[0].Line())
	})

	t.Run("rate limits by host", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var hosts []string
		fetcher := pages(map[string]string{"https://shop.example.com/kettle": `<i class="price">5</i>`})
		state, _ := memState(nil)
		tracker := newTracker(fetcher, state)
		tracker.RateLimiter = &mock.DomainLimiter{
			WaitFn: func(ctx context.Context, host string) error {
				mu.Lock()
				defer mu.Unlock()
				hosts = append(hosts, host)
				return nil
			},
		}

		_, err := tracker.Run(context.Background(), []*pricewatch.Item{
			{Name: "Kettle", URL: "https://shop.example.com/kettle", ExtractionHints: pricewatch.ExtractionHints{Selector: ".price"}},
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"shop.example.com"}, hosts)
	})

	t.Run("applies item timeout to fetch", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				<-ctx.Done()
				return "", pricewatch.Errorf(pricewatch.EUPSTREAM, "timeout fetching %s", url)
			},
		}
		state, _ := memState(nil)

		report, err := newTracker(fetcher, state).Run(context.Background(), []*pricewatch.Item{
			{Name: "Slow", URL: "https://shop.example.com/slow", TimeoutMs: 20},
		})

		require.NoError(t, err)
		assert.Equal(t, "• *Slow*: error: timeout fetching https://shop.example.com/slow", report.Items[0].Line())
	})

	t.Run("returns error when canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		state, _ := memState(nil)

		_, err := newTracker(pages(nil), state).Run(ctx, []*pricewatch.Item{
			{Name: "Kettle", URL: "https://shop.example.com/kettle"},
		})

		assert.ErrorIs(t, err, context.Canceled)
	})
}
