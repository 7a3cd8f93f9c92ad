package pricewatch

import (
	"net/url"
	"time"
)

// DefaultTimeout is the fetch timeout for items that don't set TimeoutMs.
const DefaultTimeout = 20 * time.Second

// Item is a product page being tracked.
type Item struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`

	ExtractionHints `yaml:",inline"`

	// Currency is the symbol printed in front of prices. Defaults to "€".
	Currency string `json:"currency,omitempty" yaml:"currency,omitempty"`

	// Enabled excludes the item from runs when explicitly false.
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// TimeoutMs bounds the page fetch. Zero means DefaultTimeout.
	TimeoutMs int `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`

	// Render fetches the page through a headless browser so prices
	// injected by JavaScript are present in the HTML.
	Render bool `json:"render,omitempty" yaml:"render,omitempty"`
}

// Validate returns an error if the item contains invalid fields.
func (i *Item) Validate() error {
	if i.Name == "" {
		return Errorf(EINVALID, "item name required")
	}
	if i.URL == "" {
		return Errorf(EINVALID, "item %q: url required", i.Name)
	}
	u, err := url.Parse(i.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Errorf(EINVALID, "item %q: url must be an absolute http(s) URL", i.Name)
	}
	if i.TimeoutMs < 0 {
		return Errorf(EINVALID, "item %q: timeoutMs must not be negative", i.Name)
	}
	return nil
}

// IsEnabled reports whether the item takes part in runs.
func (i *Item) IsEnabled() bool {
	return i.Enabled == nil || *i.Enabled
}

// Timeout returns the fetch timeout for the item.
func (i *Item) Timeout() time.Duration {
	if i.TimeoutMs <= 0 {
		return DefaultTimeout
	}
	return time.Duration(i.TimeoutMs) * time.Millisecond
}

// CurrencySymbol returns the configured currency or DefaultCurrency.
func (i *Item) CurrencySymbol() string {
	if i.Currency == "" {
		return DefaultCurrency
	}
	return i.Currency
}

// EnabledItems returns the items that take part in runs, in order.
func EnabledItems(items []*Item) []*Item {
	var out []*Item
	for _, it := range items {
		if it.IsEnabled() {
			out = append(out, it)
		}
	}
	return out
}
