package pricewatch

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MaxFragmentLen caps the number of characters handed to ParsePrice
// by the extraction strategies.
const MaxFragmentLen = 5000

// DefaultCurrency is the symbol used when an item does not configure one.
const DefaultCurrency = "€"

// priceRe matches an optional currency symbol, a whole part made of 3-digit
// groups (or a bare digit run), and an optional 1-2 digit fraction.
// The grouped form needs at least one separator so that "1234" is read as a
// bare digit run instead of stopping after "123".
var priceRe = regexp.MustCompile(`(?:€|\$|£)?\s*([0-9]{1,3}(?:[.,\s][0-9]{3})+|[0-9]+)(?:[.,]([0-9]{1,2}))?\s*(?:€|\$|£)?`)

// ParsePrice returns the first price-looking number in text.
//
// Any '.', ',' or space inside the whole part is a grouping separator; only a
// trailing 1-2 digit suffix is treated as the fraction. Both "1.234,56" and
// "1,234.56" parse to 1234.56, and "1234" parses to 1234. The currency symbol
// is discarded. Returns false when nothing matches or the value is not finite.
func ParsePrice(text string) (float64, bool) {
	text = strings.ReplaceAll(text, "\u00a0", " ")

	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}

	whole := strings.Map(func(r rune) rune {
		switch r {
		case '.', ',', ' ', '\t', '\n', '\r', '\f', '\v':
			return -1
		}
		return r
	}, m[1])

	s := whole
	if m[2] != "" {
		s += "." + m[2]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// FormatPrice renders a price with exactly two decimals behind the currency
// symbol, e.g. "€1299.00". An empty currency falls back to DefaultCurrency.
func FormatPrice(currency string, v float64) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	return currency + strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatDecimal renders a price as the shortest decimal string that parses
// back to the same value. This is the form kept in the state store.
func FormatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// TruncateFragment returns at most MaxFragmentLen characters of s.
func TruncateFragment(s string) string {
	if len(s) <= MaxFragmentLen {
		return s
	}
	n := 0
	for i := range s {
		if n == MaxFragmentLen {
			return s[:i]
		}
		n++
	}
	return s
}
