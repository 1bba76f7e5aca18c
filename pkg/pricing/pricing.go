// Package pricing converts scraped source prices into listing prices using
// a fixed markup factor and psychological .99 rounding.
package pricing

import (
	"math"
	"strconv"
	"strings"
)

// DefaultMarkup is the default markup factor (+7.5%)
const DefaultMarkup = 1.075

// Transform applies the markup-and-round-to-.99 pricing policy
type Transform struct {
	Markup float64
}

// New creates a Transform; a non-positive markup falls back to the default
func New(markup float64) Transform {
	if markup <= 0 {
		markup = DefaultMarkup
	}
	return Transform{Markup: markup}
}

// Adjust converts a raw scraped price into a listing price string with two
// decimal places and a fractional part of .99. The input may carry a
// currency symbol, surrounding whitespace, or a comma decimal separator.
//
// On parse failure the original input is returned unchanged with ok=false;
// a bad price never aborts the product.
func (t Transform) Adjust(raw string) (string, bool) {
	value, err := Parse(raw)
	if err != nil || value <= 0 {
		return raw, false
	}
	return strconv.FormatFloat(t.AdjustValue(value), 'f', 2, 64), true
}

// AdjustValue applies the markup and rounding to an already-parsed price
func (t Transform) AdjustValue(price float64) float64 {
	marked := price * t.Markup

	floor := math.Floor(marked)
	var out float64
	if marked-floor < 0.99 {
		out = floor + 0.99
	} else {
		out = math.Ceil(marked) + 0.99
	}

	return math.Round(out*100) / 100
}

// Parse extracts a decimal value from a scraped price string, stripping
// currency markers and normalizing comma decimal separators ("€45,00" → 45).
func Parse(raw string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == '.' || r == ',' || r == '-':
			return r
		default:
			return -1
		}
	}, strings.TrimSpace(raw))

	// "1.234,56" style: dots are thousands separators, comma is decimal
	if strings.Contains(cleaned, ",") {
		if strings.Contains(cleaned, ".") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}

	return strconv.ParseFloat(cleaned, 64)
}
