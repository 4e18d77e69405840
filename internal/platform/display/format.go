package display

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// Placeholder stands in for a metric that cannot be computed yet, such
	// as a ratio over a zero denominator.
	Placeholder = "--"
	// Empty stands in for a missing field value.
	Empty = "—"
)

var printer = message.NewPrinter(language.MustParse("en-IN"))

// Percent returns numerator/denominator*100, or nil when the denominator is
// zero.
func Percent(numerator, denominator float64) *float64 {
	if denominator == 0 {
		return nil
	}
	p := numerator / denominator * 100
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return nil
	}
	return &p
}

// FormatPercent renders one decimal place, or the placeholder for nil.
func FormatPercent(p *float64) string {
	if p == nil {
		return Placeholder
	}
	return fmt.Sprintf("%.1f%%", *p)
}

// ClampPercent bounds p to [0, 100] for progress bars.
func ClampPercent(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := math.Min(100, math.Max(0, *p))
	return &v
}

// FormatCount renders n with en-IN digit grouping.
func FormatCount(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatINR renders an amount in rupees without fractional digits, or the
// empty marker for nil.
func FormatINR(amount *float64) string {
	if amount == nil {
		return Empty
	}
	return "₹" + printer.Sprintf("%.0f", *amount)
}

// Fallback trims s and returns the empty marker for blank values.
func Fallback(s string) string {
	if t := strings.TrimSpace(s); t != "" {
		return t
	}
	return Empty
}

// JoinNonBlank joins the non-blank parts with sep.
func JoinNonBlank(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, sep)
}

// FormatDate renders an ISO date or timestamp as "02 Jan 2006". Values that
// do not parse are returned unchanged; blanks become the empty marker.
func FormatDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return Empty
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("02 Jan 2006")
		}
	}
	return value
}
