package core

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatLKR renders an amount in Sri Lankan rupees with two decimal places
// and en-LK digit grouping, e.g. "Rs 12,500.00".
func FormatLKR(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)

	neg := strings.HasPrefix(fixed, "-")
	if neg {
		fixed = fixed[1:]
	}

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	out := "Rs " + b.String() + "." + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

// TimeAgo renders how long ago t was relative to now, in the coarsest unit
// that fits ("3 days ago", "just now").
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}

	steps := []struct {
		unit time.Duration
		name string
	}{
		{365 * 24 * time.Hour, "year"},
		{30 * 24 * time.Hour, "month"},
		{24 * time.Hour, "day"},
		{time.Hour, "hour"},
		{time.Minute, "minute"},
	}
	for _, s := range steps {
		if n := int(d / s.unit); n >= 1 {
			return plural(n, s.name) + " ago"
		}
	}

	secs := int(d / time.Second)
	if secs < 5 {
		return "just now"
	}
	return plural(secs, "second") + " ago"
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}
