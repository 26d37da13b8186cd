package domain

import (
	"math"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	// friendlyDateLayout is the dashboard "last updated" format.
	friendlyDateLayout = "Jan 2, 2006, 3:04 PM"
	// localeDateTimeLayout matches an en-US toLocaleString rendering.
	localeDateTimeLayout = "1/2/2006, 3:04:05 PM"
)

// printer groups digits with the English separator.
var printer = message.NewPrinter(language.English)

// Commafy renders a count with a thousands separator every three digits.
// Absent counts render as Placeholder. Fractional values keep at most two
// fraction digits.
func Commafy(c Count) string {
	v, ok := c.Value()
	if !ok {
		return Placeholder
	}
	if v == math.Trunc(v) && math.Abs(v) < math.MaxInt64 {
		return CommafyInt(int64(v))
	}
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// CommafyInt renders n with thousands separators, e.g. 1234567 -> "1,234,567".
func CommafyInt(n int64) string {
	return printer.Sprintf("%d", n)
}

// CaseBadge abbreviates a case count for the marker badge. The rule is a
// plain string truncation, not rounding: above 1,000 the last three digits
// become "k+", and above 1,000,000 the last five characters of that result
// become "m+". 1500 -> "1k+", 1000000 -> "1000k+", 1234567 -> "1m+".
// Fractional counts are cut the same way: 1000.5 -> "100k+".
func CaseBadge(c Count) string {
	v, ok := c.Value()
	if !ok {
		return Placeholder
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v > 1000 {
		s = s[:len(s)-3] + "k+"
	}
	if v > 1000000 {
		s = s[:len(s)-5] + "m+"
	}
	return s
}

// FriendlyDate renders an epoch-millisecond timestamp for the dashboard.
// A nil location means UTC.
func FriendlyDate(ms Count, loc *time.Location) string {
	t, ok := epochMillis(ms, loc)
	if !ok {
		return Placeholder
	}
	return t.Format(friendlyDateLayout)
}

// LocaleDateTime renders an epoch-millisecond timestamp for a marker
// tooltip. It returns "" when the timestamp is absent so the caller can
// omit the line.
func LocaleDateTime(ms Count, loc *time.Location) string {
	t, ok := epochMillis(ms, loc)
	if !ok {
		return ""
	}
	return t.Format(localeDateTimeLayout)
}

func epochMillis(ms Count, loc *time.Location) (time.Time, bool) {
	if !ms.Valid() {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(ms.Int64()).In(loc), true
}
