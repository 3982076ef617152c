// Package datemath holds the calendar-day arithmetic shared by the KPI
// calculator and the timeline layout.
package datemath

import (
	"fmt"
	"math"
	"time"
)

const (
	// DateLayout is the wire format of schedule dates.
	DateLayout = "2006-01-02"
	day        = 24 * time.Hour
)

// Noon returns 12:00 UTC on t's calendar day. The day is read in t's own
// location so a local midnight never slides into the previous day.
func Noon(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

// DayDiff returns the number of calendar days from a to b, rounded to the
// nearest integer. It is negative when b precedes a.
func DayDiff(a, b time.Time) int {
	diff := Noon(b).Sub(Noon(a))
	return int(math.Round(float64(diff) / float64(day)))
}

// AddDays moves t by n calendar days, keeping its wall clock.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfISOWeek returns the Monday of the ISO week containing t.
func StartOfISOWeek(t time.Time) time.Time {
	d := StartOfDay(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// StartOfMonth returns the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// StartOfQuarter returns the first day of t's calendar quarter.
func StartOfQuarter(t time.Time) time.Time {
	y, m, _ := t.Date()
	q := (int(m)-1)/3*3 + 1
	return time.Date(y, time.Month(q), 1, 0, 0, 0, 0, t.Location())
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD; the zero time renders empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// MinMax returns the earliest and latest non-zero times in ts.
// ok is false when every value is zero.
func MinMax(ts ...time.Time) (lo, hi time.Time, ok bool) {
	for _, t := range ts {
		if t.IsZero() {
			continue
		}
		if !ok {
			lo, hi, ok = t, t, true
			continue
		}
		if t.Before(lo) {
			lo = t
		}
		if t.After(hi) {
			hi = t
		}
	}
	return lo, hi, ok
}
