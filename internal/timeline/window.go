package timeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/planpilot/internal/datemath"
	"github.com/alexanderramin/planpilot/internal/domain"
)

const (
	LeadDays  = 5
	TrailDays = 10

	maxPeriods    = 1000
	maxDayPeriods = 10000
)

// ErrInvalidDateRange is returned when a window cannot be enumerated.
var ErrInvalidDateRange = errors.New("invalid date range")

type Window struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	TotalDays int       `json:"totalDays"`
}

// ComputeWindow spans the earliest start minus LeadDays to the latest end
// plus TrailDays. Without any dated task it collapses to now.
func ComputeWindow(tasks []domain.Task, now time.Time) Window {
	starts := make([]time.Time, 0, len(tasks))
	ends := make([]time.Time, 0, len(tasks))
	for _, t := range tasks {
		starts = append(starts, t.Start)
		ends = append(ends, t.End)
	}
	lo, _, okStart := datemath.MinMax(starts...)
	_, hi, okEnd := datemath.MinMax(ends...)
	switch {
	case !okStart && !okEnd:
		return Window{Start: now, End: now}
	case !okStart:
		lo = hi
	case !okEnd:
		_, hi, _ = datemath.MinMax(starts...)
	}

	start := datemath.StartOfDay(datemath.AddDays(lo, -LeadDays))
	end := datemath.StartOfDay(datemath.AddDays(hi, TrailDays))
	return Window{Start: start, End: end, TotalDays: datemath.DayDiff(start, end)}
}

// Periods enumerates the axis ticks of w at the given scale. A range that
// ends before it starts, or one needing more ticks than the scale allows,
// yields ErrInvalidDateRange rather than a truncated axis.
func Periods(w Window, scale Scale) ([]time.Time, error) {
	if w.End.Before(w.Start) {
		return nil, fmt.Errorf("%w: end %s before start %s", ErrInvalidDateRange,
			datemath.FormatDate(w.End), datemath.FormatDate(w.Start))
	}

	var (
		cur   time.Time
		step  func(time.Time) time.Time
		limit = maxPeriods
	)
	switch scale {
	case ScaleWeeks:
		cur = datemath.StartOfISOWeek(w.Start)
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 7) }
	case ScaleMonths:
		cur = datemath.StartOfMonth(w.Start)
		step = func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }
	case ScaleQuarters:
		cur = datemath.StartOfQuarter(w.Start)
		step = func(t time.Time) time.Time { return t.AddDate(0, 3, 0) }
	default:
		cur = datemath.StartOfDay(w.Start)
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }
		limit = maxDayPeriods
	}

	var out []time.Time
	for !cur.After(w.End) {
		if len(out) == limit {
			return nil, fmt.Errorf("%w: more than %d %s between %s and %s", ErrInvalidDateRange,
				limit, scale, datemath.FormatDate(w.Start), datemath.FormatDate(w.End))
		}
		out = append(out, cur)
		cur = step(cur)
	}
	return out, nil
}
