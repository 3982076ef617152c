// Package kpi derives earned-value metrics from a schedule and a budget.
package kpi

import (
	"math"
	"time"

	"github.com/alexanderramin/planpilot/internal/datemath"
	"github.com/alexanderramin/planpilot/internal/domain"
)

// AssumedCostOverrun stands in for a measured actual cost: AC = EV * 1.08.
// Callers that track real spend pass Input.ActualCost instead.
const AssumedCostOverrun = 1.08

// Snapshot is the derived metric set. It lives in domain so generated
// reports can cache it.
type Snapshot = domain.KPISnapshot

type Input struct {
	Tasks  []domain.Task
	Budget *domain.Budget
	// Now is the reference date for the elapsed share of the window.
	Now time.Time
	// ActualCost overrides the assumed overrun when a measured value exists.
	ActualCost *float64
}

// Neutral is the "no data yet" snapshot.
func Neutral() Snapshot {
	return Snapshot{SPI: 1, CPI: 1}
}

// CalculateKPIs is Calculate without a measured actual cost.
func CalculateKPIs(tasks []domain.Task, budget *domain.Budget, now time.Time) Snapshot {
	return Calculate(Input{Tasks: tasks, Budget: budget, Now: now})
}

// Calculate computes the snapshot. It never fails: missing tasks or an
// empty budget yield Neutral().
func Calculate(in Input) Snapshot {
	if len(in.Tasks) == 0 || in.Budget.Empty() {
		return Neutral()
	}

	bac := in.Budget.Total()

	windowStart, plannedDuration := plannedWindow(in.Tasks)
	elapsed := percentElapsed(windowStart, plannedDuration, in.Now)

	var progressSum float64
	for _, t := range in.Tasks {
		progressSum += float64(t.Progress)
	}
	progress := progressSum / float64(len(in.Tasks))

	pv := bac * elapsed / 100
	ev := bac * progress / 100
	ac := domain.Float64FromPtrWithDefault(ev*AssumedCostOverrun, in.ActualCost)

	spi := 1.0
	if pv > 0 {
		spi = ev / pv
	}
	cpi := 1.0
	if ac > 0 {
		cpi = ev / ac
	}

	return Snapshot{
		OverallProgress:        round(progress, 1),
		ScheduleVariance:       round(ev-pv, 2),
		CostVariance:           round(ev-ac, 2),
		SPI:                    round(spi, 2),
		CPI:                    round(cpi, 2),
		BudgetAtCompletion:     round(bac, 2),
		PlannedDuration:        plannedDuration,
		PlannedValue:           round(pv, 2),
		EarnedValue:            round(ev, 2),
		ActualCost:             round(ac, 2),
		PercentDurationElapsed: round(elapsed, 2),
	}
}

// plannedWindow returns the earliest start and the day count from it to
// the latest end. An inverted schedule gives a negative count. Without
// any end date the latest start closes the window.
func plannedWindow(tasks []domain.Task) (time.Time, int) {
	starts := make([]time.Time, 0, len(tasks))
	ends := make([]time.Time, 0, len(tasks))
	for _, t := range tasks {
		starts = append(starts, t.Start)
		ends = append(ends, t.End)
	}
	lo, lastStart, ok := datemath.MinMax(starts...)
	if !ok {
		return time.Time{}, 0
	}
	_, hi, ok := datemath.MinMax(ends...)
	if !ok {
		hi = lastStart
	}
	return lo, datemath.DayDiff(lo, hi)
}

func percentElapsed(start time.Time, duration int, now time.Time) float64 {
	if start.IsZero() {
		return 0
	}
	days := datemath.DayDiff(start, now)
	if duration <= 0 {
		if days >= 0 {
			return 100
		}
		return 0
	}
	return clamp(float64(days)/float64(duration)*100, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
