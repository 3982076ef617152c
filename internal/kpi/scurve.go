package kpi

import (
	"math"
	"time"

	"github.com/alexanderramin/planpilot/internal/datemath"
	"github.com/alexanderramin/planpilot/internal/domain"
)

// DefaultSCurveStep is the spacing of curve points in days.
const DefaultSCurveStep = 7

// SCurve returns the cumulative planned-value curve of a schedule. Each
// non-project task carries its cost as weight (equal weights when no task
// has a cost) spread linearly over its inclusive day span. The last point
// always falls on the window end.
func SCurve(tasks []domain.Task, budget *domain.Budget, stepDays int) []domain.SCurvePoint {
	if stepDays <= 0 {
		stepDays = DefaultSCurveStep
	}

	work := leafTasks(tasks)
	if len(work) == 0 {
		return nil
	}

	dates := make([]time.Time, 0, 2*len(work))
	for _, t := range work {
		dates = append(dates, t.Start, t.End)
	}
	lo, hi, ok := datemath.MinMax(dates...)
	if !ok {
		return nil
	}

	weights, totalWeight := taskWeights(work)
	bac := budget.Total()
	if bac == 0 {
		bac = sumCost(work)
	}

	var points []domain.SCurvePoint
	span := datemath.DayDiff(lo, hi)
	for offset := 0; ; offset += stepDays {
		if offset > span {
			offset = span
		}
		d := datemath.AddDays(lo, offset)
		var planned float64
		for i, t := range work {
			planned += weights[i] * spreadFraction(t, d)
		}
		pct := planned / totalWeight * 100
		points = append(points, domain.SCurvePoint{
			Date:           datemath.FormatDate(d),
			PlannedPercent: round(pct, 2),
			PlannedValue:   round(bac*pct/100, 2),
		})
		if offset == span {
			break
		}
	}
	return points
}

func leafTasks(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.IsProject() && !t.Start.IsZero() {
			out = append(out, t)
		}
	}
	return out
}

func taskWeights(tasks []domain.Task) ([]float64, float64) {
	weights := make([]float64, len(tasks))
	useCost := sumCost(tasks) > 0
	var total float64
	for i, t := range tasks {
		w := 1.0
		if useCost {
			w = math.Max(t.Cost, 0)
		}
		weights[i] = w
		total += w
	}
	return weights, total
}

func sumCost(tasks []domain.Task) float64 {
	var sum float64
	for _, t := range tasks {
		if t.Cost > 0 {
			sum += t.Cost
		}
	}
	return sum
}

// spreadFraction is the share of t planned to be done by the end of day d.
func spreadFraction(t domain.Task, d time.Time) float64 {
	end := t.End
	if end.IsZero() || end.Before(t.Start) {
		end = t.Start
	}
	days := datemath.DayDiff(t.Start, end) + 1
	done := datemath.DayDiff(t.Start, d) + 1
	return clamp(float64(done)/float64(days), 0, 1)
}
