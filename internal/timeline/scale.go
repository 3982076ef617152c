// Package timeline computes Gantt chart geometry: the time axis, bar
// positions, collapsible hierarchy and dependency arrow routing.
package timeline

import (
	"fmt"
	"strings"
)

// Scale is the granularity of the time axis.
type Scale string

const (
	ScaleDays     Scale = "days"
	ScaleWeeks    Scale = "weeks"
	ScaleMonths   Scale = "months"
	ScaleQuarters Scale = "quarters"
)

// Scales lists every scale from finest to coarsest.
var Scales = []Scale{ScaleDays, ScaleWeeks, ScaleMonths, ScaleQuarters}

// ParseScale resolves a scale name, case-insensitively.
func ParseScale(s string) (Scale, error) {
	for _, sc := range Scales {
		if strings.EqualFold(string(sc), strings.TrimSpace(s)) {
			return sc, nil
		}
	}
	return "", fmt.Errorf("unknown scale %q (want days, weeks, months or quarters)", s)
}

// UnitDays is the number of days one column represents.
func (s Scale) UnitDays() float64 {
	switch s {
	case ScaleWeeks:
		return 7
	case ScaleMonths:
		return 30
	case ScaleQuarters:
		return 90
	default:
		return 1
	}
}

// BaseWidth is the column width in pixels at zoom 1.
func (s Scale) BaseWidth() float64 {
	switch s {
	case ScaleWeeks:
		return 60
	case ScaleMonths:
		return 100
	case ScaleQuarters:
		return 120
	default:
		return 40
	}
}

// Next returns the following coarser scale, wrapping to days.
func (s Scale) Next() Scale {
	for i, sc := range Scales {
		if sc == s {
			return Scales[(i+1)%len(Scales)]
		}
	}
	return ScaleDays
}

// String, Set and Type let a Scale be bound as a command-line flag.
func (s Scale) String() string { return string(s) }

func (s *Scale) Set(v string) error {
	parsed, err := ParseScale(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s *Scale) Type() string { return "scale" }

const (
	MinZoom = 0.5
	MaxZoom = 2.0
)

// ClampZoom bounds a zoom factor to [MinZoom, MaxZoom]. Zero means 1.
func ClampZoom(z float64) float64 {
	switch {
	case z == 0:
		return 1
	case z < MinZoom:
		return MinZoom
	case z > MaxZoom:
		return MaxZoom
	default:
		return z
	}
}
