package timeline

import (
	"math"
	"time"

	"github.com/alexanderramin/planpilot/internal/datemath"
)

const (
	// MinBarWidth keeps zero-length and inverted bars visible.
	MinBarWidth = 5.0
	RowHeight   = 40.0
	BarHeight   = 24.0
)

// Layout maps dates to pixels for one window, scale and zoom.
type Layout struct {
	Window Window
	Scale  Scale
	Zoom   float64
}

// ColumnWidth is the scale's base width times the clamped zoom.
func (l Layout) ColumnWidth() float64 {
	return l.Scale.BaseWidth() * ClampZoom(l.Zoom)
}

// PositionOf is the x offset of date from the window start.
func (l Layout) PositionOf(date time.Time) float64 {
	days := datemath.DayDiff(l.Window.Start, date)
	return float64(days) / l.Scale.UnitDays() * l.ColumnWidth()
}

// WidthOf is the bar width of an inclusive date span, never below MinBarWidth.
func (l Layout) WidthOf(start, end time.Time) float64 {
	days := datemath.DayDiff(start, end) + 1
	return math.Max(MinBarWidth, float64(days)/l.Scale.UnitDays()*l.ColumnWidth())
}

// Width is the full pixel width of the window.
func (l Layout) Width() float64 {
	return l.PositionOf(l.Window.End) + l.ColumnWidth()
}

// RowCenter is the y coordinate of the middle of row i.
func RowCenter(i int) float64 {
	return float64(i)*RowHeight + RowHeight/2
}
