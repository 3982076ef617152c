package timeline

import (
	"time"

	"github.com/alexanderramin/planpilot/internal/domain"
)

type Options struct {
	Scale    Scale
	Zoom     float64
	Expanded map[string]bool
	Now      time.Time
}

// Bar is a visible row with its geometry.
type Bar struct {
	Row
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Width float64 `json:"width"`
}

// Chart is everything needed to draw a Gantt chart.
type Chart struct {
	Window      Window      `json:"window"`
	Scale       Scale       `json:"scale"`
	ColumnWidth float64     `json:"columnWidth"`
	Periods     []time.Time `json:"periods"`
	Bars        []Bar       `json:"bars"`
	Paths       []Path      `json:"paths"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
}

// Layout returns the date-to-pixel mapping the chart was built with.
func (c *Chart) Layout() Layout {
	return Layout{Window: c.Window, Scale: c.Scale, Zoom: c.ColumnWidth / c.Scale.BaseWidth()}
}

// Build lays out tasks in one pass.
func Build(tasks []domain.Task, opts Options) (*Chart, error) {
	if opts.Scale == "" {
		opts.Scale = ScaleWeeks
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	w := ComputeWindow(tasks, opts.Now)
	periods, err := Periods(w, opts.Scale)
	if err != nil {
		return nil, err
	}

	l := Layout{Window: w, Scale: opts.Scale, Zoom: opts.Zoom}
	rows := VisibleRows(tasks, opts.Expanded)
	bars := make([]Bar, len(rows))
	for i, r := range rows {
		bars[i] = Bar{
			Row:   r,
			X:     l.PositionOf(r.Task.Start),
			Y:     RowCenter(i) - BarHeight/2,
			Width: l.WidthOf(r.Task.Start, r.Task.End),
		}
	}

	return &Chart{
		Window:      w,
		Scale:       opts.Scale,
		ColumnWidth: l.ColumnWidth(),
		Periods:     periods,
		Bars:        bars,
		Paths:       DependencyPaths(l, rows, tasks),
		Width:       l.Width(),
		Height:      float64(len(rows)) * RowHeight,
	}, nil
}
