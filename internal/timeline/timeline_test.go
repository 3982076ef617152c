package timeline

import (
	"testing"
	"time"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func scenario() []domain.Task {
	return []domain.Task{
		{ID: "p1", Type: domain.TaskTypeProject, Start: d(2024, 3, 1), End: d(2024, 4, 30), Progress: 40},
		{ID: "t1", Type: domain.TaskTypeTask, Project: "p1", Start: d(2024, 3, 1), End: d(2024, 3, 15), Progress: 100},
		{ID: "t2", Type: domain.TaskTypeTask, Project: "p1", Start: d(2024, 3, 16), End: d(2024, 3, 30), Dependencies: []string{"t1"}},
	}
}

func TestParseScale(t *testing.T) {
	s, err := ParseScale(" Months ")
	require.NoError(t, err)
	assert.Equal(t, ScaleMonths, s)

	_, err = ParseScale("years")
	assert.Error(t, err)

	var flag Scale
	require.NoError(t, flag.Set("quarters"))
	assert.Equal(t, "quarters", flag.String())
	assert.Equal(t, "scale", flag.Type())
}

func TestScale_Next(t *testing.T) {
	assert.Equal(t, ScaleWeeks, ScaleDays.Next())
	assert.Equal(t, ScaleDays, ScaleQuarters.Next())
	assert.Equal(t, ScaleDays, Scale("bogus").Next())
}

func TestClampZoom(t *testing.T) {
	assert.Equal(t, 1.0, ClampZoom(0))
	assert.Equal(t, 0.5, ClampZoom(0.1))
	assert.Equal(t, 2.0, ClampZoom(5))
	assert.Equal(t, 1.25, ClampZoom(1.25))
}

func TestVisibleRows_CollapseRemovesChildren(t *testing.T) {
	tasks := scenario()

	expanded := VisibleRows(tasks, map[string]bool{"p1": true})
	require.Len(t, expanded, 3)
	assert.Equal(t, 0, expanded[0].Level)
	assert.Equal(t, 1, expanded[1].Level)

	collapsed := VisibleRows(tasks, map[string]bool{})
	require.Len(t, collapsed, 1)
	assert.Equal(t, "p1", collapsed[0].Task.ID)
	assert.Equal(t, ProjectColor, collapsed[0].Color)
}

func TestVisibleRows_ColorsFollowInputOrder(t *testing.T) {
	tasks := []domain.Task{
		{ID: "a", Type: domain.TaskTypeProject},
		{ID: "b", Type: domain.TaskTypeProject},
		{ID: "b1", Project: "b", Type: domain.TaskTypeTask},
		{ID: "a1", Project: "a", Type: domain.TaskTypeTask},
		{ID: "free", Type: domain.TaskTypeMilestone},
		{ID: "b2", Project: "b", Type: domain.TaskTypeTask},
	}
	rows := VisibleRows(tasks, map[string]bool{"a": true, "b": true})
	require.Len(t, rows, 6)

	colors := map[string]string{}
	for _, r := range rows {
		colors[r.Task.ID] = r.Color
	}
	assert.Equal(t, Palette[0], colors["b1"])
	assert.Equal(t, Palette[1], colors["a1"])
	assert.Equal(t, Palette[2], colors["free"])
	assert.Equal(t, Palette[3], colors["b2"])
}

func TestVisibleRows_PaletteCycles(t *testing.T) {
	var tasks []domain.Task
	for i := 0; i < len(Palette)+2; i++ {
		tasks = append(tasks, domain.Task{ID: string(rune('a' + i)), Type: domain.TaskTypeTask})
	}
	rows := VisibleRows(tasks, nil)
	assert.Equal(t, Palette[0], rows[len(Palette)].Color)
	assert.Equal(t, Palette[1], rows[len(Palette)+1].Color)
}

func TestComputeWindow(t *testing.T) {
	now := time.Date(2024, 7, 4, 9, 30, 0, 0, time.UTC)

	empty := ComputeWindow(nil, now)
	assert.Equal(t, Window{Start: now, End: now}, empty)

	w := ComputeWindow(scenario(), now)
	assert.Equal(t, d(2024, 2, 25), w.Start)
	assert.Equal(t, d(2024, 5, 10), w.End)
	assert.Equal(t, 75, w.TotalDays)
}

func TestPeriods(t *testing.T) {
	w := Window{Start: d(2024, 3, 3), End: d(2024, 5, 20)}

	days, err := Periods(Window{Start: d(2024, 3, 1), End: d(2024, 3, 10)}, ScaleDays)
	require.NoError(t, err)
	assert.Len(t, days, 10)

	weeks, err := Periods(w, ScaleWeeks)
	require.NoError(t, err)
	assert.Equal(t, d(2024, 2, 26), weeks[0])
	for _, wk := range weeks {
		assert.Equal(t, time.Monday, wk.Weekday())
	}
	assert.Equal(t, d(2024, 5, 20), weeks[len(weeks)-1])

	months, err := Periods(w, ScaleMonths)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{d(2024, 3, 1), d(2024, 4, 1), d(2024, 5, 1)}, months)

	quarters, err := Periods(Window{Start: d(2024, 2, 10), End: d(2024, 8, 1)}, ScaleQuarters)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{d(2024, 1, 1), d(2024, 4, 1), d(2024, 7, 1)}, quarters)
}

func TestPeriods_InvalidRange(t *testing.T) {
	_, err := Periods(Window{Start: d(2024, 3, 10), End: d(2024, 3, 1)}, ScaleDays)
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = Periods(Window{Start: d(1900, 1, 1), End: d(2100, 1, 1)}, ScaleWeeks)
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = Periods(Window{Start: d(2000, 1, 1), End: d(2040, 1, 1)}, ScaleDays)
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = Periods(Window{Start: d(2000, 1, 1), End: d(2020, 1, 1)}, ScaleDays)
	assert.NoError(t, err, "twenty years of days fits the day bound")
}

func TestLayout_PositionAndWidth(t *testing.T) {
	w := Window{Start: d(2024, 1, 1), End: d(2024, 12, 31)}
	for _, sc := range Scales {
		for _, zoom := range []float64{0.5, 1, 2} {
			l := Layout{Window: w, Scale: sc, Zoom: zoom}
			assert.Equal(t, 0.0, l.PositionOf(w.Start), "%s x%.1f", sc, zoom)

			same := l.WidthOf(d(2024, 6, 1), d(2024, 6, 1))
			assert.GreaterOrEqual(t, same, MinBarWidth, "%s x%.1f", sc, zoom)

			inverted := l.WidthOf(d(2024, 6, 10), d(2024, 6, 1))
			assert.Equal(t, MinBarWidth, inverted, "%s x%.1f", sc, zoom)
		}
	}

	quarters := Layout{Window: w, Scale: ScaleQuarters, Zoom: 1}
	assert.Equal(t, MinBarWidth, quarters.WidthOf(d(2024, 6, 1), d(2024, 6, 1)))

	days := Layout{Window: w, Scale: ScaleDays, Zoom: 2}
	assert.Equal(t, 80.0, days.ColumnWidth())
	assert.Equal(t, 800.0, days.PositionOf(d(2024, 1, 11)))
	assert.Equal(t, 240.0, days.WidthOf(d(2024, 1, 1), d(2024, 1, 3)))
}

func TestDependencyPaths_ScenarioYieldsOnePath(t *testing.T) {
	tasks := scenario()
	l := Layout{Window: ComputeWindow(tasks, time.Time{}), Scale: ScaleDays, Zoom: 1}
	rows := VisibleRows(tasks, map[string]bool{"p1": true})

	paths := DependencyPaths(l, rows, tasks)
	require.Len(t, paths, 1)

	p := paths[0]
	assert.Equal(t, "t1", p.From)
	assert.Equal(t, "t2", p.To)
	first, last := p.Points[0], p.Points[len(p.Points)-1]
	assert.Equal(t, l.PositionOf(tasks[1].Start)+l.WidthOf(tasks[1].Start, tasks[1].End), first.X)
	assert.Equal(t, RowCenter(1), first.Y)
	assert.Equal(t, l.PositionOf(tasks[2].Start), last.X)
	assert.Equal(t, RowCenter(2), last.Y)
}

func TestDependencyPaths_SkipsMissingAndHidden(t *testing.T) {
	tasks := scenario()
	tasks[2].Dependencies = []string{"ghost"}
	l := Layout{Window: ComputeWindow(tasks, time.Time{}), Scale: ScaleWeeks, Zoom: 1}

	assert.Empty(t, DependencyPaths(l, VisibleRows(tasks, map[string]bool{"p1": true}), tasks))

	hidden := []domain.Task{
		{ID: "p1", Type: domain.TaskTypeProject, Start: d(2024, 3, 1), End: d(2024, 3, 31)},
		{ID: "a", Project: "p1", Type: domain.TaskTypeTask, Start: d(2024, 3, 1), End: d(2024, 3, 5)},
		{ID: "b", Type: domain.TaskTypeTask, Start: d(2024, 3, 10), End: d(2024, 3, 12), Dependencies: []string{"a"}},
	}
	assert.Empty(t, DependencyPaths(l, VisibleRows(hidden, nil), hidden))
}

func TestDependencyPaths_StraightRoute(t *testing.T) {
	tasks := []domain.Task{
		{ID: "a", Type: domain.TaskTypeTask, Start: d(2024, 3, 1), End: d(2024, 3, 5)},
		{ID: "b", Type: domain.TaskTypeTask, Start: d(2024, 3, 20), End: d(2024, 3, 25), Dependencies: []string{"a"}},
	}
	l := Layout{Window: Window{Start: d(2024, 3, 1), End: d(2024, 4, 1)}, Scale: ScaleDays, Zoom: 1}

	paths := DependencyPaths(l, VisibleRows(tasks, nil), tasks)
	require.Len(t, paths, 1)
	assert.False(t, paths[0].Detour)
	assert.Equal(t, []Point{{200, 20}, {210, 20}, {210, 60}, {760, 60}}, paths[0].Points)
	assert.Equal(t, "M 200 20 L 210 20 L 210 60 L 760 60", paths[0].SVG())
}

func TestDependencyPaths_DetourWhenOverlapping(t *testing.T) {
	tasks := []domain.Task{
		{ID: "a", Type: domain.TaskTypeTask, Start: d(2024, 3, 1), End: d(2024, 3, 10)},
		{ID: "b", Type: domain.TaskTypeTask, Start: d(2024, 3, 5), End: d(2024, 3, 15), Dependencies: []string{"a"}},
	}
	l := Layout{Window: Window{Start: d(2024, 3, 1), End: d(2024, 4, 1)}, Scale: ScaleDays, Zoom: 1}

	paths := DependencyPaths(l, VisibleRows(tasks, nil), tasks)
	require.Len(t, paths, 1)
	p := paths[0]
	assert.True(t, p.Detour)
	require.Len(t, p.Points, 6, "five segments")
	assert.Equal(t, []Point{{400, 20}, {410, 20}, {410, 40}, {150, 40}, {150, 60}, {160, 60}}, p.Points)
}

func TestBuild(t *testing.T) {
	tasks := scenario()
	chart, err := Build(tasks, Options{Scale: ScaleWeeks, Expanded: ExpandAll(tasks), Now: d(2024, 3, 10)})
	require.NoError(t, err)

	assert.Len(t, chart.Bars, 3)
	assert.Len(t, chart.Paths, 1)
	assert.Equal(t, 60.0, chart.ColumnWidth)
	assert.Equal(t, 3*RowHeight, chart.Height)
	assert.NotEmpty(t, chart.Periods)
	assert.Greater(t, chart.Width, 0.0)
	assert.Equal(t, chart.Layout().PositionOf(d(2024, 3, 1)), chart.Bars[0].X)
}

func TestBuild_EmptySchedule(t *testing.T) {
	chart, err := Build(nil, Options{Now: d(2024, 1, 1)})
	require.NoError(t, err)
	assert.Empty(t, chart.Bars)
	assert.Empty(t, chart.Paths)
	assert.Equal(t, ScaleWeeks, chart.Scale)
}
