package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/planpilot/internal/teatest"
	"github.com/alexanderramin/planpilot/internal/testutil"
	"github.com/alexanderramin/planpilot/internal/timeline"
)

func newGanttDriver(t *testing.T) *teatest.Driver {
	t.Helper()
	m := newGanttModel(testutil.ScenarioSchedule(), timeline.Options{Scale: timeline.ScaleWeeks})
	d := teatest.New(t, m, teatest.WithSize(120, 40))
	d.DrainInit()
	return d
}

func ganttOf(t *testing.T, d *teatest.Driver) *ganttModel {
	t.Helper()
	m, ok := d.Model.(*ganttModel)
	require.True(t, ok)
	return m
}

func TestGanttModel_StartsExpanded(t *testing.T) {
	d := newGanttDriver(t)
	m := ganttOf(t, d)

	require.NoError(t, m.err)
	assert.Len(t, m.chart.Bars, 3)
	assert.Equal(t, 1.0, m.opts.Zoom)

	view := stripANSI(d.View())
	assert.Contains(t, view, "TIMELINE")
	assert.Contains(t, view, "scale weeks")
	assert.Contains(t, view, "Task t2")
}

func TestGanttModel_ToggleCollapsesProjectRow(t *testing.T) {
	d := newGanttDriver(t)

	d.PressEnter()
	m := ganttOf(t, d)
	assert.Len(t, m.chart.Bars, 1)
	assert.NotContains(t, stripANSI(d.View()), "Task t2")

	d.PressEnter()
	assert.Len(t, ganttOf(t, d).chart.Bars, 3)
}

func TestGanttModel_ToggleIgnoresLeafRows(t *testing.T) {
	d := newGanttDriver(t)

	d.PressDown()
	d.PressEnter()
	m := ganttOf(t, d)
	assert.Equal(t, 1, m.cursor)
	assert.Len(t, m.chart.Bars, 3)
}

func TestGanttModel_CursorStaysInBounds(t *testing.T) {
	d := newGanttDriver(t)

	d.PressUp()
	assert.Equal(t, 0, ganttOf(t, d).cursor)

	d.Press("j", "j", "j", "j")
	assert.Equal(t, 2, ganttOf(t, d).cursor)

	// Collapsing everything pulls the cursor back to the only row.
	d.PressKey('c')
	m := ganttOf(t, d)
	assert.Len(t, m.chart.Bars, 1)
	assert.Equal(t, 0, m.cursor)

	d.PressKey('e')
	assert.Len(t, ganttOf(t, d).chart.Bars, 3)
}

func TestGanttModel_ScaleCycles(t *testing.T) {
	d := newGanttDriver(t)

	d.PressKey('s')
	assert.Equal(t, timeline.ScaleMonths, ganttOf(t, d).opts.Scale)
	d.PressKey('s')
	assert.Equal(t, timeline.ScaleQuarters, ganttOf(t, d).opts.Scale)
	d.PressKey('s')
	assert.Equal(t, timeline.ScaleDays, ganttOf(t, d).opts.Scale)
	assert.Contains(t, stripANSI(d.View()), "scale days")
}

func TestGanttModel_ZoomIsClamped(t *testing.T) {
	d := newGanttDriver(t)

	for range 10 {
		d.PressKey('+')
	}
	assert.Equal(t, timeline.MaxZoom, ganttOf(t, d).opts.Zoom)

	for range 10 {
		d.PressKey('-')
	}
	m := ganttOf(t, d)
	assert.Equal(t, timeline.MinZoom, m.opts.Zoom)
	assert.Equal(t, timeline.ScaleWeeks.BaseWidth()*timeline.MinZoom, m.chart.ColumnWidth)
}

func TestGanttModel_QuitKeys(t *testing.T) {
	for _, k := range []string{"q", "esc", "ctrl+c"} {
		t.Run(k, func(t *testing.T) {
			d := newGanttDriver(t)
			d.Press(k)
			assert.True(t, d.Quitting)
			assert.Empty(t, d.View())
		})
	}
}
