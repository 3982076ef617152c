package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/timeline"
)

const (
	ganttLabelWidth = 28

	// cellsPerPeriod is the character width of one period at zoom 1.
	cellsPerPeriod = 4
)

// GanttOptions controls the text rendering of a chart.
type GanttOptions struct {
	// Selected highlights one bar by index; -1 highlights none.
	Selected int
	// Collapsed marks project rows whose children are hidden.
	Collapsed map[string]bool
}

// RenderGantt draws a laid-out chart as text: one line per visible row,
// each bar scaled from chart pixels to character cells.
func RenderGantt(c *timeline.Chart, opts GanttOptions) string {
	if len(c.Bars) == 0 {
		return Dim("(no tasks)") + "\n"
	}

	cell := max(int(math.Round(cellsPerPeriod*c.ColumnWidth/c.Scale.BaseWidth())), 2)
	cols := len(c.Periods) * cell
	origin := 0.0
	if len(c.Periods) > 0 {
		origin = c.Layout().PositionOf(c.Periods[0])
	}
	toCell := func(x float64) int {
		return int(math.Round((x - origin) / c.ColumnWidth * float64(cell)))
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", ganttLabelWidth))
	b.WriteString(StyleDim.Render(axis(c.Periods, c.Scale, cell)))
	b.WriteString("\n")

	for i, bar := range c.Bars {
		b.WriteString(ganttLabel(bar, opts, i == opts.Selected))

		start := min(max(toCell(bar.X), 0), cols)
		end := min(max(toCell(bar.X+bar.Width), start+1), cols)

		style := lipgloss.NewStyle().Foreground(lipgloss.Color(bar.Color))
		glyph := "█"
		if bar.Task.IsProject() {
			glyph = "▀"
		}
		var fill string
		if bar.Task.Type == domain.TaskTypeMilestone {
			fill = StylePurple.Render("◆")
			end = start + 1
		} else {
			fill = style.Render(strings.Repeat(glyph, max(end-start, 1)))
		}

		b.WriteString(strings.Repeat(" ", start))
		b.WriteString(fill)
		b.WriteString("\n")
	}
	return b.String()
}

func ganttLabel(bar timeline.Bar, opts GanttOptions, selected bool) string {
	prefix := "  "
	if bar.Task.IsProject() {
		prefix = "▾ "
		if opts.Collapsed[bar.Task.ID] {
			prefix = "▸ "
		}
	} else if bar.Level > 0 && bar.Task.HasParent() {
		prefix = "    "
	}
	label := TruncateText(prefix+bar.Task.Name, ganttLabelWidth-1)
	pad := strings.Repeat(" ", max(ganttLabelWidth-lipgloss.Width(label), 0))

	switch {
	case selected:
		return StyleYellowBold.Render(label) + pad
	case bar.Task.IsProject():
		return Bold(label) + pad
	default:
		return label + pad
	}
}

func axis(periods []time.Time, scale timeline.Scale, cell int) string {
	var b strings.Builder
	for _, p := range periods {
		b.WriteString(padCell(periodLabel(p, scale), cell))
	}
	return b.String()
}

func periodLabel(t time.Time, scale timeline.Scale) string {
	switch scale {
	case timeline.ScaleDays:
		return t.Format("02")
	case timeline.ScaleWeeks:
		_, w := t.ISOWeek()
		return fmt.Sprintf("W%02d", w)
	case timeline.ScaleMonths:
		return t.Format("Jan")
	default:
		return fmt.Sprintf("Q%d", (int(t.Month())-1)/3+1)
	}
}

// padCell fits a label into one period column, keeping a trailing gap.
func padCell(s string, width int) string {
	if len(s) >= width {
		return s[:width-1] + " "
	}
	return s + strings.Repeat(" ", width-len(s))
}
