package timeline

import (
	"strconv"
	"strings"

	"github.com/alexanderramin/planpilot/internal/domain"
)

// StubLength is the horizontal run leaving a predecessor bar.
const StubLength = 10.0

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Path is an orthogonal dependency arrow from a predecessor's right edge
// to a successor's left edge.
type Path struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Points []Point `json:"points"`
	Detour bool    `json:"detour"`
}

// SVG renders the path as an SVG path data string.
func (p Path) SVG() string {
	var b strings.Builder
	for i, pt := range p.Points {
		if i == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		b.WriteString(strconv.FormatFloat(pt.X, 'f', -1, 64))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(pt.Y, 'f', -1, 64))
	}
	return b.String()
}

// DependencyPaths routes one path per dependency between visible rows.
// Predecessors missing from allTasks or hidden by a collapsed parent are
// skipped.
func DependencyPaths(l Layout, rows []Row, allTasks []domain.Task) []Path {
	known := make(map[string]bool, len(allTasks))
	for _, t := range allTasks {
		known[t.ID] = true
	}
	visible := make(map[string]int, len(rows))
	for i, r := range rows {
		visible[r.Task.ID] = i
	}

	var paths []Path
	for si, succ := range rows {
		for _, dep := range succ.Task.Dependencies {
			if !known[dep] {
				continue
			}
			pi, ok := visible[dep]
			if !ok {
				continue
			}
			pred := rows[pi].Task
			x1 := l.PositionOf(pred.Start) + l.WidthOf(pred.Start, pred.End)
			y1 := RowCenter(pi)
			x2 := l.PositionOf(succ.Task.Start)
			y2 := RowCenter(si)
			paths = append(paths, route(pred.ID, succ.Task.ID, x1, y1, x2, y2))
		}
	}
	return paths
}

func route(from, to string, x1, y1, x2, y2 float64) Path {
	stub := x1 + StubLength
	if stub <= x2 {
		return Path{From: from, To: to, Points: []Point{
			{x1, y1}, {stub, y1}, {stub, y2}, {x2, y2},
		}}
	}

	// The predecessor ends after the successor starts: loop through the
	// gap next to the successor row and come back in from the left.
	gap := y2 - RowHeight/2
	if y2 < y1 {
		gap = y2 + RowHeight/2
	}
	back := x2 - StubLength
	return Path{From: from, To: to, Detour: true, Points: []Point{
		{x1, y1}, {stub, y1}, {stub, gap}, {back, gap}, {back, y2}, {x2, y2},
	}}
}
