package timeline

import "github.com/alexanderramin/planpilot/internal/domain"

// Palette is cycled over visible child rows in input order.
var Palette = []string{
	"#458588", "#98971a", "#d79921", "#b16286",
	"#689d6a", "#d65d0e", "#cc241d", "#7c6f64",
}

// ProjectColor is used for every project row.
const ProjectColor = "#504945"

// Row is a task placed in the visible row order.
type Row struct {
	Task  domain.Task `json:"task"`
	Level int         `json:"level"`
	Color string      `json:"color"`
}

// VisibleRows returns the rows to draw. Project rows always appear at
// level 0. Other rows appear at level 1 when they have no parent or their
// parent is in expanded; children of collapsed projects are omitted.
func VisibleRows(tasks []domain.Task, expanded map[string]bool) []Row {
	rows := make([]Row, 0, len(tasks))
	color := 0
	for _, t := range tasks {
		if t.IsProject() {
			rows = append(rows, Row{Task: t, Level: 0, Color: ProjectColor})
			continue
		}
		if t.HasParent() && !expanded[t.Project] {
			continue
		}
		rows = append(rows, Row{Task: t, Level: 1, Color: Palette[color%len(Palette)]})
		color++
	}
	return rows
}

// ExpandAll returns an expanded set holding every project id.
func ExpandAll(tasks []domain.Task) map[string]bool {
	out := make(map[string]bool)
	for _, t := range tasks {
		if t.IsProject() {
			out[t.ID] = true
		}
	}
	return out
}
