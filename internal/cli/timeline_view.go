package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexanderramin/planpilot/internal/cli/formatter"
	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/timeline"
)

const zoomStep = 0.25

type ganttKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	Scale     key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	ExpandAll key.Binding
	Collapse  key.Binding
	Quit      key.Binding
}

func (k ganttKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Scale, k.ZoomIn, k.ZoomOut, k.Quit}
}

func (k ganttKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.ExpandAll, k.Collapse}}
}

var ganttKeys = ganttKeyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand/collapse")),
	Scale:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "scale")),
	ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
	ExpandAll: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "expand all")),
	Collapse:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "collapse all")),
	Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ganttModel is the interactive chart. Every state change rebuilds the
// layout from the task list.
type ganttModel struct {
	tasks    []domain.Task
	opts     timeline.Options
	chart    *timeline.Chart
	err      error
	cursor   int
	help     help.Model
	quitting bool
}

func newGanttModel(tasks []domain.Task, opts timeline.Options) *ganttModel {
	if opts.Expanded == nil {
		opts.Expanded = timeline.ExpandAll(tasks)
	}
	opts.Zoom = timeline.ClampZoom(opts.Zoom)
	m := &ganttModel{tasks: tasks, opts: opts, help: help.New()}
	m.rebuild()
	return m
}

func (m *ganttModel) rebuild() {
	m.chart, m.err = timeline.Build(m.tasks, m.opts)
	if m.chart != nil {
		m.cursor = min(m.cursor, max(len(m.chart.Bars)-1, 0))
	}
}

func (m *ganttModel) Init() tea.Cmd { return nil }

func (m *ganttModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, ganttKeys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, ganttKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, ganttKeys.Down):
			if m.chart != nil && m.cursor < len(m.chart.Bars)-1 {
				m.cursor++
			}
		case key.Matches(msg, ganttKeys.Toggle):
			m.toggleSelected()
		case key.Matches(msg, ganttKeys.Scale):
			m.opts.Scale = m.opts.Scale.Next()
			m.rebuild()
		case key.Matches(msg, ganttKeys.ZoomIn):
			m.opts.Zoom = timeline.ClampZoom(m.opts.Zoom + zoomStep)
			m.rebuild()
		case key.Matches(msg, ganttKeys.ZoomOut):
			m.opts.Zoom = timeline.ClampZoom(m.opts.Zoom - zoomStep)
			m.rebuild()
		case key.Matches(msg, ganttKeys.ExpandAll):
			m.opts.Expanded = timeline.ExpandAll(m.tasks)
			m.rebuild()
		case key.Matches(msg, ganttKeys.Collapse):
			m.opts.Expanded = map[string]bool{}
			m.rebuild()
		}
	}
	return m, nil
}

// toggleSelected flips the expanded state of the project row under the
// cursor. Other rows are left alone.
func (m *ganttModel) toggleSelected() {
	if m.chart == nil || m.cursor >= len(m.chart.Bars) {
		return
	}
	t := m.chart.Bars[m.cursor].Task
	if !t.IsProject() {
		return
	}
	expanded := make(map[string]bool, len(m.opts.Expanded)+1)
	for id, v := range m.opts.Expanded {
		expanded[id] = v
	}
	if expanded[t.ID] {
		delete(expanded, t.ID)
	} else {
		expanded[t.ID] = true
	}
	m.opts.Expanded = expanded
	m.rebuild()
}

func (m *ganttModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(formatter.Header("Timeline"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s\n\n", formatter.Dim(fmt.Sprintf("scale %s · zoom %.2fx · %d rows",
		m.opts.Scale, m.opts.Zoom, m.rowCount())))

	if m.err != nil {
		b.WriteString(formatter.StyleRed.Render(m.err.Error()))
		b.WriteString("\n")
	} else {
		b.WriteString(formatter.RenderGantt(m.chart, formatter.GanttOptions{
			Selected:  m.cursor,
			Collapsed: collapsedSet(m.tasks, m.opts.Expanded),
		}))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(ganttKeys))
	return b.String()
}

func (m *ganttModel) rowCount() int {
	if m.chart == nil {
		return 0
	}
	return len(m.chart.Bars)
}
