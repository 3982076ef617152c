package formatter

import (
	"strings"

	"github.com/alexanderramin/planpilot/internal/domain"
)

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// RenderWBS draws a work breakdown as a box-drawing tree with outline
// codes dimmed in front of each name.
func RenderWBS(w *domain.WBS) string {
	if w.Count() == 0 {
		return Dim("(empty)") + "\n"
	}
	var b strings.Builder
	renderNodes(&b, w.Nodes, "")
	return b.String()
}

func renderNodes(b *strings.Builder, nodes []domain.WBSNode, prefix string) {
	for i, n := range nodes {
		last := i == len(nodes)-1
		connector, childPrefix := treeBranch, prefix+treePipe
		if last {
			connector, childPrefix = treeCorner, prefix+treeBlank
		}
		b.WriteString(prefix + connector)
		if n.Code != "" {
			b.WriteString(StyleDim.Render(n.Code + " "))
		}
		b.WriteString(n.Name)
		b.WriteString("\n")
		renderNodes(b, n.Children, childPrefix)
	}
}
