package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/domain"
)

// GraphOverlay toggles the selection and enabled-state styles.
type GraphOverlay struct {
	Selection bool
	Disabled  bool
}

// GenerateMermaid produces a Mermaid flowchart of the hierarchy, one edge per parent link.
// Shapes follow the element category:
// - Group: [[Subroutine]]
// - Light: ((Circle))
// - Default: [Rectangle]
// A virtual root node "scene" parents the top-level elements.
func GenerateMermaid(rows []runtime.HierarchyRow, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    scene((\"scene\"))\n")

	// parents[d] is the node at depth d-1 on the current path.
	parents := []string{"scene"}
	for _, row := range rows {
		id := nodeID(row.ID)

		opener, closer := "[", "]"
		switch row.Tag {
		case domain.TagGroup:
			opener, closer = "[[", "]]"
		case domain.TagPointLight, domain.TagDirectionalLight:
			opener, closer = "((", "))"
		}
		label := strings.ReplaceAll(row.DisplayName, "\"", "'")
		fmt.Fprintf(&sb, "    %s%s\"%s<br/><small>%s</small>\"%s\n", id, opener, label, row.Tag, closer)

		if row.Depth+1 < len(parents) {
			parents = parents[:row.Depth+1]
		}
		fmt.Fprintf(&sb, "    %s --> %s\n", parents[row.Depth], id)
		parents = append(parents, id)
	}

	if overlay == nil {
		return sb.String()
	}

	sb.WriteString("\n    %% Overlay Styles\n")
	sb.WriteString("    classDef selected fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef primary fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
	sb.WriteString("    classDef disabled fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray:4,color:#757575;\n")
	for _, row := range rows {
		id := nodeID(row.ID)
		switch {
		case overlay.Selection && row.Primary:
			fmt.Fprintf(&sb, "    class %s primary;\n", id)
		case overlay.Selection && row.Selected:
			fmt.Fprintf(&sb, "    class %s selected;\n", id)
		case overlay.Disabled && !row.Enabled:
			fmt.Fprintf(&sb, "    class %s disabled;\n", id)
		}
	}
	return sb.String()
}

func nodeID(id string) string {
	s := strings.ReplaceAll(id, "-", "_")
	s = strings.ReplaceAll(s, ".", "_")
	return "n_" + s
}
