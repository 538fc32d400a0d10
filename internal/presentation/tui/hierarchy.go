package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/muesli/termenv"
)

// PrintHierarchy writes the hierarchy as an indented outline. Disabled rows are faint,
// selected rows bold and the primary selection marked with an arrow.
func PrintHierarchy(w io.Writer, rows []runtime.HierarchyRow, p termenv.Profile) {
	if len(rows) == 0 {
		fmt.Fprintln(w, p.String("(empty scene)").Faint())
		return
	}
	for _, row := range rows {
		marker := "  "
		if row.Primary {
			marker = "> "
		}
		name := p.String(row.DisplayName).Foreground(p.Color(tagColor(row.Tag)))
		if row.Selected {
			name = name.Bold()
		}
		if !row.Enabled {
			name = name.Faint()
		}
		tag := p.String("(" + row.Tag + ")").Faint()
		fmt.Fprintf(w, "%s%s%s %s\n", marker, strings.Repeat("  ", row.Depth), name, tag)
	}
}

func tagColor(tag string) string {
	switch tag {
	case domain.TagGroup:
		return "#818cf8"
	case domain.TagPointLight, domain.TagDirectionalLight:
		return "#facc15"
	case domain.TagEmissiveEntity:
		return "#fb923c"
	default:
		return "#e5e7eb"
	}
}
