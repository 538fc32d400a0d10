package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/domain"
)

// SceneReport renders a markdown summary of a scene: counts per type, render registry
// membership and the outline.
func SceneReport(path string, rows []runtime.HierarchyRow, render domain.RenderSnapshot) string {
	var sb strings.Builder

	title := path
	if title == "" {
		title = "Untitled scene"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)

	counts := map[string]int{}
	disabled := 0
	for _, row := range rows {
		counts[row.Tag]++
		if !row.Enabled {
			disabled++
		}
	}
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	sb.WriteString("| Type | Count |\n|---|---|\n")
	for _, tag := range tags {
		fmt.Fprintf(&sb, "| %s | %d |\n", tag, counts[tag])
	}
	fmt.Fprintf(&sb, "\n**%d** elements, **%d** disabled. Rendering **%d** entities and **%d** lights.\n\n",
		len(rows), disabled, len(render.Entities), len(render.Lights))

	sb.WriteString("## Hierarchy\n\n")
	if len(rows) == 0 {
		sb.WriteString("_empty_\n")
	}
	for _, row := range rows {
		fmt.Fprintf(&sb, "%s- %s `%s`\n", strings.Repeat("  ", row.Depth), row.DisplayName, row.Tag)
	}
	return sb.String()
}
