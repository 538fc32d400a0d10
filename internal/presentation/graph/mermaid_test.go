package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
)

var rows = []runtime.HierarchyRow{
	{ID: "g-1", Depth: 0, DisplayName: "Props", Tag: domain.TagGroup, Enabled: true, Container: true},
	{ID: "e-1", Depth: 1, DisplayName: "Crate", Tag: domain.TagEntity, Enabled: true, Selected: true},
	{ID: "e-2", Depth: 1, DisplayName: "Barrel [Disabled]", Tag: domain.TagEntity},
	{ID: "l-1", Depth: 0, DisplayName: "Sun \"key\"", Tag: domain.TagDirectionalLight, Enabled: true, Selected: true, Primary: true},
}

func TestGenerateMermaid(t *testing.T) {
	out := graph.GenerateMermaid(rows, nil)

	for _, want := range []string{
		"graph TD\n",
		`n_g_1[["Props<br/><small>Group</small>"]]`,
		`n_e_1["Crate<br/><small>Entity</small>"]`,
		`n_l_1(("Sun 'key'<br/><small>Directional Light</small>"))`,
		"scene --> n_g_1",
		"n_g_1 --> n_e_1",
		"n_g_1 --> n_e_2",
		"scene --> n_l_1",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	out := graph.GenerateMermaid(rows, &graph.GraphOverlay{Selection: true, Disabled: true})

	assert.Contains(t, out, "class n_l_1 primary;")
	assert.Contains(t, out, "class n_e_1 selected;")
	assert.Contains(t, out, "class n_e_2 disabled;")
	assert.Equal(t, 1, strings.Count(out, "class n_l_1 "))
}

func TestGenerateMermaid_Empty(t *testing.T) {
	out := graph.GenerateMermaid(nil, &graph.GraphOverlay{Selection: true})
	assert.True(t, strings.HasPrefix(out, "graph TD\n    scene"))
}
