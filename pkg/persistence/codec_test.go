package persistence_test

import (
	"encoding/json"
	"testing"

	"cogentcore.org/core/math32"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/elements"
	"github.com/aretw0/arbor/pkg/persistence"
	"github.com/aretw0/arbor/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	sc    *scene.Context
	codec *persistence.Codec
}

func newFixture() fixture {
	return fixture{
		sc:    &scene.Context{Resources: memory.NewCatalog()},
		codec: persistence.NewCodec(elements.NewRegistry()),
	}
}

// buildScene creates: Group "Rig" { Entity "Crate", Point Light "Lamp" }, Directional Light "Sun".
func buildScene(t *testing.T, f fixture) *scene.Tree {
	t.Helper()
	tree := scene.NewTree()

	rig := elements.NewGroup(nil, "Rig")
	rig.Transform.Position = math32.Vec3(0, 1, 0)
	rigRef := tree.Root().PushBack(rig)

	crate, err := elements.NewEntity(f.sc, rigRef, "Crate", domain.ModelCube)
	require.NoError(t, err)
	crate.Transform.Scale = math32.Vec3(2, 2, 2)
	rig.Children().PushBack(crate)

	lamp, err := elements.NewPointLight(f.sc, rigRef, "Lamp", math32.Vec3(0, 3, 0))
	require.NoError(t, err)
	lamp.Enabled = false
	rig.Children().PushBack(lamp)

	sun, err := elements.NewDirectionalLight(nil, "Sun", math32.Vec3(0, -1, 0))
	require.NoError(t, err)
	tree.Root().PushBack(sun)

	tree.UpdateAll()
	return tree
}

type shape struct {
	Label    string
	Name     string
	Children []shape
}

func shapeOf(l *scene.List) []shape {
	var out []shape
	for _, e := range l.Elements() {
		s := shape{Label: e.TypeName(), Name: e.AsBase().Name}
		if c := e.Children(); c != nil {
			s.Children = shapeOf(c)
		}
		out = append(out, s)
	}
	return out
}

func TestCodec_RoundTrip(t *testing.T) {
	f := newFixture()
	tree := buildScene(t, f)

	data, report, err := f.codec.Marshal(tree.Root())
	require.NoError(t, err)
	assert.Equal(t, 4, report.Elements)
	assert.Empty(t, report.Diagnostics)

	loaded := scene.NewTree()
	rs := memory.NewRenderScene()
	report, err = f.codec.Unmarshal(f.sc, data, loaded.Root(), rs)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Elements)
	assert.Empty(t, report.Diagnostics)

	assert.Equal(t, shapeOf(tree.Root()), shapeOf(loaded.Root()))

	again, _, err := f.codec.Marshal(loaded.Root())
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))

	// Crate and Sun are registered; the disabled lamp is not.
	snap := rs.Snapshot()
	assert.Len(t, snap.Entities, 1)
	assert.Len(t, snap.Lights, 1)

	crate := loaded.Root().Front().Element().Children().Front().Element()
	assertWorldPosition(t, math32.Vec3(0, 1, 0), crate)
}

func assertWorldPosition(t *testing.T, want math32.Vector3, e scene.Element) {
	t.Helper()
	got := scene.WorldPosition(&e.AsBase().World)
	assert.InDelta(t, want.X, got.X, 1e-5)
	assert.InDelta(t, want.Y, got.Y, 1e-5)
	assert.InDelta(t, want.Z, got.Z, 1e-5)
}

func TestCodec_FileFormat(t *testing.T) {
	f := newFixture()
	tree := buildScene(t, f)

	data, _, err := f.codec.Marshal(tree.Root())
	require.NoError(t, err)

	var doc []map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc, 2)
	assert.Equal(t, domain.TagGroup, doc[0]["label"])
	assert.Len(t, doc[0]["children"], 2)
	assert.Equal(t, domain.TagDirectionalLight, doc[1]["label"])
	assert.NotContains(t, doc[1], "children", "leaves carry no children key")
}

func TestCodec_PartialFailure(t *testing.T) {
	f := newFixture()
	data := []byte(`[
		{"label": "Group", "name": "one", "position": [0,0,0], "rotation": [0,0,0], "scale": [1,1,1]},
		{"label": "Teapot", "name": "two", "children": [
			{"label": "Group", "name": "orphan", "position": [0,0,0], "rotation": [0,0,0], "scale": [1,1,1]}
		]},
		{"label": "Directional Light", "name": "three", "direction": [0,-1,0], "colour": [1,1,1,1]}
	]`)

	root := scene.NewList()
	report, err := f.codec.Unmarshal(f.sc, data, root, memory.NewRenderScene())
	require.NoError(t, err)

	assert.Equal(t, []shape{
		{Label: domain.TagGroup, Name: "one", Children: []shape(nil)},
		{Label: domain.TagDirectionalLight, Name: "three"},
	}, shapeOf(root))
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, "unknown_type_tag", report.Diagnostics[0].Kind)
	assert.Equal(t, "1", report.Diagnostics[0].Path)
	assert.Equal(t, "Teapot", report.Diagnostics[0].Label)
}

func TestCodec_MarkedNodes(t *testing.T) {
	f := newFixture()
	tree := scene.NewTree()
	crate, err := elements.NewEntity(f.sc, nil, "Crate", domain.ModelCube)
	require.NoError(t, err)
	crate.Drawable.Mesh.Source = ""
	tree.Root().PushBack(crate)
	tree.Root().PushBack(elements.NewGroup(nil, "Kept"))

	data, report, err := f.codec.Marshal(tree.Root())
	require.NoError(t, err, "saving proceeds despite the marker")
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, "marked_error", report.Diagnostics[0].Kind)
	assert.Contains(t, string(data), `"error"`)

	loaded := scene.NewList()
	report, err = f.codec.Unmarshal(f.sc, data, loaded, memory.NewRenderScene())
	require.NoError(t, err)
	assert.Equal(t, []shape{{Label: domain.TagGroup, Name: "Kept"}}, shapeOf(loaded))
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, "marked_error", report.Diagnostics[0].Kind)
}

func TestCodec_AbortsOnMalformedDocument(t *testing.T) {
	f := newFixture()
	cases := map[string]string{
		"not an array":      `{"label": "Group"}`,
		"not json":          `[{"label":`,
		"null document":     `null`,
		"item not object":   `[42]`,
		"missing label":     `[{"name": "x"}]`,
		"missing field":     `[{"label": "Group", "name": "g"}]`,
		"children on leaf":  `[{"label": "Directional Light", "name": "d", "direction": [0,-1,0], "colour": [1,1,1,1], "children": [{}]}]`,
		"children not list": `[{"label": "Group", "name": "g", "position": [0,0,0], "rotation": [0,0,0], "scale": [1,1,1], "children": {}}]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.codec.Unmarshal(f.sc, []byte(doc), scene.NewList(), memory.NewRenderScene())
			assert.ErrorIs(t, err, domain.ErrMalformedJSON)
		})
	}

	_, err := f.codec.Unmarshal(f.sc,
		[]byte(`[{"label": "Entity", "name": "e", "position": [0,0,0], "rotation": [0,0,0], "scale": [1,1,1], "model": "missing.obj"}]`),
		scene.NewList(), memory.NewRenderScene())
	assert.ErrorIs(t, err, domain.ErrConstruction)
}

func TestCodec_KeepsStoredEnabledFlags(t *testing.T) {
	f := newFixture()
	data := []byte(`[
		{"label": "Group", "name": "off", "enabled": false, "position": [0,0,0], "rotation": [0,0,0], "scale": [1,1,1], "children": [
			{"label": "Directional Light", "name": "d", "enabled": true, "direction": [0,-1,0], "colour": [1,1,1,1]},
			{"label": "Directional Light", "name": "e", "enabled": false, "direction": [0,-1,0], "colour": [1,1,1,1]}
		]}
	]`)

	root := scene.NewList()
	rs := memory.NewRenderScene()
	_, err := f.codec.Unmarshal(f.sc, data, root, rs)
	require.NoError(t, err)

	group := root.Front().Element()
	assert.False(t, group.AsBase().Enabled)
	children := group.Children()
	assert.True(t, children.Front().Element().AsBase().Enabled)
	assert.False(t, children.Back().Element().AsBase().Enabled)
	assert.Len(t, rs.Snapshot().Lights, 1, "only the enabled light is registered")

	out, _, err := f.codec.Marshal(root)
	require.NoError(t, err)
	var doc []map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	kids := doc[0]["children"].([]any)
	assert.Equal(t, false, doc[0]["enabled"])
	assert.Equal(t, true, kids[0].(map[string]any)["enabled"])
	assert.Equal(t, false, kids[1].(map[string]any)["enabled"])
}
