package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*Server, *runtime.Editor) {
	t.Helper()
	editor := runtime.New(runtime.WithStore(memory.NewStore()))
	require.NoError(t, editor.Open(context.Background()))
	return NewServer(editor, "test", nil), editor
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func createVia(t *testing.T, s *Server, tag string) string {
	t.Helper()
	res, err := s.handleCreate(context.Background(), call(map[string]any{"tag": tag}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))
	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	return out["id"]
}

func TestCreateAndHierarchy(t *testing.T) {
	s, _ := newServer(t)
	ctx := context.Background()

	group := createVia(t, s, domain.TagGroup)
	light := createVia(t, s, domain.TagPointLight)

	h, err := s.handleHierarchy(ctx, call(nil), nil)
	require.NoError(t, err)
	require.Len(t, h.Rows, 4)
	assert.Equal(t, group, h.Rows[2].ID)
	assert.Equal(t, light, h.Rows[3].ID)
	assert.Equal(t, 1, h.Rows[3].Depth)
}

func TestCreateUnknownTagIsToolError(t *testing.T) {
	s, _ := newServer(t)

	res, err := s.handleCreate(context.Background(), call(map[string]any{"tag": "Teapot"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "unknown_type_tag")
}

func TestEditElement(t *testing.T) {
	s, editor := newServer(t)
	ctx := context.Background()
	id := createVia(t, s, domain.TagEntity)

	res, err := s.handleEdit(ctx, call(map[string]any{"id": id, "fields": `{"name":"Crate"}`}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))
	fields, ok := editor.Fields(id)
	require.True(t, ok)
	assert.Equal(t, "Crate", fields["name"])

	res, err = s.handleEdit(ctx, call(map[string]any{"id": id, "fields": `not json`}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "malformed_json")

	res, err = s.handleFields(ctx, call(map[string]any{"id": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "invalid_reference")
}

func TestSelectToggleDelete(t *testing.T) {
	s, editor := newServer(t)
	ctx := context.Background()
	a := createVia(t, s, domain.TagEntity)
	b := createVia(t, s, domain.TagEntity)

	res, err := s.handleSelect(ctx, call(map[string]any{"id": a, "toggle": true}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	sel := editor.Selection()
	assert.Equal(t, 2, sel.Len())

	before := len(editor.Snapshot().Entities)
	res, err = s.handleToggle(ctx, call(map[string]any{"id": b}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Len(t, editor.Snapshot().Entities, before-1, "b is no longer rendered")

	res, err = s.handleDelete(ctx, call(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"erased":2}`, text(t, res))
}

func TestMoveIntoGroup(t *testing.T) {
	s, editor := newServer(t)
	ctx := context.Background()
	group := createVia(t, s, domain.TagGroup)
	_, err := s.handleSelect(ctx, call(nil))
	require.NoError(t, err)
	entity := createVia(t, s, domain.TagEntity)

	res, err := s.handleMove(ctx, call(map[string]any{"id": entity, "parent": group}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	rows := editor.Hierarchy()
	assert.Equal(t, entity, rows[len(rows)-1].ID)
	assert.Equal(t, 1, rows[len(rows)-1].Depth)

	res, err = s.handleMove(ctx, call(map[string]any{"id": group, "parent": entity}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestSaveAndLoad(t *testing.T) {
	s, editor := newServer(t)
	ctx := context.Background()

	res, err := s.handleSave(ctx, call(map[string]any{"path": "a.json"}))
	require.NoError(t, err)
	assert.Equal(t, "Open File: [a.json]", text(t, res))

	createVia(t, s, domain.TagEntity)
	res, err = s.handleLoad(ctx, call(map[string]any{"path": "a.json"}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))
	assert.Len(t, editor.Hierarchy(), 2)

	res, err = s.handleLoad(ctx, call(map[string]any{"path": "missing.json"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "io_failure")

	res, err = s.handleSave(ctx, call(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestListTypes(t *testing.T) {
	s, _ := newServer(t)
	res, err := s.handleListTypes(context.Background(), call(nil))
	require.NoError(t, err)

	var menu []runtime.MenuEntry
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &menu))
	assert.Len(t, menu, 6)
}
