package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	editor  *runtime.Editor
	handler http.Handler
	streams *StreamManager
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	sm := NewStreamManager(nil)
	editor := runtime.New(
		runtime.WithStore(memory.NewStore()),
		runtime.WithLifecycleHooks(sm.Hooks()),
	)
	require.NoError(t, editor.Open(context.Background()))
	return &harness{
		editor:  editor,
		streams: sm,
		handler: NewHandler(editor, WithStreams(sm), WithVersion("1.2.3\n")),
	}
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	return w
}

func (h *harness) create(t *testing.T, tag string) string {
	t.Helper()
	w := h.do(t, "POST", "/elements", createRequest{Tag: tag})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp elementResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func (h *harness) hierarchy(t *testing.T) []runtime.HierarchyRow {
	t.Helper()
	w := h.do(t, "GET", "/hierarchy", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []runtime.HierarchyRow
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	return rows
}

func TestInfoAndMenu(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, "GET", "/info", nil)
	assert.JSONEq(t, `{"app":"arbor-http","version":"1.2.3"}`, w.Body.String())

	w = h.do(t, "GET", "/menu", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var menu []runtime.MenuEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &menu))
	require.NotEmpty(t, menu)
	assert.Equal(t, domain.TagEntity, menu[0].Tag)
}

func TestCreateSelectsAndNests(t *testing.T) {
	h := newHarness(t)

	group := h.create(t, domain.TagGroup)
	child := h.create(t, domain.TagEntity)

	rows := h.hierarchy(t)
	require.Len(t, rows, 4)
	assert.Equal(t, group, rows[2].ID)
	assert.True(t, rows[2].Container)
	assert.Equal(t, child, rows[3].ID)
	assert.Equal(t, 1, rows[3].Depth)
	assert.True(t, rows[3].Primary)
}

func TestCreateUnknownTag(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, "POST", "/elements", createRequest{Tag: "Teapot"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"unknown_type_tag"`)
	assert.Len(t, h.hierarchy(t), 2)
}

func TestEditElement(t *testing.T) {
	h := newHarness(t)
	id := h.create(t, domain.TagEntity)

	w := h.do(t, "PATCH", "/elements/"+id, map[string]any{"name": "Crate"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var fields map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fields))
	assert.Equal(t, "Crate", fields["name"])

	w = h.do(t, "PATCH", "/elements/"+id, map[string]any{"position": "up"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, "GET", "/elements/"+id, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fields))
	assert.Equal(t, "Crate", fields["name"])

	w = h.do(t, "GET", "/elements/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToggleMoveAndDelete(t *testing.T) {
	h := newHarness(t)
	group := h.create(t, domain.TagGroup)
	require.Equal(t, http.StatusNoContent, h.do(t, "POST", "/selection", selectRequest{}).Code)
	entity := h.create(t, domain.TagEntity)

	w := h.do(t, "POST", "/elements/"+group+"/toggle", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = h.do(t, "POST", "/elements/"+entity+"/move", moveRequest{Parent: group})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	rows := h.hierarchy(t)
	require.Len(t, rows, 4)
	assert.Equal(t, entity, rows[3].ID)
	assert.True(t, rows[3].Enabled, "a move keeps the enabled flag")

	w = h.do(t, "POST", "/elements/"+group+"/move", moveRequest{Parent: entity})
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.Equal(t, http.StatusNoContent, h.do(t, "POST", "/selection", selectRequest{ID: group}).Code)
	w = h.do(t, "DELETE", "/selection", nil)
	assert.JSONEq(t, `{"erased":2}`, w.Body.String())
	assert.Len(t, h.hierarchy(t), 2)
}

func TestDocumentSaveAndLoad(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, "POST", "/document/save", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "no path and the prompt is cancelled")

	w = h.do(t, "POST", "/document/save", pathRequest{Path: "scenes/a.json"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"path":"scenes/a.json","title":"Open File: [scenes/a.json]"}`, w.Body.String())

	h.create(t, domain.TagEntity)
	w = h.do(t, "POST", "/document/load", pathRequest{Path: "scenes/a.json"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, h.hierarchy(t), 2)

	w = h.do(t, "POST", "/document/load", pathRequest{Path: "scenes/missing.json"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"io_failure"`)

	w = h.do(t, "GET", "/render", nil)
	var snap domain.RenderSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Len(t, snap.Lights, 1)
}

func TestMetricsMount(t *testing.T) {
	sm := NewStreamManager(nil)
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("arbor_commands_total 1\n"))
	})
	handler := NewHandler(runtime.New(), WithStreams(sm), WithMetrics(metrics))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, w.Body.String(), "arbor_commands_total")
}

func TestSubscribeEvents(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(h.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/events?watch=create", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())

	// The ping is written after Subscribe, so commits from here on are delivered.
	h.do(t, "POST", "/selection", selectRequest{})
	h.create(t, domain.TagPointLight)

	var data string
	for lines.Scan() {
		if strings.HasPrefix(lines.Text(), "data: {") {
			data = strings.TrimPrefix(lines.Text(), "data: ")
			break
		}
	}
	var commit domain.CommitEvent
	require.NoError(t, json.Unmarshal([]byte(data), &commit))
	assert.Equal(t, "create", commit.Command, "select commits are filtered out")
	assert.Len(t, commit.Render.Lights, 2)
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe()

	for i := 0; i < 20; i++ {
		sm.Broadcast(Commit{Command: "create"})
	}
	assert.Len(t, ch, 10)

	cancel()
	cancel()
	sm.Broadcast(Commit{Command: "create"})
}
