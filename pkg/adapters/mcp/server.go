// Package mcp exposes the editor commands as MCP tools so agents can build scenes.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/scene"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// HierarchyURI is the resource holding the current hierarchy.
const HierarchyURI = "arbor://hierarchy"

// HierarchyResponse is the structured output of get_hierarchy.
type HierarchyResponse struct {
	Title string                 `json:"title" jsonschema_description:"Window title naming the open document, empty when unsaved"`
	Rows  []runtime.HierarchyRow `json:"rows" jsonschema_description:"Depth-first rows, parents before children"`
}

// Editor is the surface the tools drive. *runtime.Editor implements it.
type Editor interface {
	CreationMenu() []runtime.MenuEntry
	Hierarchy() []runtime.HierarchyRow
	Fields(id string) (map[string]any, bool)
	Resolve(id string) (*scene.Ref, bool)
	Title() string
	Snapshot() domain.RenderSnapshot

	Create(ctx context.Context, tag string) (*scene.Ref, error)
	Select(ctx context.Context, r *scene.Ref, toggle bool) error
	Delete(ctx context.Context) int
	ToggleEnabled(ctx context.Context, r *scene.Ref) error
	Edit(ctx context.Context, r *scene.Ref, patch map[string]any) error
	Move(ctx context.Context, r *scene.Ref, target runtime.InsertPoint) error
	SaveAs(ctx context.Context, path string) error
	Load(ctx context.Context, path string) error
}

// Server wraps the editor and exposes it as an MCP Server.
type Server struct {
	editor    Editor
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(editor Editor, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		editor:    editor,
		logger:    logger,
		mcpServer: server.NewMCPServer("arbor-mcp", strings.TrimSpace(version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on the given port using SSE until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_types",
		mcp.WithDescription("List the element types that can be created, with their menu category."),
	), s.handleListTypes)

	s.mcpServer.AddTool(mcp.NewTool("get_hierarchy",
		mcp.WithDescription("Get the scene hierarchy as depth-first rows."),
		mcp.WithOutputSchema[HierarchyResponse](),
	), mcp.NewStructuredToolHandler(s.handleHierarchy))

	s.mcpServer.AddTool(mcp.NewTool("get_fields",
		mcp.WithDescription("Get the editable fields of an element."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Element ID from the hierarchy")),
	), s.handleFields)

	s.mcpServer.AddTool(mcp.NewTool("create_element",
		mcp.WithDescription("Create an element. It goes into the selected group, after the selected element, or at the end of the scene, and becomes selected."),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Type tag, e.g. \"Entity\" or \"Point Light\"")),
	), s.handleCreate)

	s.mcpServer.AddTool(mcp.NewTool("select_element",
		mcp.WithDescription("Select an element. Omit id to clear the selection."),
		mcp.WithString("id", mcp.Description("Element ID")),
		mcp.WithBoolean("toggle", mcp.Description("Add or remove from the multi-selection instead of replacing it")),
	), s.handleSelect)

	s.mcpServer.AddTool(mcp.NewTool("delete_selection",
		mcp.WithDescription("Delete every selected element with its children."),
	), s.handleDelete)

	s.mcpServer.AddTool(mcp.NewTool("toggle_enabled",
		mcp.WithDescription("Enable or disable an element and its children."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Element ID")),
	), s.handleToggle)

	s.mcpServer.AddTool(mcp.NewTool("edit_element",
		mcp.WithDescription("Apply a partial field update. Either every field applies or none does."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Element ID")),
		mcp.WithString("fields", mcp.Required(), mcp.Description("JSON object of fields to change, e.g. {\"position\":[0,1,0]}")),
	), s.handleEdit)

	s.mcpServer.AddTool(mcp.NewTool("move_element",
		mcp.WithDescription("Move an element with its children to another place in the hierarchy."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Element ID")),
		mcp.WithString("parent", mcp.Description("Group ID; omit for the top level")),
		mcp.WithString("after", mcp.Description("Sibling to insert after; omit to append")),
	), s.handleMove)

	s.mcpServer.AddTool(mcp.NewTool("save_scene",
		mcp.WithDescription("Save the scene to a document path."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Document path")),
	), s.handleSave)

	s.mcpServer.AddTool(mcp.NewTool("load_scene",
		mcp.WithDescription("Replace the scene with a saved document. The scene is unchanged if loading fails."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Document path")),
	), s.handleLoad)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(HierarchyURI, "Scene hierarchy",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.editor.Hierarchy())
		if err != nil {
			return nil, fmt.Errorf("failed to encode hierarchy: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      HierarchyURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func (s *Server) handleListTypes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.editor.CreationMenu())
}

func (s *Server) handleHierarchy(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (HierarchyResponse, error) {
	rows := s.editor.Hierarchy()
	if rows == nil {
		rows = []runtime.HierarchyRow{}
	}
	return HierarchyResponse{Title: s.editor.Title(), Rows: rows}, nil
}

func (s *Server) handleFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("id", "")
	fields, ok := s.editor.Fields(id)
	if !ok {
		return toolError(fmt.Errorf("element %s: %w", id, domain.ErrInvalidReference)), nil
	}
	return jsonResult(fields)
}

func (s *Server) handleCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := s.editor.Create(ctx, request.GetString("tag", ""))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(map[string]string{"id": ref.Element().AsBase().ID})
}

func (s *Server) handleSelect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var ref *scene.Ref
	if id := request.GetString("id", ""); id != "" {
		var err error
		if ref, err = s.resolve(id); err != nil {
			return toolError(err), nil
		}
	}
	if err := s.editor.Select(ctx, ref, request.GetBool("toggle", false)); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

func (s *Server) handleDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]int{"erased": s.editor.Delete(ctx)})
}

func (s *Server) handleToggle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := s.resolve(request.GetString("id", ""))
	if err == nil {
		err = s.editor.ToggleEnabled(ctx, ref)
	}
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

func (s *Server) handleEdit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("id", "")
	ref, err := s.resolve(id)
	if err != nil {
		return toolError(err), nil
	}
	var patch map[string]any
	if err := json.Unmarshal([]byte(request.GetString("fields", "")), &patch); err != nil {
		return toolError(fmt.Errorf("fields: %w: %v", domain.ErrMalformedJSON, err)), nil
	}
	if err := s.editor.Edit(ctx, ref, patch); err != nil {
		return toolError(err), nil
	}
	fields, _ := s.editor.Fields(id)
	return jsonResult(fields)
}

func (s *Server) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := s.resolve(request.GetString("id", ""))
	if err != nil {
		return toolError(err), nil
	}
	var target runtime.InsertPoint
	if id := request.GetString("parent", ""); id != "" {
		if target.Parent, err = s.resolve(id); err != nil {
			return toolError(err), nil
		}
	}
	if id := request.GetString("after", ""); id != "" {
		if target.After, err = s.resolve(id); err != nil {
			return toolError(err), nil
		}
	}
	if err := s.editor.Move(ctx, ref, target); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

func (s *Server) handleSave(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")
	if path == "" {
		return toolError(fmt.Errorf("save: %w", domain.ErrNoSavePath)), nil
	}
	if err := s.editor.SaveAs(ctx, path); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(s.editor.Title()), nil
}

func (s *Server) handleLoad(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")
	if path == "" {
		return toolError(fmt.Errorf("load: %w", domain.ErrNoSavePath)), nil
	}
	if err := s.editor.Load(ctx, path); err != nil {
		return toolError(err), nil
	}
	return jsonResult(s.editor.Snapshot())
}

func (s *Server) resolve(id string) (*scene.Ref, error) {
	ref, ok := s.editor.Resolve(id)
	if !ok {
		return nil, fmt.Errorf("element %s: %w", id, domain.ErrInvalidReference)
	}
	return ref, nil
}

// toolError reports a command failure to the agent; only protocol failures are Go errors.
func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", domain.Classify(err), err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
