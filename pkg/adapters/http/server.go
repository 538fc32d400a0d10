// Package http exposes an editor over a JSON HTTP API routed with chi.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/scene"
	"github.com/go-chi/chi/v5"
)

// Editor is the command and view surface the server drives. *runtime.Editor implements it.
type Editor interface {
	CreationMenu() []runtime.MenuEntry
	Hierarchy() []runtime.HierarchyRow
	Fields(id string) (map[string]any, bool)
	Resolve(id string) (*scene.Ref, bool)
	Title() string
	Path() string
	Snapshot() domain.RenderSnapshot

	Create(ctx context.Context, tag string) (*scene.Ref, error)
	Select(ctx context.Context, r *scene.Ref, toggle bool) error
	Delete(ctx context.Context) int
	ToggleEnabled(ctx context.Context, r *scene.Ref) error
	Edit(ctx context.Context, r *scene.Ref, patch map[string]any) error
	Move(ctx context.Context, r *scene.Ref, target runtime.InsertPoint) error
	Save(ctx context.Context) error
	SaveAs(ctx context.Context, path string) error
	Load(ctx context.Context, path string) error
}

var _ Editor = (*runtime.Editor)(nil)

// Server serves one editor.
type Server struct {
	Editor  Editor
	Streams *StreamManager

	version string
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithStreams shares a StreamManager whose Hooks are registered on the editor.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) { s.Streams = sm }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewHandler creates a new HTTP handler for the editor.
func NewHandler(editor Editor, opts ...Option) http.Handler {
	s := &Server{Editor: editor, version: "dev"}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/menu", s.GetMenu)
	r.Get("/hierarchy", s.GetHierarchy)
	r.Get("/render", s.GetRender)
	r.Get("/events", s.SubscribeEvents)

	r.Route("/elements", func(r chi.Router) {
		r.Post("/", s.CreateElement)
		r.Get("/{id}", s.GetElement)
		r.Patch("/{id}", s.EditElement)
		r.Post("/{id}/toggle", s.ToggleElement)
		r.Post("/{id}/move", s.MoveElement)
	})

	r.Post("/selection", s.SelectElement)
	r.Delete("/selection", s.DeleteSelection)

	r.Get("/document", s.GetDocument)
	r.Post("/document/save", s.SaveDocument)
	r.Post("/document/load", s.LoadDocument)

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "arbor-http",
		"version": strings.TrimSpace(s.version),
	})
}

// GetMenu handles GET /menu, the creation menu in registration order.
func (s *Server) GetMenu(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Editor.CreationMenu())
}

// GetHierarchy handles GET /hierarchy.
func (s *Server) GetHierarchy(w http.ResponseWriter, r *http.Request) {
	rows := s.Editor.Hierarchy()
	if rows == nil {
		rows = []runtime.HierarchyRow{}
	}
	s.writeJSON(w, http.StatusOK, rows)
}

// GetRender handles GET /render, the render registry membership.
func (s *Server) GetRender(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Editor.Snapshot())
}

// GetElement handles GET /elements/{id}: the editable fields of one element.
func (s *Server) GetElement(w http.ResponseWriter, r *http.Request) {
	fields, ok := s.Editor.Fields(chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, r, fmt.Errorf("element %s: %w", chi.URLParam(r, "id"), domain.ErrInvalidReference))
		return
	}
	s.writeJSON(w, http.StatusOK, fields)
}

type createRequest struct {
	Tag string `json:"tag"`
}

type elementResponse struct {
	ID string `json:"id"`
}

// CreateElement handles POST /elements. The element goes where the selection says and
// becomes the primary selection.
func (s *Server) CreateElement(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if !s.decode(w, r, &body) {
		return
	}
	ref, err := s.Editor.Create(r.Context(), body.Tag)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, elementResponse{ID: ref.Element().AsBase().ID})
}

// EditElement handles PATCH /elements/{id} with a partial field object.
func (s *Server) EditElement(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.resolve(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var patch map[string]any
	if !s.decode(w, r, &patch) {
		return
	}
	if err := s.Editor.Edit(r.Context(), ref, patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	fields, _ := s.Editor.Fields(chi.URLParam(r, "id"))
	s.writeJSON(w, http.StatusOK, fields)
}

// ToggleElement handles POST /elements/{id}/toggle.
func (s *Server) ToggleElement(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.resolve(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := s.Editor.ToggleEnabled(r.Context(), ref); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type moveRequest struct {
	// Parent is empty for the root list.
	Parent string `json:"parent"`
	// After is empty to append.
	After string `json:"after"`
}

// MoveElement handles POST /elements/{id}/move.
func (s *Server) MoveElement(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.resolve(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var body moveRequest
	if !s.decode(w, r, &body) {
		return
	}
	var target runtime.InsertPoint
	if body.Parent != "" {
		if target.Parent, ok = s.resolve(w, r, body.Parent); !ok {
			return
		}
	}
	if body.After != "" {
		if target.After, ok = s.resolve(w, r, body.After); !ok {
			return
		}
	}
	if err := s.Editor.Move(r.Context(), ref, target); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type selectRequest struct {
	// ID is empty to clear the selection.
	ID     string `json:"id"`
	Toggle bool   `json:"toggle"`
}

// SelectElement handles POST /selection, a hierarchy click.
func (s *Server) SelectElement(w http.ResponseWriter, r *http.Request) {
	var body selectRequest
	if !s.decode(w, r, &body) {
		return
	}
	var ref *scene.Ref
	if body.ID != "" {
		var ok bool
		if ref, ok = s.resolve(w, r, body.ID); !ok {
			return
		}
	}
	if err := s.Editor.Select(r.Context(), ref, body.Toggle); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSelection handles DELETE /selection: every selected element is erased with its subtree.
func (s *Server) DeleteSelection(w http.ResponseWriter, r *http.Request) {
	n := s.Editor.Delete(r.Context())
	s.writeJSON(w, http.StatusOK, map[string]int{"erased": n})
}

type documentResponse struct {
	Path  string `json:"path"`
	Title string `json:"title"`
}

// GetDocument handles GET /document.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, documentResponse{Path: s.Editor.Path(), Title: s.Editor.Title()})
}

type pathRequest struct {
	Path string `json:"path"`
}

// SaveDocument handles POST /document/save. Without a path the current one is used.
func (s *Server) SaveDocument(w http.ResponseWriter, r *http.Request) {
	var body pathRequest
	if r.ContentLength != 0 && !s.decode(w, r, &body) {
		return
	}
	var err error
	if body.Path != "" {
		err = s.Editor.SaveAs(r.Context(), body.Path)
	} else {
		err = s.Editor.Save(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.GetDocument(w, r)
}

// LoadDocument handles POST /document/load.
func (s *Server) LoadDocument(w http.ResponseWriter, r *http.Request) {
	var body pathRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.Path == "" {
		s.writeError(w, r, fmt.Errorf("load: %w", domain.ErrNoSavePath))
		return
	}
	if err := s.Editor.Load(r.Context(), body.Path); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.GetDocument(w, r)
}

// SubscribeEvents handles GET /events, a server-sent stream of committed render states.
// The optional watch parameter keeps only the listed commands.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	watch := map[string]bool{}
	if v := r.URL.Query().Get("watch"); v != "" {
		for _, c := range strings.Split(v, ",") {
			watch[strings.TrimSpace(c)] = true
		}
	}

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !watch[msg.Command] {
				continue
			}
			fmt.Fprintf(w, "event: commit\ndata: %s\n\n", msg.Data)
			flusher.Flush()
		}
	}
}

// -- Helpers --

func (s *Server) resolve(w http.ResponseWriter, r *http.Request, id string) (*scene.Ref, bool) {
	ref, ok := s.Editor.Resolve(id)
	if !ok {
		s.writeError(w, r, fmt.Errorf("element %s: %w", id, domain.ErrInvalidReference))
	}
	return ref, ok
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error(), Kind: domain.Classify(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidReference), errors.Is(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownTypeTag), errors.Is(err, domain.ErrMalformedJSON),
		errors.Is(err, domain.ErrNoSavePath):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConstruction), errors.Is(err, domain.ErrMarkedError):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
