package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/tree"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// Server exposes a tree registry as a JSON API.
type Server struct {
	Registry *registry.Registry
	Events   ports.EventStream // Optional, enables GET /events
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithEventStream enables the server-sent events endpoint.
func WithEventStream(stream ports.EventStream) Option {
	return func(s *Server) {
		s.Events = stream
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// BranchRequest is the body of POST /trees/{id}/branches.
type BranchRequest struct {
	Index  *int `json:"index"`
	Parent *int `json:"parent"`
}

// LeafRequest is the body of POST /trees/{id}/leaves.
type LeafRequest struct {
	Index  *int `json:"index"`
	Parent *int `json:"parent"`
}

// InsertResult is returned by both insertion endpoints.
// A 422 still carries the counts: the node was inserted.
type InsertResult struct {
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
	Error     string `json:"error,omitempty"`
}

// TreeResponse is returned by GET /trees/{id}.
type TreeResponse struct {
	ID        string        `json:"id"`
	NodeCount int           `json:"node_count"`
	EdgeCount int           `json:"edge_count"`
	Nodes     []domain.Node `json:"nodes"`
	Edges     []domain.Edge `json:"edges"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewHandler creates a new HTTP handler for the registry.
func NewHandler(reg *registry.Registry, opts ...Option) http.Handler {
	s := &Server{
		Registry: reg,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Post("/error", s.ErrorFunction)
	r.Get("/events", s.SubscribeEvents)

	r.Route("/trees", func(r chi.Router) {
		r.Get("/", s.ListTrees)
		r.Post("/", s.CreateTree)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetTree)
			r.Delete("/", s.DeleteTree)
			r.Post("/branches", s.AddBranch)
			r.Post("/leaves", s.AddLeaf)
			r.Get("/render", s.RenderTree)
		})
	})

	return r
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "arbor-http",
		"version":     arbor.Version,
		"api_version": apiVersion,
	})
}

// ErrorFunction handles the POST /error request. It always fails.
func (s *Server) ErrorFunction(w http.ResponseWriter, r *http.Request) {
	err := arbor.ErrorFunction()
	s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}

// ListTrees handles the GET /trees request.
func (s *Server) ListTrees(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Registry.List())
}

// CreateTree handles the POST /trees request.
func (s *Server) CreateTree(w http.ResponseWriter, r *http.Request) {
	id := s.Registry.Create(r.Context())
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// GetTree handles the GET /trees/{id} request.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	id, ok := s.treeID(w, r)
	if !ok {
		return
	}

	var resp TreeResponse
	err := s.Registry.With(r.Context(), id, func(b *tree.Builder) error {
		resp = TreeResponse{
			ID:        id,
			NodeCount: b.NodeCount(),
			EdgeCount: b.EdgeCount(),
			Nodes:     b.Nodes(),
			Edges:     b.Edges(),
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// DeleteTree handles the DELETE /trees/{id} request.
func (s *Server) DeleteTree(w http.ResponseWriter, r *http.Request) {
	id, ok := s.treeID(w, r)
	if !ok {
		return
	}
	if err := s.Registry.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddBranch handles the POST /trees/{id}/branches request.
func (s *Server) AddBranch(w http.ResponseWriter, r *http.Request) {
	id, ok := s.treeID(w, r)
	if !ok {
		return
	}

	var body BranchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		s.logger.Warn("AddBranch: invalid request body", "error", err)
		return
	}
	if body.Index == nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "index is required"})
		return
	}

	s.insert(w, r, id, func(b *tree.Builder) error {
		return b.AddBranchContext(r.Context(), *body.Index, body.Parent)
	})
}

// AddLeaf handles the POST /trees/{id}/leaves request.
func (s *Server) AddLeaf(w http.ResponseWriter, r *http.Request) {
	id, ok := s.treeID(w, r)
	if !ok {
		return
	}

	var body LeafRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		s.logger.Warn("AddLeaf: invalid request body", "error", err)
		return
	}
	if body.Index == nil || body.Parent == nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "index and parent are required"})
		return
	}

	s.insert(w, r, id, func(b *tree.Builder) error {
		return b.AddLeafContext(r.Context(), *body.Index, *body.Parent)
	})
}

func (s *Server) insert(w http.ResponseWriter, r *http.Request, id string, fn func(*tree.Builder) error) {
	var res InsertResult
	var insertErr error

	err := s.Registry.With(r.Context(), id, func(b *tree.Builder) error {
		insertErr = fn(b)
		res.NodeCount = b.NodeCount()
		res.EdgeCount = b.EdgeCount()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	if insertErr != nil {
		res.Error = insertErr.Error()
		s.writeJSON(w, http.StatusUnprocessableEntity, res)
		return
	}
	s.writeJSON(w, http.StatusCreated, res)
}

// RenderTree handles the GET /trees/{id}/render request.
func (s *Server) RenderTree(w http.ResponseWriter, r *http.Request) {
	id, ok := s.treeID(w, r)
	if !ok {
		return
	}

	var formatParam *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &formatParam); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid format parameter: %v", err)})
		return
	}
	var name string
	if formatParam != nil {
		name = *formatParam
	}
	format, err := tree.ParseFormat(name)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var out string
	err = s.Registry.With(r.Context(), id, func(b *tree.Builder) error {
		var err error
		out, err = b.RenderAs(format)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, out)
}

// SubscribeEvents handles the GET /events request (SSE).
// The optional tree query parameter filters events to a single tree.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	if s.Events == nil {
		s.writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: "event stream not configured"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	var treeFilter *string
	if err := runtime.BindQueryParameter("form", true, false, "tree", r.URL.Query(), &treeFilter); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid tree parameter: %v", err)})
		return
	}

	events, err := s.Events.Subscribe(r.Context())
	if err != nil {
		s.writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: err.Error()})
		s.logger.Error("SubscribeEvents: subscribe failed", "error", err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if treeFilter != nil && ev.Base().Tree != *treeFilter {
				continue
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Error("SSE: encode failed", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Base().Type, data)
			flusher.Flush()
		}
	}
}

// treeID binds the {id} path parameter the way generated chi servers do.
func (s *Server) treeID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithLocation("simple", false, "id", runtime.ParamLocationPath, chi.URLParam(r, "id"), &id)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid id parameter: %v", err)})
		return "", false
	}
	return id, true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrTreeNotFound):
		s.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, tree.ErrUnknownFormat):
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		s.logger.Error("request failed", "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "status", status, "error", err)
	}
}
