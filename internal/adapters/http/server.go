package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sohail300/pipeline"
	"github.com/sohail300/pipeline/internal/logging"
	"github.com/sohail300/pipeline/internal/presentation/graph"
	"github.com/sohail300/pipeline/pkg/canvas"
	"github.com/sohail300/pipeline/pkg/domain"
	"github.com/sohail300/pipeline/pkg/nodetype"
	"github.com/sohail300/pipeline/pkg/ports"
	"github.com/sohail300/pipeline/pkg/render"
	"github.com/sohail300/pipeline/pkg/submit"
)

// Editor defines the editor operations exposed over HTTP.
type Editor interface {
	Drop(ctx context.Context, ev canvas.DropEvent) (*domain.NodeRecord, error)
	View(id string) (render.NodeView, error)
	Views() []render.NodeView
	SetField(id, field string, value any) error
	SetText(id, text string) error
	Connect(ctx context.Context, conn domain.Connection) (domain.EdgeRecord, error)
	NodesChange(changes []domain.NodeChange) error
	EdgesChange(changes []domain.EdgeChange) error
	SetViewport(v canvas.Viewport) error
	Viewport() canvas.Viewport
	Graph() ports.Snapshot
	Status() pipeline.Status
	Submit(ctx context.Context) submit.Dialog
	Palette() []nodetype.PaletteItem
	Registry() *nodetype.Registry
	Store() ports.GraphStore
}

var _ Editor = (*pipeline.Editor)(nil)

// Server serves the editor JSON API.
type Server struct {
	Editor   Editor
	Streams  *StreamManager
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithGatherer exposes the given registry on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewHandler creates a new HTTP handler for the editor.
// Graph snapshots are broadcast to GET /events subscribers after every store mutation;
// the returned function detaches the handler from the store.
func NewHandler(editor Editor, opts ...Option) (http.Handler, func()) {
	s := &Server{
		Editor:  editor,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger

	unsubscribe := editor.Store().Subscribe(func(snap ports.Snapshot) {
		b, err := json.Marshal(snap)
		if err != nil {
			s.logger.Error("Snapshot encode failed", "err", err)
			return
		}
		s.Streams.Broadcast(string(b))
	})

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/node-types", s.GetNodeTypes)
	r.Get("/graph", s.GetGraph)
	r.Get("/graph/mermaid", s.GetMermaid)
	r.Get("/status", s.GetStatus)
	r.Get("/events", s.SubscribeEvents)

	r.Route("/canvas", func(r chi.Router) {
		r.Post("/drop", s.Drop)
		r.Get("/viewport", s.GetViewport)
		r.Put("/viewport", s.PutViewport)
	})

	r.Get("/nodes", s.GetViews)
	r.Post("/nodes/changes", s.NodesChange)
	r.Get("/nodes/{id}/view", s.GetView)
	r.Post("/nodes/{id}/fields", s.SetField)
	r.Put("/nodes/{id}/text", s.SetText)

	r.Post("/edges/changes", s.EdgesChange)
	r.Post("/connect", s.Connect)
	r.Post("/submit", s.Submit)

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r), unsubscribe
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "pipeline-http",
		"version": strings.TrimSpace(pipeline.Version),
	})
}

// NodeTypesResponse lists the palette and the full type entries.
type NodeTypesResponse struct {
	Palette []nodetype.PaletteItem `json:"palette"`
	Types   []nodetype.Entry       `json:"types"`
}

// GetNodeTypes handles the GET /node-types request.
func (s *Server) GetNodeTypes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, NodeTypesResponse{
		Palette: s.Editor.Palette(),
		Types:   s.Editor.Registry().Entries(),
	})
}

// GetGraph handles the GET /graph request.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Editor.Graph())
}

// GetMermaid handles the GET /graph/mermaid request.
// The optional highlight query parameter is a comma separated list of node ids.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	snap := s.Editor.Graph()
	overlay := &graph.GraphOverlay{Registry: s.Editor.Registry()}
	if h := r.URL.Query().Get("highlight"); h != "" {
		overlay.Highlight = strings.Split(h, ",")
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(snap.Nodes, snap.Edges, overlay))
}

// GetStatus handles the GET /status request.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Editor.Status())
}

// DropRequest is a palette drop. Data carries the raw drag transfer keyed by format;
// NodeType is a shorthand for a transfer holding that type's payload.
type DropRequest struct {
	ClientX  float64           `json:"clientX"`
	ClientY  float64           `json:"clientY"`
	Bounds   canvas.Bounds     `json:"bounds"`
	NodeType string            `json:"nodeType,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
}

// Drop handles the POST /canvas/drop request.
// A drop that creates nothing answers 204.
func (s *Server) Drop(w http.ResponseWriter, r *http.Request) {
	var body DropRequest
	if !s.decode(w, r, &body) {
		return
	}

	ev := canvas.DropEvent{ClientX: body.ClientX, ClientY: body.ClientY, Bounds: body.Bounds}
	switch {
	case body.Data != nil:
		ev.Data = canvas.MapTransfer(body.Data)
	case body.NodeType != "":
		ev.Data = canvas.StartDrag(body.NodeType)
	}

	node, err := s.Editor.Drop(r.Context(), ev)
	if err != nil {
		s.fail(w, "Drop", err)
		return
	}
	if node == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.writeJSON(w, http.StatusCreated, node)
}

// GetViewport handles the GET /canvas/viewport request.
func (s *Server) GetViewport(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Editor.Viewport())
}

// PutViewport handles the PUT /canvas/viewport request.
func (s *Server) PutViewport(w http.ResponseWriter, r *http.Request) {
	var body canvas.Viewport
	if !s.decode(w, r, &body) {
		return
	}
	if err := s.Editor.SetViewport(body); err != nil {
		http.Error(w, fmt.Sprintf("Invalid viewport: %v", err), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Editor.Viewport())
}

// GetViews handles the GET /nodes request.
func (s *Server) GetViews(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Editor.Views())
}

// GetView handles the GET /nodes/{id}/view request.
func (s *Server) GetView(w http.ResponseWriter, r *http.Request) {
	view, err := s.Editor.View(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "View", err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// FieldRequest is a single field edit.
type FieldRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// SetField handles the POST /nodes/{id}/fields request and answers with the re-rendered node.
func (s *Server) SetField(w http.ResponseWriter, r *http.Request) {
	var body FieldRequest
	if !s.decode(w, r, &body) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.Editor.SetField(id, body.Field, body.Value); err != nil {
		s.fail(w, "SetField", err)
		return
	}
	s.GetView(w, r)
}

// TextRequest replaces the text of a template node.
type TextRequest struct {
	Text string `json:"text"`
}

// SetText handles the PUT /nodes/{id}/text request and answers with the re-rendered node.
func (s *Server) SetText(w http.ResponseWriter, r *http.Request) {
	var body TextRequest
	if !s.decode(w, r, &body) {
		return
	}
	if err := s.Editor.SetText(chi.URLParam(r, "id"), body.Text); err != nil {
		s.fail(w, "SetText", err)
		return
	}
	s.GetView(w, r)
}

// NodesChange handles the POST /nodes/changes request.
// Unknown ids are skipped; the rest of the batch still applies.
func (s *Server) NodesChange(w http.ResponseWriter, r *http.Request) {
	var body []domain.NodeChange
	if !s.decode(w, r, &body) {
		return
	}
	s.changed(w, s.Editor.NodesChange(body))
}

// EdgesChange handles the POST /edges/changes request.
func (s *Server) EdgesChange(w http.ResponseWriter, r *http.Request) {
	var body []domain.EdgeChange
	if !s.decode(w, r, &body) {
		return
	}
	s.changed(w, s.Editor.EdgesChange(body))
}

// ChangesResponse is the graph after a change batch plus the ids that were skipped.
type ChangesResponse struct {
	ports.Snapshot
	Skipped string `json:"skipped,omitempty"`
}

func (s *Server) changed(w http.ResponseWriter, err error) {
	resp := ChangesResponse{Snapshot: s.Editor.Graph()}
	if err != nil {
		s.logger.Debug("Change batch partially applied", "err", err)
		resp.Skipped = err.Error()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// Connect handles the POST /connect request.
func (s *Server) Connect(w http.ResponseWriter, r *http.Request) {
	var body domain.Connection
	if !s.decode(w, r, &body) {
		return
	}
	edge, err := s.Editor.Connect(r.Context(), body)
	if err != nil {
		s.fail(w, "Connect", err)
		return
	}
	s.writeJSON(w, http.StatusOK, edge)
}

// Submit handles the POST /submit request.
// The dialog is returned with status 200 for both variants; a failed submission is not an API error.
func (s *Server) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if id := r.Header.Get(submit.RequestIDHeader); id != "" {
		ctx = submit.WithRequestID(ctx, id)
	}
	s.writeJSON(w, http.StatusOK, s.Editor.Submit(ctx))
}

// SubscribeEvents handles the GET /events request (SSE).
// Every store mutation sends the full graph snapshot.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE Client Disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: graph\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// -- Helpers --

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

// fail maps editor errors to status codes.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNodeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrInvalidFieldValue),
		errors.Is(err, domain.ErrInvalidConnection),
		errors.Is(err, pipeline.ErrNotTemplate),
		errors.Is(err, render.ErrUnknownNodeType):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Info(op+" rejected", "err", err)
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), status)
}
