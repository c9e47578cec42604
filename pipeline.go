package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sohail300/pipeline/internal/logging"
	"github.com/sohail300/pipeline/internal/metrics"
	"github.com/sohail300/pipeline/pkg/adapters/memory"
	"github.com/sohail300/pipeline/pkg/canvas"
	"github.com/sohail300/pipeline/pkg/domain"
	"github.com/sohail300/pipeline/pkg/nodetype"
	"github.com/sohail300/pipeline/pkg/ports"
	"github.com/sohail300/pipeline/pkg/render"
	"github.com/sohail300/pipeline/pkg/submit"
)

// ErrNotTemplate is returned by SetText for nodes without template text.
var ErrNotTemplate = errors.New("node is not a template node")

// Editor is the high-level entry point for the library.
// It wires the graph store, the node renderers, the canvas and the submitter.
type Editor struct {
	registry  *nodetype.Registry
	store     ports.GraphStore
	surface   *render.Surface
	canvas    *canvas.Orchestrator
	submitter *submit.Submitter
	logger    *slog.Logger
	hooks     domain.LifecycleHooks

	allocator    ports.IDAllocator
	validatorURL string
	httpClient   *http.Client
	metricsReg   prometheus.Registerer
	singleFlight bool
	snapGrid     float64

	closeOnce   sync.Once
	unsubscribe func()
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithStore injects a graph store. The default is an in-memory store.
func WithStore(s ports.GraphStore) Option {
	return func(e *Editor) {
		e.store = s
	}
}

// WithIDAllocator sets the allocator of the default store.
// It has no effect together with WithStore.
func WithIDAllocator(a ports.IDAllocator) Option {
	return func(e *Editor) {
		e.allocator = a
	}
}

// WithRegistry sets the node types. The default is nodetype.Builtin().
func WithRegistry(r *nodetype.Registry) Option {
	return func(e *Editor) {
		e.registry = r
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Editor) {
		e.hooks = hooks
	}
}

// WithValidatorURL sets the validation service root (default http://localhost:8000).
func WithValidatorURL(url string) Option {
	return func(e *Editor) {
		e.validatorURL = url
	}
}

// WithHTTPClient sets the client used to reach the validation service.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Editor) {
		e.httpClient = c
	}
}

// WithMetrics registers prometheus counters for editor activity on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *Editor) {
		e.metricsReg = reg
	}
}

// WithSingleFlight rejects a submission while another is in flight.
func WithSingleFlight() Option {
	return func(e *Editor) {
		e.singleFlight = true
	}
}

// WithSnapToGrid snaps dropped nodes to a grid of the given spacing.
func WithSnapToGrid(grid float64) Option {
	return func(e *Editor) {
		e.snapGrid = grid
	}
}

// New creates an Editor.
func New(opts ...Option) (*Editor, error) {
	e := &Editor{}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.registry == nil {
		e.registry = nodetype.Builtin()
	}
	if e.metricsReg != nil {
		m, err := metrics.New(e.metricsReg)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		e.hooks = domain.ChainHooks(e.hooks, m.Hooks())
	}
	if e.store == nil {
		storeOpts := []memory.Option{
			memory.WithHandleResolver(render.NewResolver(e.registry)),
			memory.WithLogger(e.logger),
		}
		if e.allocator != nil {
			storeOpts = append(storeOpts, memory.WithIDAllocator(e.allocator))
		}
		e.store = memory.NewStore(storeOpts...)
	}

	e.surface = render.NewSurface(e.registry, e.persistField)

	canvasOpts := []canvas.Option{canvas.WithLogger(e.logger), canvas.WithHooks(e.hooks)}
	if e.snapGrid > 0 {
		canvasOpts = append(canvasOpts, canvas.WithSnapToGrid(e.snapGrid))
	}
	e.canvas = canvas.New(e.store, e.registry, canvasOpts...)

	var clientOpts []submit.ClientOption
	if e.httpClient != nil {
		clientOpts = append(clientOpts, submit.WithHTTPClient(e.httpClient))
	}
	submitOpts := []submit.Option{
		submit.WithRegistry(e.registry),
		submit.WithLogger(e.logger),
		submit.WithHooks(e.hooks),
	}
	if e.singleFlight {
		submitOpts = append(submitOpts, submit.WithSingleFlight())
	}
	e.submitter = submit.NewSubmitter(e.store, submit.NewClient(e.validatorURL, clientOpts...), submitOpts...)

	// Renderers of removed nodes are dropped so a later mount starts fresh.
	e.unsubscribe = e.store.Subscribe(func(s ports.Snapshot) {
		e.surface.Sync(s.Nodes)
	})
	return e, nil
}

// persistField forwards a renderer edit to the store.
// A rejected value stays in the renderer's working copy and is only logged.
func (e *Editor) persistField(nodeID, field string, value any) {
	err := e.store.UpdateNodeField(nodeID, field, value)
	if err != nil {
		e.logger.Warn("Field change not persisted", "node_id", nodeID, "field", field, "err", err)
	}
	if e.hooks.OnFieldChange != nil {
		ev := &domain.FieldEvent{
			EventBase: domain.NewEventBase(domain.EventFieldChange),
			NodeID:    nodeID,
			Field:     field,
			Value:     value,
			Err:       err,
		}
		if r, ok := e.surface.Lookup(nodeID); ok {
			ev.NodeType = r.Type()
		}
		e.hooks.OnFieldChange(context.Background(), ev)
	}
}

// Drop creates a node from a palette drop. See canvas.Orchestrator.Drop.
func (e *Editor) Drop(ctx context.Context, ev canvas.DropEvent) (*domain.NodeRecord, error) {
	return e.canvas.Drop(ctx, ev)
}

func (e *Editor) mount(id string) (render.Renderer, error) {
	node, err := e.store.Node(id)
	if err != nil {
		return nil, err
	}
	return e.surface.Mount(node)
}

// View renders a node.
func (e *Editor) View(id string) (render.NodeView, error) {
	r, err := e.mount(id)
	if err != nil {
		return render.NodeView{}, err
	}
	return r.View(), nil
}

// Views renders every node in store order. Nodes of unknown types are skipped.
func (e *Editor) Views() []render.NodeView {
	nodes := e.store.Nodes()
	out := make([]render.NodeView, 0, len(nodes))
	for _, n := range nodes {
		r, err := e.surface.Mount(n)
		if err != nil {
			e.logger.Debug("Skipping node without renderer", "node_id", n.ID, "err", err)
			continue
		}
		out = append(out, r.View())
	}
	return out
}

// SetField edits one field of a node as if typed into its control.
func (e *Editor) SetField(id, field string, value any) error {
	r, err := e.mount(id)
	if err != nil {
		return err
	}
	return r.SetField(field, value)
}

// SetText replaces the text of a template node.
func (e *Editor) SetText(id, text string) error {
	r, err := e.mount(id)
	if err != nil {
		return err
	}
	t, ok := r.(*render.TemplateNode)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotTemplate, id)
	}
	t.SetText(text)
	return nil
}

// Connect adds an edge between two handles.
func (e *Editor) Connect(ctx context.Context, conn domain.Connection) (domain.EdgeRecord, error) {
	return e.canvas.Connect(ctx, conn)
}

// NodesChange applies canvas node mutations.
func (e *Editor) NodesChange(changes []domain.NodeChange) error {
	return e.canvas.NodesChange(changes)
}

// EdgesChange applies canvas edge mutations.
func (e *Editor) EdgesChange(changes []domain.EdgeChange) error {
	return e.canvas.EdgesChange(changes)
}

// SetViewport sets the pan and zoom used to place dropped nodes.
func (e *Editor) SetViewport(v canvas.Viewport) error {
	return e.canvas.SetViewport(v)
}

// Viewport returns the current pan and zoom.
func (e *Editor) Viewport() canvas.Viewport {
	return e.canvas.Viewport()
}

// Graph returns a snapshot of the nodes and edges.
func (e *Editor) Graph() ports.Snapshot {
	return ports.Snapshot{Nodes: e.store.Nodes(), Edges: e.store.Edges()}
}

// Import adds the nodes and edges of a saved graph.
// Edges go through the same role check as Connect; the first failure stops the import.
func (e *Editor) Import(snap ports.Snapshot) error {
	for _, n := range snap.Nodes {
		if n.Data == nil {
			n.Data = domain.NewInitialData(n.ID, n.Type)
		}
		if err := e.store.AddNode(n); err != nil {
			return fmt.Errorf("import node %s: %w", n.ID, err)
		}
	}
	for _, edge := range snap.Edges {
		conn := domain.Connection{
			Source:       edge.Source,
			SourceHandle: edge.SourceHandle,
			Target:       edge.Target,
			TargetHandle: edge.TargetHandle,
		}
		if _, err := e.store.OnConnect(conn); err != nil {
			return fmt.Errorf("import edge %s: %w", edge.ID, err)
		}
	}
	e.logger.Debug("Graph imported", "nodes", len(snap.Nodes), "edges", len(snap.Edges))
	return nil
}

// ReadGraph decodes a JSON graph of the form {"nodes": [...], "edges": [...]}.
func ReadGraph(r io.Reader) (ports.Snapshot, error) {
	var snap ports.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return ports.Snapshot{}, fmt.Errorf("failed to decode graph: %w", err)
	}
	return snap, nil
}

// Status is the node and edge count shown next to the submit button.
type Status struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

// Status counts the nodes and edges.
func (e *Editor) Status() Status {
	return Status{Nodes: len(e.store.Nodes()), Edges: len(e.store.Edges())}
}

// Submit sends the graph to the validation service.
func (e *Editor) Submit(ctx context.Context) submit.Dialog {
	return e.submitter.Submit(ctx)
}

// Palette returns the draggable node types in toolbar order.
func (e *Editor) Palette() []nodetype.PaletteItem {
	return e.canvas.Palette()
}

// Registry returns the node types.
func (e *Editor) Registry() *nodetype.Registry {
	return e.registry
}

// Store returns the graph store.
func (e *Editor) Store() ports.GraphStore {
	return e.store
}

// Close detaches the editor from its store. It is safe to call more than once.
func (e *Editor) Close() error {
	e.closeOnce.Do(func() {
		if e.unsubscribe != nil {
			e.unsubscribe()
		}
	})
	return nil
}
