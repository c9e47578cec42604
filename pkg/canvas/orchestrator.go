package canvas

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sohail300/pipeline/internal/logging"
	"github.com/sohail300/pipeline/pkg/domain"
	"github.com/sohail300/pipeline/pkg/nodetype"
	"github.com/sohail300/pipeline/pkg/ports"
)

// DropEvent is a drop on the canvas. ClientX and ClientY are page coordinates.
type DropEvent struct {
	ClientX float64      `json:"clientX"`
	ClientY float64      `json:"clientY"`
	Bounds  Bounds       `json:"bounds"`
	Data    DataTransfer `json:"-"`
}

// Orchestrator mediates between canvas gestures and the graph store.
type Orchestrator struct {
	store  ports.GraphStore
	reg    *nodetype.Registry
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	grid   float64

	mu       sync.RWMutex
	viewport Viewport
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithHooks sets the lifecycle hooks fired on drop and connect.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(o *Orchestrator) {
		o.hooks = h
	}
}

// WithSnapToGrid snaps dropped nodes to a grid. Snapping is off by default.
func WithSnapToGrid(grid float64) Option {
	return func(o *Orchestrator) {
		o.grid = grid
	}
}

// New creates an orchestrator over store. reg, if non-nil, restricts drops to registered types.
func New(store ports.GraphStore, reg *nodetype.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		reg:      reg,
		logger:   logging.NewNop(),
		viewport: DefaultViewport,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Drop creates a node from a palette drop.
// A drop without a usable payload creates nothing and returns (nil, nil).
func (o *Orchestrator) Drop(ctx context.Context, ev DropEvent) (*domain.NodeRecord, error) {
	if ev.Data == nil {
		return nil, nil
	}
	payload, err := DecodeDragPayload(ev.Data.GetData(MimeType))
	if err != nil {
		o.logger.Debug("Ignoring drop", "err", err)
		return nil, nil
	}
	if o.reg != nil {
		if _, ok := o.reg.Entry(payload.NodeType); !ok {
			o.logger.Warn("Ignoring drop of unregistered node type", "node_type", payload.NodeType)
			return nil, nil
		}
	}

	id, err := o.freshID(ctx, payload.NodeType)
	if err != nil {
		return nil, err
	}

	pos := o.Viewport().Project(ev.ClientX-ev.Bounds.Left, ev.ClientY-ev.Bounds.Top)
	if o.grid > 0 {
		pos = Snap(pos, o.grid)
	}

	node := domain.NodeRecord{
		ID:       id,
		Type:     payload.NodeType,
		Position: pos,
		Data:     domain.NewInitialData(id, payload.NodeType),
	}
	if err := o.store.AddNode(node); err != nil {
		return nil, err
	}

	o.logger.Debug("Node dropped", "node_id", id, "node_type", node.Type, "x", pos.X, "y", pos.Y)
	if o.hooks.OnNodeDrop != nil {
		o.hooks.OnNodeDrop(ctx, &domain.NodeEvent{
			EventBase: domain.NewEventBase(domain.EventNodeDrop),
			NodeID:    id,
			NodeType:  node.Type,
		})
	}
	return &node, nil
}

// maxIDAttempts bounds the skips over ids already taken by imported nodes.
const maxIDAttempts = 1000

// freshID allocates ids until one is not in the store.
func (o *Orchestrator) freshID(ctx context.Context, nodeType string) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id, err := o.store.NodeID(ctx, nodeType)
		if err != nil {
			return "", fmt.Errorf("allocate %s id: %w", nodeType, err)
		}
		if _, err := o.store.Node(id); errors.Is(err, domain.ErrNodeNotFound) {
			return id, nil
		}
	}
	return "", fmt.Errorf("allocate %s id: %w", nodeType, domain.ErrDuplicateNode)
}

// Connect delegates a connection to the store.
func (o *Orchestrator) Connect(ctx context.Context, conn domain.Connection) (domain.EdgeRecord, error) {
	edge, err := o.store.OnConnect(conn)
	if err != nil {
		o.logger.Info("Connection rejected", "source", conn.Source, "target", conn.Target, "err", err)
	}
	if o.hooks.OnConnect != nil {
		o.hooks.OnConnect(ctx, &domain.EdgeEvent{
			EventBase:  domain.NewEventBase(domain.EventConnect),
			Connection: conn,
			EdgeID:     edge.ID,
			Err:        err,
		})
	}
	return edge, err
}

// NodesChange delegates node mutations to the store.
func (o *Orchestrator) NodesChange(changes []domain.NodeChange) error {
	return o.store.OnNodesChange(changes)
}

// EdgesChange delegates edge mutations to the store.
func (o *Orchestrator) EdgesChange(changes []domain.EdgeChange) error {
	return o.store.OnEdgesChange(changes)
}

// SetViewport replaces the pan and zoom used to project drops.
func (o *Orchestrator) SetViewport(v Viewport) error {
	if err := v.Validate(); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.viewport = v
	return nil
}

// Viewport returns the current pan and zoom.
func (o *Orchestrator) Viewport() Viewport {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.viewport
}

// Palette returns the draggable node types in toolbar order.
func (o *Orchestrator) Palette() []nodetype.PaletteItem {
	if o.reg == nil {
		return nil
	}
	return o.reg.Palette()
}
