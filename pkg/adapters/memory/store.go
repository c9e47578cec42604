package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/sohail300/pipeline/internal/logging"
	"github.com/sohail300/pipeline/pkg/domain"
	"github.com/sohail300/pipeline/pkg/ports"
)

// Edge presentation defaults applied on connect.
const (
	EdgeType     = "smoothstep"
	EdgeAnimated = true
)

// Store implements ports.GraphStore in memory.
// Safe for concurrent use. Records are copied on the way in and out.
type Store struct {
	mu    sync.RWMutex
	nodes []domain.NodeRecord
	edges []domain.EdgeRecord

	ids      ports.IDAllocator
	resolver ports.HandleResolver
	logger   *slog.Logger

	subMu  sync.Mutex
	subs   map[int]func(ports.Snapshot)
	nextID int
}

// Option configures a Store.
type Option func(*Store)

// WithIDAllocator replaces the per-process id counter.
func WithIDAllocator(a ports.IDAllocator) Option {
	return func(s *Store) {
		s.ids = a
	}
}

// WithHandleResolver enables the source/target role check on connect.
// Without a resolver only node existence is checked.
func WithHandleResolver(r ports.HandleResolver) Option {
	return func(s *Store) {
		s.resolver = r
	}
}

// WithLogger sets the logger used for ignored changes.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore creates an empty in-memory graph store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		ids:    NewAllocator(),
		logger: logging.NewNop(),
		subs:   make(map[int]func(ports.Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.GraphStore = (*Store)(nil)

// Nodes returns a copy of the nodes in insertion order.
func (s *Store) Nodes() []domain.NodeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneNodes(s.nodes)
}

// Edges returns a copy of the edges in insertion order.
func (s *Store) Edges() []domain.EdgeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.edges)
}

// Node returns a copy of the node with the given id.
func (s *Store) Node(id string) (domain.NodeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOfNode(id)
	if i < 0 {
		return domain.NodeRecord{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	return s.nodes[i].Clone(), nil
}

// NodeID allocates an id through the configured allocator.
func (s *Store) NodeID(ctx context.Context, nodeType string) (string, error) {
	return s.ids.Next(ctx, nodeType)
}

// AddNode appends a node. The data bag defaults to {id, nodeType} when nil.
func (s *Store) AddNode(node domain.NodeRecord) error {
	if node.ID == "" {
		return fmt.Errorf("add node: empty id")
	}
	node = node.Clone()
	if node.Data == nil {
		node.Data = domain.NewInitialData(node.ID, node.Type)
	}

	s.mu.Lock()
	if s.indexOfNode(node.ID) >= 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrDuplicateNode, node.ID)
	}
	s.nodes = append(s.nodes, node)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return nil
}

// UpdateNodeField sets one field of a node's data bag.
func (s *Store) UpdateNodeField(nodeID, field string, value any) error {
	s.mu.Lock()
	i := s.indexOfNode(nodeID)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, nodeID)
	}
	// Write into a copy so a failed coercion leaves the stored bag intact.
	data := domain.CloneData(s.nodes[i].Data)
	if err := data.Set(field, value); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("update %s.%s: %w", nodeID, field, err)
	}
	s.nodes[i].Data = data
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return nil
}

// OnNodesChange applies node changes in order.
// Changes naming unknown nodes are skipped and reported in the returned error.
func (s *Store) OnNodesChange(changes []domain.NodeChange) error {
	var errs []error

	s.mu.Lock()
	for _, c := range changes {
		i := s.indexOfNode(c.ID)
		if i < 0 {
			errs = append(errs, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, c.ID))
			continue
		}
		switch c.Type {
		case domain.ChangePosition:
			if c.Position != nil {
				s.nodes[i].Position = *c.Position
			}
		case domain.ChangeDimensions:
			s.nodes[i].Width = c.Width
			s.nodes[i].Height = c.Height
		case domain.ChangeSelect:
			s.nodes[i].Selected = c.Selected
		case domain.ChangeRemove:
			s.nodes = slices.Delete(s.nodes, i, i+1)
			s.edges = slices.DeleteFunc(s.edges, func(e domain.EdgeRecord) bool {
				return e.Source == c.ID || e.Target == c.ID
			})
		default:
			s.logger.Warn("Ignoring unknown node change", "type", c.Type, "node_id", c.ID)
		}
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return errors.Join(errs...)
}

// OnEdgesChange applies edge changes in order.
func (s *Store) OnEdgesChange(changes []domain.EdgeChange) error {
	var errs []error

	s.mu.Lock()
	for _, c := range changes {
		i := slices.IndexFunc(s.edges, func(e domain.EdgeRecord) bool { return e.ID == c.ID })
		if i < 0 {
			errs = append(errs, fmt.Errorf("%w: %s", domain.ErrEdgeNotFound, c.ID))
			continue
		}
		switch c.Type {
		case domain.ChangeSelect:
			s.edges[i].Selected = c.Selected
		case domain.ChangeRemove:
			s.edges = slices.Delete(s.edges, i, i+1)
		default:
			s.logger.Warn("Ignoring unknown edge change", "type", c.Type, "edge_id", c.ID)
		}
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return errors.Join(errs...)
}

// OnConnect adds the edge for conn. Repeating an existing connection returns the existing edge.
func (s *Store) OnConnect(conn domain.Connection) (domain.EdgeRecord, error) {
	s.mu.Lock()
	if err := s.checkRolesLocked(conn); err != nil {
		s.mu.Unlock()
		return domain.EdgeRecord{}, err
	}

	edge := domain.EdgeRecord{
		ID:           conn.EdgeID(),
		Source:       conn.Source,
		Target:       conn.Target,
		SourceHandle: conn.SourceHandle,
		TargetHandle: conn.TargetHandle,
		Type:         EdgeType,
		Animated:     EdgeAnimated,
	}
	if i := slices.IndexFunc(s.edges, func(e domain.EdgeRecord) bool { return e.ID == edge.ID }); i >= 0 {
		existing := s.edges[i]
		s.mu.Unlock()
		return existing, nil
	}
	s.edges = append(s.edges, edge)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return edge, nil
}

func (s *Store) checkRolesLocked(conn domain.Connection) error {
	si, ti := s.indexOfNode(conn.Source), s.indexOfNode(conn.Target)
	if si < 0 || ti < 0 {
		return fmt.Errorf("%w: unknown node in %s -> %s", domain.ErrInvalidConnection, conn.Source, conn.Target)
	}
	if s.resolver == nil {
		return nil
	}
	if !s.resolver.HasHandle(s.nodes[si], conn.SourceHandle, domain.HandleSource) {
		return fmt.Errorf("%w: %q is not a source handle of %s", domain.ErrInvalidConnection, conn.SourceHandle, conn.Source)
	}
	if !s.resolver.HasHandle(s.nodes[ti], conn.TargetHandle, domain.HandleTarget) {
		return fmt.Errorf("%w: %q is not a target handle of %s", domain.ErrInvalidConnection, conn.TargetHandle, conn.Target)
	}
	return nil
}

// Subscribe registers fn for post-mutation snapshots.
// fn runs synchronously on the mutating goroutine, after the store lock is released.
func (s *Store) Subscribe(fn func(ports.Snapshot)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) publish(snap ports.Snapshot) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(ports.Snapshot), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() ports.Snapshot {
	return ports.Snapshot{Nodes: cloneNodes(s.nodes), Edges: slices.Clone(s.edges)}
}

func (s *Store) indexOfNode(id string) int {
	return slices.IndexFunc(s.nodes, func(n domain.NodeRecord) bool { return n.ID == id })
}

func cloneNodes(nodes []domain.NodeRecord) []domain.NodeRecord {
	out := make([]domain.NodeRecord, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}
