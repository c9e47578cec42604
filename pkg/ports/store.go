package ports

import (
	"context"

	"github.com/sohail300/pipeline/pkg/domain"
)

// Snapshot is a consistent copy of the graph at one point in time.
type Snapshot struct {
	Nodes []domain.NodeRecord `json:"nodes"`
	Edges []domain.EdgeRecord `json:"edges"`
}

// GraphStore owns the node and edge collections.
// Callers never mutate records directly; every change goes through these operations
// and is applied in the order the calls are made.
type GraphStore interface {
	// Nodes returns a copy of the nodes in insertion order.
	Nodes() []domain.NodeRecord

	// Edges returns a copy of the edges in insertion order.
	Edges() []domain.EdgeRecord

	// Node returns a copy of a single node.
	// Returns domain.ErrNodeNotFound if it does not exist.
	Node(id string) (domain.NodeRecord, error)

	// NodeID allocates a fresh unique id for a node of the given type.
	NodeID(ctx context.Context, nodeType string) (string, error)

	// AddNode appends a fully formed node record.
	AddNode(node domain.NodeRecord) error

	// UpdateNodeField persists a single field edit into the node's data bag.
	UpdateNodeField(nodeID, field string, value any) error

	// OnNodesChange applies canvas node mutations (move, resize, select, remove).
	OnNodesChange(changes []domain.NodeChange) error

	// OnEdgesChange applies canvas edge mutations (select, remove).
	OnEdgesChange(changes []domain.EdgeChange) error

	// OnConnect adds an edge for a connection between two handles.
	// Returns domain.ErrInvalidConnection if the handles do not play the right roles.
	OnConnect(conn domain.Connection) (domain.EdgeRecord, error)

	// Subscribe registers fn to be called with a snapshot after every mutation.
	// The returned function removes the subscription.
	Subscribe(fn func(Snapshot)) (unsubscribe func())
}

// IDAllocator hands out node ids of the form "{type}-{n}".
type IDAllocator interface {
	Next(ctx context.Context, nodeType string) (string, error)
}

// HandleResolver reports whether a node exposes a handle in the given role.
// A template node may use the same id for a target and a source, so callers
// always ask for the role they need.
type HandleResolver interface {
	HasHandle(node domain.NodeRecord, handleID string, kind domain.HandleKind) bool
}

// HandleResolverFunc adapts a function to HandleResolver.
type HandleResolverFunc func(node domain.NodeRecord, handleID string, kind domain.HandleKind) bool

func (f HandleResolverFunc) HasHandle(node domain.NodeRecord, handleID string, kind domain.HandleKind) bool {
	return f(node, handleID, kind)
}
