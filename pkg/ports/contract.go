package ports

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohail300/pipeline/pkg/domain"
)

// RunIDAllocatorContract verifies that an IDAllocator hands out unique,
// type-prefixed ids.
func RunIDAllocatorContract(t *testing.T, alloc IDAllocator) {
	ctx := context.Background()

	t.Run("Type Prefixed Sequence", func(t *testing.T) {
		first, err := alloc.Next(ctx, "llm")
		require.NoError(t, err)
		second, err := alloc.Next(ctx, "llm")
		require.NoError(t, err)

		assert.Equal(t, "llm-1", first)
		assert.Equal(t, "llm-2", second)
	})

	t.Run("Independent Counters", func(t *testing.T) {
		id, err := alloc.Next(ctx, "customInput")
		require.NoError(t, err)
		assert.Equal(t, "customInput-1", id)
	})

	t.Run("Unique", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 20; i++ {
			id, err := alloc.Next(ctx, "text")
			require.NoError(t, err)
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	})
}

// RunGraphStoreContract verifies the GraphStore behavior the canvas relies on.
// newStore must return an empty store that uses the built-in handle names
// ("{nodeId}-out" as source, "{nodeId}-in" as target) for its role check.
func RunGraphStoreContract(t *testing.T, newStore func() GraphStore) {
	ctx := context.Background()

	add := func(t *testing.T, s GraphStore, nodeType string) domain.NodeRecord {
		t.Helper()
		id, err := s.NodeID(ctx, nodeType)
		require.NoError(t, err)
		n := domain.NodeRecord{
			ID:       id,
			Type:     nodeType,
			Position: domain.Position{X: 1, Y: 2},
			Data:     domain.NewInitialData(id, nodeType),
		}
		require.NoError(t, s.AddNode(n))
		return n
	}

	connect := func(s GraphStore, from, to string) (domain.EdgeRecord, error) {
		return s.OnConnect(domain.Connection{
			Source: from, SourceHandle: from + "-out",
			Target: to, TargetHandle: to + "-in",
		})
	}

	t.Run("Add And Read", func(t *testing.T) {
		s := newStore()
		a := add(t, s, "transform")
		b := add(t, s, "transform")

		nodes := s.Nodes()
		require.Len(t, nodes, 2)
		assert.Equal(t, a.ID, nodes[0].ID)
		assert.Equal(t, b.ID, nodes[1].ID)

		err := s.AddNode(a)
		assert.ErrorIs(t, err, domain.ErrDuplicateNode)
	})

	t.Run("Copy On Read", func(t *testing.T) {
		s := newStore()
		a := add(t, s, "llm")

		got, err := s.Node(a.ID)
		require.NoError(t, err)
		require.NoError(t, got.Data.Set("model", "GPT-4"))

		again, err := s.Node(a.ID)
		require.NoError(t, err)
		_, ok := again.Data.Get("model")
		assert.False(t, ok, "mutating a returned record must not reach the store")
	})

	t.Run("Update Field", func(t *testing.T) {
		s := newStore()
		a := add(t, s, "llm")

		require.NoError(t, s.UpdateNodeField(a.ID, "model", "Claude"))
		got, _ := s.Node(a.ID)
		v, ok := got.Data.Get("model")
		assert.True(t, ok)
		assert.Equal(t, "Claude", v)

		assert.ErrorIs(t, s.UpdateNodeField("ghost", "model", "x"), domain.ErrNodeNotFound)
		assert.ErrorIs(t, s.UpdateNodeField(a.ID, "nope", "x"), domain.ErrUnknownField)
	})

	t.Run("Node Changes", func(t *testing.T) {
		s := newStore()
		a := add(t, s, "llm")

		err := s.OnNodesChange([]domain.NodeChange{
			{Type: domain.ChangePosition, ID: a.ID, Position: &domain.Position{X: 50, Y: 60}},
			{Type: domain.ChangeSelect, ID: a.ID, Selected: true},
			{Type: domain.ChangeDimensions, ID: a.ID, Width: 240, Height: 180},
		})
		require.NoError(t, err)

		got, _ := s.Node(a.ID)
		assert.Equal(t, domain.Position{X: 50, Y: 60}, got.Position)
		assert.True(t, got.Selected)
		assert.Equal(t, 240.0, got.Width)
	})

	t.Run("Connect", func(t *testing.T) {
		s := newStore()
		a := add(t, s, "transform")
		b := add(t, s, "transform")

		edge, err := connect(s, a.ID, b.ID)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("reactflow__edge-%s%s-out-%s%s-in", a.ID, a.ID, b.ID, b.ID), edge.ID)
		assert.Equal(t, "smoothstep", edge.Type)
		assert.True(t, edge.Animated)

		// Connecting the same handles again does not duplicate the edge.
		_, err = connect(s, a.ID, b.ID)
		require.NoError(t, err)
		assert.Len(t, s.Edges(), 1)
	})

	t.Run("Connect Role Check", func(t *testing.T) {
		s := newStore()
		a := add(t, s, "transform")
		b := add(t, s, "transform")

		_, err := s.OnConnect(domain.Connection{
			Source: a.ID, SourceHandle: a.ID + "-in",
			Target: b.ID, TargetHandle: b.ID + "-in",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidConnection)

		_, err = connect(s, a.ID, "ghost")
		assert.ErrorIs(t, err, domain.ErrInvalidConnection)
		assert.Empty(t, s.Edges())
	})

	t.Run("Remove Cascades", func(t *testing.T) {
		s := newStore()
		a := add(t, s, "transform")
		b := add(t, s, "transform")
		c := add(t, s, "transform")
		_, err := connect(s, a.ID, b.ID)
		require.NoError(t, err)
		bc, err := connect(s, b.ID, c.ID)
		require.NoError(t, err)

		require.NoError(t, s.OnNodesChange([]domain.NodeChange{{Type: domain.ChangeRemove, ID: a.ID}}))
		assert.Len(t, s.Nodes(), 2)
		require.Len(t, s.Edges(), 1)
		assert.Equal(t, bc.ID, s.Edges()[0].ID)

		require.NoError(t, s.OnEdgesChange([]domain.EdgeChange{{Type: domain.ChangeRemove, ID: bc.ID}}))
		assert.Empty(t, s.Edges())

		err = s.OnEdgesChange([]domain.EdgeChange{{Type: domain.ChangeRemove, ID: "ghost"}})
		assert.ErrorIs(t, err, domain.ErrEdgeNotFound)
	})

	t.Run("Subscribe", func(t *testing.T) {
		s := newStore()
		var snaps []Snapshot
		unsubscribe := s.Subscribe(func(snap Snapshot) { snaps = append(snaps, snap) })

		add(t, s, "llm")
		require.Len(t, snaps, 1)
		assert.Len(t, snaps[0].Nodes, 1)

		unsubscribe()
		add(t, s, "llm")
		assert.Len(t, snaps, 1)
	})
}
