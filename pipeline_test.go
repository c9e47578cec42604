package pipeline_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohail300/pipeline"
	"github.com/sohail300/pipeline/pkg/adapters/memory"
	"github.com/sohail300/pipeline/pkg/canvas"
	"github.com/sohail300/pipeline/pkg/domain"
	"github.com/sohail300/pipeline/pkg/submit"
)

func newEditor(t *testing.T, opts ...pipeline.Option) *pipeline.Editor {
	t.Helper()
	ed, err := pipeline.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ed.Close() })
	return ed
}

func drop(t *testing.T, ed *pipeline.Editor, nodeType string, x, y float64) *domain.NodeRecord {
	t.Helper()
	n, err := ed.Drop(context.Background(), canvas.DropEvent{ClientX: x, ClientY: y, Data: canvas.StartDrag(nodeType)})
	require.NoError(t, err)
	require.NotNil(t, n)
	return n
}

func TestEditor_DropInputScenario(t *testing.T) {
	ed := newEditor(t)
	require.NoError(t, ed.SetViewport(canvas.Viewport{X: -100, Y: 50, Zoom: 0.5}))

	n := drop(t, ed, domain.TypeInput, 100, 100)
	assert.Equal(t, domain.TypeInput, n.Type)
	assert.Equal(t, domain.Position{X: 400, Y: 100}, n.Position)

	v, err := ed.View(n.ID)
	require.NoError(t, err)
	require.NotEmpty(t, v.Fields)
	assert.Equal(t, "inputName", v.Fields[0].Name)
	assert.Equal(t, "input_1", v.Fields[0].Control.Value)
}

func TestEditor_TemplateEditKeepsEdges(t *testing.T) {
	ed := newEditor(t)
	ctx := context.Background()

	in := drop(t, ed, domain.TypeInput, 0, 0)
	text := drop(t, ed, domain.TypeText, 300, 0)

	require.NoError(t, ed.SetText(text.ID, "{{a}}"))
	v, _ := ed.View(text.ID)
	assert.Equal(t, []string{"a"}, v.Variables)

	edge, err := ed.Connect(ctx, domain.Connection{
		Source: in.ID, SourceHandle: in.ID + "-value",
		Target: text.ID, TargetHandle: "a",
	})
	require.NoError(t, err)

	// b is not connectable yet.
	_, err = ed.Connect(ctx, domain.Connection{
		Source: in.ID, SourceHandle: in.ID + "-value",
		Target: text.ID, TargetHandle: "b",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidConnection)

	require.NoError(t, ed.SetText(text.ID, "{{a}} {{b}}"))
	v, _ = ed.View(text.ID)
	assert.Equal(t, []string{"a", "b"}, v.Variables)

	edges := ed.Graph().Edges
	require.Len(t, edges, 1)
	assert.Equal(t, edge.ID, edges[0].ID)
	assert.Equal(t, "a", edges[0].TargetHandle)

	_, err = ed.Connect(ctx, domain.Connection{
		Source: in.ID, SourceHandle: in.ID + "-value",
		Target: text.ID, TargetHandle: "b",
	})
	require.NoError(t, err)
	assert.Equal(t, pipeline.Status{Nodes: 2, Edges: 2}, ed.Status())
}

func TestEditor_VariableNamedOutput(t *testing.T) {
	ed := newEditor(t)
	ctx := context.Background()

	in := drop(t, ed, domain.TypeInput, 0, 0)
	text := drop(t, ed, domain.TypeText, 300, 0)
	llm := drop(t, ed, domain.TypeLLM, 600, 0)
	require.NoError(t, ed.SetText(text.ID, "{{output}}"))

	v, err := ed.View(text.ID)
	require.NoError(t, err)
	require.Len(t, v.Targets(), 1)
	assert.Equal(t, "output", v.Targets()[0].ID)

	_, err = ed.Connect(ctx, domain.Connection{
		Source: in.ID, SourceHandle: in.ID + "-value",
		Target: text.ID, TargetHandle: "output",
	})
	require.NoError(t, err)

	_, err = ed.Connect(ctx, domain.Connection{
		Source: text.ID, SourceHandle: "output",
		Target: llm.ID, TargetHandle: llm.ID + "-prompt",
	})
	require.NoError(t, err)
	assert.Equal(t, pipeline.Status{Nodes: 3, Edges: 2}, ed.Status())
}

func TestEditor_FieldEditsReachStore(t *testing.T) {
	ed := newEditor(t)
	n := drop(t, ed, domain.TypeDelay, 0, 0)

	require.NoError(t, ed.SetField(n.ID, "duration", "2500"))
	require.NoError(t, ed.SetField(n.ID, "blocking", false))

	stored, err := ed.Store().Node(n.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"id": n.ID, "nodeType": domain.TypeDelay, "duration": 2500.0, "blocking": false,
	}, stored.Data.Map())
}

func TestEditor_ClearedNumberIsAbsent(t *testing.T) {
	ed := newEditor(t)
	n := drop(t, ed, domain.TypeDelay, 0, 0)

	require.NoError(t, ed.SetField(n.ID, "duration", "2500"))
	require.NoError(t, ed.SetField(n.ID, "duration", ""))

	v, _ := ed.View(n.ID)
	assert.Equal(t, "", v.Fields[0].Control.Value)
	stored, err := ed.Store().Node(n.ID)
	require.NoError(t, err)
	_, ok := stored.Data.Get("duration")
	assert.False(t, ok)
}

func TestEditor_RejectedValueStaysLocal(t *testing.T) {
	var events []*domain.FieldEvent
	ed := newEditor(t, pipeline.WithLifecycleHooks(domain.LifecycleHooks{
		OnFieldChange: func(_ context.Context, e *domain.FieldEvent) { events = append(events, e) },
	}))
	n := drop(t, ed, domain.TypeDelay, 0, 0)

	require.NoError(t, ed.SetField(n.ID, "duration", "soon"))

	v, _ := ed.View(n.ID)
	assert.Equal(t, "soon", v.Fields[0].Control.Value)
	stored, _ := ed.Store().Node(n.ID)
	_, ok := stored.Data.Get("duration")
	assert.False(t, ok)

	require.Len(t, events, 1)
	assert.ErrorIs(t, events[0].Err, domain.ErrInvalidFieldValue)
	assert.Equal(t, domain.TypeDelay, events[0].NodeType)
}

func TestEditor_SetTextOnGenericNode(t *testing.T) {
	ed := newEditor(t)
	n := drop(t, ed, domain.TypeLLM, 0, 0)

	assert.ErrorIs(t, ed.SetText(n.ID, "{{x}}"), pipeline.ErrNotTemplate)
	assert.ErrorIs(t, ed.SetField("ghost-1", "model", "x"), domain.ErrNodeNotFound)
}

func TestEditor_RemoveThenViewStartsFresh(t *testing.T) {
	ed := newEditor(t)
	n := drop(t, ed, domain.TypeLLM, 0, 0)
	require.NoError(t, ed.SetField(n.ID, "model", "Claude"))

	require.NoError(t, ed.NodesChange([]domain.NodeChange{{Type: domain.ChangeRemove, ID: n.ID}}))
	_, err := ed.View(n.ID)
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	assert.Empty(t, ed.Views())
}

func TestEditor_Submit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"num_nodes":3,"num_edges":2,"is_dag":true}`))
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	ed := newEditor(t, pipeline.WithValidatorURL(srv.URL), pipeline.WithMetrics(reg), pipeline.WithSingleFlight())
	drop(t, ed, domain.TypeInput, 0, 0)

	d := ed.Submit(context.Background())
	assert.Equal(t, submit.VariantSuccess, d.Variant)
	assert.Equal(t, submit.DAGMessage, d.Message)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "pipeline_submissions_total")
	assert.Contains(t, names, "pipeline_node_drops_total")
}

func TestEditor_CustomStoreAndAllocator(t *testing.T) {
	store := memory.NewStore()
	ed := newEditor(t, pipeline.WithStore(store))
	n := drop(t, ed, domain.TypeAPI, 0, 0)
	assert.Len(t, store.Nodes(), 1)
	assert.Equal(t, "api-1", n.ID)

	alloc := memory.NewAllocator()
	_, _ = alloc.Next(context.Background(), domain.TypeAPI)
	ed2 := newEditor(t, pipeline.WithIDAllocator(alloc))
	n2 := drop(t, ed2, domain.TypeAPI, 0, 0)
	assert.Equal(t, "api-2", n2.ID)
}

func TestEditor_PaletteAndVersion(t *testing.T) {
	ed := newEditor(t)
	assert.Len(t, ed.Palette(), 9)
	assert.Same(t, ed.Registry(), ed.Registry())
	assert.NotEmpty(t, pipeline.Version)
	assert.NoError(t, ed.Close())
	assert.NoError(t, ed.Close())
}

const savedGraph = `{
  "nodes": [
    {"id": "customInput-1", "type": "customInput", "position": {"x": 0, "y": 0},
     "data": {"id": "customInput-1", "nodeType": "customInput", "inputName": "question"}},
    {"id": "llm-1", "type": "llm", "position": {"x": 300, "y": 0},
     "data": {"id": "llm-1", "nodeType": "llm"}}
  ],
  "edges": [
    {"id": "e1", "source": "customInput-1", "sourceHandle": "customInput-1-value",
     "target": "llm-1", "targetHandle": "llm-1-prompt"}
  ]
}`

func TestEditor_ImportSavedGraph(t *testing.T) {
	snap, err := pipeline.ReadGraph(strings.NewReader(savedGraph))
	require.NoError(t, err)

	ed := newEditor(t)
	require.NoError(t, ed.Import(snap))
	assert.Equal(t, pipeline.Status{Nodes: 2, Edges: 1}, ed.Status())

	v, err := ed.View("customInput-1")
	require.NoError(t, err)
	assert.Equal(t, "question", v.Fields[0].Control.Value)

	// Ids taken by the import are skipped.
	n := drop(t, ed, domain.TypeLLM, 0, 0)
	assert.Equal(t, "llm-2", n.ID)

	edges := ed.Graph().Edges
	assert.Equal(t, "reactflow__edge-customInput-1customInput-1-value-llm-1llm-1-prompt", edges[0].ID)
}

func TestEditor_ImportRejectsBadEdge(t *testing.T) {
	snap, err := pipeline.ReadGraph(strings.NewReader(savedGraph))
	require.NoError(t, err)
	snap.Edges[0].TargetHandle = "llm-1-nope"

	ed := newEditor(t)
	err = ed.Import(snap)
	assert.ErrorIs(t, err, domain.ErrInvalidConnection)
}

func TestReadGraph_Invalid(t *testing.T) {
	_, err := pipeline.ReadGraph(strings.NewReader("{"))
	assert.Error(t, err)
}
