package http

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohail300/pipeline"
	"github.com/sohail300/pipeline/pkg/canvas"
	"github.com/sohail300/pipeline/pkg/domain"
	"github.com/sohail300/pipeline/pkg/render"
	"github.com/sohail300/pipeline/pkg/submit"
)

func newTestHandler(t *testing.T, opts ...pipeline.Option) (http.Handler, *pipeline.Editor) {
	t.Helper()
	ed, err := pipeline.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ed.Close() })

	h, unsubscribe := NewHandler(ed)
	t.Cleanup(unsubscribe)
	return h, ed
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestGetHealth(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := do(t, h, "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, rr)["status"])
}

func TestGetInfo(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := do(t, h, "GET", "/info", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[map[string]string](t, rr)
	assert.Equal(t, "pipeline-http", resp["app"])
	assert.NotEmpty(t, resp["version"])
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := do(t, h, "OPTIONS", "/connect", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestGetNodeTypes(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := do(t, h, "GET", "/node-types", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[NodeTypesResponse](t, rr)
	require.Len(t, resp.Palette, 9)
	assert.Equal(t, domain.TypeInput, resp.Palette[0].Type)
	assert.Len(t, resp.Types, 9)
}

func TestDrop(t *testing.T) {
	h, ed := newTestHandler(t)

	t.Run("node type shorthand", func(t *testing.T) {
		rr := do(t, h, "POST", "/canvas/drop", DropRequest{
			ClientX:  150,
			ClientY:  120,
			Bounds:   canvas.Bounds{Left: 50, Top: 20},
			NodeType: domain.TypeLLM,
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		node := decodeBody[domain.NodeRecord](t, rr)
		assert.Equal(t, "llm-1", node.ID)
		assert.Equal(t, domain.Position{X: 100, Y: 100}, node.Position)
	})

	t.Run("raw transfer", func(t *testing.T) {
		rr := do(t, h, "POST", "/canvas/drop", DropRequest{
			Data: map[string]string{"application/reactflow": `{"nodeType":"text"}`},
		})
		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "text-1", decodeBody[domain.NodeRecord](t, rr).ID)
	})

	t.Run("no payload creates nothing", func(t *testing.T) {
		before := ed.Status().Nodes
		rr := do(t, h, "POST", "/canvas/drop", DropRequest{Data: map[string]string{"application/reactflow": "garbage"}})
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, before, ed.Status().Nodes)
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/canvas/drop", strings.NewReader("{"))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestViewport(t *testing.T) {
	h, ed := newTestHandler(t)

	rr := do(t, h, "PUT", "/canvas/viewport", map[string]float64{"x": 10, "y": 20, "zoom": 2})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2.0, ed.Viewport().Zoom)

	rr = do(t, h, "PUT", "/canvas/viewport", map[string]float64{"zoom": 0})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 2.0, ed.Viewport().Zoom)
}

func TestFieldsAndText(t *testing.T) {
	h, _ := newTestHandler(t)
	do(t, h, "POST", "/canvas/drop", DropRequest{NodeType: domain.TypeInput})
	do(t, h, "POST", "/canvas/drop", DropRequest{NodeType: domain.TypeText})

	t.Run("set field", func(t *testing.T) {
		rr := do(t, h, "POST", "/nodes/customInput-1/fields", FieldRequest{Field: "inputName", Value: "question"})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		view := decodeBody[render.NodeView](t, rr)
		assert.Equal(t, "question", view.Fields[0].Control.Value)
	})

	t.Run("unknown field", func(t *testing.T) {
		rr := do(t, h, "POST", "/nodes/customInput-1/fields", FieldRequest{Field: "nope", Value: 1})
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("unknown node", func(t *testing.T) {
		rr := do(t, h, "GET", "/nodes/llm-9/view", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("set text", func(t *testing.T) {
		rr := do(t, h, "PUT", "/nodes/text-1/text", TextRequest{Text: "{{a}} and {{b}}"})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, []string{"a", "b"}, decodeBody[render.NodeView](t, rr).Variables)
	})

	t.Run("text on non template", func(t *testing.T) {
		rr := do(t, h, "PUT", "/nodes/customInput-1/text", TextRequest{Text: "x"})
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("views", func(t *testing.T) {
		rr := do(t, h, "GET", "/nodes", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, decodeBody[[]render.NodeView](t, rr), 2)
	})
}

func TestConnectAndChanges(t *testing.T) {
	h, ed := newTestHandler(t)
	do(t, h, "POST", "/canvas/drop", DropRequest{NodeType: domain.TypeInput})
	do(t, h, "POST", "/canvas/drop", DropRequest{NodeType: domain.TypeOutput})

	conn := domain.Connection{
		Source: "customInput-1", SourceHandle: "customInput-1-value",
		Target: "customOutput-1", TargetHandle: "customOutput-1-value",
	}
	rr := do(t, h, "POST", "/connect", conn)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	edge := decodeBody[domain.EdgeRecord](t, rr)
	assert.Equal(t, conn.EdgeID(), edge.ID)
	assert.True(t, edge.Animated)

	// Reversed roles are rejected.
	rr = do(t, h, "POST", "/connect", domain.Connection{
		Source: "customOutput-1", SourceHandle: "customOutput-1-value",
		Target: "customInput-1", TargetHandle: "customInput-1-value",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(t, h, "GET", "/status", nil)
	assert.Equal(t, pipeline.Status{Nodes: 2, Edges: 1}, decodeBody[pipeline.Status](t, rr))

	rr = do(t, h, "GET", "/graph/mermaid", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "graph LR"))

	rr = do(t, h, "POST", "/nodes/changes", []domain.NodeChange{
		{Type: domain.ChangeRemove, ID: "ghost"},
		{Type: domain.ChangeRemove, ID: "customOutput-1"},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[ChangesResponse](t, rr)
	assert.Len(t, resp.Nodes, 1)
	assert.Empty(t, resp.Edges)
	assert.Contains(t, resp.Skipped, "ghost")
	assert.Equal(t, 0, ed.Status().Edges)
}

func TestSubmit(t *testing.T) {
	validator := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req-42", r.Header.Get(submit.RequestIDHeader))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"num_nodes":1,"num_edges":0,"is_dag":true}`))
	}))
	defer validator.Close()

	h, _ := newTestHandler(t, pipeline.WithValidatorURL(validator.URL))
	do(t, h, "POST", "/canvas/drop", DropRequest{NodeType: domain.TypeInput})

	req := httptest.NewRequest("POST", "/submit", nil)
	req.Header.Set(submit.RequestIDHeader, "req-42")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	d := decodeBody[submit.Dialog](t, rr)
	assert.Equal(t, submit.VariantSuccess, d.Variant)
	require.NotNil(t, d.Result)
	assert.Equal(t, 1, d.Result.NumNodes)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	ed, err := pipeline.New(pipeline.WithMetrics(reg))
	require.NoError(t, err)
	defer ed.Close()
	h, unsubscribe := NewHandler(ed, WithGatherer(reg))
	defer unsubscribe()

	do(t, h, "POST", "/canvas/drop", DropRequest{NodeType: domain.TypeDelay})
	rr := do(t, h, "GET", "/metrics", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `pipeline_node_drops_total{node_type="delay"} 1`)
}

func TestSubscribeEvents(t *testing.T) {
	h, ed := newTestHandler(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 16)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	next := func() string {
		select {
		case l, ok := <-lines:
			require.True(t, ok, "stream closed")
			return l
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for event")
			return ""
		}
	}

	require.Equal(t, "event: ping", next())
	require.Equal(t, "data: connected", next())

	do(t, h, "POST", "/canvas/drop", DropRequest{NodeType: domain.TypeAPI})
	require.Equal(t, 1, ed.Status().Nodes)

	for {
		l := next()
		if strings.HasPrefix(l, "data: ") {
			assert.Contains(t, l, `"id":"api-1"`)
			break
		}
	}
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	sm := NewStreamManager()
	ch, cancel := sm.Subscribe()
	assert.Equal(t, 1, sm.Len())

	for i := 0; i < streamBuffer+5; i++ {
		sm.Broadcast("x")
	}
	assert.Len(t, ch, streamBuffer)

	cancel()
	cancel()
	assert.Equal(t, 0, sm.Len())
}
