package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohail300/pipeline"
	"github.com/sohail300/pipeline/pkg/domain"
	"github.com/sohail300/pipeline/pkg/render"
)

func newTestServer(t *testing.T, opts ...pipeline.Option) *Server {
	t.Helper()
	ed, err := pipeline.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ed.Close() })
	return NewServer(ed, nil)
}

func call(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestListNodeTypes(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleListNodeTypes(context.Background(), call(nil))
	require.NoError(t, err)

	var out struct {
		Palette []struct {
			Type string `json:"type"`
		} `json:"palette"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	require.Len(t, out.Palette, 9)
	assert.Equal(t, domain.TypeInput, out.Palette[0].Type)
}

func TestDropNode(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleDropNode(ctx, call(map[string]any{"node_type": domain.TypeText, "x": 40.0, "y": 60.0}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	var node domain.NodeRecord
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &node))
	assert.Equal(t, "text-1", node.ID)
	assert.Equal(t, domain.Position{X: 40, Y: 60}, node.Position)

	res, err = s.handleDropNode(ctx, call(map[string]any{"node_type": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleDropNode(ctx, call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestEditTools(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleDropNode(ctx, call(map[string]any{"node_type": domain.TypeInput}))
	require.NoError(t, err)
	_, err = s.handleDropNode(ctx, call(map[string]any{"node_type": domain.TypeText}))
	require.NoError(t, err)

	t.Run("set_field", func(t *testing.T) {
		res, err := s.handleSetField(ctx, call(map[string]any{"node_id": "customInput-1", "field": "inputName", "value": "question"}))
		require.NoError(t, err)
		require.False(t, res.IsError, text(t, res))

		var view render.NodeView
		require.NoError(t, json.Unmarshal([]byte(text(t, res)), &view))
		assert.Equal(t, "question", view.Fields[0].Control.Value)

		node, err := s.editor.Store().Node("customInput-1")
		require.NoError(t, err)
		v, _ := node.Data.Get("inputName")
		assert.Equal(t, "question", v)
	})

	t.Run("set_field unknown", func(t *testing.T) {
		res, err := s.handleSetField(ctx, call(map[string]any{"node_id": "customInput-1", "field": "nope", "value": "1"}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})

	t.Run("set_text", func(t *testing.T) {
		res, err := s.handleSetText(ctx, call(map[string]any{"node_id": "text-1", "text": "Hi {{name}}"}))
		require.NoError(t, err)
		require.False(t, res.IsError, text(t, res))

		var view render.NodeView
		require.NoError(t, json.Unmarshal([]byte(text(t, res)), &view))
		assert.Equal(t, []string{"name"}, view.Variables)
	})

	t.Run("set_text on non template", func(t *testing.T) {
		res, err := s.handleSetText(ctx, call(map[string]any{"node_id": "customInput-1", "text": "x"}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, text(t, res), "not a template node")
	})

	t.Run("connect", func(t *testing.T) {
		res, err := s.handleConnect(ctx, call(map[string]any{
			"source": "customInput-1", "source_handle": "customInput-1-value",
			"target": "text-1", "target_handle": "name",
		}))
		require.NoError(t, err)
		require.False(t, res.IsError, text(t, res))
		assert.Len(t, s.editor.Graph().Edges, 1)

		res, err = s.handleConnect(ctx, call(map[string]any{
			"source": "text-1", "source_handle": "name",
			"target": "customInput-1", "target_handle": "customInput-1-value",
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})

	t.Run("remove_node", func(t *testing.T) {
		res, err := s.handleRemoveNode(ctx, call(map[string]any{"node_id": "text-1"}))
		require.NoError(t, err)
		require.False(t, res.IsError)
		assert.Equal(t, pipeline.Status{Nodes: 1, Edges: 0}, s.editor.Status())
	})
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, 42.0, parseValue("42"))
	assert.Equal(t, true, parseValue("true"))
	assert.Equal(t, "hello", parseValue("hello"))
	assert.Equal(t, `"quoted"`, parseValue(`"quoted"`))
	assert.Equal(t, "{}", parseValue("{}"))
}

func TestGetGraph(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, err := s.handleDropNode(ctx, call(map[string]any{"node_type": domain.TypeLLM}))
	require.NoError(t, err)

	res, err := s.handleGetGraph(ctx, call(nil))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"id":"llm-1"`)
}

func TestSubmitTool(t *testing.T) {
	validator := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"num_nodes":0,"num_edges":0,"is_dag":true}`))
	}))
	defer validator.Close()

	s := newTestServer(t, pipeline.WithValidatorURL(validator.URL))

	res, err := s.handleSubmit(context.Background(), call(nil))
	require.NoError(t, err)
	out := text(t, res)
	assert.True(t, strings.Contains(out, "Pipeline Analysis"), out)
}
