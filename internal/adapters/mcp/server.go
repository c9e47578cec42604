package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sohail300/pipeline"
	"github.com/sohail300/pipeline/internal/logging"
	"github.com/sohail300/pipeline/internal/presentation/graph"
	"github.com/sohail300/pipeline/pkg/canvas"
	"github.com/sohail300/pipeline/pkg/domain"
)

const (
	GraphURI   = "pipeline://graph"
	MermaidURI = "pipeline://graph/mermaid"
)

// Server wraps the Editor and exposes it as an MCP Server.
type Server struct {
	editor    *pipeline.Editor
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(editor *pipeline.Editor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		editor:    editor,
		logger:    logger,
		mcpServer: server.NewMCPServer("pipeline-mcp", strings.TrimSpace(pipeline.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_node_types",
		mcp.WithDescription("List the node types that can be dropped on the canvas, in toolbar order, with their fields and handles."),
	), s.handleListNodeTypes)

	s.mcpServer.AddTool(mcp.NewTool("drop_node",
		mcp.WithDescription("Drop a node of the given type at a canvas position. Coordinates are relative to the canvas and go through the current viewport."),
		mcp.WithString("node_type", mcp.Required(), mcp.Description("Node type key, e.g. customInput, llm, text")),
		mcp.WithNumber("x", mcp.Description("Horizontal canvas position (default 0)")),
		mcp.WithNumber("y", mcp.Description("Vertical canvas position (default 0)")),
	), s.handleDropNode)

	s.mcpServer.AddTool(mcp.NewTool("view_node",
		mcp.WithDescription("Render a node: title, field controls with current values and handles."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node ID")),
	), s.handleViewNode)

	s.mcpServer.AddTool(mcp.NewTool("set_field",
		mcp.WithDescription("Edit one field of a node. The value is parsed as JSON when possible (numbers, booleans), otherwise used as a string."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node ID")),
		mcp.WithString("field", mcp.Required(), mcp.Description("Field name")),
		mcp.WithString("value", mcp.Required(), mcp.Description("New value")),
	), s.handleSetField)

	s.mcpServer.AddTool(mcp.NewTool("set_text",
		mcp.WithDescription("Replace the text of a template node. Each {{name}} placeholder becomes an input handle."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Template node ID")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Template text")),
	), s.handleSetText)

	s.mcpServer.AddTool(mcp.NewTool("connect",
		mcp.WithDescription("Connect a source handle to a target handle."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source node ID")),
		mcp.WithString("source_handle", mcp.Required(), mcp.Description("Source handle ID")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Target node ID")),
		mcp.WithString("target_handle", mcp.Required(), mcp.Description("Target handle ID")),
	), s.handleConnect)

	s.mcpServer.AddTool(mcp.NewTool("remove_node",
		mcp.WithDescription("Remove a node and every edge attached to it."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node ID")),
	), s.handleRemoveNode)

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the nodes and edges currently on the canvas."),
	), s.handleGetGraph)

	s.mcpServer.AddTool(mcp.NewTool("submit",
		mcp.WithDescription("Submit the pipeline to the validation service and return the analysis dialog."),
	), s.handleSubmit)
}

func (s *Server) handleListNodeTypes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]any{
		"palette": s.editor.Palette(),
		"types":   s.editor.Registry().Entries(),
	})
}

func (s *Server) handleDropNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodeType, err := request.RequireString("node_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	node, err := s.editor.Drop(ctx, canvas.DropEvent{
		ClientX: request.GetFloat("x", 0),
		ClientY: request.GetFloat("y", 0),
		Data:    canvas.StartDrag(nodeType),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("drop failed: %v", err)), nil
	}
	if node == nil {
		return mcp.NewToolResultError(fmt.Sprintf("unknown node type %q", nodeType)), nil
	}
	return jsonResult(node)
}

func (s *Server) handleViewNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("node_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view, err := s.editor.View(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("view failed: %v", err)), nil
	}
	return jsonResult(view)
}

func (s *Server) handleSetField(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("node_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	field, err := request.RequireString("field")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw := request.GetString("value", "")

	if err := s.editor.SetField(id, field, parseValue(raw)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("set_field failed: %v", err)), nil
	}
	return s.handleViewNode(ctx, request)
}

// parseValue reads JSON scalars and falls back to the raw string.
func parseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	switch v.(type) {
	case float64, bool:
		return v
	}
	return raw
}

func (s *Server) handleSetText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("node_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text := request.GetString("text", "")
	if err := s.editor.SetText(id, text); err != nil {
		if errors.Is(err, pipeline.ErrNotTemplate) {
			return mcp.NewToolResultError(fmt.Sprintf("%s is not a template node", id)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("set_text failed: %v", err)), nil
	}
	return s.handleViewNode(ctx, request)
}

func (s *Server) handleConnect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conn := domain.Connection{
		Source:       request.GetString("source", ""),
		SourceHandle: request.GetString("source_handle", ""),
		Target:       request.GetString("target", ""),
		TargetHandle: request.GetString("target_handle", ""),
	}
	edge, err := s.editor.Connect(ctx, conn)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("connect failed: %v", err)), nil
	}
	return jsonResult(edge)
}

func (s *Server) handleRemoveNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("node_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.editor.NodesChange([]domain.NodeChange{{Type: domain.ChangeRemove, ID: id}}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("remove failed: %v", err)), nil
	}
	return jsonResult(s.editor.Status())
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.editor.Graph())
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d := s.editor.Submit(ctx)
	s.logger.Debug("MCP submit", "variant", d.Variant)
	return mcp.NewToolResultText(d.Markdown()), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Current Canvas Graph",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(s.editor.Graph())
		if err != nil {
			return nil, fmt.Errorf("failed to encode graph: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: GraphURI, MIMEType: "application/json", Text: string(b)},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(MermaidURI, "Canvas Graph as Mermaid",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		snap := s.editor.Graph()
		text := graph.GenerateMermaid(snap.Nodes, snap.Edges, &graph.GraphOverlay{Registry: s.editor.Registry()})
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: MermaidURI, MIMEType: "text/plain", Text: text},
		}, nil
	})
}
