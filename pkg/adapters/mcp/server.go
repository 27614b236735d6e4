package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/tree"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// InsertResponse is the JSON text returned by add_branch and add_leaf.
type InsertResponse struct {
	NodeCount int `json:"node_count"`
	EdgeCount int `json:"edge_count"`
}

// TreeArgs are the arguments of tools that only name a tree.
type TreeArgs struct {
	TreeID string `json:"tree_id"`
}

// CountResponse is the structured result of node_count.
type CountResponse struct {
	TreeID    string `json:"tree_id"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

// Server wraps a tree registry and exposes it as an MCP Server.
type Server struct {
	registry  *registry.Registry
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(reg *registry.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		registry:  reg,
		mcpServer: server.NewMCPServer("arbor-mcp", arbor.Version),
		logger:    logger,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

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

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: create_tree
	s.mcpServer.AddTool(mcp.NewTool("create_tree",
		mcp.WithDescription("Create an empty tree and return its ID."),
	), s.handleCreateTree)

	// TOOL: add_branch
	s.mcpServer.AddTool(mcp.NewTool("add_branch",
		mcp.WithDescription("Insert a branch node. Without parent it becomes a root. If the parent branch does not exist the branch is still inserted and an error is reported."),
		mcp.WithString("tree_id", mcp.Required(), mcp.Description("Tree ID from create_tree")),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Branch index")),
		mcp.WithNumber("parent", mcp.Description("Index of the parent branch (optional)")),
	), s.handleAddBranch)

	// TOOL: add_leaf
	s.mcpServer.AddTool(mcp.NewTool("add_leaf",
		mcp.WithDescription("Insert a leaf node under a parent branch. If the parent branch does not exist the leaf is still inserted and an error is reported."),
		mcp.WithString("tree_id", mcp.Required(), mcp.Description("Tree ID from create_tree")),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Leaf index")),
		mcp.WithNumber("parent", mcp.Required(), mcp.Description("Index of the parent branch")),
	), s.handleAddLeaf)

	// TOOL: node_count
	s.mcpServer.AddTool(mcp.NewTool("node_count",
		mcp.WithDescription("Number of nodes ever inserted into the tree, unattached ones included."),
		mcp.WithString("tree_id", mcp.Required(), mcp.Description("Tree ID from create_tree")),
		mcp.WithOutputSchema[CountResponse](),
	), mcp.NewStructuredToolHandler(s.handleNodeCount))

	// TOOL: render
	s.mcpServer.AddTool(mcp.NewTool("render",
		mcp.WithDescription("Render the tree as a graph description."),
		mcp.WithString("tree_id", mcp.Required(), mcp.Description("Tree ID from create_tree")),
		mcp.WithString("format", mcp.Enum(string(tree.FormatDOT), string(tree.FormatMermaid)), mcp.Description("Output grammar (default dot)")),
	), s.handleRender)

	// TOOL: error_function
	s.mcpServer.AddTool(mcp.NewTool("error_function",
		mcp.WithDescription("Always fails. Use it to check error propagation."),
	), s.handleErrorFunction)
}

func (s *Server) handleCreateTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := s.registry.Create(ctx)
	return mcp.NewToolResultText(id), nil
}

func (s *Server) handleAddBranch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("tree_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	index, err := request.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var parent *int
	if _, ok := request.GetArguments()["parent"]; ok {
		p, err := request.RequireInt("parent")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		parent = &p
	}

	return s.insert(ctx, id, func(b *tree.Builder) error {
		return b.AddBranchContext(ctx, index, parent)
	})
}

func (s *Server) handleAddLeaf(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("tree_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	index, err := request.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	parent, err := request.RequireInt("parent")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return s.insert(ctx, id, func(b *tree.Builder) error {
		return b.AddLeafContext(ctx, index, parent)
	})
}

func (s *Server) insert(ctx context.Context, id string, fn func(*tree.Builder) error) (*mcp.CallToolResult, error) {
	var resp InsertResponse
	var insertErr error

	err := s.registry.With(ctx, id, func(b *tree.Builder) error {
		insertErr = fn(b)
		resp = InsertResponse{NodeCount: b.NodeCount(), EdgeCount: b.EdgeCount()}
		return nil
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if insertErr != nil {
		if parent, ok := domain.MissingParent(insertErr); ok {
			s.logger.Warn("MCP insert: parent missing", "tree", id, "parent", parent)
		}
		return mcp.NewToolResultError(insertErr.Error()), nil
	}

	return toolResultJSON(resp), nil
}

// toolResultJSON encodes v as the text of a tool result.
func toolResultJSON(v any) *mcp.CallToolResult {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(jsonBytes))
}

func (s *Server) handleNodeCount(ctx context.Context, request mcp.CallToolRequest, args TreeArgs) (CountResponse, error) {
	if args.TreeID == "" {
		return CountResponse{}, fmt.Errorf("tree_id is required")
	}

	resp := CountResponse{TreeID: args.TreeID}
	err := s.registry.With(ctx, args.TreeID, func(b *tree.Builder) error {
		resp.NodeCount = b.NodeCount()
		resp.EdgeCount = b.EdgeCount()
		return nil
	})
	return resp, err
}

func (s *Server) handleRender(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("tree_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, err := tree.ParseFormat(request.GetString("format", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var out string
	err = s.registry.With(ctx, id, func(b *tree.Builder) error {
		var err error
		out, err = b.RenderAs(format)
		return err
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) handleErrorFunction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(arbor.ErrorFunction().Error()), nil
}

func (s *Server) registerResources() {
	// EXPOSE: arbor://trees
	s.mcpServer.AddResource(mcp.NewResource("arbor://trees", "Live Trees",
		mcp.WithMIMEType("application/json"),
	), s.handleListTrees)
}

func (s *Server) handleListTrees(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.registry.List())
	if err != nil {
		return nil, fmt.Errorf("failed to list trees: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "arbor://trees",
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
