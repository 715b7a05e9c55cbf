// Package mcp adapts the wavefront daemon to the Model Context
// Protocol so agent tooling can draw graphs and drive traversals.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rmax-ai/wavefront/pkg/client"
)

// Server adapts wavefront-d to the Model Context Protocol.
type Server struct {
	mcpServer *server.MCPServer
	apiClient *client.Client
}

// NewServer creates a new MCP server instance.
func NewServer(apiURL string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"wavefront",
			"1.0.0",
		),
		apiClient: client.NewClient(apiURL),
	}
	s.registerResources()
	s.registerTools()
	s.registerPrompts()
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// --- Resources ---

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(
		"wavefront://graph",
		"Drawn Graph",
		mcp.WithResourceDescription("The current node and edge lists"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadGraph)

	s.mcpServer.AddResource(mcp.NewResource(
		"wavefront://state",
		"Traversal State",
		mcp.WithResourceDescription("Visited order, frontier queue, mode, and narration"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadState)
}

// --- Tools ---

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"add_node",
		mcp.WithDescription("Place a node on the canvas. Returns the assigned node ID."),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Canvas x coordinate")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Canvas y coordinate")),
	), s.handleAddNode)

	s.mcpServer.AddTool(mcp.NewTool(
		"connect_nodes",
		mcp.WithDescription("Create an undirected edge between two existing nodes."),
		mcp.WithString("from", mcp.Required(), mcp.Description("First node ID")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Second node ID")),
	), s.handleConnectNodes)

	s.mcpServer.AddTool(mcp.NewTool(
		"set_start",
		mcp.WithDescription("Choose the start node and begin the breadth-first traversal."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Start node ID")),
	), s.handleSetStart)

	s.mcpServer.AddTool(mcp.NewTool(
		"step",
		mcp.WithDescription("Advance the traversal by one expansion and return the new state."),
	), s.handleStep)

	s.mcpServer.AddTool(mcp.NewTool(
		"reset",
		mcp.WithDescription("Clear the traversal state. The drawn graph is kept."),
	), s.handleReset)
}

// --- Prompts ---

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.NewPrompt(
		"wavefront-guide",
		mcp.WithPromptDescription("Explains wavefront concepts (canvas, frontier, visited order)"),
	), s.handleGetPrompt)
}

// --- Handlers ---

func (s *Server) handleReadGraph(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	g, err := s.apiClient.Graph(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch graph: %w", err)
	}

	data, err := json.MarshalIndent(map[string]any{"nodes": g.Nodes, "edges": g.Edges}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graph: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleReadState(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	snap, err := s.apiClient.State(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch state: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleAddNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	x := int(mcp.ParseFloat64(request, "x", 0))
	y := int(mcp.ParseFloat64(request, "y", 0))

	node, err := s.apiClient.AddNode(ctx, x, y)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Node %s placed at (%d, %d)", node.ID, node.X, node.Y)), nil
}

func (s *Server) handleConnectNodes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from := mcp.ParseString(request, "from", "")
	to := mcp.ParseString(request, "to", "")

	if err := s.apiClient.ConnectNodes(ctx, from, to); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Edge %s-%s created", from, to)), nil
}

func (s *Server) handleSetStart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodeID := mcp.ParseString(request, "node_id", "")

	snap, err := s.apiClient.SetStart(ctx, nodeID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}
	return mcp.NewToolResultText(formatState("Traversal started", snap.Visited, snap.Frontier)), nil
}

func (s *Server) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.apiClient.Step(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}
	return mcp.NewToolResultText(formatState("Stepped", snap.Visited, snap.Frontier)), nil
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.apiClient.Reset(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}
	return mcp.NewToolResultText("Traversal state cleared"), nil
}

func (s *Server) handleGetPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	if name != "wavefront-guide" {
		return nil, fmt.Errorf("prompt not found: %s", name)
	}

	promptText := `You are interacting with wavefront, an interactive breadth-first-search visualizer.

Concepts:
- Canvas: a 2-D surface where nodes are placed by coordinate. Node IDs are sequential integers assigned at creation.
- Edge: an undirected connection between two nodes. Duplicates are allowed.
- Frontier (queue): discovered-but-unexpanded nodes, expanded FIFO.
- Visited order: all discovered nodes in discovery order.
- Start node: chosen once per run; seeds both the frontier and the visited order.

To build and explore a graph: use 'add_node' and 'connect_nodes', then 'set_start' and repeated 'step' calls.
Read 'wavefront://state' to see the current traversal before explaining it to the user.
`

	return mcp.NewGetPromptResult(
		"wavefront-guide",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(promptText)),
		},
	), nil
}

func formatState(action string, visited, frontier []string) string {
	return fmt.Sprintf("%s.\nVisited: %s\nQueue: %s",
		action,
		strings.Join(visited, ", "),
		strings.Join(frontier, ", "),
	)
}
