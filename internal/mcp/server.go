package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"invoicebuilder/internal/builder"
	"invoicebuilder/internal/domain"
	"invoicebuilder/internal/render"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server is the MCP server for the invoice template builder.
// It exposes tools, resources and prompts so AI agents can edit the canvas.
type Server struct {
	mcp      *server.MCPServer
	emitter  EventEmitter
	approval *ApprovalQueue
	layout   *LayoutEngine

	store  *builder.Store
	images render.ImageSource
}

// Deps holds everything passed from the App layer to the MCP server.
type Deps struct {
	Emitter EventEmitter
	Store   *builder.Store
	Images  render.ImageSource // optional, used by export_pdf

	// RequireApproval routes destructive tools through the approval queue.
	// Standalone mode has no UI to answer, so it leaves this off.
	RequireApproval bool
}

// New creates and configures a new MCP server with all tools and resources.
func New(ctx context.Context, deps Deps) *Server {
	s := &Server{
		emitter: deps.Emitter,
		layout:  NewLayoutEngine(),
		store:   deps.Store,
		images:  deps.Images,
	}
	if s.emitter == nil {
		s.emitter = nopEmitter{}
	}
	if deps.RequireApproval {
		s.approval = NewApprovalQueue(ctx, s.emitter)
	}

	s.mcp = server.NewMCPServer(
		"invoice-builder-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerTemplateTools()
	s.registerElementTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// Handler serves MCP over streamable HTTP so agents can drive the running
// desktop app.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp)
}

// Approve forwards a user approval to the approval queue.
func (s *Server) Approve(actionID string) {
	if s.approval != nil {
		s.approval.Approve(actionID)
	}
}

// Reject forwards a user rejection to the approval queue.
func (s *Server) Reject(actionID string) {
	if s.approval != nil {
		s.approval.Reject(actionID)
	}
}

// ── Helpers ────────────────────────────────────────────────

type nopEmitter struct{}

func (nopEmitter) Emit(context.Context, string, any) {}

// confirm asks the user before a destructive action. Without an approval
// queue every action is allowed.
func (s *Server) confirm(ctx context.Context, tool, description string, targets Targets) bool {
	if s.approval == nil {
		return true
	}
	if err := s.approval.Request(ctx, tool, description, targets); err != nil {
		log.Printf("[MCP] %s not approved: %v", tool, err)
		return false
	}
	return true
}

// PendingApprovals lists destructive actions still waiting for the user.
func (s *Server) PendingApprovals() []PendingAction {
	if s.approval == nil {
		return []PendingAction{}
	}
	return s.approval.Pending()
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// getElementForTool retrieves an element of the active template by the
// elementId argument.
func (s *Server) getElementForTool(args map[string]any) (domain.CanvasElement, error) {
	id, ok := args["elementId"].(string)
	if !ok || id == "" {
		return domain.CanvasElement{}, fmt.Errorf("elementId is required")
	}
	el, found := s.store.Element(id)
	if !found {
		return domain.CanvasElement{}, fmt.Errorf("element %s not found", id)
	}
	return el, nil
}

func getFloat(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}

func boolPtr(v bool) *bool { return &v }
