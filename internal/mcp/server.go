package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/weblave/weblave/internal/chatbot"
	"github.com/weblave/weblave/internal/relay"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Relay sends a prompt, optionally with a document, to the model.
type Relay interface {
	Send(ctx context.Context, text string, doc *relay.Document) (string, error)
}

// Server wraps an MCP server that exposes the relay and the chatbot tools.
type Server struct {
	relay Relay
	gen   *chatbot.Generator
	mcp   *server.MCPServer
}

// NewServer creates a new MCP server. rel may be nil when no API key is
// configured; send_message then reports an error.
func NewServer(rel Relay, gen *chatbot.Generator) *Server {
	s := &Server{
		relay: rel,
		gen:   gen,
	}

	s.mcp = server.NewMCPServer(
		"weblave",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(sendMessageTool, s.handleSendMessage)
	s.mcp.AddTool(matchRuleTool, s.handleMatchRule)
	s.mcp.AddTool(generateSnippetTool, s.handleGenerateSnippet)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
