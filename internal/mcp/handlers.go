package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/weblave/weblave/internal/chat"
	"github.com/weblave/weblave/internal/chatbot"
	"github.com/weblave/weblave/internal/relay"
	"github.com/weblave/weblave/internal/rules"
)

// handleSendMessage relays a prompt and an optional PDF to the model.
func (s *Server) handleSendMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: message"), nil
	}
	if s.relay == nil {
		return mcp.NewToolResultError("No model is configured. Set GOOGLE_API_KEY and restart `weblave mcp`."), nil
	}

	var doc *relay.Document
	if path := request.GetString("pdf_path", ""); path != "" {
		doc, err = readPDF(path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	reply, err := s.relay.Send(ctx, message, doc)
	if err != nil {
		var rerr *relay.Error
		if errors.As(err, &rerr) {
			return mcp.NewToolResultError(rerr.Message), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("request failed: %v", err)), nil
	}
	return mcp.NewToolResultText(reply), nil
}

// handleMatchRule answers a message from a bot's rules with no delay and no AI.
func (s *Server) handleMatchRule(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("bot_file")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: bot_file"), nil
	}
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: message"), nil
	}

	bot, err := chatbot.Load(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if rule, ok := bot.Commands.Match(message); ok {
		return mcp.NewToolResultText(fmt.Sprintf("Matched trigger %q:\n\n%s", rule.Trigger, rule.Response)), nil
	}
	if bot.AIEnabled() {
		return mcp.NewToolResultText("No rule matched; the widget would ask the AI."), nil
	}
	return mcp.NewToolResultText(rules.FallbackReply), nil
}

// handleGenerateSnippet renders a bot definition as an embeddable snippet.
func (s *Server) handleGenerateSnippet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("bot_file")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: bot_file"), nil
	}

	bot, err := chatbot.Load(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snippet, err := s.gen.Generate(*bot)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("generating snippet: %v", err)), nil
	}
	return mcp.NewToolResultText(snippet), nil
}

// readPDF loads a document from disk; the relay enforces the size limit.
func readPDF(path string) (*relay.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &relay.Document{
		Name:        filepath.Base(path),
		ContentType: chat.PDFContentType,
		Data:        data,
	}, nil
}
