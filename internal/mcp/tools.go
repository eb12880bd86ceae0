package mcp

import "github.com/mark3labs/mcp-go/mcp"

// sendMessageTool defines the send_message MCP tool.
var sendMessageTool = mcp.NewTool("send_message",
	mcp.WithDescription("Send a prompt to the configured Gemini model, optionally asking about a local PDF document."),
	mcp.WithString("message",
		mcp.Required(),
		mcp.Description("The prompt to send"),
	),
	mcp.WithString("pdf_path",
		mcp.Description("Path to a PDF file (at most 20MB) to attach"),
	),
)

// matchRuleTool defines the match_rule MCP tool.
var matchRuleTool = mcp.NewTool("match_rule",
	mcp.WithDescription("Answer a visitor message from a chatbot definition's command rules, the way the embedded widget would without AI."),
	mcp.WithString("bot_file",
		mcp.Required(),
		mcp.Description("Path to a chatbot YAML definition"),
	),
	mcp.WithString("message",
		mcp.Required(),
		mcp.Description("Visitor message to answer"),
	),
)

// generateSnippetTool defines the generate_snippet MCP tool.
var generateSnippetTool = mcp.NewTool("generate_snippet",
	mcp.WithDescription("Generate the embeddable HTML/JavaScript snippet for a chatbot definition."),
	mcp.WithString("bot_file",
		mcp.Required(),
		mcp.Description("Path to a chatbot YAML definition"),
	),
)
