package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/weblave/weblave/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing the relay and chatbot tools to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg.Log)

		gen, err := newGenerator(cfg, logger)
		if err != nil {
			return err
		}

		// A missing key still serves the offline tools.
		var rel mcpserver.Relay
		if r, err := newRelay(cfg, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v; send_message is disabled\n", err)
		} else {
			rel = r
		}

		mcpserver.Version = Version
		fmt.Fprintf(os.Stderr, "weblave MCP server started on stdio (provider=%s, model=%s)\n", cfg.LLM.Provider, cfg.LLM.Model)

		return mcpserver.NewServer(rel, gen).Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
