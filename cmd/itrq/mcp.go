package main

import (
	"os"

	"github.com/spf13/cobra"

	"itrq/internal/mcp"
	"itrq/internal/storage"
	"itrq/internal/version"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol (MCP) server over stdio.

The server exposes the following tools:
  - queryComprehensive: full ITR status breakdown for a subsystem
  - search: find subsystems or systems by pattern
  - manageCache: check cache status or force a reload

This command is typically invoked by MCP clients and not directly by users.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	// The shared logger writes to stderr, so stdout stays reserved for
	// the protocol. Format and level come from .itrq/config.json.
	_, proc, engine, logger, err := getEnv()
	if err != nil {
		return err
	}

	root, err := os.Getwd()
	if err != nil {
		return err
	}

	// Metrics recording is best-effort; run without it if the DB
	// cannot be opened.
	metrics, err := storage.Open(root, logger)
	if err != nil {
		logger.Warn("Metrics database unavailable, continuing without it", map[string]interface{}{
			"error": err.Error(),
		})
		metrics = nil
	} else {
		defer metrics.Close()
	}

	server := mcp.NewServer(version.Version, engine, proc, metrics, logger)
	if err := server.Start(); err != nil {
		logger.Error("MCP server error", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	return nil
}
