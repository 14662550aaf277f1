// ABOUTME: MCP command starts the Model Context Protocol server
// ABOUTME: Lets LLM agents manage the shopping list over stdio while prices are checked in the background
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/harper/pricewatch/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs pricewatch as an MCP (Model Context Protocol) server, enabling
LLM agents like Claude to add items, read alerts, and find better
deals via stdio. The scheduled price checker runs for the lifetime of
the server.

Configure in Claude Desktop's config file to enable the tools.`,
		Args: cobra.NoArgs,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  pricewatch mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "pricewatch": {
  #       "command": "pricewatch",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	server := mcpserver.NewMCPServer("pricewatch", versionInfo.Version)
	mcp.RegisterTools(server, a.tracker)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := a.newScheduler()
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := scheduler.Stop(stopCtx); err != nil {
			a.logger.Warn("stopping scheduler", "error", err)
		}
	}()

	a.logger.Info("MCP server starting on stdio")

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}
	return nil
}
