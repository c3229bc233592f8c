package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/finrag/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server offers the tools ask, sec_10k_search and calculator, and the
resources finrag://universe, finrag://index and finrag://filings/{ticker}/{year}.

By default, the server communicates over stdio using JSON-RPC. Use --port to
start an HTTP server instead, which also serves Prometheus metrics at /metrics.

Examples:
  # Stdio mode (default, for desktop assistants)
  finrag mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  finrag mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "finrag": {
        "command": "/path/to/finrag",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	svc, err := readyServices(cmd.Context())
	if err != nil {
		return err
	}

	ports := &mcp.Ports{
		Asker:    svc.Agent,
		Tools:    svc.Tools,
		Search:   svc.Search,
		Index:    svc.Index,
		Universe: universe,
		Metrics:  svc.Metrics,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
