package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/omniq-cli/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask
questions about your documents.

Tools:
  ask                 ask a question; pass session_id to continue a conversation
  clear_conversation  forget a conversation's history
  list_documents      list the uploaded documents

By default the server speaks JSON-RPC over stdio. Use --port to serve
streamable HTTP instead, for the MCP Inspector or remote clients.

Examples:
  # Stdio mode (default)
  omniq mcp serve

  # HTTP mode
  omniq mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "omniq": {
        "command": "/path/to/omniq",
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
	if services == nil {
		return errNotConfigured("chat sessions")
	}

	ports := &mcp.Ports{
		NewSession: services.NewSession,
		Sessions:   services.Sessions,
		Documents:  documentCoord,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		cmd.PrintErrf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
