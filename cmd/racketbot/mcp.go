package main

import (
	"context"

	"github.com/aretw0/racketbot/internal/cli"
	"github.com/spf13/cobra"
)

var mcpOpts cli.MCPOptions

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts racketbot as an MCP Server so that AI agents can run the questionnaire as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup()
		if err != nil {
			return err
		}
		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return app.ServeMCP(sigCtx, mcpOpts)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpOpts.Transport, "transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().StringVar(&mcpOpts.Addr, "addr", "", "Listen address for SSE (default from mcp.addr)")
	mcpCmd.Flags().BoolVar(&mcpOpts.InProcess, "catalog", false, "Answer from the bundled catalogue instead of the HTTP endpoint")
}
