package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the editor as an MCP Server so AI agents can build scenes through tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		// Logs go to stderr so they never corrupt JSON-RPC on stdout.
		cfg, logger, err := setup(cmd, false)
		if err != nil {
			return err
		}

		ctx := cli.NewShutdownContext(cmd.Context())
		defer ctx.Stop()

		s, err := cli.NewSession(ctx, cfg, logger, cli.BuildOptions{})
		if err != nil {
			return err
		}
		defer s.Close()

		srv := mcp.NewServer(s.Editor, arbor.Version, logger)
		switch transport {
		case "stdio":
			logger.Info("starting arbor MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			logger.Info("starting arbor MCP server (SSE)", "port", port)
			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
