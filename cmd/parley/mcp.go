package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/parley/pkg/adapters/mcp"
	"github.com/aretw0/parley/pkg/observability"
	"github.com/spf13/cobra"
)

func newMCPCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Starts parley as an MCP Server so agents can hold conversations through tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			transport, _ := cmd.Flags().GetString("transport")
			port, _ := cmd.Flags().GetInt("port")

			eng, err := a.engine(observability.LogHooks(a.logger))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, locker, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeStore(); err != nil {
					a.logger.Warn("failed to close session store", "err", err)
				}
			}()

			srv := mcp.NewServer(eng, a.sessions(store, locker), mcp.WithLogger(a.logger))

			switch transport {
			case "stdio":
				// Ensure logs don't corrupt JSON-RPC on Stdout
				log.SetOutput(os.Stderr)
				a.logger.Info("starting parley MCP server (stdio)")
				return srv.ServeStdio()
			case "sse":
				a.logger.Info("starting parley MCP server (sse)", "port", port)
				if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("MCP server failed: %w", err)
				}
				a.logger.Info("MCP server stopped gracefully")
				return nil
			default:
				return fmt.Errorf("unknown transport %q (use stdio or sse)", transport)
			}
		},
	}

	cmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	cmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	return cmd
}
