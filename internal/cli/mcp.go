package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	reseaumcp "github.com/valter-silva-au/reseau/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the reseau MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the reseau MCP server on stdio",
	Long: `Start the reseau MCP server on stdio transport.

The server holds one network for the lifetime of the connection and exposes
it as MCP tools: add_person, add_relationships, the request/confirm/cancel
tools for deleting history entries and people, get_network, render_network
and get_metrics. The network is discarded when the client disconnects.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Controller == nil {
			return fmt.Errorf("network controller not initialized")
		}

		srv := reseaumcp.NewServer(Controller, MetricsCalc, TypeColors, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
