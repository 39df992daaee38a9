// Package cli implements the Cobra command hierarchy for the ctxpack CLI tool.
// This file wires the `ctxpack mcp serve` subcommand, which exposes the
// pipeline as a Model Context Protocol server over stdio.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ctxpack/ctxpack/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
	Long: `Expose the ctxpack pipeline to MCP clients such as Claude Code.

The server provides four tools: process_files (package an explicit file
list), process_repo (package an already-cloned local repository),
capabilities, and progress.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Start a Model Context Protocol server on stdin/stdout.

The server runs until the client disconnects. Register it with an MCP
client by pointing the client at:

  ctxpack mcp serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !GlobalFlags().Quiet {
			fmt.Fprintln(os.Stderr, "ctxpack MCP server listening on stdio")
		}
		return mcpserver.New().Serve(cmd.Context())
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
