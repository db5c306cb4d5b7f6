package commands

import (
	"github.com/spf13/cobra"

	"github.com/routespec/routespec/internal/mcpserver"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server over stdio",
		Long: "Run a Model Context Protocol server exposing routespec tools (synthesize,\n" +
			"check_request, check_response) over stdio. Intended to be launched by an\n" +
			"MCP client; defaults are configured via ROUTESPEC_* environment variables.\n",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return mcpserver.Run(cmd.Context())
		},
	}
}
