// Package commands provides the CLI command handlers for routespec.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/routespec/routespec"
)

// Output format constants.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// NewRootCmd builds the routespec command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "routespec",
		Short: "Synthesize and check API operation descriptors from Go route handlers",
		Long: "routespec analyzes the route handlers of a Go module, synthesizes operation\n" +
			"descriptors (parameters, request bodies, response schemas) from their source,\n" +
			"and checks HTTP traffic against them.\n\n" +
			"Common usage:\n" +
			"  routespec generate -r ./routes -o operations.json\n" +
			"  routespec generate -r ./routes --format yaml\n" +
			"  routespec check request --ops operations.json -X POST -p /users/42 -d '{\"name\":\"Ada\"}'\n" +
			"  routespec mcp\n",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate("{{.Version}}\n")
	root.Version = routespec.Version()

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newMCPCmd())
	root.AddCommand(newVersionCmd())

	return root
}
