package main

import (
	"fmt"
	"os"

	"github.com/routespec/routespec/cmd/routespec/commands"
)

func main() {
	root := commands.NewRootCmd()
	if err := root.Execute(); err != nil {
		// Cobra is configured to not print errors. Ensure users still get a message.
		if msg := err.Error(); msg != "" {
			_, _ = fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(1)
	}
}
