// Command bifrostqlc is a thin orchestrator standing in for the
// HTTP/GraphQL transport spec.md places out of the compiler's scope: it
// loads a schema document and a query document from disk, drives
// core/compiler, and prints the resulting {path -> SQL} map.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var cpath string

var cmdOut = os.Stdout

func main() {
	Execute()
}

// Execute builds and runs the root command.
func Execute() {
	cobra.EnableCommandSorting = false

	root := &cobra.Command{
		Use:   "bifrostqlc",
		Short: "BifrostQL query compiler CLI",
	}
	root.PersistentFlags().StringVar(&cpath, "path", "./bifrostqlc", "path to the config file (without extension)")
	root.PersistentFlags().StringVar(&cpath, "config", "./bifrostqlc", "alias for --path")
	root.PersistentFlags().MarkHidden("config") //nolint:errcheck

	root.AddCommand(compileCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
