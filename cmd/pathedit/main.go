// Command pathedit edits game level paths. Without a subcommand it starts
// the graphical editor; the other subcommands work on path JSON files and
// level containers from the shell.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "pathedit",
		Short:         "Edit level paths: cameras, map objects and collisions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "settings file (default: user config dir)")

	root.AddCommand(newPathsCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newRenderCmd(&configPath))
	root.AddCommand(newScriptCmd(&configPath))
	root.AddCommand(newEditCmd(&configPath))
	return root
}
