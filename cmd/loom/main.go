package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "loom",
		Short: "Server-driven UI rendering for Go",
		Long: `Loom reconciles declarative vnode trees into a live output tree
and streams the resulting mutations to thin clients.

  • Keyed diffing with minimal structural mutation
  • Reactive observable bindings written straight into node props
  • Frame-batched render scheduling
  • Tag-addressable components with shadow subtrees`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		devCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
