// navbuddy serves the assistive-navigation API and exposes the same
// pipelines on the command line.
//
// Usage:
//
//	navbuddy serve
//	navbuddy detect <image-file>
//	navbuddy read <image-file> [command...]
//	navbuddy search --lat=<lat> --lng=<lng> <text query>
//	navbuddy directions --from=<origin> --to=<destination> [--mode=walking]
//	navbuddy purge --older-than=720h
//	navbuddy audit <detection-id>
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "navbuddy",
		Short:         "Hazard detection, place search and directions for blind pedestrians",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	root.AddCommand(serveCmd())
	root.AddCommand(detectCmd())
	root.AddCommand(readCmd())
	root.AddCommand(searchCmd())
	root.AddCommand(directionsCmd())
	root.AddCommand(purgeCmd())
	root.AddCommand(auditCmd())
	root.Version = version
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
