package commands

import (
	"github.com/spf13/cobra"
)

// Execute runs the chirp CLI.
func Execute(version string) error {
	rootCmd := &cobra.Command{
		Use:     "chirp",
		Short:   "chirp - HTTP framework development server",
		Long:    "chirp runs a development server showcasing routing, middleware,\ncontent negotiation, and server-push streaming.",
		Version: version,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRoutesCmd())

	return rootCmd.Execute()
}
