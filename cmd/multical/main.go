// Multical is a command line utility for Kamstrup Multical 402 heat meters.
//
// It reads measurement registers over an IR optical probe, can forward
// processed values to a Domoticz home automation server, and provides
// connectivity tests, discovery, and a live watch TUI.
//
// Usage:
//
//	multical [command] [flags]
//
// See 'multical --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/multical/internal/logging"
	"github.com/muurk/multical/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "multical",
	Short: "Kamstrup Multical 402 Meter Utility",
	Long: `A standalone utility for Kamstrup Multical 402 heat meters.

Reads measurement registers over the meter's IR optical interface and
optionally forwards processed values to a Domoticz server. Provides
register reads, the full read-process-push pipeline, connectivity tests,
mDNS discovery, and a live watch TUI.`,
	Version: version.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("multical %s (commit: %s)\n", version.Version, version.Commit)
	},
}
