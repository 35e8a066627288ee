// Package cmd provides the CLI commands for fbgate.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "fbgate",
	Short: "fbgate - supervising front-end for the file-browsing server",
	Long: `fbgate materializes the file-browsing server's config and user database
from environment-driven inputs, launches it as a managed child process, and
optionally runs a hardening reverse proxy in front of it.

Quick start:
  1. Set BINARY, SETTINGS_DIR, and the server/proxy environment variables
     (proxy settings may also go in a ".proxy.env" file in the working
     directory, see --env-file).
  2. Run: fbgate start

Commands:
  start     Materialize config, import it, and run the child process
  stop      Stop a running fbgate instance
  version   Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".proxy.env", "path to the proxy's env file (skipped if it does not exist)")
}
