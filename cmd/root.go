// Package cmd wires the CLI flows of the manifest updater.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var dryRun bool

var rootCmd = &cobra.Command{
	Use:   "vortex-backend",
	Short: "Maintains the Vortex extension manifest",
	Long: `vortex-backend maintains the JSON extension manifest consumed by the
Vortex desktop application: it reconciles the catalog against live
Nexus Mods data, merges bundled game extensions, and processes the
extension review queue.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "validate and log changes without writing any file")
}

// Execute runs the root command. Fatal errors exit non-zero; runs that
// merely had per-item soft failures exit 0.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
