package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/Nexus-Mods/Vortex-Backend/internal/bundled"
	"github.com/Nexus-Mods/Vortex-Backend/internal/core"
)

var bundledDir string

var bundledCmd = &cobra.Command{
	Use:   "bundled",
	Short: "Merge bundled game extensions into the manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := core.New()
		if err != nil {
			return err
		}
		m, err := app.Store.Load()
		if err != nil {
			return err
		}

		dir := bundledDir
		if dir == "" {
			dir = app.Config.Bundled.Dir
		}
		merger := bundled.New(dir, app.Config.Bundled.ImageURL, app.Config.Bundled.Exclude)
		added, updated, err := merger.Merge(m)
		if err != nil {
			return err
		}
		log.Printf("Bundled merge: %d added, %d refreshed", added, updated)

		return saveManifest(app, m)
	},
}

func init() {
	bundledCmd.Flags().StringVar(&bundledDir, "dir", "", "bundled descriptor directory (defaults to config)")
	rootCmd.AddCommand(bundledCmd)
}
