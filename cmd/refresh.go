package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/Nexus-Mods/Vortex-Backend/internal/core"
	"github.com/Nexus-Mods/Vortex-Backend/internal/gitops"
	"github.com/Nexus-Mods/Vortex-Backend/internal/manifest"
	"github.com/Nexus-Mods/Vortex-Backend/internal/models"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Reconcile the manifest against live marketplace data",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRefresh(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(ctx context.Context) error {
	app, err := core.New()
	if err != nil {
		return err
	}

	m, err := app.Store.Load()
	if err != nil {
		return err
	}

	summary, err := app.Engine.Refresh(ctx, m)
	if err != nil {
		return err
	}

	if err := saveManifest(app, m); err != nil {
		return err
	}

	app.Notifier.Send(ctx, "Extension manifest refresh", summary)
	if summary.Changed() {
		commitManifest(app, summary)
	}
	return nil
}

// saveManifest validates and persists the manifest. Validation errors
// abort before anything is written.
func saveManifest(app *core.App, m *models.Manifest) error {
	if errs := manifest.ValidateManifest(m); len(errs) > 0 {
		for _, msg := range errs {
			log.Printf("Manifest validation: %s", msg)
		}
		return fmt.Errorf("manifest failed validation with %d errors, nothing written", len(errs))
	}

	app.Store.DryRun = dryRun
	return app.Store.Save(m)
}

// commitManifest commits the saved files when git publishing is
// configured. Failures are logged, not fatal: the manifest on disk is
// already correct.
func commitManifest(app *core.App, summary *models.Summary) {
	if !app.Config.Git.Enabled || dryRun {
		return
	}
	committer := &gitops.Committer{
		RepoDir: app.Config.Git.RepoDir,
		Remote:  app.Config.Git.Remote,
		Push:    app.Config.Git.Push,
		Name:    app.Config.Git.Name,
		Email:   app.Config.Git.Email,
		Token:   app.Config.Git.Token,
	}
	message := fmt.Sprintf("Update extensions manifest (%d added, %d updated, %d removed)",
		summary.Count(models.OutcomeAdded), summary.Count(models.OutcomeUpdated), summary.Count(models.OutcomeRemoved))
	paths := []string{app.Config.Manifest.Path, app.Config.Manifest.ArchiveDir}
	if err := committer.Commit(paths, message); err != nil {
		log.Printf("Warning: git commit failed: %v", err)
	}
}
