package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/Nexus-Mods/Vortex-Backend/internal/core"
	"github.com/Nexus-Mods/Vortex-Backend/internal/models"
	"github.com/Nexus-Mods/Vortex-Backend/internal/reconcile"
)

var (
	addModID    int
	addGame     string
	addLanguage string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add one marketplace extension to the manifest",
	Long: `Add runs the per-item reconciliation rules for exactly one mod ID.
Unlike refresh, failures here are definitive: a failed metadata fetch,
an unpublished mod, an unrecognized category or a missing main file
aborts with a non-zero exit and nothing is written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAdd(cmd.Context())
	},
}

func init() {
	addCmd.Flags().IntVar(&addModID, "mod-id", 0, "marketplace mod ID to add (required)")
	addCmd.Flags().StringVar(&addGame, "game", "", "game domain for game extensions")
	addCmd.Flags().StringVar(&addLanguage, "language", "", "language tag for translation extensions")
	_ = addCmd.MarkFlagRequired("mod-id")
	rootCmd.AddCommand(addCmd)
}

func runAdd(ctx context.Context) error {
	if addModID <= 0 {
		return fmt.Errorf("%w: --mod-id must be a positive mod ID", reconcile.ErrPrecondition)
	}

	app, err := core.New()
	if err != nil {
		return err
	}
	m, err := app.Store.Load()
	if err != nil {
		return err
	}

	summary := &models.Summary{}
	before := len(m.Extensions)
	outcome, err := app.Engine.AddExtension(ctx, m, summary, reconcile.AddRequest{
		ModID:      addModID,
		GameDomain: addGame,
		Language:   addLanguage,
	})
	if err != nil {
		return err
	}

	log.Printf("Mod %d: %s", addModID, outcome.Kind)
	if len(m.Extensions) > before {
		if err := saveManifest(app, m); err != nil {
			return err
		}
	}

	app.Notifier.Send(ctx, fmt.Sprintf("Add extension %d", addModID), summary)
	if outcome.Kind == models.OutcomeRejected && outcome.Reason != "" {
		log.Printf("Rejected: %s", outcome.Reason)
	}
	return nil
}
