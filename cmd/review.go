package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/Nexus-Mods/Vortex-Backend/internal/core"
	"github.com/Nexus-Mods/Vortex-Backend/internal/models"
	"github.com/Nexus-Mods/Vortex-Backend/internal/reconcile"
	"github.com/Nexus-Mods/Vortex-Backend/internal/review"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Process queued extension review requests",
	Long: `Review enumerates the queued review requests and runs the add flow for
each. Requests that fail their preconditions are reported and skipped;
advancing a request's status on the board stays with the review
workflow.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		app, err := core.New()
		if err != nil {
			return err
		}
		m, err := app.Store.Load()
		if err != nil {
			return err
		}

		rc := review.New(app.Config.Review.BaseURL, app.Config.Review.Repo, app.Config.Review.Token)
		requests, err := rc.QueuedRequests(ctx)
		if err != nil {
			return err
		}
		if len(requests) == 0 {
			log.Println("Review queue is empty, nothing to do.")
			return nil
		}
		log.Printf("Processing %d queued review requests", len(requests))

		summary := &models.Summary{}
		before := len(m.Extensions)
		for _, req := range requests {
			outcome, err := app.Engine.AddExtension(ctx, m, summary, reconcile.AddRequest{
				ModID:      req.ModID,
				GameDomain: req.GameDomain,
				Language:   req.LanguageTag,
			})
			if err != nil {
				log.Printf("Warning: review request #%d (mod %d) failed: %v", req.IssueNumber, req.ModID, err)
				continue
			}
			log.Printf("Review request #%d (mod %d): %s", req.IssueNumber, req.ModID, outcome.Kind)
		}

		if len(m.Extensions) > before {
			if err := saveManifest(app, m); err != nil {
				return err
			}
		}
		app.Notifier.Send(ctx, "Extension review queue", summary)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}
