package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Nexus-Mods/Vortex-Backend/internal/core"
	"github.com/Nexus-Mods/Vortex-Backend/internal/jobs"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the daily refresh on a schedule",
	Long: `Schedule blocks and triggers a manifest refresh once a day at the
configured time, for running the updater as a long-lived service
instead of under an external cron trigger.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := core.New()
		if err != nil {
			return err
		}
		return jobs.StartScheduler(app.Config.Schedule.RefreshAt, func() error {
			return runRefresh(context.Background())
		})
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}
