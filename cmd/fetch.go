package cmd

import (
	"newsdesk/orchestrator"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fetchIngest bool
	fetchDays   int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Aggregate feeds; with --ingest, queue new items",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(app *orchestrator.App, _ *zap.Logger) error {
			if fetchIngest {
				rep, err := app.Pipeline.RunOnce(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), rep)
			}
			return printJSON(cmd.OutOrStdout(), app.Pipeline.Preview(cmd.Context(), fetchDays))
		})
	},
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchIngest, "ingest", false, "write new candidates into the pending queue")
	fetchCmd.Flags().IntVar(&fetchDays, "days", 0, "time window in days for preview (default: feeds.window_days)")
	rootCmd.AddCommand(fetchCmd)
}
