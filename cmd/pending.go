package cmd

import (
	"fmt"

	"newsdesk/orchestrator"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var pendingLimit int

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Inspect and act on the review queue",
}

var pendingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(app *orchestrator.App, _ *zap.Logger) error {
			entries := app.Pipeline.Pending(cmd.Context())
			if pendingLimit > 0 && len(entries) > pendingLimit {
				entries = entries[:pendingLimit]
			}
			return printJSON(cmd.OutOrStdout(), entries)
		})
	},
}

var pendingDismissCmd = &cobra.Command{
	Use:   "dismiss <id>...",
	Short: "Delete entries without promoting them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(app *orchestrator.App, _ *zap.Logger) error {
			for _, id := range args {
				if err := app.Pipeline.Dismiss(cmd.Context(), id); err != nil {
					return fmt.Errorf("dismiss %s: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "dismissed %s\n", id)
			}
			return nil
		})
	},
}

var pendingPromoteCmd = &cobra.Command{
	Use:   "promote <id>",
	Short: "Extract an entry, publish it and remove it from the queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(app *orchestrator.App, _ *zap.Logger) error {
			rec, err := app.Pipeline.Promote(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		})
	},
}

func init() {
	pendingListCmd.Flags().IntVar(&pendingLimit, "limit", 0, "maximum entries to print (0 = all)")
	pendingCmd.AddCommand(pendingListCmd, pendingDismissCmd, pendingPromoteCmd)
	rootCmd.AddCommand(pendingCmd)
}
