package cmd

import (
	"newsdesk/orchestrator"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var brandsCmd = &cobra.Command{
	Use:   "brands",
	Short: "Show or replace the brand vocabulary",
}

var brandsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the current brand vocabulary",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(app *orchestrator.App, _ *zap.Logger) error {
			return printJSON(cmd.OutOrStdout(), app.Brands.Load(cmd.Context()))
		})
	},
}

var brandsSetCmd = &cobra.Command{
	Use:   "set <brand>...",
	Short: "Replace the saved brand vocabulary",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(app *orchestrator.App, _ *zap.Logger) error {
			saved, err := app.Brands.Save(cmd.Context(), args)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), saved)
		})
	},
}

func init() {
	brandsCmd.AddCommand(brandsListCmd, brandsSetCmd)
	rootCmd.AddCommand(brandsCmd)
}
