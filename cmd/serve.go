package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsdesk/api"
	"newsdesk/intake"
	"newsdesk/orchestrator"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and scheduled ingestion",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withApp(ctx, func(app *orchestrator.App, log *zap.Logger) error {
			cfg := app.Config
			server := api.NewServer(app.Pipeline, app.Brands, cfg.Storage.Timeout, log.Named("api"))
			runner := api.NewRunner(server, ":"+cfg.App.Port)
			if err := runner.Start(); err != nil {
				return err
			}
			if cfg.Ingest.Schedule != "" {
				if err := runner.StartCron(cfg.Ingest.Schedule); err != nil {
					return err
				}
			}

			kafka := cfg.Sinks.Kafka
			if len(kafka.Brokers) > 0 && kafka.RequestTopic != "" {
				consumer, err := intake.NewConsumer(intake.ConsumerConfig{
					Brokers: kafka.Brokers,
					Topic:   kafka.RequestTopic,
					GroupID: kafka.GroupID,
					Handler: intake.NewScrapeHandler(app.Pipeline, log.Named("intake")),
				}, log.Named("intake"))
				if err != nil {
					return err
				}
				defer consumer.Close()
				consumer.Start(ctx)
			}

			<-ctx.Done()
			log.Info("shutting down")
			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return runner.Shutdown(sctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
