package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"newsdesk/config"
	"newsdesk/logging"
	"newsdesk/orchestrator"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile  string
	logLevel string
	appCfg   config.Config
)

// rootCmd is the base command called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "newsdesk",
	Short: "Automotive news ingestion desk",
	Long:  "Aggregates feeds and scraped pages into a review queue and extracts structured news records with an LLM.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.SilenceUsage = true

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override app.log_level (debug, info, warn, error)")
}

func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading config: %v\n", err)
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.App.LogLevel = logLevel
	}
	appCfg = cfg
}

// GetConfig exposes the loaded configuration to subcommands.
func GetConfig() config.Config {
	return appCfg
}

func newLogger() (*zap.Logger, error) {
	cfg := GetConfig()
	return logging.New(cfg.App.LogLevel, cfg.App.LogFormat)
}

// withApp builds the pipeline, runs fn and releases everything afterwards.
func withApp(ctx context.Context, fn func(app *orchestrator.App, log *zap.Logger) error) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	app, err := orchestrator.Build(ctx, GetConfig(), log)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn("shutdown", zap.Error(err))
		}
	}()
	return fn(app, log)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
