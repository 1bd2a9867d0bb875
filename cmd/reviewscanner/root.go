package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"ReviewScanner/internal/config"
	"ReviewScanner/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:          "reviewscanner",
	Short:        "Detect fake product reviews",
	Long:         "ReviewScanner scores product reviews with rules and a learned classifier and grades the product's review authenticity.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config (overrides REVIEW_SCANNER_CONFIG env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(modelCmd)
}

// loadConfig resolves configuration using --config (highest priority), then
// REVIEW_SCANNER_CONFIG, and applies --log-level.
func loadConfig(cmd *cobra.Command) config.Config {
	var cfg config.Config
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		cfg = config.LoadFile(p)
	} else {
		cfg = config.Load()
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	return cfg
}

// newLogger writes to stderr so command output on stdout stays machine readable.
func newLogger(cfg config.Config, cmd *cobra.Command) *slog.Logger {
	return logging.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
}
