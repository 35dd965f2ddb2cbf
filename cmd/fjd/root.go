package main

import (
	"fmt"

	"github.com/fjd/job-scam-detector/internal/config"
	"github.com/fjd/job-scam-detector/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	debugMode  bool

	cfg    *config.Config
	logger *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "fjd",
	Short: "FJD - recruitment scam detector",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if logger, err = logging.New(debugMode); err != nil {
			return err
		}
		if cfg, err = config.Load(configPath); err != nil {
			return fmt.Errorf("load config %s: %w", configPath, err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd, analyzeCmd, reportsCmd)
}

// Execute runs the CLI
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
