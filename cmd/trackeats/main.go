// Package main provides the entry point for the TrackEats web frontend
package main

import (
	"fmt"
	"os"

	"github.com/lastcallsoftware/trackeats/internal/infrastructure/config"
	"github.com/lastcallsoftware/trackeats/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "trackeats",
	Short: "TrackEats nutrition tracking web frontend",
	Long: `TrackEats serves the web frontend for recording foods and composing
recipes against the TrackEats REST API.

Available commands:
  serve    - Run the web frontend
  ping     - Check that the backend API answers
  import   - Load foods from a YAML file into the backend
  confirm  - Wait until a newly registered account is confirmed`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: ./config.yaml)")
	rootCmd.AddCommand(serveCmd, pingCmd, importCmd, confirmCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadCLI loads configuration and a console logger for one-shot commands
func loadCLI() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, _, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Format:      "console",
		Development: cfg.App.Debug,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}
