package main

import (
	"fmt"
	"time"

	"github.com/lastcallsoftware/trackeats/internal/infrastructure/apiclient"
	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the backend API answers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadCLI()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		client := apiclient.New(cfg, log)
		start := time.Now()
		if err := client.Ping(cmd.Context()); err != nil {
			return fmt.Errorf("%s is not reachable: %w", cfg.API.BaseURL, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is up (%s)\n", cfg.API.BaseURL, time.Since(start).Round(time.Millisecond))
		return nil
	},
}
