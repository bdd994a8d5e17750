package main

import (
	"context"
	"fmt"

	"github.com/lastcallsoftware/trackeats/internal/application/account"
	"github.com/lastcallsoftware/trackeats/internal/infrastructure/apiclient"
	"github.com/lastcallsoftware/trackeats/internal/infrastructure/session"
	"github.com/spf13/cobra"
)

var confirmCmd = &cobra.Command{
	Use:   "confirm USERNAME",
	Short: "Wait until a newly registered account is confirmed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadCLI()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		client := apiclient.New(cfg, log)
		store := session.NewMemoryStore(log)
		defer store.Close()
		svc := account.NewService(client, store, nil, log)

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Confirmation.Timeout)
		defer cancel()

		fmt.Fprintf(cmd.OutOrStdout(), "waiting for %s to confirm their email...\n", args[0])
		if err := svc.AwaitConfirmation(ctx, args[0], cfg.Confirmation.PollInterval); err != nil {
			return fmt.Errorf("account %s not confirmed: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "account %s is confirmed\n", args[0])
		return nil
	},
}
