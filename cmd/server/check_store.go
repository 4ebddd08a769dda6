package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// errStoreCheckFailed is returned when the store's probe fails.
var errStoreCheckFailed = errors.New("score store check failed")

func newCheckStoreCmd(c *cli) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check-store",
		Short: "Verify that the configured score store is reachable and writable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			scoreStore, err := openStore(ctx, c.cfg.Store, false, c.logger)
			if err != nil {
				logStoreError(c.logger, "failed to open score store", err)
				return errStoreCheckFailed
			}
			defer func() { _ = scoreStore.Close() }()

			if !scoreStore.Validate(ctx) {
				return errStoreCheckFailed
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s store ok\n", c.cfg.Store.Driver)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "overall time limit for the check")
	return cmd
}
