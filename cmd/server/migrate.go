package main

import (
	"fmt"
	"strings"

	"github.com/phrazzld/coban-api/internal/platform/migrate"
	"github.com/spf13/cobra"
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [" + strings.Join(migrate.Commands, "|") + "]",
		Short:     "Manage the score store schema",
		Long:      "Runs the embedded schema migrations against the configured postgres or sqlite store.",
		ValidArgs: migrate.Commands,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			runner, closeDB, err := openMigrationRunner(ctx, c.cfg.Store, c.logger)
			if err != nil {
				logStoreError(c.logger, "failed to prepare migrations", err)
				return err
			}
			defer func() { _ = closeDB() }()

			if err := runner.Run(ctx, args[0]); err != nil {
				return err
			}
			if args[0] == migrate.CommandVersion {
				version, err := runner.Version(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), version)
			}
			return nil
		},
	}
}
