package main

import (
	"github.com/spf13/cobra"

	"efile/internal/platform/postgres"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := postgres.Open(ctx, opts.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.Migrate(ctx, db); err != nil {
				return err
			}
			version, err := postgres.Version(ctx, db)
			if err != nil {
				return err
			}
			opts.logger().InfoContext(ctx, "migrations applied", "version", version)
			return writeJSON(cmd.OutOrStdout(), map[string]int64{"version": version})
		},
	}
}
