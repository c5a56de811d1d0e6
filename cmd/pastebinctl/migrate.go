package main

import (
	"github.com/ErlanBelekov/rich-pastebin/internal/infrastructure/postgres"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "migrate", Short: "Apply or roll back schema migrations"}

	migrator := func() (*postgres.Migrator, error) {
		if err := opts.requireDatabaseURL(); err != nil {
			return nil, err
		}
		return postgres.NewMigrator(opts.databaseURL, opts.logger()), nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := migrator()
			if err != nil {
				return err
			}
			return m.Up(cmd.Context())
		},
	})

	var target int64
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration, or down to --to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := migrator()
			if err != nil {
				return err
			}
			return m.Down(cmd.Context(), target)
		},
	}
	down.Flags().Int64Var(&target, "to", 0, "target version; 0 rolls back one migration")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := migrator()
			if err != nil {
				return err
			}
			return m.Status(cmd.Context())
		},
	})
	return cmd
}
