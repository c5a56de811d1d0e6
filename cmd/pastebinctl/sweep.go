package main

import (
	"fmt"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/email"
	"github.com/ErlanBelekov/rich-pastebin/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/rich-pastebin/internal/sweeper"
	"github.com/ErlanBelekov/rich-pastebin/internal/usecase"
	"github.com/spf13/cobra"
)

// The schedules are unused by RunOnce but must still parse.
const runOnceSpec = "@every 1h"

func newSweepCmd(opts *globalOptions) *cobra.Command {
	var retentionDays int
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run every sweeper job once and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.requireDatabaseURL(); err != nil {
				return err
			}
			if retentionDays < 1 {
				return fmt.Errorf("--retention-days must be at least 1")
			}
			logger := opts.logger()

			pool, err := postgres.NewPool(cmd.Context(), opts.databaseURL)
			if err != nil {
				return fmt.Errorf("db connect: %w", err)
			}
			defer pool.Close()

			profiles := postgres.NewProfileRepository(pool)
			notifications := usecase.NewNotificationUsecase(
				postgres.NewNotificationRepository(pool),
				postgres.NewUserRepository(pool),
				profiles,
				email.NewLogSender(logger),
				"",
				logger,
			)

			sw, err := sweeper.New(logger,
				sweeper.SubscriptionLabels(runOnceSpec, profiles),
				sweeper.NotificationRetention(runOnceSpec, time.Duration(retentionDays)*24*time.Hour, notifications),
			)
			if err != nil {
				return err
			}
			return sw.RunOnce(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&retentionDays, "retention-days", 90, "delete read notifications older than this")
	return cmd
}
