package main

import (
	"errors"
	"log/slog"
	"os"

	ctxlog "github.com/ErlanBelekov/rich-pastebin/internal/log"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	databaseURL string
	env         string
	logLevel    string
}

func (o *globalOptions) logger() *slog.Logger {
	level := slog.LevelInfo
	if o.logLevel == "debug" {
		level = slog.LevelDebug
	}
	return ctxlog.New(o.env, level)
}

func (o *globalOptions) requireDatabaseURL() error {
	if o.databaseURL == "" {
		return errors.New("database url is not set: pass --database-url or export DATABASE_URL")
	}
	return nil
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:          "pastebinctl",
		Short:        "Operational tasks for the pastebin backend",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection string")
	root.PersistentFlags().StringVar(&opts.env, "env", envOr("ENV", "local"), "local prints colored logs, anything else JSON")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", envOr("LOG_LEVEL", "info"), "info or debug")

	root.AddCommand(newMigrateCmd(opts))
	root.AddCommand(newSeedCmd(opts))
	root.AddCommand(newSweepCmd(opts))
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
