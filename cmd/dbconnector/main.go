// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tmdag/dbconnector/internal/buildinfo"
	"github.com/tmdag/dbconnector/internal/config"
	"github.com/tmdag/dbconnector/internal/database"
	"github.com/tmdag/dbconnector/internal/logger"
	"github.com/tmdag/dbconnector/internal/metrics"
)

type rootOptions struct {
	configPath string
	output     string
	debug      bool
	stats      bool
}

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "dbconnector",
		Short:        "Query a MySQL database through the dbconnector facade",
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return validateFormat(opts.output)
		},
	}

	cmd.SetVersionTemplate(buildinfo.String())

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "Path to the configuration file (ini, toml or yaml)")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", formatTable, "Output format: table, json or yaml")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Log every SQL statement")
	cmd.PersistentFlags().BoolVar(&opts.stats, "stats", false, "Print statement counters to stderr when done")

	cmd.AddCommand(
		RunTablesCommand(opts),
		RunColumnsCommand(opts),
		RunPrimaryKeyCommand(opts),
		RunRowsCommand(opts),
		RunGetCommand(opts),
		RunIDCommand(opts),
		RunCountCommand(opts),
		RunInsertCommand(opts),
		RunUpdateCommand(opts),
		RunDeleteCommand(opts),
		RunQueryCommand(opts),
	)

	return cmd
}

// runWithDB loads the configuration, connects and hands the facade to fn.
// The connection is closed on every path; uncommitted writes are discarded.
func runWithDB(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, db *database.DB) error) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.debug {
		cfg.LogLevel = "DEBUG"
	}

	log, err := logger.New(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer log.Close()

	log.Debug().Str("version", buildinfo.UserAgent).Str("config", opts.configPath).Interface("database", cfg.Database.Redacted()).Msg("Loaded configuration")

	ctx := cmd.Context()
	return database.WithConnection(ctx, cfg, func(db *database.DB) error {
		if opts.stats {
			defer printStats(cmd, db)
		}
		return fn(ctx, db)
	}, database.WithLogger(log.Logger))
}

// commitOrWarn commits when asked to and otherwise tells the user the
// changes will be discarded.
func commitOrWarn(ctx context.Context, cmd *cobra.Command, db *database.DB, commit bool) error {
	if commit {
		return db.Commit(ctx)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Changes not committed, rerun with --commit to keep them.")
	return nil
}

func printStats(cmd *cobra.Command, db *database.DB) {
	if err := metrics.NewManager(db).WriteText(cmd.ErrOrStderr()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "stats unavailable: %v\n", err)
	}
}
