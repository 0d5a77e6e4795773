// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/tmdag/dbconnector/internal/database"
)

func RunInsertCommand(opts *rootOptions) *cobra.Command {
	var (
		set    []string
		commit bool
	)

	cmd := &cobra.Command{
		Use:     "insert <table>",
		Short:   "Insert a row and print its generated id",
		Example: `  dbconnector insert cameras --set cameraName=GoPro --commit`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			columns, values, err := parsePairs("set", set)
			if err != nil {
				return err
			}

			return runWithDB(cmd, opts, func(ctx context.Context, db *database.DB) error {
				id, err := db.InsertRow(ctx, args[0], columns, values)
				if err != nil {
					return err
				}
				if err := commitOrWarn(ctx, cmd, db, commit); err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, single("id", id))
			})
		},
	}

	cmd.Flags().StringArrayVar(&set, "set", nil, "Column value as column=value, repeatable")
	cmd.Flags().BoolVar(&commit, "commit", false, "Commit the change")
	_ = cmd.MarkFlagRequired("set")

	return cmd
}

func RunUpdateCommand(opts *rootOptions) *cobra.Command {
	var (
		set    []string
		commit bool
	)

	cmd := &cobra.Command{
		Use:   "update <table> <id>",
		Short: "Update the row with the given primary key and print the rows matched",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			columns, values, err := parsePairs("set", set)
			if err != nil {
				return err
			}

			return runWithDB(cmd, opts, func(ctx context.Context, db *database.DB) error {
				affected, err := db.UpdateRow(ctx, args[0], parseValue(args[1]), columns, values)
				if err != nil {
					return err
				}
				if err := commitOrWarn(ctx, cmd, db, commit); err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, single("affected", affected))
			})
		},
	}

	cmd.Flags().StringArrayVar(&set, "set", nil, "Column value as column=value, repeatable")
	cmd.Flags().BoolVar(&commit, "commit", false, "Commit the change")
	_ = cmd.MarkFlagRequired("set")

	return cmd
}

func RunDeleteCommand(opts *rootOptions) *cobra.Command {
	var (
		where  string
		commit bool
	)

	cmd := &cobra.Command{
		Use:   "delete <table> [id]",
		Short: "Delete a row by primary key, or every row matching --where",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			byID := len(args) == 2
			switch {
			case byID && where != "":
				return errors.New("give either an id or --where, not both")
			case !byID && where == "":
				return errors.New("an id or --where is required")
			}

			var (
				column string
				value  any
			)
			if !byID {
				columns, values, err := parsePairs("where", []string{where})
				if err != nil {
					return err
				}
				column, value = columns[0], values[0]
			}

			return runWithDB(cmd, opts, func(ctx context.Context, db *database.DB) error {
				var (
					affected int64
					err      error
				)
				if byID {
					affected, err = db.RemoveByID(ctx, args[0], parseValue(args[1]))
				} else {
					affected, err = db.RemoveByValue(ctx, args[0], column, value)
				}
				if err != nil {
					return err
				}
				if err := commitOrWarn(ctx, cmd, db, commit); err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, single("affected", affected))
			})
		},
	}

	cmd.Flags().StringVar(&where, "where", "", "Delete rows where column=value")
	cmd.Flags().BoolVar(&commit, "commit", false, "Commit the change")

	return cmd
}

func RunQueryCommand(opts *rootOptions) *cobra.Command {
	var commit bool

	cmd := &cobra.Command{
		Use:   "query <sql> [args...]",
		Short: "Run a raw SQL statement, binding args to its ? placeholders",
		Example: `  dbconnector query 'SELECT showName FROM shows WHERE year > ?' 2020
  dbconnector query 'UPDATE shots SET frames = ? WHERE shotID = ?' 96 12 --commit`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, params := args[0], parseValues(args[1:])

			return runWithDB(cmd, opts, func(ctx context.Context, db *database.DB) error {
				rows, err := db.Raw(ctx, query, params...)
				if err != nil {
					return err
				}
				if commit {
					if err := db.Commit(ctx); err != nil {
						return err
					}
				}
				return render(cmd.OutOrStdout(), opts.output, resultSet{Rows: rows})
			})
		},
	}

	cmd.Flags().BoolVar(&commit, "commit", false, "Commit after the statement")

	return cmd
}
