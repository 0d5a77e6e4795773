// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/tmdag/dbconnector/internal/database"
)

func RunTablesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithDB(cmd, opts, func(ctx context.Context, db *database.DB) error {
				tables, err := db.ListTables(ctx)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, list("table", tables))
			})
		},
	}
}

func RunColumnsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "columns <table>",
		Short: "List the columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := args[0]
			return runWithDB(cmd, opts, func(ctx context.Context, db *database.DB) error {
				columns, err := db.ColumnNames(ctx, table)
				if err != nil {
					return err
				}

				pk, err := db.PrimaryKey(ctx, table)
				if err != nil && !errors.Is(err, database.ErrNoPrimaryKey) {
					return err
				}

				rs := resultSet{Columns: []string{"column", "primaryKey"}}
				for _, column := range columns {
					rs.Rows = append(rs.Rows, database.Row{column, column == pk})
				}
				return render(cmd.OutOrStdout(), opts.output, rs)
			})
		},
	}
}

func RunPrimaryKeyCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pk <table>",
		Short: "Show the primary key column of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDB(cmd, opts, func(ctx context.Context, db *database.DB) error {
				pk, err := db.PrimaryKey(ctx, args[0])
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, single("primaryKey", pk))
			})
		},
	}
}

func RunRowsCommand(opts *rootOptions) *cobra.Command {
	var (
		columns []string
		where   string
		filter  string
	)

	cmd := &cobra.Command{
		Use:   "rows <table>",
		Short: "Print the rows of a table",
		Example: `  dbconnector rows shots --where shows_showID=3 --columns shotName
  dbconnector rows software --filter 'softwareName == "Houdini"'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := args[0]

			keep, err := newRowFilter(filter)
			if err != nil {
				return err
			}

			var (
				key   string
				value any
			)
			if where != "" {
				keys, values, err := parsePairs("where", []string{where})
				if err != nil {
					return err
				}
				key, value = keys[0], values[0]
			}

			return runWithDB(cmd, opts, func(ctx context.Context, db *database.DB) error {
				rs, err := fetchRows(ctx, db, table, columns, key, value)
				if err != nil {
					return err
				}
				if rs, err = keep.apply(rs); err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, rs)
			})
		},
	}

	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Columns to print (default all)")
	cmd.Flags().StringVar(&where, "where", "", "Only rows where column=value")
	cmd.Flags().StringVar(&filter, "filter", "", "Boolean expression evaluated per row, columns are variables")

	return cmd
}

func fetchRows(ctx context.Context, db *database.DB, table string, columns []string, key string, value any) (resultSet, error) {
	var (
		rows []database.Row
		err  error
	)

	if len(columns) == 0 {
		if columns, err = db.ColumnNames(ctx, table); err != nil {
			return resultSet{}, err
		}
		if key != "" {
			rows, err = db.RowsByKey(ctx, table, key, value)
		} else {
			rows, err = db.AllRows(ctx, table)
		}
	} else if key != "" {
		rows, err = db.RowsFromColumnsByKey(ctx, table, key, value, columns...)
	} else {
		rows, err = db.RowsFromColumns(ctx, table, columns...)
	}
	if err != nil {
		return resultSet{}, err
	}

	return resultSet{Columns: columns, Rows: rows}, nil
}

func RunGetCommand(opts *rootOptions) *cobra.Command {
	var column string

	cmd := &cobra.Command{
		Use:   "get <table> <id>",
		Short: "Print the row with the given primary key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, id := args[0], parseValue(args[1])

			return runWithDB(cmd, opts, func(ctx context.Context, db *database.DB) error {
				if column != "" {
					value, err := db.ValueByID(ctx, table, column, id)
					if err != nil {
						return err
					}
					return render(cmd.OutOrStdout(), opts.output, single(column, value))
				}

				columns, err := db.ColumnNames(ctx, table)
				if err != nil {
					return err
				}
				row, err := db.RowByID(ctx, table, id)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, resultSet{Columns: columns, Rows: []database.Row{row}})
			})
		},
	}

	cmd.Flags().StringVar(&column, "column", "", "Print only this column")

	return cmd
}

func RunIDCommand(opts *rootOptions) *cobra.Command {
	var where []string

	cmd := &cobra.Command{
		Use:   "id <table>",
		Short: "Print the primary key of the first row matching every --where",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			columns, values, err := parsePairs("where", where)
			if err != nil {
				return err
			}

			return runWithDB(cmd, opts, func(ctx context.Context, db *database.DB) error {
				id, err := db.ValueIDMultiple(ctx, args[0], columns, values)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, single("id", id))
			})
		},
	}

	cmd.Flags().StringArrayVar(&where, "where", nil, "Condition column=value, repeatable")
	_ = cmd.MarkFlagRequired("where")

	return cmd
}

func RunCountCommand(opts *rootOptions) *cobra.Command {
	var where []string

	cmd := &cobra.Command{
		Use:   "count <table>",
		Short: "Count the rows matching every --where",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			columns, values, err := parsePairs("where", where)
			if err != nil {
				return err
			}

			return runWithDB(cmd, opts, func(ctx context.Context, db *database.DB) error {
				count, err := db.ValueExistsMultiple(ctx, args[0], columns, values)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, single("count", count))
			})
		},
	}

	cmd.Flags().StringArrayVar(&where, "where", nil, "Condition column=value, repeatable")
	_ = cmd.MarkFlagRequired("where")

	return cmd
}
