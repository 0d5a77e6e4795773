// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/tmdag/dbconnector/internal/database"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// resultSet is what every command prints. Columns may be nil for raw
// queries, in which case rows are rendered positionally.
type resultSet struct {
	Columns []string
	Rows    []database.Row
}

func single(column string, value any) resultSet {
	return resultSet{Columns: []string{column}, Rows: []database.Row{{value}}}
}

func list(column string, values []string) resultSet {
	rows := make([]database.Row, 0, len(values))
	for _, v := range values {
		rows = append(rows, database.Row{v})
	}
	return resultSet{Columns: []string{column}, Rows: rows}
}

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (want table, json or yaml)", format)
	}
}

func render(w io.Writer, format string, rs resultSet) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rs.records())
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rs.records()); err != nil {
			return err
		}
		return enc.Close()
	default:
		return renderTable(w, rs)
	}
}

// records keys each row by column name, or returns plain slices when the
// columns are unknown.
func (rs resultSet) records() any {
	if rs.Columns == nil {
		out := make([][]any, 0, len(rs.Rows))
		for _, row := range rs.Rows {
			out = append(out, []any(row))
		}
		return out
	}

	out := make([]map[string]any, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		record := make(map[string]any, len(rs.Columns))
		for i, column := range rs.Columns {
			if i < len(row) {
				record[column] = row[i]
			}
		}
		out = append(out, record)
	}
	return out
}

func renderTable(w io.Writer, rs resultSet) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(rs.Columns) > 0 {
		fmt.Fprintln(tw, strings.Join(rs.Columns, "\t"))
	}
	for _, row := range rs.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func formatCell(v any) string {
	switch value := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return "0x" + hex.EncodeToString(value)
	case string:
		return value
	default:
		return fmt.Sprint(value)
	}
}
