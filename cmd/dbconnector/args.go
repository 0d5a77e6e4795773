// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/tmdag/dbconnector/internal/database"
)

// parsePairs splits repeated col=value flags into aligned columns and
// values, sorted by column.
func parsePairs(flag string, pairs []string) ([]string, []any, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		column, value, ok := strings.Cut(pair, "=")
		column = strings.TrimSpace(column)
		if !ok || column == "" {
			return nil, nil, fmt.Errorf("invalid --%s %q, want column=value", flag, pair)
		}
		if _, dup := values[column]; dup {
			return nil, nil, fmt.Errorf("column %q given twice in --%s", column, flag)
		}
		values[column] = value
	}

	columns := make([]string, 0, len(values))
	for column := range values {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	args := make([]any, len(columns))
	for i, column := range columns {
		args[i] = values[column]
	}
	return columns, args, nil
}

// parseValue binds integers as integers and everything else as text.
func parseValue(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	return raw
}

func parseValues(raw []string) []any {
	values := make([]any, len(raw))
	for i, v := range raw {
		values[i] = parseValue(v)
	}
	return values
}

// rowFilter evaluates a boolean expression against rows, with each column
// available as a variable.
type rowFilter struct {
	program *vm.Program
}

func newRowFilter(code string) (*rowFilter, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}
	program, err := expr.Compile(code)
	if err != nil {
		return nil, fmt.Errorf("invalid --filter: %w", err)
	}
	return &rowFilter{program: program}, nil
}

func (f *rowFilter) apply(rs resultSet) (resultSet, error) {
	if f == nil {
		return rs, nil
	}

	kept := make([]database.Row, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		env := make(map[string]any, len(rs.Columns))
		for i, column := range rs.Columns {
			if i < len(row) {
				env[column] = row[i]
			}
		}

		out, err := expr.Run(f.program, env)
		if err != nil {
			return rs, fmt.Errorf("evaluate --filter: %w", err)
		}
		match, ok := out.(bool)
		if !ok {
			return rs, fmt.Errorf("--filter must evaluate to a boolean, got %T", out)
		}
		if match {
			kept = append(kept, row)
		}
	}

	rs.Rows = kept
	return rs, nil
}
