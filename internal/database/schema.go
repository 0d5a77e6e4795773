// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// tableSchema is the introspected shape of one table. It lives for a single
// operation; nothing is cached between calls.
type tableSchema struct {
	name       string
	columns    []string
	primaryKey string
}

func (db *DB) loadSchema(ctx context.Context, op, table string) (*tableSchema, error) {
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("%w: empty table name", ErrUnknownTable)
	}

	schema := &tableSchema{name: table}
	err := db.withCursor(ctx, op, db.dialect.tableColumnsQuery(), true, []any{table}, func(rows *sqlx.Rows) error {
		for rows.Next() {
			var (
				column string
				isPK   int
			)
			if err := rows.Scan(&column, &isPK); err != nil {
				return err
			}
			schema.columns = append(schema.columns, column)
			if isPK == 1 && schema.primaryKey == "" {
				schema.primaryKey = column
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(schema.columns) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	return schema, nil
}

// column returns the schema spelling of name, matching case-insensitively
// like the engines do.
func (s *tableSchema) column(name string) (string, error) {
	for _, column := range s.columns {
		if column == name {
			return column, nil
		}
	}
	for _, column := range s.columns {
		if strings.EqualFold(column, name) {
			return column, nil
		}
	}
	if suggestion := s.closestColumn(name); suggestion != "" {
		return "", fmt.Errorf("%w: %q in table %q, did you mean %q", ErrUnknownColumn, name, s.name, suggestion)
	}
	return "", fmt.Errorf("%w: %q in table %q", ErrUnknownColumn, name, s.name)
}

// closestColumn picks the column name is most likely a misspelling of:
// first a fuzzy subsequence match, then a small edit distance.
func (s *tableSchema) closestColumn(name string) string {
	if name == "" {
		return ""
	}

	if ranks := fuzzy.RankFindFold(name, s.columns); len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best, bestDistance := "", maxSuggestionDistance(name)+1
	for _, column := range s.columns {
		d := fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(column))
		if d < bestDistance {
			best, bestDistance = column, d
		}
	}
	return best
}

func maxSuggestionDistance(name string) int {
	if n := len(name) / 3; n > 2 {
		return n
	}
	return 2
}

func (s *tableSchema) resolve(names []string) ([]string, error) {
	resolved := make([]string, 0, len(names))
	for _, name := range names {
		column, err := s.column(name)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, column)
	}
	return resolved, nil
}

func (s *tableSchema) pk() (string, error) {
	if s.primaryKey == "" {
		return "", fmt.Errorf("%w: %q", ErrNoPrimaryKey, s.name)
	}
	return s.primaryKey, nil
}
