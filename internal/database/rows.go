// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Row is one result row, positionally aligned with the queried columns.
type Row []any

// FirstColumn flattens rows to the values of their first column.
func FirstColumn(rows []Row) []any {
	values := make([]any, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		values = append(values, row[0])
	}
	return values
}

func collectRows(rows *sqlx.Rows) ([]Row, error) {
	types, err := columnTypeNames(rows)
	if err != nil {
		return nil, err
	}

	result := make([]Row, 0)
	for rows.Next() {
		raw, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}

		row := make(Row, len(raw))
		for i := range raw {
			var typeName string
			if i < len(types) {
				typeName = types[i]
			}
			row[i] = normalizeValue(raw[i], typeName)
		}
		result = append(result, row)
	}

	return result, nil
}

func collectStrings(rows *sqlx.Rows) ([]string, error) {
	result := make([]string, 0)
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		result = append(result, value)
	}
	return result, nil
}

func columnTypeNames(rows *sqlx.Rows) ([]string, error) {
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(columnTypes))
	for i, ct := range columnTypes {
		names[i] = strings.ToUpper(strings.TrimSpace(ct.DatabaseTypeName()))
	}
	return names, nil
}

// normalizeValue turns driver byte slices into the Go type the column
// declares. Binary columns keep a private copy of their bytes.
func normalizeValue(v any, typeName string) any {
	if v == nil {
		return nil
	}

	value, ok := v.([]byte)
	if !ok {
		return v
	}

	switch {
	case isBinaryType(typeName):
		buf := make([]byte, len(value))
		copy(buf, value)
		return buf
	case isIntegerType(typeName):
		if n, err := strconv.ParseInt(string(value), 10, 64); err == nil {
			return n
		}
		if n, err := strconv.ParseUint(string(value), 10, 64); err == nil {
			return n
		}
	case isFloatType(typeName):
		if f, err := strconv.ParseFloat(string(value), 64); err == nil {
			return f
		}
	}

	return string(value)
}

func isBinaryType(typeName string) bool {
	return strings.Contains(typeName, "BLOB") ||
		strings.Contains(typeName, "BINARY") ||
		typeName == "BIT" ||
		typeName == "GEOMETRY"
}

func isIntegerType(typeName string) bool {
	return strings.Contains(typeName, "INT") || typeName == "YEAR"
}

func isFloatType(typeName string) bool {
	return typeName == "FLOAT" || typeName == "DOUBLE" || typeName == "REAL"
}
