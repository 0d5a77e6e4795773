// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/tmdag/dbconnector/internal/dbinterface"
)

// InsertRow inserts one row and returns its generated identifier. The id is
// read from the same session that ran the INSERT.
func (db *DB) InsertRow(ctx context.Context, table string, columns []string, values []any) (int64, error) {
	const op = "InsertRow"
	if err := checkArity(columns, values); err != nil {
		return 0, err
	}

	schema, err := db.loadSchema(ctx, op, table)
	if err != nil {
		return 0, err
	}
	resolved, err := schema.resolve(columns)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		db.dialect.quoteIdent(table), db.dialect.quoteIdents(resolved), dbinterface.Placeholders(len(resolved)))

	res, err := db.exec(ctx, op, query, values)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, db.fail(op, query, err)
	}
	return id, nil
}

// InsertMap inserts one row given as column -> value and returns its
// generated identifier. Columns are written in sorted order.
func (db *DB) InsertMap(ctx context.Context, table string, data map[string]any) (int64, error) {
	columns := make([]string, 0, len(data))
	for column := range data {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	values := make([]any, len(columns))
	for i, column := range columns {
		values[i] = data[column]
	}
	return db.InsertRow(ctx, table, columns, values)
}

// InsertValue inserts a row with a single column set.
func (db *DB) InsertValue(ctx context.Context, table, column string, value any) (int64, error) {
	return db.InsertRow(ctx, table, []string{column}, []any{value})
}

// UpdateValue sets one column of the row whose primary key equals id and
// returns the number of rows matched.
func (db *DB) UpdateValue(ctx context.Context, table string, id any, column string, value any) (int64, error) {
	return db.UpdateRow(ctx, table, id, []string{column}, []any{value})
}

// UpdateRow sets columns to values on the row whose primary key equals id.
// Mismatched arity is rejected before any statement is issued; all columns
// are written by a single UPDATE.
func (db *DB) UpdateRow(ctx context.Context, table string, id any, columns []string, values []any) (int64, error) {
	const op = "UpdateRow"
	if err := checkArity(columns, values); err != nil {
		db.log.Debug().Int("columns", len(columns)).Int("values", len(values)).Msg("Number of columns and values mismatch")
		return 0, err
	}

	schema, err := db.loadSchema(ctx, op, table)
	if err != nil {
		return 0, err
	}
	pk, err := schema.pk()
	if err != nil {
		return 0, err
	}
	resolved, err := schema.resolve(columns)
	if err != nil {
		return 0, err
	}

	assignments := make([]string, 0, len(resolved))
	for _, column := range resolved {
		assignments = append(assignments, db.dialect.quoteIdent(column)+" = ?")
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		db.dialect.quoteIdent(table), strings.Join(assignments, ", "), db.dialect.quoteIdent(pk))

	args := make([]any, 0, len(values)+1)
	args = append(args, values...)
	args = append(args, id)

	return db.execAffected(ctx, op, query, args)
}

// RemoveByValue deletes every row of table whose column equals value. Prefer
// RemoveByID; this matches on an arbitrary column.
func (db *DB) RemoveByValue(ctx context.Context, table, column string, value any) (int64, error) {
	const op = "RemoveByValue"
	schema, err := db.loadSchema(ctx, op, table)
	if err != nil {
		return 0, err
	}
	resolved, err := schema.column(column)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", db.dialect.quoteIdent(table), db.dialect.quoteIdent(resolved))
	return db.execAffected(ctx, op, query, []any{value})
}

// RemoveByID deletes the row whose primary key equals id.
func (db *DB) RemoveByID(ctx context.Context, table string, id any) (int64, error) {
	const op = "RemoveByID"
	schema, err := db.loadSchema(ctx, op, table)
	if err != nil {
		return 0, err
	}
	pk, err := schema.pk()
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", db.dialect.quoteIdent(table), db.dialect.quoteIdent(pk))
	return db.execAffected(ctx, op, query, []any{id})
}

// Raw runs an arbitrary statement on the facade's session and returns its
// rows, if any. Driver failures come back as *QueryError. Transaction control
// statements are rejected with ErrTransactionControl; use Commit instead.
func (db *DB) Raw(ctx context.Context, query string, args ...any) ([]Row, error) {
	if isTransactionControl(query) {
		return nil, fmt.Errorf("%w: %q", ErrTransactionControl, query)
	}

	var result []Row
	err := db.withCursor(ctx, "Raw", query, false, args, func(rows *sqlx.Rows) error {
		var err error
		result, err = collectRows(rows)
		return err
	})
	// raw statements may write even when they fail part way
	db.dirty = db.dirty || db.inTx
	if err != nil {
		return nil, err
	}
	return result, nil
}

// isTransactionControl reports whether query would begin or end the
// session's transaction behind the facade's back.
func isTransactionControl(query string) bool {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToUpper(strings.TrimSuffix(fields[0], ";")) {
	case "BEGIN", "START", "COMMIT", "ROLLBACK", "END":
		return true
	case "SET":
		return strings.Contains(strings.ToLower(query), "autocommit")
	}
	return false
}

func (db *DB) execAffected(ctx context.Context, op, query string, args []any) (int64, error) {
	res, err := db.exec(ctx, op, query, args)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, db.fail(op, query, err)
	}
	return affected, nil
}
