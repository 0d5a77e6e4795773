// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// ListTables returns the table names of the current database in the order
// the engine reports them.
func (db *DB) ListTables(ctx context.Context) ([]string, error) {
	var tables []string
	err := db.withCursor(ctx, "ListTables", db.dialect.listTablesQuery(), true, nil, func(rows *sqlx.Rows) error {
		var err error
		tables, err = collectStrings(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tables, nil
}

// PrimaryKey returns the name of the primary key column of table. For
// composite keys the first key column in ordinal order is returned.
func (db *DB) PrimaryKey(ctx context.Context, table string) (string, error) {
	schema, err := db.loadSchema(ctx, "PrimaryKey", table)
	if err != nil {
		return "", err
	}
	return schema.pk()
}

// ColumnNames lists the columns of table in ordinal order.
func (db *DB) ColumnNames(ctx context.Context, table string) ([]string, error) {
	schema, err := db.loadSchema(ctx, "ColumnNames", table)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(schema.columns))
	copy(names, schema.columns)
	return names, nil
}

// AllRows returns every row of table.
func (db *DB) AllRows(ctx context.Context, table string) ([]Row, error) {
	const op = "AllRows"
	if _, err := db.loadSchema(ctx, op, table); err != nil {
		return nil, err
	}

	query := "SELECT * FROM " + db.dialect.quoteIdent(table)
	return db.selectRows(ctx, op, query, nil)
}

// Column returns all values of one column of table.
func (db *DB) Column(ctx context.Context, table, column string) ([]any, error) {
	rows, err := db.RowsFromColumns(ctx, table, column)
	if err != nil {
		return nil, err
	}
	return FirstColumn(rows), nil
}

// RowsFromColumns returns every row of table projected on columns.
func (db *DB) RowsFromColumns(ctx context.Context, table string, columns ...string) ([]Row, error) {
	const op = "RowsFromColumns"
	if len(columns) == 0 {
		return nil, ErrEmptyColumns
	}

	schema, err := db.loadSchema(ctx, op, table)
	if err != nil {
		return nil, err
	}
	resolved, err := schema.resolve(columns)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s", db.dialect.quoteIdents(resolved), db.dialect.quoteIdent(table))
	return db.selectRows(ctx, op, query, nil)
}

// RowsFromColumnsByKey returns the rows of table whose key column equals
// value, projected on columns.
func (db *DB) RowsFromColumnsByKey(ctx context.Context, table, key string, value any, columns ...string) ([]Row, error) {
	const op = "RowsFromColumnsByKey"
	if len(columns) == 0 {
		return nil, ErrEmptyColumns
	}

	schema, err := db.loadSchema(ctx, op, table)
	if err != nil {
		return nil, err
	}
	resolved, err := schema.resolve(columns)
	if err != nil {
		return nil, err
	}
	keyColumn, err := schema.column(key)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		db.dialect.quoteIdents(resolved), db.dialect.quoteIdent(table), db.dialect.quoteIdent(keyColumn))
	return db.selectRows(ctx, op, query, []any{value})
}

// RowsByKey returns all columns of the rows of table whose key column
// equals value.
func (db *DB) RowsByKey(ctx context.Context, table, key string, value any) ([]Row, error) {
	const op = "RowsByKey"
	schema, err := db.loadSchema(ctx, op, table)
	if err != nil {
		return nil, err
	}
	keyColumn, err := schema.column(key)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", db.dialect.quoteIdent(table), db.dialect.quoteIdent(keyColumn))
	return db.selectRows(ctx, op, query, []any{value})
}

// ValuesByKey returns the values of column for the rows whose foreign key
// column equals id, e.g. every shot name where the sequence id is 3.
func (db *DB) ValuesByKey(ctx context.Context, table, foreignColumn string, id any, column string) ([]any, error) {
	rows, err := db.RowsFromColumnsByKey(ctx, table, foreignColumn, id, column)
	if err != nil {
		return nil, err
	}
	return FirstColumn(rows), nil
}

// RowByID returns the row whose primary key equals id.
func (db *DB) RowByID(ctx context.Context, table string, id any) (Row, error) {
	const op = "RowByID"
	schema, err := db.loadSchema(ctx, op, table)
	if err != nil {
		return nil, err
	}
	pk, err := schema.pk()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = ? LIMIT 1", db.dialect.quoteIdent(table), db.dialect.quoteIdent(pk))
	rows, err := db.selectRows(ctx, op, query, []any{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// ValueByID returns column of the row whose primary key equals id.
func (db *DB) ValueByID(ctx context.Context, table, column string, id any) (any, error) {
	const op = "ValueByID"
	schema, err := db.loadSchema(ctx, op, table)
	if err != nil {
		return nil, err
	}
	pk, err := schema.pk()
	if err != nil {
		return nil, err
	}
	resolved, err := schema.column(column)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? LIMIT 1",
		db.dialect.quoteIdent(resolved), db.dialect.quoteIdent(table), db.dialect.quoteIdent(pk))
	return db.selectValue(ctx, op, query, []any{id})
}

// ValueID returns the primary key of the first row whose column equals
// value.
func (db *DB) ValueID(ctx context.Context, table, column string, value any) (any, error) {
	return db.ValueIDMultiple(ctx, table, []string{column}, []any{value})
}

// ValueIDMultiple returns the primary key of the first row matching every
// column = value pair.
func (db *DB) ValueIDMultiple(ctx context.Context, table string, columns []string, values []any) (any, error) {
	const op = "ValueIDMultiple"
	if err := checkArity(columns, values); err != nil {
		return nil, err
	}

	schema, err := db.loadSchema(ctx, op, table)
	if err != nil {
		return nil, err
	}
	pk, err := schema.pk()
	if err != nil {
		return nil, err
	}
	where, err := db.whereClause(schema, columns)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s LIMIT 1",
		db.dialect.quoteIdent(pk), db.dialect.quoteIdent(table), where)
	return db.selectValue(ctx, op, query, values)
}

// ValueExists counts the rows of table whose column equals value. Zero
// matches is 0 with a nil error.
func (db *DB) ValueExists(ctx context.Context, table, column string, value any) (int64, error) {
	return db.ValueExistsMultiple(ctx, table, []string{column}, []any{value})
}

// ValueExistsMultiple counts the rows matching every column = value pair.
func (db *DB) ValueExistsMultiple(ctx context.Context, table string, columns []string, values []any) (int64, error) {
	const op = "ValueExistsMultiple"
	if err := checkArity(columns, values); err != nil {
		return 0, err
	}

	schema, err := db.loadSchema(ctx, op, table)
	if err != nil {
		return 0, err
	}
	where, err := db.whereClause(schema, columns)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", db.dialect.quoteIdent(table), where)

	var count int64
	err = db.withCursor(ctx, op, query, true, values, func(rows *sqlx.Rows) error {
		if rows.Next() {
			return rows.Scan(&count)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (db *DB) selectRows(ctx context.Context, op, query string, args []any) ([]Row, error) {
	var result []Row
	err := db.withCursor(ctx, op, query, true, args, func(rows *sqlx.Rows) error {
		var err error
		result, err = collectRows(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (db *DB) selectValue(ctx context.Context, op, query string, args []any) (any, error) {
	rows, err := db.selectRows(ctx, op, query, args)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrNotFound
	}
	return rows[0][0], nil
}

// whereClause joins "column = ?" conditions for validated columns.
func (db *DB) whereClause(schema *tableSchema, columns []string) (string, error) {
	resolved, err := schema.resolve(columns)
	if err != nil {
		return "", err
	}
	conditions := make([]string, 0, len(resolved))
	for _, column := range resolved {
		conditions = append(conditions, db.dialect.quoteIdent(column)+" = ?")
	}
	return strings.Join(conditions, " AND "), nil
}

func checkArity(columns []string, values []any) error {
	if len(columns) == 0 {
		return ErrEmptyColumns
	}
	if len(columns) != len(values) {
		return fmt.Errorf("%w: %d columns, %d values", ErrArityMismatch, len(columns), len(values))
	}
	return nil
}
