// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"fmt"
	"strings"
	"time"
)

type Dialect string

const (
	DialectMySQL  Dialect = "mysql"
	DialectSQLite Dialect = "sqlite"
)

const defaultBusyTimeout = 5 * time.Second

func (d Dialect) String() string {
	return string(d)
}

func parseDialect(raw string) (Dialect, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch normalized {
	case "", string(DialectMySQL), "mariadb":
		return DialectMySQL, nil
	case string(DialectSQLite), "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database engine %q", raw)
	}
}

// Dialect returns the engine the facade was opened for.
func (db *DB) Dialect() string {
	if db == nil || db.dialect == "" {
		return string(DialectMySQL)
	}
	return db.dialect.String()
}

func (d Dialect) driverName() string {
	if d == DialectSQLite {
		return "sqlite"
	}
	return "mysql"
}

// quoteIdent quotes an identifier that has already been validated against
// the introspected schema.
func (d Dialect) quoteIdent(name string) string {
	if d == DialectSQLite {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (d Dialect) quoteIdents(names []string) string {
	quoted := make([]string, 0, len(names))
	for _, name := range names {
		quoted = append(quoted, d.quoteIdent(name))
	}
	return strings.Join(quoted, ", ")
}

func (d Dialect) listTablesQuery() string {
	if d == DialectSQLite {
		return `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY name`
	}
	return "SHOW TABLES"
}

// tableColumnsQuery selects (column name, is primary key) in ordinal order
// for the table bound to the single placeholder.
func (d Dialect) tableColumnsQuery() string {
	if d == DialectSQLite {
		return `
		SELECT name, CASE WHEN pk = 1 THEN 1 ELSE 0 END
		FROM pragma_table_info(?)
		ORDER BY cid`
	}
	return `
		SELECT COLUMN_NAME, CASE WHEN COLUMN_KEY = 'PRI' THEN 1 ELSE 0 END
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE()
		  AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`
}

// sessionStatements run once on the dedicated connection right after it is
// acquired.
func (d Dialect) sessionStatements() []string {
	if d == DialectSQLite {
		return []string{
			"PRAGMA journal_mode = WAL",
			"PRAGMA foreign_keys = ON",
			fmt.Sprintf("PRAGMA busy_timeout = %d", int(defaultBusyTimeout/time.Millisecond)),
		}
	}
	return []string{
		"SET autocommit = 0",
		"SET time_zone = '+00:00'",
	}
}

// explicitBegin reports whether a transaction must be opened by statement.
// MySQL sessions run with autocommit disabled, so every statement already
// joins the pending transaction.
func (d Dialect) explicitBegin() bool {
	return d == DialectSQLite
}
