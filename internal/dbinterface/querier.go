// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package dbinterface provides database interfaces and statement helpers
// shared by the facade, the test fixtures and the CLI. It has no
// dependencies beyond database/sql.
package dbinterface

import (
	"context"
	"database/sql"
)

// Querier is the minimal interface for running statements.
// It is implemented by *sql.DB, *sql.Conn, *sql.Tx and the sqlx wrappers.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}
