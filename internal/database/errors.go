// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrNotFound reports that a well-formed query matched no row.
	ErrNotFound = errors.New("no matching row")

	ErrNotConnected = errors.New("database not connected")
	ErrClosed       = errors.New("database connection closed")

	ErrArityMismatch = errors.New("number of columns and values mismatch")
	ErrEmptyColumns  = errors.New("at least one column is required")
	ErrUnknownTable  = errors.New("unknown table")
	ErrUnknownColumn = errors.New("unknown column")
	ErrNoPrimaryKey  = errors.New("table has no primary key")

	ErrTransactionControl = errors.New("transaction control statements are not allowed, use Commit")

	ErrAccessDenied    = errors.New("access denied for user")
	ErrUnknownDatabase = errors.New("database does not exist")
)

// MySQL server error numbers the facade distinguishes at connect time.
const (
	mysqlErrAccessDenied = 1045
	mysqlErrBadDB        = 1049
)

// QueryError wraps a driver failure raised while executing a statement.
type QueryError struct {
	Op    string
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// ConnectError is returned by Connect. Kind is ErrAccessDenied,
// ErrUnknownDatabase or nil when the failure could not be classified.
type ConnectError struct {
	Engine string
	Kind   error
	Err    error
}

func (e *ConnectError) Error() string {
	if e.Kind != nil {
		return fmt.Sprintf("connect to %s database: %v: %v", e.Engine, e.Kind, e.Err)
	}
	return fmt.Sprintf("connect to %s database: %v", e.Engine, e.Err)
}

func (e *ConnectError) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}

func newConnectError(engine string, err error) *ConnectError {
	return &ConnectError{
		Engine: engine,
		Kind:   classifyConnectError(err),
		Err:    err,
	}
}

func classifyConnectError(err error) error {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return nil
	}

	switch mysqlErr.Number {
	case mysqlErrAccessDenied:
		return ErrAccessDenied
	case mysqlErrBadDB:
		return ErrUnknownDatabase
	default:
		return nil
	}
}
