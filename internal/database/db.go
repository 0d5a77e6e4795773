// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package database is a query facade over a single MySQL (or SQLite)
// connection.
//
// CONNECTION LIFECYCLE:
//
// A DB starts Unconnected. Connect opens a dedicated connection and moves it
// to Connected, the only state in which operations run. Close moves it to
// Closed, which is terminal: later operations fail with ErrClosed and never
// reconnect.
//
// CURSORS:
//
// Every operation acquires at most one cursor (*sqlx.Rows) and releases it
// before returning, on success and error paths alike (see withCursor).
//
// TRANSACTIONS:
//
// Writes are not auto-committed. They accumulate in one pending transaction
// on the dedicated connection until Commit. Close discards uncommitted work.
//
// IDENTIFIERS AND VALUES:
//
// Values are always bound through placeholders. Table and column names are
// checked against the table's introspected columns before they are quoted
// into a statement.
//
// CONCURRENCY:
//
// A DB is meant for a single caller. Callers that share one must serialize
// their own access.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/autobrr/autobrr/pkg/ttlcache"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	// Register the database/sql drivers.
	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/tmdag/dbconnector/internal/dbinterface"
	"github.com/tmdag/dbconnector/internal/domain"
)

// State is the connection state of a DB.
type State int32

const (
	StateUnconnected State = iota
	StateConnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnconnected:
		return "unconnected"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

const (
	connectionSetupTimeout = 5 * time.Second
	stmtCacheTTL           = 5 * time.Minute
)

type DB struct {
	dialect Dialect
	dsn     string
	log     zerolog.Logger

	pool  *sqlx.DB
	conn  *sqlx.Conn
	stmts *ttlcache.Cache[string, *sqlx.Stmt]

	state State
	inTx  bool
	// dirty is set once a statement that may have written runs inside the
	// open transaction.
	dirty bool

	statements  atomic.Uint64
	failures    atomic.Uint64
	commits     atomic.Uint64
	cacheHits   atomic.Uint64
	cacheMisses atomic.Uint64
}

// State returns the current connection state.
func (db *DB) State() State {
	return db.state
}

// Connect opens the dedicated connection. Calling it on a connected DB is a
// no-op; calling it on a closed DB returns ErrClosed.
func (db *DB) Connect(ctx context.Context) (rerr error) {
	switch db.state {
	case StateConnected:
		return nil
	case StateClosed:
		return ErrClosed
	}

	db.log.Debug().Str("engine", db.dialect.String()).Str("dsn", redactDSN(db.dialect, db.dsn)).Msg("Connecting to database")

	raw, err := sql.Open(db.dialect.driverName(), db.dsn)
	if err != nil {
		return newConnectError(db.dialect.String(), err)
	}
	// One session per facade; the pool never needs a second connection.
	raw.SetMaxOpenConns(1)
	raw.SetMaxIdleConns(1)

	pool := sqlx.NewDb(raw, db.dialect.driverName())
	defer func() {
		if rerr != nil {
			rerr = errors.Join(rerr, pool.Close())
		}
	}()

	if err := pool.PingContext(ctx); err != nil {
		cerr := newConnectError(db.dialect.String(), err)
		db.log.Error().Err(err).Str("engine", db.dialect.String()).Msg("Could not connect to database")
		return cerr
	}

	conn, err := pool.Connx(ctx)
	if err != nil {
		return newConnectError(db.dialect.String(), err)
	}

	setupCtx, cancel := context.WithTimeout(ctx, connectionSetupTimeout)
	defer cancel()
	if err := applySessionSettings(setupCtx, db.dialect, conn); err != nil {
		_ = conn.Close()
		return newConnectError(db.dialect.String(), err)
	}

	db.pool = pool
	db.conn = conn
	db.stmts = newStmtCache()
	db.inTx = false
	db.dirty = false
	db.state = StateConnected

	db.log.Debug().Str("engine", db.dialect.String()).Msg("Connected to database successfully")
	return nil
}

func applySessionSettings(ctx context.Context, dialect Dialect, q dbinterface.Querier) error {
	for _, stmt := range dialect.sessionStatements() {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply session setting %q: %w", stmt, err)
		}
	}
	return nil
}

func newStmtCache() *ttlcache.Cache[string, *sqlx.Stmt] {
	opts := ttlcache.Options[string, *sqlx.Stmt]{}.SetDefaultTTL(stmtCacheTTL).
		SetDeallocationFunc(func(_ string, s *sqlx.Stmt, _ ttlcache.DeallocationReason) {
			if s != nil {
				_ = s.Close()
			}
		})
	return ttlcache.New(opts)
}

// Close releases the connection. Uncommitted writes are discarded. Close is
// idempotent and moves the DB to StateClosed even on error.
func (db *DB) Close() error {
	switch db.state {
	case StateClosed:
		return nil
	case StateUnconnected:
		db.state = StateClosed
		return nil
	}
	db.state = StateClosed

	var errs []error
	if db.inTx {
		if db.dirty {
			db.log.Warn().Msg("Closing connection with uncommitted changes, discarding them")
		}
		ctx, cancel := context.WithTimeout(context.Background(), connectionSetupTimeout)
		if _, err := db.conn.ExecContext(ctx, "ROLLBACK"); err != nil {
			errs = append(errs, fmt.Errorf("discard pending transaction: %w", err))
		}
		cancel()
		db.inTx = false
		db.dirty = false
	}

	// deallocation closes the cached statements before their connection goes
	db.stmts.Close()

	if err := db.conn.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close connection: %w", err))
	}
	if err := db.pool.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}

	db.log.Debug().Msg("Connection closed")
	return errors.Join(errs...)
}

// Commit makes all writes since the last commit permanent.
func (db *DB) Commit(ctx context.Context) error {
	if err := db.checkState(); err != nil {
		return err
	}
	if !db.inTx {
		db.log.Debug().Msg("Nothing to commit")
		return nil
	}

	db.log.Debug().Str("query", "COMMIT").Msg("EXECUTING")
	db.statements.Add(1)
	if _, err := db.conn.ExecContext(ctx, "COMMIT"); err != nil {
		return db.fail("commit", "COMMIT", err)
	}
	db.inTx = false
	db.dirty = false
	db.commits.Add(1)

	db.log.Debug().Msg("Changes saved to database")
	return nil
}

// WithConnection opens a facade from cfg, hands it to fn and closes it on
// every exit path. Pending writes are committed only if fn commits them.
func WithConnection(ctx context.Context, cfg *domain.Config, fn func(*DB) error, options ...Option) (rerr error) {
	db, err := NewFromConfig(cfg, options...)
	if err != nil {
		return err
	}
	if err := db.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		rerr = errors.Join(rerr, db.Close())
	}()

	return fn(db)
}

func (db *DB) checkState() error {
	switch db.state {
	case StateConnected:
		return nil
	case StateClosed:
		return ErrClosed
	default:
		return ErrNotConnected
	}
}

// ready checks the connection state and opens the pending transaction when
// the engine needs an explicit BEGIN.
func (db *DB) ready(ctx context.Context) error {
	if err := db.checkState(); err != nil {
		return err
	}
	if db.inTx {
		return nil
	}

	if db.dialect.explicitBegin() {
		db.log.Debug().Str("query", "BEGIN").Msg("EXECUTING")
		db.statements.Add(1)
		if _, err := db.conn.ExecContext(ctx, "BEGIN"); err != nil {
			return db.fail("begin", "BEGIN", err)
		}
	}
	db.inTx = true
	return nil
}

// getStmt returns a prepared statement for the given query, preparing and
// caching it on the dedicated connection if necessary. Statements are cached
// with TTL and closed on eviction.
func (db *DB) getStmt(ctx context.Context, query string) (*sqlx.Stmt, error) {
	if s, found := db.stmts.Get(query); found && s != nil {
		db.cacheHits.Add(1)
		return s, nil
	}
	db.cacheMisses.Add(1)

	s, err := db.conn.PreparexContext(ctx, query)
	if err != nil {
		return nil, err
	}

	db.stmts.Set(query, s, ttlcache.DefaultTTL)
	return s, nil
}

// withCursor runs query, hands the open cursor to fn and releases it before
// returning. Generated statements go through the prepared statement cache;
// raw statements run directly on the connection.
func (db *DB) withCursor(ctx context.Context, op, query string, prepared bool, args []any, fn func(*sqlx.Rows) error) error {
	if err := db.ready(ctx); err != nil {
		return err
	}

	db.log.Debug().Str("op", op).Str("query", query).Int("args", len(args)).Msg("EXECUTING")
	db.statements.Add(1)

	var (
		rows *sqlx.Rows
		err  error
	)
	if prepared {
		var stmt *sqlx.Stmt
		if stmt, err = db.getStmt(ctx, query); err == nil {
			rows, err = stmt.QueryxContext(ctx, args...)
		}
	} else {
		rows, err = db.conn.QueryxContext(ctx, query, args...)
	}
	if err != nil {
		return db.fail(op, query, err)
	}
	defer rows.Close()

	if err := fn(rows); err != nil {
		return db.fail(op, query, err)
	}
	if err := rows.Err(); err != nil {
		return db.fail(op, query, err)
	}
	return nil
}

// exec runs a generated statement that returns no rows.
func (db *DB) exec(ctx context.Context, op, query string, args []any) (sql.Result, error) {
	if err := db.ready(ctx); err != nil {
		return nil, err
	}

	db.log.Debug().Str("op", op).Str("query", query).Int("args", len(args)).Msg("EXECUTING")
	db.statements.Add(1)

	stmt, err := db.getStmt(ctx, query)
	if err != nil {
		return nil, db.fail(op, query, err)
	}
	res, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return nil, db.fail(op, query, err)
	}
	db.dirty = true
	return res, nil
}

func (db *DB) fail(op, query string, err error) error {
	db.failures.Add(1)
	db.log.Error().Err(err).Str("op", op).Str("query", query).Msg("Something went wrong")
	return &QueryError{Op: op, Query: query, Err: err}
}
