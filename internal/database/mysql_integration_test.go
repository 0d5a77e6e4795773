// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mysqlTestDSN(t *testing.T) string {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("DBCONNECTOR_TEST_MYSQL_DSN"))
	if dsn == "" {
		t.Skip("DBCONNECTOR_TEST_MYSQL_DSN not set")
	}
	return dsn
}

func TestMySQLRoundTrip(t *testing.T) {
	dsn := mysqlTestDSN(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	cfg.ClientFoundRows = true

	db, err := New(OpenOptions{Engine: "mysql", MySQLDSN: cfg.FormatDSN()})
	require.NoError(t, err)
	require.NoError(t, db.Connect(ctx))
	defer db.Close()

	table := fmt.Sprintf("cameras_%d", time.Now().UnixNano())
	_, err = db.Raw(ctx, fmt.Sprintf(
		"CREATE TABLE %s (cameraID INT AUTO_INCREMENT PRIMARY KEY, cameraName VARCHAR(64) NOT NULL, megapixels DOUBLE)",
		DialectMySQL.quoteIdent(table)))
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = db.Raw(context.Background(), "DROP TABLE IF EXISTS "+DialectMySQL.quoteIdent(table))
	})

	tables, err := db.ListTables(ctx)
	require.NoError(t, err)
	assert.Contains(t, tables, table)

	pk, err := db.PrimaryKey(ctx, table)
	require.NoError(t, err)
	assert.Equal(t, "cameraID", pk)

	id, err := db.InsertRow(ctx, table, []string{"cameraName", "megapixels"}, []any{"GoPro", 12.3})
	require.NoError(t, err)

	gotID, err := db.ValueID(ctx, table, "cameraName", "GoPro")
	require.NoError(t, err)
	assert.Equal(t, id, gotID)

	row, err := db.RowByID(ctx, table, id)
	require.NoError(t, err)
	assert.Equal(t, Row{id, "GoPro", 12.3}, row)

	affected, err := db.UpdateValue(ctx, table, id, "cameraName", "GoPro")
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected, "unchanged rows still count as matched")

	require.NoError(t, db.Commit(ctx))

	affected, err = db.RemoveByID(ctx, table, id)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	count, err := db.ValueExists(ctx, table, "cameraName", "GoPro")
	require.NoError(t, err)
	assert.Zero(t, count)
	require.NoError(t, db.Commit(ctx))
}

func TestMySQLAccessDenied(t *testing.T) {
	dsn := mysqlTestDSN(t)

	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	cfg.Passwd = cfg.Passwd + "-wrong"

	db, err := New(OpenOptions{Engine: "mysql", MySQLDSN: cfg.FormatDSN()})
	require.NoError(t, err)

	err = db.Connect(context.Background())
	require.ErrorIs(t, err, ErrAccessDenied)
	assert.Equal(t, StateUnconnected, db.State())
}

func TestMySQLUnknownDatabase(t *testing.T) {
	dsn := mysqlTestDSN(t)

	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	cfg.DBName = fmt.Sprintf("dbconnector_missing_%d", time.Now().UnixNano())

	db, err := New(OpenOptions{Engine: "mysql", MySQLDSN: cfg.FormatDSN()})
	require.NoError(t, err)

	err = db.Connect(context.Background())
	require.ErrorIs(t, err, ErrUnknownDatabase)
}
