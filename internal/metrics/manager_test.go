// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"bytes"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmdag/dbconnector/internal/database"
	"github.com/tmdag/dbconnector/internal/testdb"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.NewFromConfig(testdb.Config(testdb.PathFromTemplate(t, "metrics", "metrics.db")))
	require.NoError(t, err)
	require.NoError(t, db.Connect(context.Background()))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestManager_GetRegistry(t *testing.T) {
	manager := NewManager(newTestDB(t))

	registry := manager.GetRegistry()
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Equal(t, 5, testutil.CollectAndCount(registry))
}

func TestManager_RegistryIsolation(t *testing.T) {
	db := newTestDB(t)
	manager1 := NewManager(db)
	manager2 := NewManager(db)

	assert.NotSame(t, manager1.registry, manager2.registry, "Each manager should have its own registry")
	assert.NotSame(t, manager1.collector, manager2.collector, "Each manager should have its own collector")
}

func TestManager_WriteText(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	_, err := db.InsertValue(ctx, "cameras", "cameraName", "GoPro")
	require.NoError(t, err)
	require.NoError(t, db.Commit(ctx))

	var buf bytes.Buffer
	require.NoError(t, NewManager(db).WriteText(&buf))

	output := buf.String()
	assert.Contains(t, output, "dbconnector_commits_total 1\n")
	assert.Contains(t, output, "dbconnector_statement_failures_total 0\n")
	assert.Contains(t, output, "dbconnector_statements_total ")
	assert.Contains(t, output, "dbconnector_statement_cache_misses_total ")
}
