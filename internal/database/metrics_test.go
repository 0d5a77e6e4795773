// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCollector(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, _ := newTestDB(t)

	_, err := db.InsertValue(ctx, "cameras", "cameraName", "GoPro")
	require.NoError(t, err)
	require.NoError(t, db.Commit(ctx))
	_, err = db.Raw(ctx, "SELEC 1")
	require.Error(t, err)

	collector := NewMetricsCollector(db)
	registry := prometheus.NewPedanticRegistry()
	require.NoError(t, registry.Register(collector))

	assert.Equal(t, 5, testutil.CollectAndCount(collector))

	expected := `
# HELP dbconnector_commits_total Number of successful commits
# TYPE dbconnector_commits_total counter
dbconnector_commits_total{engine="sqlite"} 1
# HELP dbconnector_statement_failures_total Number of SQL statements the database rejected
# TYPE dbconnector_statement_failures_total counter
dbconnector_statement_failures_total{engine="sqlite"} 1
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"dbconnector_commits_total", "dbconnector_statement_failures_total"))

	families, err := registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() == "dbconnector_statements_total" {
			assert.Equal(t, float64(db.statements.Load()), family.GetMetric()[0].GetCounter().GetValue())
		}
	}
}

func TestStatementCacheCounters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, _ := newTestDB(t)

	_, err := db.ValueExists(ctx, "software", "softwareName", "Houdini")
	require.NoError(t, err)
	misses := db.cacheMisses.Load()
	hits := db.cacheHits.Load()
	assert.Positive(t, misses)

	// the same operation again is served entirely from the cache
	_, err = db.ValueExists(ctx, "software", "softwareName", "Nuke")
	require.NoError(t, err)
	assert.Equal(t, misses, db.cacheMisses.Load())
	assert.Greater(t, db.cacheHits.Load(), hits)

	expected := fmt.Sprintf(`
# HELP dbconnector_statement_cache_misses_total Number of statements that had to be prepared
# TYPE dbconnector_statement_cache_misses_total counter
dbconnector_statement_cache_misses_total{engine="sqlite"} %d
`, misses)
	require.NoError(t, testutil.CollectAndCompare(NewMetricsCollector(db), strings.NewReader(expected),
		"dbconnector_statement_cache_misses_total"))
}
