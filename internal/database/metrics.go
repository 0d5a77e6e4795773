// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"github.com/prometheus/client_golang/prometheus"
)

type MetricsCollector struct {
	db *DB

	statementsDesc *prometheus.Desc
	failuresDesc   *prometheus.Desc
	commitsDesc    *prometheus.Desc
	cacheHitsDesc  *prometheus.Desc
	cacheMissDesc  *prometheus.Desc
}

// NewMetricsCollector exports the statement counters of db.
func NewMetricsCollector(db *DB) *MetricsCollector {
	labels := prometheus.Labels{"engine": db.Dialect()}
	return &MetricsCollector{
		db: db,
		statementsDesc: prometheus.NewDesc(
			"dbconnector_statements_total",
			"Number of SQL statements sent to the database, including schema introspection",
			nil,
			labels,
		),
		failuresDesc: prometheus.NewDesc(
			"dbconnector_statement_failures_total",
			"Number of SQL statements the database rejected",
			nil,
			labels,
		),
		commitsDesc: prometheus.NewDesc(
			"dbconnector_commits_total",
			"Number of successful commits",
			nil,
			labels,
		),
		cacheHitsDesc: prometheus.NewDesc(
			"dbconnector_statement_cache_hits_total",
			"Number of statements served from the prepared statement cache",
			nil,
			labels,
		),
		cacheMissDesc: prometheus.NewDesc(
			"dbconnector_statement_cache_misses_total",
			"Number of statements that had to be prepared",
			nil,
			labels,
		),
	}
}

func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.statementsDesc
	ch <- c.failuresDesc
	ch <- c.commitsDesc
	ch <- c.cacheHitsDesc
	ch <- c.cacheMissDesc
}

func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.statementsDesc, prometheus.CounterValue, float64(c.db.statements.Load()))
	ch <- prometheus.MustNewConstMetric(c.failuresDesc, prometheus.CounterValue, float64(c.db.failures.Load()))
	ch <- prometheus.MustNewConstMetric(c.commitsDesc, prometheus.CounterValue, float64(c.db.commits.Load()))
	ch <- prometheus.MustNewConstMetric(c.cacheHitsDesc, prometheus.CounterValue, float64(c.db.cacheHits.Load()))
	ch <- prometheus.MustNewConstMetric(c.cacheMissDesc, prometheus.CounterValue, float64(c.db.cacheMisses.Load()))
}
