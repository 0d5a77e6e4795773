// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tmdag/dbconnector/internal/database"
)

type Manager struct {
	registry  *prometheus.Registry
	collector *database.MetricsCollector
}

func NewManager(db *database.DB) *Manager {
	registry := prometheus.NewRegistry()

	collector := database.NewMetricsCollector(db)
	registry.MustRegister(collector)

	return &Manager{
		registry:  registry,
		collector: collector,
	}
}

func (m *Manager) GetRegistry() *prometheus.Registry {
	return m.registry
}

// WriteText prints every gathered sample as "name value", one per line.
func (m *Manager) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return err
	}

	for _, family := range families {
		for _, metric := range family.GetMetric() {
			var value float64
			switch {
			case metric.GetCounter() != nil:
				value = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				value = metric.GetGauge().GetValue()
			default:
				continue
			}
			if _, err := fmt.Fprintf(w, "%s %.0f\n", family.GetName(), value); err != nil {
				return err
			}
		}
	}
	return nil
}
