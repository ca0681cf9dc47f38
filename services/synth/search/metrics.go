// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package search

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "pbesynth"
	metricsSubsystem = "search"
)

// knownStrategies contains the valid strategy label values. Anything else
// is recorded as "unknown" to keep label cardinality bounded.
var knownStrategies = map[Strategy]bool{
	StrategyTopDown:  true,
	StrategyBottomUp: true,
}

func sanitizeStrategy(s Strategy) string {
	if knownStrategies[s] {
		return string(s)
	}
	return "unknown"
}

// Metrics holds the Prometheus collectors for search runs.
//
// Thread Safety: Safe for concurrent use.
type Metrics struct {
	// RunsTotal counts runs by strategy and outcome ("found", "not_found",
	// "error").
	RunsTotal *prometheus.CounterVec

	// GeneratedTotal counts candidates built, by strategy.
	GeneratedTotal *prometheus.CounterVec

	// EvaluatedTotal counts oracle checks, by strategy.
	EvaluatedTotal *prometheus.CounterVec

	// PrunedTotal counts behavioral duplicates discarded by bottom-up runs.
	PrunedTotal prometheus.Counter

	// DurationSeconds measures run wall time, by strategy.
	DurationSeconds *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
//
// Inputs:
//   - reg: Registry to register with. Tests pass prometheus.NewRegistry().
//
// Outputs:
//   - *Metrics: The collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "runs_total",
				Help:      "Total search runs by strategy and outcome",
			},
			[]string{"strategy", "outcome"},
		),
		GeneratedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "candidates_generated_total",
				Help:      "Total candidate programs built by strategy",
			},
			[]string{"strategy"},
		),
		EvaluatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "candidates_evaluated_total",
				Help:      "Total candidate programs checked against the examples by strategy",
			},
			[]string{"strategy"},
		),
		PrunedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "candidates_pruned_total",
				Help:      "Total candidates discarded as observationally equivalent",
			},
		),
		DurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "duration_seconds",
				Help:      "Search run duration in seconds",
				Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
			},
			[]string{"strategy"},
		),
	}
}

var (
	defaultMetricsOnce sync.Once
	defaultMetrics     *Metrics
)

// DefaultMetrics returns collectors registered with the default registry.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		defaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// RecordRun records one finished run. A nil result with a non-nil error
// counts as outcome "error".
func (m *Metrics) RecordRun(strategy Strategy, result *Result, err error) {
	if m == nil {
		return
	}
	label := sanitizeStrategy(strategy)
	if err != nil || result == nil {
		m.RunsTotal.WithLabelValues(label, "error").Inc()
		return
	}

	m.RunsTotal.WithLabelValues(label, result.Outcome()).Inc()
	m.GeneratedTotal.WithLabelValues(label).Add(float64(result.Stats.Generated))
	m.EvaluatedTotal.WithLabelValues(label).Add(float64(result.Stats.Evaluated))
	m.PrunedTotal.Add(float64(result.Stats.Pruned))
	m.DurationSeconds.WithLabelValues(label).Observe(result.Stats.Elapsed.Seconds())
}
