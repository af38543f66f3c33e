// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package advisor

// =============================================================================
// Prometheus Metrics
// =============================================================================

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "advisor",
		Subsystem: "orchestrator",
		Name:      "queries_total",
		Help:      "Total queries processed by category and status",
	}, []string{"category", "status"})

	toolInvocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "advisor",
		Subsystem: "orchestrator",
		Name:      "tool_invocations_total",
		Help:      "Total source collaborator invocations by tool and outcome",
	}, []string{"tool", "outcome"})

	queryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "advisor",
		Subsystem: "orchestrator",
		Name:      "query_duration_seconds",
		Help:      "End-to-end query processing latency",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	fusedFragments = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "advisor",
		Subsystem: "orchestrator",
		Name:      "fused_fragments",
		Help:      "Number of informative fragments entering fusion",
		Buckets:   []float64{0, 1, 2, 3, 4},
	})
)
