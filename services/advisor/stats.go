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

import (
	"sync"
	"time"

	"github.com/AleutianAI/AleutianAdvisor/services/advisor/query"
)

// =============================================================================
// Usage Statistics
// =============================================================================

// QueryOutcome is one finished query as seen by the stats recorder.
type QueryOutcome struct {
	Category  query.Category
	ToolsUsed []string
	Duration  time.Duration
	Failed    bool
}

// AnalyticsSnapshot is a point-in-time copy of the recorder's counters.
type AnalyticsSnapshot struct {
	TotalQueries        int64            `json:"total_queries"`
	SuccessfulQueries   int64            `json:"successful_queries"`
	FailedQueries       int64            `json:"failed_queries"`
	AverageResponseTime float64          `json:"average_response_time"`
	ToolUsage           map[string]int64 `json:"most_used_tools"`
	QueryCategories     map[string]int64 `json:"query_categories"`
}

// StatsRecorder aggregates per-query usage counters and response-time
// samples.
//
// # Description
//
// The recorder is an explicit instance created in main and passed by
// handle to the orchestrator and handlers; there is no package-level
// state. The average response time is recomputed on every Snapshot as
// the arithmetic mean over all samples since the last Reset. The sample
// list grows without bound between resets.
//
// # Thread Safety
//
// Safe for concurrent use. All operations serialize on one mutex.
type StatsRecorder struct {
	mu sync.Mutex

	totalQueries      int64
	successfulQueries int64
	failedQueries     int64
	toolUsage         map[string]int64
	queryCategories   map[string]int64
	responseTimes     []float64
}

// NewStatsRecorder creates an empty StatsRecorder.
func NewStatsRecorder() *StatsRecorder {
	return &StatsRecorder{
		toolUsage:       make(map[string]int64),
		queryCategories: make(map[string]int64),
	}
}

// Record folds one finished query into the counters.
func (r *StatsRecorder) Record(outcome QueryOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.totalQueries++
	if outcome.Failed {
		r.failedQueries++
	} else {
		r.successfulQueries++
	}
	if outcome.Category != "" {
		r.queryCategories[string(outcome.Category)]++
	}
	for _, tool := range outcome.ToolsUsed {
		r.toolUsage[tool]++
	}
	r.responseTimes = append(r.responseTimes, outcome.Duration.Seconds())
}

// Snapshot returns a copy of the current counters. The maps in the
// snapshot are owned by the caller.
func (r *StatsRecorder) Snapshot() AnalyticsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	var avg float64
	if len(r.responseTimes) > 0 {
		var sum float64
		for _, t := range r.responseTimes {
			sum += t
		}
		avg = sum / float64(len(r.responseTimes))
	}

	tools := make(map[string]int64, len(r.toolUsage))
	for k, v := range r.toolUsage {
		tools[k] = v
	}
	categories := make(map[string]int64, len(r.queryCategories))
	for k, v := range r.queryCategories {
		categories[k] = v
	}

	return AnalyticsSnapshot{
		TotalQueries:        r.totalQueries,
		SuccessfulQueries:   r.successfulQueries,
		FailedQueries:       r.failedQueries,
		AverageResponseTime: avg,
		ToolUsage:           tools,
		QueryCategories:     categories,
	}
}

// Reset clears all counters and samples.
func (r *StatsRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.totalQueries = 0
	r.successfulQueries = 0
	r.failedQueries = 0
	r.toolUsage = make(map[string]int64)
	r.queryCategories = make(map[string]int64)
	r.responseTimes = nil
}
