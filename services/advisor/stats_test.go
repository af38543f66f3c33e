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
	"math"
	"sync"
	"testing"
	"time"

	"github.com/AleutianAI/AleutianAdvisor/services/advisor/query"
)

func TestStatsRecorderAverage(t *testing.T) {
	r := NewStatsRecorder()
	for _, d := range []time.Duration{200 * time.Millisecond, 400 * time.Millisecond, 600 * time.Millisecond} {
		r.Record(QueryOutcome{Category: query.CategoryGeneralAdvice, Duration: d})
	}

	snap := r.Snapshot()
	if math.Abs(snap.AverageResponseTime-0.4) > 1e-12 {
		t.Errorf("AverageResponseTime = %v, want 0.4", snap.AverageResponseTime)
	}
	if snap.TotalQueries != 3 || snap.SuccessfulQueries != 3 {
		t.Errorf("unexpected counters: %+v", snap)
	}
}

func TestStatsRecorderEmptyAverage(t *testing.T) {
	snap := NewStatsRecorder().Snapshot()
	if snap.AverageResponseTime != 0 {
		t.Errorf("empty recorder average = %v, want 0", snap.AverageResponseTime)
	}
}

func TestStatsRecorderFailuresAndCategories(t *testing.T) {
	r := NewStatsRecorder()
	r.Record(QueryOutcome{Category: query.CategoryInvestmentAdvice, ToolsUsed: []string{"tavily_search", "rag_query"}})
	r.Record(QueryOutcome{Category: query.CategoryInvestmentAdvice, Failed: true})
	r.Record(QueryOutcome{Category: query.CategoryTaxPlanning, ToolsUsed: []string{"rag_query"}})

	snap := r.Snapshot()
	if snap.TotalQueries != 3 || snap.SuccessfulQueries != 2 || snap.FailedQueries != 1 {
		t.Errorf("unexpected counters: %+v", snap)
	}
	if snap.QueryCategories["investment_advice"] != 2 || snap.QueryCategories["tax_planning"] != 1 {
		t.Errorf("categories = %v", snap.QueryCategories)
	}
	if snap.ToolUsage["rag_query"] != 2 || snap.ToolUsage["tavily_search"] != 1 {
		t.Errorf("tool usage = %v", snap.ToolUsage)
	}
}

func TestStatsRecorderReset(t *testing.T) {
	r := NewStatsRecorder()
	r.Record(QueryOutcome{Category: query.CategoryGeneralAdvice, Duration: time.Second})
	r.Reset()

	snap := r.Snapshot()
	if snap.TotalQueries != 0 || snap.AverageResponseTime != 0 || len(snap.QueryCategories) != 0 {
		t.Errorf("reset left state behind: %+v", snap)
	}
}

func TestStatsRecorderConcurrent(t *testing.T) {
	r := NewStatsRecorder()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Record(QueryOutcome{
				Category:  query.CategoryGeneralAdvice,
				ToolsUsed: []string{"rag_query"},
				Duration:  10 * time.Millisecond,
			})
		}()
	}
	wg.Wait()

	snap := r.Snapshot()
	if snap.TotalQueries != 50 {
		t.Errorf("TotalQueries = %d, want 50", snap.TotalQueries)
	}
	if snap.ToolUsage["rag_query"] != 50 {
		t.Errorf("tool usage = %v", snap.ToolUsage)
	}
}
