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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianAdvisor/services/advisor/contextparse"
)

type fakeProcessor struct {
	result *OrchestrationResult
	err    error
}

func (f *fakeProcessor) Process(ctx context.Context, question string) (*OrchestrationResult, error) {
	return f.result, f.err
}

func newTestRouter(proc QueryProcessor) (*gin.Engine, *StatsRecorder) {
	gin.SetMode(gin.TestMode)
	stats := NewStatsRecorder()
	handlers := NewHandlers(proc, contextparse.NewParser(nil), stats, 4, nil)

	router := gin.New()
	RegisterRoutes(router.Group("/v1"), handlers)
	return router, stats
}

func TestHandleQuerySuccess(t *testing.T) {
	proc := &fakeProcessor{result: &OrchestrationResult{
		QueryID:    "q-1",
		Response:   "Based on my analysis using multiple sources:\n\nCurrent Information: x",
		ToolsUsed:  []string{"tavily_search"},
		Confidence: 0.85,
		Category:   "general_advice",
	}}
	router, _ := newTestRouter(proc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/advisor/query",
		strings.NewReader(`{"question":"what about dividends"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var got OrchestrationResult
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if got.QueryID != "q-1" || got.Confidence != 0.85 {
		t.Errorf("unexpected response: %+v", got)
	}
}

func TestHandleQueryValidation(t *testing.T) {
	router, _ := newTestRouter(&fakeProcessor{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/advisor/query", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error JSON: %v", err)
	}
	if resp.Code != "INVALID_REQUEST" {
		t.Errorf("error code = %q", resp.Code)
	}
}

func TestHandleQueryNoCollaborators(t *testing.T) {
	router, _ := newTestRouter(&fakeProcessor{err: ErrNoCollaborators})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/advisor/query",
		strings.NewReader(`{"question":"anything"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestHandleParseContext(t *testing.T) {
	router, _ := newTestRouter(&fakeProcessor{})

	body := `{"context":"<result><title>Dividend Guide</title><content>Yield basics.</content><url>https://example.com</url></result>"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/advisor/context/parse", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ParseContextResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Source != "tavily" {
		t.Errorf("source = %q, want tavily", resp.Source)
	}
	if resp.RecordCount != 1 {
		t.Errorf("record_count = %d, want 1", resp.RecordCount)
	}
	if !strings.Contains(resp.FormattedOutput, "Dividend Guide") {
		t.Errorf("formatted output missing title: %q", resp.FormattedOutput)
	}
}

func TestHandleParseContextUnknownSource(t *testing.T) {
	router, _ := newTestRouter(&fakeProcessor{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/advisor/context/parse",
		strings.NewReader(`{"context":"text","source":"bloomberg"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleAnalyticsAndReset(t *testing.T) {
	router, stats := newTestRouter(&fakeProcessor{})
	stats.Record(QueryOutcome{Category: "general_advice"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/advisor/analytics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("analytics status = %d", w.Code)
	}
	var snap AnalyticsSnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("invalid analytics JSON: %v", err)
	}
	if snap.TotalQueries != 1 {
		t.Errorf("total_queries = %d, want 1", snap.TotalQueries)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/advisor/analytics/reset", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("reset status = %d", w.Code)
	}
	if stats.Snapshot().TotalQueries != 0 {
		t.Error("reset did not clear counters")
	}
}

func TestHandleHealth(t *testing.T) {
	router, _ := newTestRouter(&fakeProcessor{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/advisor/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"healthy"`) {
		t.Errorf("unexpected health body: %s", w.Body.String())
	}
}
