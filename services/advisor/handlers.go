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
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianAdvisor/services/advisor/contextparse"
)

// =============================================================================
// HTTP Handlers
// =============================================================================

// ErrorResponse is the JSON error envelope for all advisor endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// QueryProcessor is the slice of the orchestrator the handlers need.
type QueryProcessor interface {
	Process(ctx context.Context, question string) (*OrchestrationResult, error)
}

// QueryRequest is the body of POST /v1/advisor/query and /query/stream.
type QueryRequest struct {
	Question string `json:"question" binding:"required"`
}

// ParseContextRequest is the body of POST /v1/advisor/context/parse.
// Source optionally names a kind ("tavily", "arxiv", "yfinance",
// "ai_rag") to bypass classification.
type ParseContextRequest struct {
	Context string `json:"context" binding:"required"`
	Source  string `json:"source"`
}

// ParseContextResponse carries the parsed records plus the display
// rendering downstream layers consume.
type ParseContextResponse struct {
	Source          string                      `json:"source"`
	RecordCount     int                         `json:"record_count"`
	Records         []contextparse.ParsedRecord `json:"records"`
	Generic         map[string][]string         `json:"generic,omitempty"`
	FormattedOutput string                      `json:"formatted_output"`
}

// Handlers holds the dependencies for the advisor HTTP endpoints.
type Handlers struct {
	proc           QueryProcessor
	parser         *contextparse.Parser
	stats          *StatsRecorder
	toolsAvailable int
	logger         *slog.Logger
}

// NewHandlers creates the handler set. toolsAvailable is the number of
// configured source collaborators, reported by the health endpoint.
func NewHandlers(proc QueryProcessor, parser *contextparse.Parser, stats *StatsRecorder, toolsAvailable int, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		proc:           proc,
		parser:         parser,
		stats:          stats,
		toolsAvailable: toolsAvailable,
		logger:         logger,
	}
}

// HandleQuery handles POST /v1/advisor/query.
func (h *Handlers) HandleQuery(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := h.logger.With(slog.String("request_id", requestID), slog.String("handler", "HandleQuery"))

	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "question is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	result, err := h.proc.Process(c.Request.Context(), req.Question)
	if err != nil {
		logger.Error("query processing failed", slog.String("error", err.Error()))
		if errors.Is(err, ErrNoCollaborators) {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Error: "no source collaborators configured",
				Code:  "NO_COLLABORATORS",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "query processing failed",
			Code:  "ORCHESTRATION_FAILED",
		})
		return
	}

	logger.Info("query answered",
		slog.String("query_id", result.QueryID),
		slog.String("category", string(result.Category)),
	)
	c.JSON(http.StatusOK, result)
}

// HandleQueryStream handles POST /v1/advisor/query/stream.
//
// Emits the scripted progress sequence as server-sent events. The
// sequence is synthetic display output, not real orchestration progress.
func (h *Handlers) HandleQueryStream(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "question is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	events := make(chan StreamEvent)
	go func() {
		defer close(events)
		_ = Stream(c.Request.Context(), func(ev StreamEvent) bool {
			select {
			case events <- ev:
				return true
			case <-c.Request.Context().Done():
				return false
			}
		})
	}()

	c.Stream(func(w io.Writer) bool {
		ev, ok := <-events
		if !ok {
			return false
		}
		c.SSEvent("chunk", ev)
		return !ev.IsFinal
	})
}

// HandleParseContext handles POST /v1/advisor/context/parse.
func (h *Handlers) HandleParseContext(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := h.logger.With(slog.String("request_id", requestID), slog.String("handler", "HandleParseContext"))

	var req ParseContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "context is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	var hint *contextparse.SourceKind
	if req.Source != "" {
		kind, ok := contextparse.KindFromName(req.Source)
		if !ok {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "unknown source: " + req.Source,
				Code:  "UNKNOWN_SOURCE",
			})
			return
		}
		hint = &kind
	}

	parsed, err := h.parser.Parse(c.Request.Context(), req.Context, hint)
	if err != nil {
		logger.Error("context parse failed", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: err.Error(),
			Code:  "EXTRACTION_FAILED",
		})
		return
	}

	formatted, err := h.parser.Format(parsed)
	if err != nil {
		logger.Error("context format failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Code:  "FORMAT_FAILED",
		})
		return
	}

	c.JSON(http.StatusOK, ParseContextResponse{
		Source:          parsed.Source,
		RecordCount:     parsed.RecordCount,
		Records:         parsed.Records,
		Generic:         parsed.Generic,
		FormattedOutput: formatted,
	})
}

// HandleAnalytics handles GET /v1/advisor/analytics.
func (h *Handlers) HandleAnalytics(c *gin.Context) {
	c.JSON(http.StatusOK, h.stats.Snapshot())
}

// HandleResetAnalytics handles POST /v1/advisor/analytics/reset.
func (h *Handlers) HandleResetAnalytics(c *gin.Context) {
	h.stats.Reset()
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

// HandleHealth handles GET /v1/advisor/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	status := "healthy"
	if h.toolsAvailable == 0 {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          status,
		"tools_available": h.toolsAvailable,
	})
}

// HandleReady handles GET /v1/advisor/ready.
func (h *Handlers) HandleReady(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ready": true})
}

// getOrCreateRequestID returns the inbound X-Request-ID or mints one.
func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}
