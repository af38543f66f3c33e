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
// Tool Orchestration: Fan-Out/Fan-In Over Source Collaborators
// =============================================================================
//
// Each query fans out to up to four independent source collaborators:
//
//	1. Web search          - always attempted when configured.
//	2. Academic search     - always attempted when configured.
//	3. Market data lookup  - only when the detector finds a candidate
//	                         symbol; uses the first survivor.
//	4. Knowledge base      - always attempted when configured.
//
// Invocations run concurrently and converge at a barrier before fusion.
// One branch's failure never cancels or corrupts the others: failures are
// captured per slot, logged, and excluded from the informative subset.
// The only terminal error is having no collaborator to invoke at all.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianAdvisor/services/advisor/config"
	"github.com/AleutianAI/AleutianAdvisor/services/advisor/query"
	"github.com/AleutianAI/AleutianAdvisor/services/advisor/tools"
)

var orchestratorTracer = otel.Tracer("aleutian.advisor.orchestrator")

// Tool identifiers as reported in ToolsUsed and usage analytics.
const (
	toolWebSearch   = "tavily_search"
	toolPaperSearch = "arxiv_search"
	toolMarketData  = "yfinance_data"
	toolKnowledge   = "rag_query"
)

// Fragment labels, fixed per source.
const (
	labelKnowledge = "Knowledge Base (PDFs)"
	labelWeb       = "Current Information"
	labelPapers    = "Academic Research"
)

// defaultConfidence is reported when the knowledge base produced no
// usable retrieval score.
const defaultConfidence = 0.85

// ErrNoCollaborators is returned when the orchestrator has no source
// collaborator configured at all.
var ErrNoCollaborators = errors.New("no source collaborators configured")

// ContextItem is one provenance note attached to an orchestration result.
type ContextItem struct {
	Content string `json:"content"`
	Type    string `json:"type"`
}

// OrchestrationResult is the full outcome of one processed query.
type OrchestrationResult struct {
	QueryID        string         `json:"query_id"`
	Response       string         `json:"response"`
	Context        []ContextItem  `json:"context"`
	ToolsUsed      []string       `json:"tools_used"`
	Confidence     float64        `json:"confidence"`
	ProcessingTime float64        `json:"processing_time"`
	Category       query.Category `json:"category"`
}

// Collaborators bundles the source collaborators the orchestrator fans
// out to. Any field may be nil; a nil collaborator is simply never
// attempted.
type Collaborators struct {
	Web       tools.WebSearcher
	Papers    tools.PaperSearcher
	Market    tools.MarketDataProvider
	Knowledge tools.KnowledgeBase
}

// Orchestrator coordinates the per-query fan-out, fusion, and stats
// recording.
//
// # Thread Safety
//
// Safe for concurrent use. All mutable per-query state is local to
// Process; shared state lives in the StatsRecorder, which synchronizes
// internally.
type Orchestrator struct {
	collab      Collaborators
	detector    *query.Detector
	categorizer *query.Categorizer
	stats       *StatsRecorder
	logger      *slog.Logger
}

// NewOrchestrator builds an Orchestrator from the given collaborators.
// The detector and categorizer are constructed from the embedded rule
// config. stats must not be nil.
func NewOrchestrator(ctx context.Context, collab Collaborators, stats *StatsRecorder, logger *slog.Logger) (*Orchestrator, error) {
	if stats == nil {
		return nil, errors.New("orchestrator: stats recorder is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg, err := config.GetAdvisorConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load advisor config: %w", err)
	}
	return &Orchestrator{
		collab:      collab,
		detector:    query.NewDetector(cfg),
		categorizer: query.NewCategorizer(cfg),
		stats:       stats,
		logger:      logger,
	}, nil
}

// slotResult captures one collaborator invocation after the barrier.
type slotResult struct {
	attempted   bool
	informative bool
	label       string
	content     string
	contextNote string
	sources     []string
	score       float64
	scored      bool
}

// Slot indices; fixed invocation order.
const (
	slotWeb = iota
	slotPapers
	slotMarket
	slotKnowledge
	slotCount
)

// Process runs one query through the full fan-out/fan-in cycle.
//
// # Description
//
// Classifies the question, scans for candidate symbols, invokes the
// configured collaborators concurrently, and fuses the informative
// subset into one narrative. Per-source failures are swallowed here;
// the returned error is non-nil only when no collaborator exists to
// invoke (ErrNoCollaborators).
func (o *Orchestrator) Process(ctx context.Context, question string) (*OrchestrationResult, error) {
	start := time.Now()
	queryID := uuid.NewString()

	ctx, span := orchestratorTracer.Start(ctx, "orchestrator.Process")
	defer span.End()
	span.SetAttributes(attribute.String("query_id", queryID))

	category := o.categorizer.Categorize(question)
	symbols := o.detector.Scan(question)
	span.SetAttributes(
		attribute.String("category", string(category)),
		attribute.Int("candidate_symbols", len(symbols)),
	)

	o.logger.Info("processing query",
		slog.String("query_id", queryID),
		slog.String("category", string(category)),
		slog.Int("candidate_symbols", len(symbols)),
	)

	var slots [slotCount]slotResult
	var toolsUsed []string

	g, gctx := errgroup.WithContext(ctx)

	if o.collab.Web != nil {
		slots[slotWeb].attempted = true
		toolsUsed = append(toolsUsed, toolWebSearch)
		g.Go(func() error {
			out, err := o.collab.Web.Search(gctx, question)
			o.settleText(&slots[slotWeb], toolWebSearch, out, err,
				labelWeb, "Search results from Tavily", "Error")
			return nil
		})
	}

	if o.collab.Papers != nil {
		slots[slotPapers].attempted = true
		toolsUsed = append(toolsUsed, toolPaperSearch)
		g.Go(func() error {
			out, err := o.collab.Papers.Search(gctx, question)
			o.settleText(&slots[slotPapers], toolPaperSearch, out, err,
				labelPapers, "Academic papers from ArXiv", "Error", "No papers found")
			return nil
		})
	}

	if o.collab.Market != nil && len(symbols) > 0 {
		// Multiple survivors: the first in text order wins. This is a
		// heuristic default, not a verified intent signal.
		symbol := symbols[0]
		slots[slotMarket].attempted = true
		toolsUsed = append(toolsUsed, toolMarketData)
		g.Go(func() error {
			out, err := o.collab.Market.Quote(gctx, symbol)
			if err == nil && strings.Contains(strings.ToLower(out), "not found") {
				o.logger.Info("tool result uninformative",
					slog.String("tool", toolMarketData),
					slog.String("marker", "not found"),
				)
				toolInvocationsTotal.WithLabelValues(toolMarketData, "uninformative").Inc()
				return nil
			}
			o.settleText(&slots[slotMarket], toolMarketData, out, err,
				fmt.Sprintf("Stock Data for %s", symbol),
				fmt.Sprintf("Stock market data for %s", symbol), "Error")
			return nil
		})
	}

	if o.collab.Knowledge != nil {
		slots[slotKnowledge].attempted = true
		toolsUsed = append(toolsUsed, toolKnowledge)
		g.Go(func() error {
			ans, err := o.collab.Knowledge.Query(gctx, question)
			slot := &slots[slotKnowledge]
			if err != nil {
				o.logger.Warn("knowledge base failed",
					slog.String("query_id", queryID),
					slog.String("error", err.Error()),
				)
				toolInvocationsTotal.WithLabelValues(toolKnowledge, "error").Inc()
				return nil
			}
			slot.scored = true
			slot.score = ans.RetrievalScore
			slot.sources = ans.Sources
			if ans.Informative {
				slot.informative = true
				slot.label = labelKnowledge
				slot.content = ans.Answer
				toolInvocationsTotal.WithLabelValues(toolKnowledge, "success").Inc()
			} else {
				toolInvocationsTotal.WithLabelValues(toolKnowledge, "uninformative").Inc()
			}
			return nil
		})
	}

	if len(toolsUsed) == 0 {
		o.stats.Record(QueryOutcome{Category: category, Duration: time.Since(start), Failed: true})
		queriesTotal.WithLabelValues(string(category), "failed").Inc()
		span.RecordError(ErrNoCollaborators)
		return nil, ErrNoCollaborators
	}

	// Barrier: fusion waits for every attempted invocation to resolve.
	// Goroutines never return errors to the group.
	_ = g.Wait()

	// Knowledge base answer leads when informative; the rest follow in
	// invocation order.
	var fragments []Fragment
	if s := slots[slotKnowledge]; s.informative {
		fragments = append(fragments, Fragment{Label: s.label, Content: s.content})
	}
	for _, idx := range []int{slotWeb, slotPapers, slotMarket} {
		if s := slots[idx]; s.informative {
			fragments = append(fragments, Fragment{Label: s.label, Content: s.content})
		}
	}

	response := Fuse(question, fragments)
	fusedFragments.Observe(float64(len(fragments)))

	contextItems := make([]ContextItem, 0, slotCount)
	for _, idx := range []int{slotWeb, slotPapers, slotMarket} {
		if s := slots[idx]; s.informative {
			contextItems = append(contextItems, ContextItem{Content: s.contextNote, Type: "context"})
		}
	}
	for _, src := range slots[slotKnowledge].sources {
		contextItems = append(contextItems, ContextItem{Content: src, Type: "context"})
	}

	confidence := defaultConfidence
	if s := slots[slotKnowledge]; s.scored && s.informative {
		confidence = s.score
	}

	elapsed := time.Since(start)
	o.stats.Record(QueryOutcome{
		Category:  category,
		ToolsUsed: toolsUsed,
		Duration:  elapsed,
	})
	queriesTotal.WithLabelValues(string(category), "success").Inc()
	queryDuration.Observe(elapsed.Seconds())

	o.logger.Info("query processed",
		slog.String("query_id", queryID),
		slog.Int("tools_attempted", len(toolsUsed)),
		slog.Int("informative_fragments", len(fragments)),
		slog.Float64("confidence", confidence),
		slog.Duration("elapsed", elapsed),
	)

	return &OrchestrationResult{
		QueryID:        queryID,
		Response:       response,
		Context:        contextItems,
		ToolsUsed:      toolsUsed,
		Confidence:     confidence,
		ProcessingTime: elapsed.Seconds(),
		Category:       category,
	}, nil
}

// settleText records a text-returning collaborator's outcome into its
// slot. A non-nil error or any failure marker in the output makes the
// slot uninformative.
func (o *Orchestrator) settleText(slot *slotResult, tool, out string, err error, label, contextNote string, failureMarkers ...string) {
	if err != nil {
		o.logger.Warn("tool invocation failed",
			slog.String("tool", tool),
			slog.String("error", err.Error()),
		)
		toolInvocationsTotal.WithLabelValues(tool, "error").Inc()
		return
	}
	for _, marker := range failureMarkers {
		if strings.Contains(out, marker) {
			o.logger.Info("tool result uninformative",
				slog.String("tool", tool),
				slog.String("marker", marker),
			)
			toolInvocationsTotal.WithLabelValues(tool, "uninformative").Inc()
			return
		}
	}
	if out == "" {
		toolInvocationsTotal.WithLabelValues(tool, "uninformative").Inc()
		return
	}
	slot.informative = true
	slot.label = label
	slot.content = out
	slot.contextNote = contextNote
	toolInvocationsTotal.WithLabelValues(tool, "success").Inc()
}
