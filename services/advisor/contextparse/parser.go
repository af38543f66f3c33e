// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package contextparse

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// =============================================================================
// Prometheus Metrics
// =============================================================================

var (
	parseTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "advisor",
		Subsystem: "parser",
		Name:      "parse_total",
		Help:      "Total context parses by source kind",
	}, []string{"kind"})

	parseRecords = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "advisor",
		Subsystem: "parser",
		Name:      "records_per_parse",
		Help:      "Records extracted per parse",
		Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
	})
)

var parserTracer = otel.Tracer("aleutian.advisor.contextparse")

// Display truncation lengths. These are part of the external contract of
// the formatted output, not incidental.
const (
	searchContentDisplayLen = 200
	abstractDisplayLen      = 300
	answerDisplayLen        = 300
	rawContentDisplayLen    = 500
	genericListDisplayMax   = 5
)

// missingField renders in place of any field a record does not carry.
const missingField = "N/A"

// =============================================================================
// Parser
// =============================================================================

// Parser composes classification, extraction, and display formatting for
// raw source context blobs.
//
// Thread Safety: Safe for concurrent use (no mutable state).
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a Parser. A nil logger falls back to slog.Default().
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Parse classifies and extracts a raw context blob.
//
// Description:
//
//	When hint is non-nil its extraction rules are used directly, bypassing
//	classification. Otherwise the blob is classified first. Unknown blobs
//	skip block extraction and instead run the generic whole-text token
//	classes (URLs, emails, dates, numbers, percentages).
//
// Outputs:
//
//	*ParsedContext - Extraction result; RecordCount always equals
//	  len(Records).
//	error - A *ParseError when extraction fails on malformed rules/input.
func (p *Parser) Parse(ctx context.Context, text string, hint *SourceKind) (*ParsedContext, error) {
	_, span := parserTracer.Start(ctx, "contextparse.Parse")
	defer span.End()

	kind := KindUnknown
	if hint != nil {
		kind = *hint
	} else {
		kind = Classify(text)
	}
	span.SetAttributes(attribute.String("kind", kind.String()))

	pc := &ParsedContext{Kind: kind, Source: kind.String()}

	if kind == KindUnknown {
		generic, err := extractGeneric(text)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		pc.RawContent = text
		pc.Generic = generic
		parseTotal.WithLabelValues(kind.String()).Inc()
		parseRecords.Observe(0)
		return pc, nil
	}

	records, err := extract(kind, text)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	pc.Records = records
	pc.RecordCount = len(records)

	parseTotal.WithLabelValues(kind.String()).Inc()
	parseRecords.Observe(float64(pc.RecordCount))
	span.SetAttributes(attribute.Int("record_count", pc.RecordCount))

	p.logger.Debug("parsed context",
		slog.String("kind", kind.String()),
		slog.Int("records", pc.RecordCount),
	)
	return pc, nil
}

// =============================================================================
// Display Formatting
// =============================================================================

// Format renders a ParsedContext into its fixed display template.
//
// Description:
//
//	Dispatch is an exhaustive switch over SourceKind; adding a kind forces
//	a compile-visible update here. Missing fields render as "N/A", never
//	silently omitted. Search content is truncated to 200 characters,
//	abstracts and knowledge-base answers to 300.
func (p *Parser) Format(pc *ParsedContext) (string, error) {
	switch pc.Kind {
	case KindSearch:
		return formatSearch(pc), nil
	case KindAcademicPaper:
		return formatArxiv(pc), nil
	case KindMarketData:
		return formatMarket(pc), nil
	case KindKnowledgeInteraction:
		return formatKnowledge(pc), nil
	case KindUnknown:
		return formatGeneric(pc), nil
	default:
		return "", fmt.Errorf("contextparse: no display template for kind %d", int(pc.Kind))
	}
}

const displayRule = "=================================================="

func formatSearch(pc *ParsedContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tavily Search Results (%d results)\n%s\n\n", pc.RecordCount, displayRule)
	for _, rec := range pc.Records {
		b.WriteString("<result>\n")
		fmt.Fprintf(&b, "<title>%s</title>\n", field(rec, "title"))
		fmt.Fprintf(&b, "<url>%s</url>\n", field(rec, "url"))
		fmt.Fprintf(&b, "<score>%s</score>\n", field(rec, "score"))
		fmt.Fprintf(&b, "<content>%s...</content>\n\n", truncate(field(rec, "content"), searchContentDisplayLen))
	}
	return b.String()
}

func formatArxiv(pc *ParsedContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ArXiv Papers (%d papers)\n%s\n\n", pc.RecordCount, displayRule)
	for i, rec := range pc.Records {
		fmt.Fprintf(&b, "Paper %d:\n", i+1)
		fmt.Fprintf(&b, "Title: %s\n", field(rec, "title"))
		fmt.Fprintf(&b, "Authors: %s\n", field(rec, "authors"))
		fmt.Fprintf(&b, "Categories: %s\n", field(rec, "categories"))
		fmt.Fprintf(&b, "DOI: %s\n", field(rec, "doi"))
		fmt.Fprintf(&b, "Date: %s\n", field(rec, "date"))
		fmt.Fprintf(&b, "Abstract: %s...\n\n", truncate(field(rec, "abstract"), abstractDisplayLen))
	}
	return b.String()
}

func formatMarket(pc *ParsedContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "YFinance Data (%d stocks)\n%s\n\n", pc.RecordCount, displayRule)
	for _, rec := range pc.Records {
		fmt.Fprintf(&b, "Stock: %s\n", field(rec, "ticker"))
		fmt.Fprintf(&b, "Ticker: %s\n", field(rec, "ticker"))
		fmt.Fprintf(&b, "Price: $%s\n", field(rec, "price"))
		fmt.Fprintf(&b, "Change: %s\n", field(rec, "change"))
		fmt.Fprintf(&b, "Volume: %s\n", field(rec, "volume"))
		fmt.Fprintf(&b, "Market Cap: $%s\n", field(rec, "market_cap"))
		fmt.Fprintf(&b, "P/E Ratio: %s\n", field(rec, "pe_ratio"))
		fmt.Fprintf(&b, "Dividend Yield: %s\n\n", field(rec, "dividend_yield"))
	}
	return b.String()
}

func formatKnowledge(pc *ParsedContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "AI RAG Interactions (%d interactions)\n%s\n\n", pc.RecordCount, displayRule)
	for i, rec := range pc.Records {
		fmt.Fprintf(&b, "Interaction: %d\n", i+1)
		fmt.Fprintf(&b, "Query: %s\n", field(rec, "query"))
		fmt.Fprintf(&b, "Response: %s...\n", truncate(field(rec, "response"), answerDisplayLen))
		fmt.Fprintf(&b, "Sources: %s\n", field(rec, "sources"))
		fmt.Fprintf(&b, "Confidence: %s\n", field(rec, "confidence"))
		fmt.Fprintf(&b, "Timestamp: %s\n\n", field(rec, "timestamp"))
	}
	return b.String()
}

func formatGeneric(pc *ParsedContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generic Context Data\n%s\n\n", displayRule)
	fmt.Fprintf(&b, "Source: %s\n", pc.Source)
	fmt.Fprintf(&b, "Raw Content: %s...\n\n", truncate(pc.RawContent, rawContentDisplayLen))

	if len(pc.Generic) > 0 {
		b.WriteString("Extracted Data:\n")
		// Iterate in rule order so the rendering is deterministic.
		for _, fr := range genericRules {
			values, ok := pc.Generic[fr.name]
			if !ok {
				continue
			}
			if len(values) > genericListDisplayMax {
				values = values[:genericListDisplayMax]
			}
			fmt.Fprintf(&b, "%s: %s\n", titleCase(fr.name), strings.Join(values, ", "))
		}
	}
	return b.String()
}

func field(rec ParsedRecord, name string) string {
	if v, ok := rec[name]; ok {
		return v
	}
	return missingField
}

// truncate limits s to n runes. The display templates append their own
// ellipsis regardless, matching the fixed output contract.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
