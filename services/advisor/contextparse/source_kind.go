// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package contextparse classifies raw context blobs from the advisor's
// information sources, extracts structured records from them, and renders
// the records back into the fixed display formats the HTTP layer exposes.
package contextparse

import (
	"fmt"
	"strings"
)

// SourceKind identifies the text-format family of a raw context blob.
//
// The five kinds are exhaustive and non-overlapping: every blob resolves to
// exactly one kind, with KindUnknown as the catch-all.
type SourceKind int

const (
	// KindSearch is Tavily web-search output (tag-delimited result blocks).
	KindSearch SourceKind = iota

	// KindAcademicPaper is arXiv paper listings (blank-line separated blocks
	// of "Field: value" lines).
	KindAcademicPaper

	// KindMarketData is yfinance-style stock quotes ("Stock:" delimited).
	KindMarketData

	// KindKnowledgeInteraction is knowledge-base interaction logs
	// ("Interaction:" delimited).
	KindKnowledgeInteraction

	// KindUnknown is any blob no classification rule matched. Not an error.
	KindUnknown
)

// String returns the wire name of the kind, matching the "source" field the
// HTTP layer reports.
func (k SourceKind) String() string {
	switch k {
	case KindSearch:
		return "tavily"
	case KindAcademicPaper:
		return "arxiv"
	case KindMarketData:
		return "yfinance"
	case KindKnowledgeInteraction:
		return "ai_rag"
	case KindUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("SourceKind(%d)", int(k))
	}
}

// KindFromName resolves a wire name back to its SourceKind.
//
// Outputs:
//
//	SourceKind - The matching kind.
//	bool - False if the name is not a known kind.
func KindFromName(name string) (SourceKind, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "tavily":
		return KindSearch, true
	case "arxiv":
		return KindAcademicPaper, true
	case "yfinance":
		return KindMarketData, true
	case "ai_rag", "rag":
		return KindKnowledgeInteraction, true
	case "unknown":
		return KindUnknown, true
	default:
		return KindUnknown, false
	}
}

// Classify decides which format family a raw context blob belongs to.
//
// Description:
//
//	Case-insensitive substring rules, first match wins:
//
//	  1. "<result>" or "tavily"      -> KindSearch
//	  2. "categories:" or "arxiv"    -> KindAcademicPaper
//	  3. "ticker:" or "yfinance"     -> KindMarketData
//	  4. "query:" or "rag"           -> KindKnowledgeInteraction
//	  5. otherwise                   -> KindUnknown
//
//	The precedence order is a deliberate tie-break: a blob matching several
//	rules always resolves to the earliest. No rule matching is not an error;
//	it resolves to KindUnknown.
func Classify(text string) SourceKind {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "<result>") || strings.Contains(lower, "tavily"):
		return KindSearch
	case strings.Contains(lower, "categories:") || strings.Contains(lower, "arxiv"):
		return KindAcademicPaper
	case strings.Contains(lower, "ticker:") || strings.Contains(lower, "yfinance"):
		return KindMarketData
	case strings.Contains(lower, "query:") || strings.Contains(lower, "rag"):
		return KindKnowledgeInteraction
	default:
		return KindUnknown
	}
}
