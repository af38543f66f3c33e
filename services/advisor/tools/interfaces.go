// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tools holds the advisor's source collaborators: web search,
// academic paper search, market-data lookup, and knowledge-base retrieval.
// The orchestrator treats each as an opaque invoker; transport concerns
// live entirely here.
package tools

import "context"

// WebSearcher searches the web for current information.
type WebSearcher interface {
	// Search returns a plain-text listing of results for the query.
	// Degraded conditions (missing key, upstream failure) come back as
	// explanatory text, not errors; an error means the invocation itself
	// could not run.
	Search(ctx context.Context, query string) (string, error)
}

// PaperSearcher searches academic paper repositories.
type PaperSearcher interface {
	// Search returns a plain-text listing of papers for the query, or a
	// "No papers found" text when the repository has nothing.
	Search(ctx context.Context, query string) (string, error)
}

// MarketDataProvider looks up quote data for a stock symbol.
type MarketDataProvider interface {
	// Quote returns a formatted quote block for the symbol, or an explicit
	// "not found"/error text when the symbol does not resolve.
	Quote(ctx context.Context, symbol string) (string, error)
}

// KnowledgeAnswer is the knowledge-base collaborator's contract.
//
// Informative is an explicit boolean judgment from the collaborator; the
// orchestrator never sniffs the answer text to decide whether it carries
// substantive content.
type KnowledgeAnswer struct {
	// Answer is the synthesized answer text.
	Answer string

	// Sources lists the document sources behind the answer.
	Sources []string

	// RetrievalScore is the top retrieval certainty in [0,1], or 0 when
	// unavailable.
	RetrievalScore float64

	// Informative is true when the answer carries substantive content
	// rather than an empty or apologetic stub.
	Informative bool
}

// KnowledgeBase answers questions from the document knowledge base.
type KnowledgeBase interface {
	Query(ctx context.Context, question string) (KnowledgeAnswer, error)
}

// QuoteCache caches formatted quote blocks by symbol. Implementations may
// drop entries at any time; a miss is never an error.
type QuoteCache interface {
	Get(symbol string) (string, bool)
	Set(symbol, quote string)
}
