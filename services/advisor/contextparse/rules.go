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
	"fmt"
	"regexp"
	"sync"
)

// =============================================================================
// Extraction Rule Tables
// =============================================================================

// fieldRule is one named extraction pattern within a rule set. The pattern is
// applied unanchored against a block; the first capture group, trimmed, is
// the field value.
type fieldRule struct {
	name    string
	pattern string
	re      *regexp.Regexp // compiled lazily by compileRules
}

// ruleSet groups the field rules and block delimiter for one SourceKind.
type ruleSet struct {
	// splitter separates the blob into candidate blocks. Nil means
	// blank-line paragraph splitting (the arXiv convention).
	splitter *regexp.Regexp

	// dropFirst discards the text preceding the first delimiter occurrence.
	dropFirst bool

	fields []fieldRule
}

// searchRules extracts Tavily-style tag-delimited result blocks.
// DOTALL so multi-line content bodies are captured.
var searchRules = &ruleSet{
	splitter:  regexp.MustCompile(`<result>`),
	dropFirst: true,
	fields: []fieldRule{
		{name: "title", pattern: `(?s)<title>(.*?)</title>`},
		{name: "content", pattern: `(?s)<content>(.*?)</content>`},
		{name: "url", pattern: `(?s)<url>(.*?)</url>`},
		{name: "score", pattern: `(?s)<score>(.*?)</score>`},
	},
}

// arxivRules extracts labeled fields from blank-line separated paper blocks.
var arxivRules = &ruleSet{
	splitter:  nil, // paragraph split
	dropFirst: false,
	fields: []fieldRule{
		{name: "title", pattern: `(?si)Title:\s*(.*?)(?:\n|$)`},
		{name: "authors", pattern: `(?si)Authors:\s*(.*?)(?:\n|$)`},
		{name: "abstract", pattern: `(?si)Abstract:\s*(.*?)(?:\n\n|\n[A-Z]|$)`},
		{name: "categories", pattern: `(?si)Categories:\s*(.*?)(?:\n|$)`},
		{name: "doi", pattern: `(?si)DOI:\s*(.*?)(?:\n|$)`},
		{name: "arxiv_id", pattern: `(?si)arXiv:(\d+\.\d+)`},
		{name: "date", pattern: `(?si)Date:\s*(.*?)(?:\n|$)`},
	},
}

// yfinanceRules extracts quote fields from "Stock:" delimited blocks.
// Case-insensitive but not DOTALL; each field sits on one line.
var yfinanceRules = &ruleSet{
	splitter:  regexp.MustCompile(`Stock:\s*`),
	dropFirst: true,
	fields: []fieldRule{
		{name: "ticker", pattern: `(?i)Ticker:\s*([A-Z]+)`},
		{name: "price", pattern: `(?i)Price:\s*\$?([\d,]+\.?\d*)`},
		{name: "change", pattern: `(?i)Change:\s*([+-]?\$?[\d,]+\.?\d*)`},
		{name: "volume", pattern: `(?i)Volume:\s*([\d,]+)`},
		{name: "market_cap", pattern: `(?i)Market Cap:\s*\$?([\d,]+\.?\d*[KMB]?)`},
		{name: "pe_ratio", pattern: `(?i)P/E Ratio:\s*([\d,]+\.?\d*)`},
		{name: "dividend_yield", pattern: `(?i)Dividend Yield:\s*([\d,]+\.?\d*%)`},
	},
}

// ragRules extracts knowledge-base interaction fields from "Interaction:"
// delimited blocks.
var ragRules = &ruleSet{
	splitter:  regexp.MustCompile(`Interaction:\s*`),
	dropFirst: true,
	fields: []fieldRule{
		{name: "query", pattern: `(?si)Query:\s*(.*?)(?:\n|$)`},
		{name: "response", pattern: `(?si)Response:\s*(.*?)(?:\n\n|\n[A-Z]|$)`},
		{name: "sources", pattern: `(?si)Sources:\s*(.*?)(?:\n\n|\n[A-Z]|$)`},
		{name: "confidence", pattern: `(?si)Confidence:\s*([\d,]+\.?\d*%)`},
		{name: "timestamp", pattern: `(?si)Timestamp:\s*(.*?)(?:\n|$)`},
	},
}

// genericRules are the whole-text token classes applied to unclassified
// blobs. Order is the display order.
var genericRules = []fieldRule{
	{name: "urls", pattern: `https?://[^\s<>"]+`},
	{name: "emails", pattern: `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`},
	{name: "dates", pattern: `\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`},
	{name: "numbers", pattern: `\$?[\d,]+\.?\d*`},
	{name: "percentages", pattern: `[\d,]+\.?\d*%`},
}

// paragraphSplit separates blank-line delimited blocks.
var paragraphSplit = regexp.MustCompile(`\n\n+`)

// =============================================================================
// Lazy Compilation
// =============================================================================

var (
	compileOnce sync.Once
	compileErr  error
)

// compileRules compiles every field pattern exactly once. A malformed
// pattern surfaces as an ExtractionFailure from Parse rather than a panic
// at package load.
func compileRules() error {
	compileOnce.Do(func() {
		for _, rs := range []*ruleSet{searchRules, arxivRules, yfinanceRules, ragRules} {
			for i := range rs.fields {
				re, err := regexp.Compile(rs.fields[i].pattern)
				if err != nil {
					compileErr = fmt.Errorf("field %q: %w", rs.fields[i].name, err)
					return
				}
				rs.fields[i].re = re
			}
		}
		for i := range genericRules {
			re, err := regexp.Compile(genericRules[i].pattern)
			if err != nil {
				compileErr = fmt.Errorf("generic class %q: %w", genericRules[i].name, err)
				return
			}
			genericRules[i].re = re
		}
	})
	return compileErr
}

// rulesFor returns the rule set for an extractable kind, or nil for
// KindUnknown (which uses the generic token classes instead).
func rulesFor(kind SourceKind) *ruleSet {
	switch kind {
	case KindSearch:
		return searchRules
	case KindAcademicPaper:
		return arxivRules
	case KindMarketData:
		return yfinanceRules
	case KindKnowledgeInteraction:
		return ragRules
	default:
		return nil
	}
}
