// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package query analyzes advisor questions: heuristic detection of candidate
// stock symbols and keyword-rule categorization of question intent.
package query

import (
	"regexp"
	"strings"

	"github.com/AleutianAI/AleutianAdvisor/services/advisor/config"
)

// symbolPattern matches maximal runs of 2-5 uppercase letters.
var symbolPattern = regexp.MustCompile(`\b[A-Z]{2,5}\b`)

// Detector scans question text for candidate stock symbols.
//
// Description:
//
//	Detection is heuristic, not exact: any 2-5 letter uppercase run that
//	survives the stoplist is a candidate. Candidates keep first-appearance
//	order and are NOT deduplicated; downstream policy picks the first
//	survivor. That "first in text" selection is a default, not a verified
//	intent signal, and is a known limitation when several candidates survive.
//
// Thread Safety: Safe for concurrent use (read-only after construction).
type Detector struct {
	cfg *config.AdvisorConfig
}

// NewDetector creates a Detector over the given rule configuration.
func NewDetector(cfg *config.AdvisorConfig) *Detector {
	return &Detector{cfg: cfg}
}

// Scan returns the candidate symbols in text, in first-appearance order.
//
// Description:
//
//	The input is uppercased before matching, so "buy aapl" and "buy AAPL"
//	yield the same candidates. Tokens present in the stoplist are dropped.
//	Returns an empty slice when nothing survives; never ranks or scores.
func (d *Detector) Scan(text string) []string {
	matches := symbolPattern.FindAllString(strings.ToUpper(text), -1)
	candidates := make([]string, 0, len(matches))
	for _, tok := range matches {
		if d.cfg.IsStopword(tok) {
			continue
		}
		candidates = append(candidates, tok)
	}
	return candidates
}
