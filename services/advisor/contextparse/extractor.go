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
	"strings"
)

// =============================================================================
// Parsed Data Model
// =============================================================================

// ParsedRecord maps field names to extracted values. Unmatched fields are
// absent from the map, never present with an empty value.
type ParsedRecord map[string]string

// ParsedContext is the structured form of one raw context blob.
//
// Invariant: RecordCount == len(Records), and every record carries at least
// one field; a block yielding zero fields is dropped during extraction.
type ParsedContext struct {
	// Kind is the format family the blob was classified (or hinted) as.
	Kind SourceKind `json:"-"`

	// Source is the wire name of Kind, reported to the HTTP layer.
	Source string `json:"source"`

	// Records are the extracted blocks in input order.
	Records []ParsedRecord `json:"records"`

	// RecordCount is the number of surviving records.
	RecordCount int `json:"record_count"`

	// RawContent is the original blob, kept only for KindUnknown so the
	// generic display template can echo a preview.
	RawContent string `json:"-"`

	// Generic holds the whole-text token class matches for KindUnknown:
	// class name -> ordered raw matches. Nil for classified kinds.
	Generic map[string][]string `json:"extracted_data,omitempty"`
}

// ParseError is a structured extraction failure. It is actionable: the
// caller can inspect the kind and cause and fix the input or rules.
type ParseError struct {
	Kind SourceKind
	Op   string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("contextparse: %s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// =============================================================================
// Block Extraction
// =============================================================================

// extract splits the blob into blocks per the kind's delimiter convention
// and applies each field pattern independently per block.
//
// Description:
//
//	Each pattern is unanchored; the first match per field wins and its
//	capture group is trimmed. Unmatched fields are omitted. A block that
//	yields zero fields is discarded entirely.
func extract(kind SourceKind, text string) ([]ParsedRecord, error) {
	if err := compileRules(); err != nil {
		return nil, &ParseError{Kind: kind, Op: "compile rules for", Err: err}
	}
	rs := rulesFor(kind)
	if rs == nil {
		return nil, &ParseError{Kind: kind, Op: "extract", Err: fmt.Errorf("no rule set")}
	}

	var blocks []string
	if rs.splitter == nil {
		blocks = paragraphSplit.Split(strings.TrimSpace(text), -1)
	} else {
		blocks = rs.splitter.Split(text, -1)
		if rs.dropFirst && len(blocks) > 0 {
			blocks = blocks[1:]
		}
	}

	records := make([]ParsedRecord, 0, len(blocks))
	for _, block := range blocks {
		if strings.TrimSpace(block) == "" {
			continue
		}
		rec := ParsedRecord{}
		for _, fr := range rs.fields {
			if m := fr.re.FindStringSubmatch(block); m != nil {
				rec[fr.name] = strings.TrimSpace(m[1])
			}
		}
		if len(rec) > 0 {
			records = append(records, rec)
		}
	}
	return records, nil
}

// extractGeneric runs the independent whole-text token classes over an
// unclassified blob. Classes with no matches are absent from the map.
func extractGeneric(text string) (map[string][]string, error) {
	if err := compileRules(); err != nil {
		return nil, &ParseError{Kind: KindUnknown, Op: "compile rules for", Err: err}
	}
	out := make(map[string][]string)
	for _, fr := range genericRules {
		if matches := fr.re.FindAllString(text, -1); len(matches) > 0 {
			out[fr.name] = matches
		}
	}
	return out, nil
}
