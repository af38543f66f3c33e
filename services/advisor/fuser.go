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
	"fmt"
	"strings"
)

// =============================================================================
// Response Fusion
// =============================================================================

// fusionIntro precedes the combined fragments when at least one source
// produced substantive content.
const fusionIntro = "Based on my analysis using multiple sources:\n\n"

// Fragment is one labeled, informative source output queued for fusion.
type Fragment struct {
	// Label is the fixed per-source prefix ("Current Information",
	// "Knowledge Base (PDFs)", ...).
	Label string
	// Content is the source's raw output text.
	Content string
}

// Fuse combines labeled fragments into one narrative, preserving their
// order. With no fragments, it returns the fixed fallback that names the
// original question and offers general guidance instead.
func Fuse(question string, fragments []Fragment) string {
	if len(fragments) == 0 {
		return fmt.Sprintf("I understand you're asking about '%s'. I've searched multiple sources "+
			"including current information, academic research, market data, and our knowledge base, "+
			"but don't have specific information about this topic. I can help you with general "+
			"wealth management advice or try searching for different aspects of this topic.", question)
	}

	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Label, f.Content))
	}
	return fusionIntro + strings.Join(parts, "\n\n")
}
