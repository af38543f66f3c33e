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
	"testing"
)

func TestStreamEmitsFullScript(t *testing.T) {
	var events []StreamEvent
	err := Stream(context.Background(), func(ev StreamEvent) bool {
		events = append(events, ev)
		return true
	})
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}

	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}
	if events[0].Content != "Processing your query..." {
		t.Errorf("first chunk = %q", events[0].Content)
	}
	for i, ev := range events {
		if !ev.Synthetic {
			t.Errorf("event %d not marked synthetic", i)
		}
		wantFinal := i == len(events)-1
		if ev.IsFinal != wantFinal {
			t.Errorf("event %d IsFinal = %v, want %v", i, ev.IsFinal, wantFinal)
		}
	}
}

func TestStreamStopsWhenEmitDeclines(t *testing.T) {
	count := 0
	err := Stream(context.Background(), func(ev StreamEvent) bool {
		count++
		return false
	})
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}
	if count != 1 {
		t.Errorf("emitted %d events after decline, want 1", count)
	}
}
