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
	"fmt"
	"time"

	"github.com/AleutianAI/AleutianAdvisor/services/advisor/config"
)

// =============================================================================
// Scripted Streaming
// =============================================================================

// streamChunkDelay is the fixed pause between scripted chunks.
const streamChunkDelay = 500 * time.Millisecond

// StreamEvent is one element of the streaming response sequence.
//
// Synthetic is always true: the script is a fixed display sequence
// decoupled from actual per-source orchestration progress.
type StreamEvent struct {
	ChunkID   string `json:"chunk_id"`
	Content   string `json:"content"`
	IsFinal   bool   `json:"is_final"`
	Synthetic bool   `json:"synthetic"`
}

// Stream emits the fixed progress script for a query at fixed delays.
//
// # Description
//
// This is a display stub, not real progress reporting: the chunk
// sequence and timing come from the embedded config and never reflect
// which collaborators have completed. Emission stops early if ctx is
// cancelled; emit's return value of false also stops the sequence.
func Stream(ctx context.Context, emit func(StreamEvent) bool) error {
	cfg, err := config.GetAdvisorConfig(ctx)
	if err != nil {
		return fmt.Errorf("load stream script: %w", err)
	}

	for i, chunk := range cfg.StreamChunks {
		if !emit(StreamEvent{
			ChunkID:   chunk.ChunkID,
			Content:   chunk.Content,
			IsFinal:   chunk.IsFinal,
			Synthetic: true,
		}) {
			return nil
		}
		if i == len(cfg.StreamChunks)-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(streamChunkDelay):
		}
	}
	return nil
}
