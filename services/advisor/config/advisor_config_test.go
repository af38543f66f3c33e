// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"context"
	"testing"
)

func TestGetAdvisorConfig(t *testing.T) {
	cfg, err := GetAdvisorConfig(context.Background())
	if err != nil {
		t.Fatalf("GetAdvisorConfig failed: %v", err)
	}

	if len(cfg.Categories) != 5 {
		t.Errorf("expected 5 category rules, got %d", len(cfg.Categories))
	}
	if cfg.Categories[0].Name != "investment_advice" {
		t.Errorf("first rule should be investment_advice, got %q", cfg.Categories[0].Name)
	}
	if cfg.DefaultCategory != "general_advice" {
		t.Errorf("default category should be general_advice, got %q", cfg.DefaultCategory)
	}
	if len(cfg.StreamChunks) != 4 {
		t.Errorf("expected 4 stream chunks, got %d", len(cfg.StreamChunks))
	}
	if !cfg.StreamChunks[3].IsFinal {
		t.Error("last stream chunk should be final")
	}
}

func TestGetAdvisorConfig_Singleton(t *testing.T) {
	a, err := GetAdvisorConfig(context.Background())
	if err != nil {
		t.Fatalf("GetAdvisorConfig failed: %v", err)
	}
	b, _ := GetAdvisorConfig(context.Background())
	if a != b {
		t.Error("expected the same config instance on repeated calls")
	}
}

func TestIsStopword(t *testing.T) {
	cfg, err := GetAdvisorConfig(context.Background())
	if err != nil {
		t.Fatalf("GetAdvisorConfig failed: %v", err)
	}

	tests := []struct {
		token string
		want  bool
	}{
		{"THE", true},
		{"the", true},
		{"DOG", true},
		{"RAN", true},
		{"AAPL", false},
		{"MSFT", false},
		{"TSLA", false},
	}
	for _, tt := range tests {
		if got := cfg.IsStopword(tt.token); got != tt.want {
			t.Errorf("IsStopword(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestLoadAdvisorConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ``},
		{"no keywords", "categories:\n  - name: a\ndefault_category: x\nstream_chunks:\n  - {chunk_id: \"1\", content: c, is_final: true}"},
		{"no default", "categories:\n  - name: a\n    keywords: [b]\nstream_chunks:\n  - {chunk_id: \"1\", content: c, is_final: true}"},
		{"non-final tail", "categories:\n  - name: a\n    keywords: [b]\ndefault_category: x\nstream_chunks:\n  - {chunk_id: \"1\", content: c, is_final: false}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadAdvisorConfig([]byte(tt.yaml)); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
