// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the advisor rule configuration (query category
// keyword rules, the candidate-symbol stoplist, and the scripted stream
// sequence) from an embedded YAML document.
package config

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Embedded Default Advisor Rules
// =============================================================================

//go:embed advisor_rules.yaml
var defaultAdvisorRulesYAML []byte

// =============================================================================
// Advisor Configuration Types
// =============================================================================

// AdvisorConfig holds the rule tables consumed by the query package and the
// streaming endpoint.
//
// Thread Safety: Immutable after loading; safe for concurrent use.
type AdvisorConfig struct {
	// Categories are the ordered keyword rules for query categorization.
	// The first rule with a keyword present in the question wins.
	Categories []CategoryRule `yaml:"categories"`

	// DefaultCategory is assigned when no rule matches.
	DefaultCategory string `yaml:"default_category"`

	// StreamChunks is the fixed progress script emitted by the streaming
	// endpoint. It is synthetic output, not real per-source progress.
	StreamChunks []StreamChunk `yaml:"stream_chunks"`

	// SymbolStoplist lists uppercase English words excluded from candidate
	// ticker detection.
	SymbolStoplist []string `yaml:"symbol_stoplist"`

	// stopset is the stoplist as a set, built once at load time.
	stopset map[string]struct{}
}

// CategoryRule maps a keyword set to a query category.
type CategoryRule struct {
	// Name is the category assigned when a keyword matches.
	Name string `yaml:"name"`

	// Keywords are case-insensitive substrings tested against the question.
	Keywords []string `yaml:"keywords"`
}

// StreamChunk is one entry of the scripted streaming sequence.
type StreamChunk struct {
	ChunkID string `yaml:"chunk_id" json:"chunk_id"`
	Content string `yaml:"content" json:"content"`
	IsFinal bool   `yaml:"is_final" json:"is_final"`
}

// IsStopword reports whether the uppercase token is in the stoplist.
func (c *AdvisorConfig) IsStopword(token string) bool {
	_, ok := c.stopset[strings.ToUpper(token)]
	return ok
}

// =============================================================================
// Singleton Loader
// =============================================================================

var (
	advisorConfigOnce sync.Once
	advisorConfig     *AdvisorConfig
	advisorConfigErr  error
)

// GetAdvisorConfig returns the process-wide advisor configuration, loading
// and validating the embedded YAML on first call.
//
// Outputs:
//
//	*AdvisorConfig - The loaded configuration. Immutable.
//	error - Non-nil if the embedded YAML fails to parse or validate.
//
// Thread Safety: Safe for concurrent use.
func GetAdvisorConfig(ctx context.Context) (*AdvisorConfig, error) {
	advisorConfigOnce.Do(func() {
		advisorConfig, advisorConfigErr = loadAdvisorConfig(defaultAdvisorRulesYAML)
		if advisorConfigErr == nil {
			slog.Debug("advisor config loaded",
				slog.Int("category_rules", len(advisorConfig.Categories)),
				slog.Int("stoplist_size", len(advisorConfig.SymbolStoplist)),
				slog.Int("stream_chunks", len(advisorConfig.StreamChunks)),
			)
		}
	})
	return advisorConfig, advisorConfigErr
}

func loadAdvisorConfig(raw []byte) (*AdvisorConfig, error) {
	var cfg AdvisorConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse advisor rules: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate advisor rules: %w", err)
	}
	cfg.stopset = make(map[string]struct{}, len(cfg.SymbolStoplist))
	for _, w := range cfg.SymbolStoplist {
		cfg.stopset[strings.ToUpper(w)] = struct{}{}
	}
	return &cfg, nil
}

func (c *AdvisorConfig) validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("no category rules defined")
	}
	for i, rule := range c.Categories {
		if rule.Name == "" {
			return fmt.Errorf("category rule %d has no name", i)
		}
		if len(rule.Keywords) == 0 {
			return fmt.Errorf("category rule %q has no keywords", rule.Name)
		}
	}
	if c.DefaultCategory == "" {
		return fmt.Errorf("default_category is empty")
	}
	if len(c.StreamChunks) == 0 {
		return fmt.Errorf("no stream chunks defined")
	}
	if !c.StreamChunks[len(c.StreamChunks)-1].IsFinal {
		return fmt.Errorf("last stream chunk must be final")
	}
	return nil
}
