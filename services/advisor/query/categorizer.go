// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package query

import (
	"strings"

	"github.com/AleutianAI/AleutianAdvisor/services/advisor/config"
)

// Category is a question intent label.
type Category string

const (
	CategoryInvestmentAdvice   Category = "investment_advice"
	CategoryRetirementPlanning Category = "retirement_planning"
	CategoryTaxPlanning        Category = "tax_planning"
	CategoryRiskManagement     Category = "risk_management"
	CategoryMarketAnalysis     Category = "market_analysis"
	CategoryGeneralAdvice      Category = "general_advice"
)

// Categorizer classifies question intent with ordered keyword rules.
//
// Thread Safety: Safe for concurrent use (read-only after construction).
type Categorizer struct {
	cfg *config.AdvisorConfig
}

// NewCategorizer creates a Categorizer over the given rule configuration.
func NewCategorizer(cfg *config.AdvisorConfig) *Categorizer {
	return &Categorizer{cfg: cfg}
}

// Categorize returns the intent category of a question.
//
// Description:
//
//	Rules run in configuration order and the first rule with any keyword
//	present (case-insensitive substring) wins. A question matching both
//	the investment and retirement keyword sets therefore resolves to
//	investment_advice. No rule matching yields the default category.
func (c *Categorizer) Categorize(question string) Category {
	lower := strings.ToLower(question)
	for _, rule := range c.cfg.Categories {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return Category(rule.Name)
			}
		}
	}
	return Category(c.cfg.DefaultCategory)
}
