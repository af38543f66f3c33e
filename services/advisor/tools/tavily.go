// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// =============================================================================
// Tavily Wire Types
// =============================================================================

const defaultTavilyBaseURL = "https://api.tavily.com/search"

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
}

type tavilyResponse struct {
	Results []tavilyResult `json:"results"`
}

type tavilyResult struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	URL     string  `json:"url"`
	Score   float64 `json:"score"`
}

// =============================================================================
// Client Implementation
// =============================================================================

// TavilyClient implements WebSearcher against the Tavily search API using
// raw net/http.
//
// Description:
//
//	Degraded conditions (missing key, timeout, upstream failure) surface as
//	explanatory result text rather than errors, so one search failure never
//	aborts the orchestrator's other branches.
//
// Thread Safety: TavilyClient is safe for concurrent use.
type TavilyClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	logger     *slog.Logger
}

// NewTavilyClient creates a TavilyClient from the TAVILY_API_KEY environment
// variable. The key may be empty; searches then return a configuration
// message instead of results.
func NewTavilyClient(logger *slog.Logger) *TavilyClient {
	return NewTavilyClientWithConfig(os.Getenv("TAVILY_API_KEY"), defaultTavilyBaseURL, logger)
}

// NewTavilyClientWithConfig creates a TavilyClient with explicit
// configuration. Useful for testing with mock servers.
func NewTavilyClientWithConfig(apiKey, baseURL string, logger *slog.Logger) *TavilyClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &TavilyClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// Search queries Tavily and formats the results as a plain-text listing.
func (c *TavilyClient) Search(ctx context.Context, query string) (string, error) {
	if c.apiKey == "" {
		c.logger.Warn("TAVILY_API_KEY not configured, skipping web search")
		return "Tavily API key not configured. Please set TAVILY_API_KEY in your environment variables.", nil
	}

	body, err := json.Marshal(tavilyRequest{APIKey: c.apiKey, Query: query, MaxResults: 5})
	if err != nil {
		return "", fmt.Errorf("marshal tavily request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build tavily request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("tavily search request", slog.String("query", query))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("tavily request failed", slog.String("error", err.Error()))
		return fmt.Sprintf("Error searching Tavily for '%s': %v", query, err), nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Sprintf("Error searching Tavily for '%s': %v", query, err), nil
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("tavily non-200 response",
			slog.Int("status", resp.StatusCode),
			slog.String("query", query),
		)
		return fmt.Sprintf("Tavily API request failed: status %d", resp.StatusCode), nil
	}

	var parsed tavilyResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Sprintf("Error searching Tavily for '%s': %v", query, err), nil
	}
	if len(parsed.Results) == 0 {
		return fmt.Sprintf("No results found for query: %s", query), nil
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "Found %d results for '%s':\n\n", len(parsed.Results), query)
	for _, r := range parsed.Results {
		fmt.Fprintf(&b, "%s\n%s\n%s\n", r.Title, r.Content, r.URL)
	}

	c.logger.Info("tavily search complete",
		slog.String("query", query),
		slog.Int("results", len(parsed.Results)),
	)
	return b.String(), nil
}
