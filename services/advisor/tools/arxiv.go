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
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// =============================================================================
// arXiv Atom Wire Types
// =============================================================================

const defaultArxivBaseURL = "http://export.arxiv.org/api/query"

type arxivFeed struct {
	XMLName xml.Name     `xml:"feed"`
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// =============================================================================
// Client Implementation
// =============================================================================

// ArxivClient implements PaperSearcher against the arXiv Atom API.
//
// Thread Safety: ArxivClient is safe for concurrent use.
type ArxivClient struct {
	httpClient *http.Client
	baseURL    string
	maxResults int
	logger     *slog.Logger
}

// NewArxivClient creates an ArxivClient. No API key is required.
func NewArxivClient(logger *slog.Logger) *ArxivClient {
	return NewArxivClientWithConfig(defaultArxivBaseURL, logger)
}

// NewArxivClientWithConfig creates an ArxivClient with an explicit base URL.
// Useful for testing with mock servers.
func NewArxivClientWithConfig(baseURL string, logger *slog.Logger) *ArxivClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArxivClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		maxResults: 5,
		logger:     logger,
	}
}

// Search queries arXiv (newest submissions first) and formats the papers as
// a numbered plain-text listing. Summaries are clipped to 200 characters.
func (c *ArxivClient) Search(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("max_results", fmt.Sprintf("%d", c.maxResults))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build arxiv request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("arxiv request failed", slog.String("error", err.Error()))
		return fmt.Sprintf("Error searching ArXiv for '%s': %v", query, err), nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Sprintf("Error searching ArXiv for '%s': %v", query, err), nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Error searching ArXiv for '%s': status %d", query, resp.StatusCode), nil
	}

	var feed arxivFeed
	if err := xml.Unmarshal(raw, &feed); err != nil {
		return fmt.Sprintf("Error searching ArXiv for '%s': %v", query, err), nil
	}
	if len(feed.Entries) == 0 {
		return fmt.Sprintf("No papers found for query: %s", query), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d papers for '%s':\n\n", len(feed.Entries), query)
	for i, entry := range feed.Entries {
		names := make([]string, 0, len(entry.Authors))
		for _, a := range entry.Authors {
			names = append(names, strings.TrimSpace(a.Name))
		}
		summary := collapseWhitespace(entry.Summary)
		if len([]rune(summary)) > 200 {
			summary = string([]rune(summary)[:200]) + "..."
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, collapseWhitespace(entry.Title))
		fmt.Fprintf(&b, "   Authors: %s\n", strings.Join(names, ", "))
		fmt.Fprintf(&b, "   Published: %s\n", publishedDate(entry.Published))
		fmt.Fprintf(&b, "   Summary: %s\n", summary)
		fmt.Fprintf(&b, "   URL: %s\n\n", strings.TrimSpace(entry.ID))
	}

	c.logger.Info("arxiv search complete",
		slog.String("query", query),
		slog.Int("papers", len(feed.Entries)),
	)
	return b.String(), nil
}

// collapseWhitespace flattens the Atom feed's hard-wrapped text into single
// spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// publishedDate reduces an Atom timestamp (2024-03-01T12:00:00Z) to its
// date part.
func publishedDate(ts string) string {
	ts = strings.TrimSpace(ts)
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.Format("2006-01-02")
	}
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}
