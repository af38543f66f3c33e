// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// queryResponse mirrors the server's orchestration result.
type queryResponse struct {
	QueryID        string        `json:"query_id"`
	Response       string        `json:"response"`
	Context        []contextItem `json:"context,omitempty"`
	ToolsUsed      []string      `json:"tools_used"`
	Confidence     float64       `json:"confidence"`
	ProcessingTime float64       `json:"processing_time"`
	Category       string        `json:"category"`
}

type contextItem struct {
	Content string `json:"content"`
	Type    string `json:"type"`
}

// parseResponse mirrors the server's context parsing result.
type parseResponse struct {
	Source          string `json:"source"`
	RecordCount     int    `json:"record_count"`
	FormattedOutput string `json:"formatted_output"`
}

// analyticsResponse mirrors the server's analytics snapshot.
type analyticsResponse struct {
	TotalQueries        int64            `json:"total_queries"`
	SuccessfulQueries   int64            `json:"successful_queries"`
	FailedQueries       int64            `json:"failed_queries"`
	AverageResponseTime float64          `json:"average_response_time"`
	ToolUsage           map[string]int64 `json:"most_used_tools"`
	QueryCategories     map[string]int64 `json:"query_categories"`
}

func runAskCommand(_ *cobra.Command, args []string) {
	question := strings.Join(args, " ")
	fmt.Printf("Asking: %s\n", question)
	fmt.Println("---")

	body, err := postJSON("/v1/advisor/query", map[string]any{"question": question}, 3*time.Minute)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	var result queryResponse
	if err := json.Unmarshal(body, &result); err != nil {
		log.Printf("Raw response from advisor: %s", string(body))
		log.Fatalf("failed to parse advisor response: %v", err)
	}

	fmt.Printf("\nAnswer:\n%s\n", result.Response)
	fmt.Printf("\n[category: %s, confidence: %.2f, %.2fs]\n",
		result.Category, result.Confidence, result.ProcessingTime)
	if len(result.ToolsUsed) > 0 {
		fmt.Printf("Sources consulted: %s\n", strings.Join(result.ToolsUsed, ", "))
	}
	if len(result.Context) > 0 {
		fmt.Println("\nContext:")
		for i, item := range result.Context {
			fmt.Printf("%d. [%s] %s\n", i+1, item.Type, item.Content)
		}
	}
	fmt.Println("\n---")
}

func runParseCommand(_ *cobra.Command, _ []string) {
	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		log.Fatalf("failed to read stdin: %v", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		log.Fatalf("Usage: advisorctl parse [--source tavily] < context.txt")
	}

	payload := map[string]any{"context": string(raw)}
	if parseSource != "" {
		payload["source"] = parseSource
	}

	body, err := postJSON("/v1/advisor/context/parse", payload, 30*time.Second)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	var result parseResponse
	if err := json.Unmarshal(body, &result); err != nil {
		log.Printf("Raw response from advisor: %s", string(body))
		log.Fatalf("failed to parse advisor response: %v", err)
	}

	fmt.Printf("Source: %s (%d records)\n", result.Source, result.RecordCount)
	fmt.Println("---")
	fmt.Println(result.FormattedOutput)
}

func runAnalyticsCommand(_ *cobra.Command, _ []string) {
	if analyticsReset {
		if _, err := postJSON("/v1/advisor/analytics/reset", map[string]any{}, 30*time.Second); err != nil {
			log.Fatalf("Error: %v", err)
		}
		fmt.Println("Analytics reset.")
		return
	}

	body, err := getJSON("/v1/advisor/analytics", 30*time.Second)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	var result analyticsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		log.Printf("Raw response from advisor: %s", string(body))
		log.Fatalf("failed to parse advisor response: %v", err)
	}

	fmt.Printf("Total queries:      %d\n", result.TotalQueries)
	fmt.Printf("Successful:         %d\n", result.SuccessfulQueries)
	fmt.Printf("Failed:             %d\n", result.FailedQueries)
	fmt.Printf("Avg response time:  %.3fs\n", result.AverageResponseTime)
	if len(result.ToolUsage) > 0 {
		fmt.Println("\nTool usage:")
		for tool, n := range result.ToolUsage {
			fmt.Printf("  %-16s %d\n", tool, n)
		}
	}
	if len(result.QueryCategories) > 0 {
		fmt.Println("\nQuery categories:")
		for category, n := range result.QueryCategories {
			fmt.Printf("  %-24s %d\n", category, n)
		}
	}
}

func runHealthCommand(_ *cobra.Command, _ []string) {
	body, err := getJSON("/v1/advisor/health", 10*time.Second)
	if err != nil {
		log.Fatalf("Error: advisor server unavailable at %s: %v", getAdvisorBaseURL(), err)
	}
	fmt.Println(string(body))
}

func postJSON(path string, payload map[string]any, timeout time.Duration) ([]byte, error) {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create request body: %w", err)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(getAdvisorBaseURL()+path, "application/json", bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to reach advisor server: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Error("failed to close response body", "error", closeErr)
		}
	}()

	return readResponse(resp)
}

func getJSON(path string, timeout time.Duration) ([]byte, error) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(getAdvisorBaseURL() + path)
	if err != nil {
		return nil, fmt.Errorf("failed to reach advisor server: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Error("failed to close response body", "error", closeErr)
		}
	}()

	return readResponse(resp)
}

func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read advisor response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("advisor returned an error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
