// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command advisorctl is the terminal client for the Aleutian Advisor server.
//
// Usage:
//
//	advisorctl ask "Should I rebalance into AAPL?"
//	advisorctl parse --source tavily < results.txt
//	advisorctl analytics
//	advisorctl analytics --reset
//	advisorctl health
//
// Set ALEUTIAN_ADVISOR_URL to point at a non-default server address.
package main

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// parseSource and analyticsReset hold flag values for the parse and
// analytics commands.
var (
	parseSource    string
	analyticsReset bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "advisorctl",
		Short: "Client for the Aleutian Advisor server",
		Long: "advisorctl talks to a running Aleutian Advisor server: ask questions,\n" +
			"parse raw source context blobs, and inspect usage analytics.",
	}

	askCmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the advisor a wealth management question",
		Args:  cobra.MinimumNArgs(1),
		Run:   runAskCommand,
	}

	parseCmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse a raw source context blob read from stdin",
		Run:   runParseCommand,
	}
	parseCmd.Flags().StringVar(&parseSource, "source", "", "Source hint: tavily, arxiv, yfinance, or rag")

	analyticsCmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show advisor usage analytics",
		Run:   runAnalyticsCommand,
	}
	analyticsCmd.Flags().BoolVar(&analyticsReset, "reset", false, "Reset analytics counters instead of reading them")

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check advisor server health",
		Run:   runHealthCommand,
	}

	rootCmd.AddCommand(askCmd, parseCmd, analyticsCmd, healthCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// getAdvisorBaseURL returns the advisor server address, honoring the
// ALEUTIAN_ADVISOR_URL override.
func getAdvisorBaseURL() string {
	if url := os.Getenv("ALEUTIAN_ADVISOR_URL"); url != "" {
		return strings.TrimRight(url, "/")
	}
	return "http://localhost:8080"
}
