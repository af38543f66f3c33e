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
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// =============================================================================
// Quote Wire Types
// =============================================================================

const defaultQuoteBaseURL = "https://query1.finance.yahoo.com/v7/finance/quote"

type quoteResponse struct {
	QuoteResponse struct {
		Result []quoteResult `json:"result"`
	} `json:"quoteResponse"`
}

type quoteResult struct {
	Symbol           string   `json:"symbol"`
	Price            *float64 `json:"regularMarketPrice"`
	PreviousClose    *float64 `json:"regularMarketPreviousClose"`
	Change           *float64 `json:"regularMarketChange"`
	ChangePercent    *float64 `json:"regularMarketChangePercent"`
	Volume           *int64   `json:"regularMarketVolume"`
	MarketCap        *int64   `json:"marketCap"`
	TrailingPE       *float64 `json:"trailingPE"`
	DividendYield    *float64 `json:"trailingAnnualDividendYield"`
	FiftyTwoWeekHigh *float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow  *float64 `json:"fiftyTwoWeekLow"`
}

// =============================================================================
// Client Implementation
// =============================================================================

// MarketDataClient implements MarketDataProvider against a Yahoo-style
// quote endpoint, with an optional TTL cache in front.
//
// Description:
//
//	Lookup failures never surface as errors: unknown symbols and transport
//	failures come back as the fixed "not found"/error texts the
//	orchestrator's failure markers recognize. Cache unavailability
//	degrades to direct lookups.
//
// Thread Safety: MarketDataClient is safe for concurrent use.
type MarketDataClient struct {
	httpClient *http.Client
	baseURL    string
	cache      QuoteCache // may be nil
	logger     *slog.Logger
}

// NewMarketDataClient creates a MarketDataClient. cache may be nil to
// disable quote caching.
func NewMarketDataClient(cache QuoteCache, logger *slog.Logger) *MarketDataClient {
	return NewMarketDataClientWithConfig(defaultQuoteBaseURL, cache, logger)
}

// NewMarketDataClientWithConfig creates a MarketDataClient with an explicit
// base URL. Useful for testing with mock servers.
func NewMarketDataClientWithConfig(baseURL string, cache QuoteCache, logger *slog.Logger) *MarketDataClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &MarketDataClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		cache:      cache,
		logger:     logger,
	}
}

// Quote fetches and formats quote data for a stock symbol.
func (c *MarketDataClient) Quote(ctx context.Context, symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || len(symbol) > 10 {
		return fmt.Sprintf("Invalid stock symbol: %s", symbol), nil
	}

	if c.cache != nil {
		if quote, ok := c.cache.Get(symbol); ok {
			c.logger.Debug("quote cache hit", slog.String("symbol", symbol))
			return quote, nil
		}
	}

	params := url.Values{}
	params.Set("symbols", symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build quote request: %w", err)
	}

	c.logger.Info("fetching market data", slog.String("symbol", symbol))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("quote request failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
		return fmt.Sprintf("Network error while fetching data for %s. Please try again later.", symbol), nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Sprintf("Error getting data for %s: %v", symbol, err), nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Sprintf("Stock symbol '%s' not found. Please verify the symbol is correct.", symbol), nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Network error while fetching data for %s. Please try again later.", symbol), nil
	}

	var parsed quoteResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Sprintf("Error getting data for %s: %v", symbol, err), nil
	}
	if len(parsed.QuoteResponse.Result) == 0 || parsed.QuoteResponse.Result[0].Price == nil {
		return fmt.Sprintf("No data found for stock symbol: %s. Please verify the symbol is correct.", symbol), nil
	}

	quote := formatQuote(symbol, parsed.QuoteResponse.Result[0])
	if c.cache != nil {
		c.cache.Set(symbol, quote)
	}
	c.logger.Info("market data retrieved", slog.String("symbol", symbol))
	return quote, nil
}

// formatQuote renders the fixed quote block the context parser's
// MarketData rules extract from.
func formatQuote(symbol string, q quoteResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stock: %s\n", symbol)
	fmt.Fprintf(&b, "Price: $%s\n", floatField(q.Price))
	fmt.Fprintf(&b, "Previous Close: $%s\n", floatField(q.PreviousClose))
	fmt.Fprintf(&b, "Change: %s\n", floatField(q.Change))
	fmt.Fprintf(&b, "Change %%: %s%%\n", floatField(q.ChangePercent))
	fmt.Fprintf(&b, "Volume: %s\n", intField(q.Volume))
	fmt.Fprintf(&b, "Market Cap: $%s\n", intField(q.MarketCap))
	fmt.Fprintf(&b, "P/E Ratio: %s\n", floatField(q.TrailingPE))
	fmt.Fprintf(&b, "Dividend Yield: %s\n", floatField(q.DividendYield))
	fmt.Fprintf(&b, "52 Week High: $%s\n", floatField(q.FiftyTwoWeekHigh))
	fmt.Fprintf(&b, "52 Week Low: $%s\n", floatField(q.FiftyTwoWeekLow))
	return b.String()
}

func floatField(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}

func intField(v *int64) string {
	if v == nil {
		return "N/A"
	}
	return groupThousands(*v)
}

// groupThousands formats an integer with comma separators (1234567 ->
// "1,234,567").
func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
