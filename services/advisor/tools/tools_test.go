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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// =============================================================================
// Tavily Client
// =============================================================================

func TestTavilySearchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[
			{"title":"Dividend Basics","content":"Dividends explained.","url":"https://example.com/a"},
			{"title":"Yield Traps","content":"What to avoid.","url":"https://example.com/b"}
		]}`))
	}))
	defer server.Close()

	client := NewTavilyClientWithConfig("test-key", server.URL, nil)
	out, err := client.Search(context.Background(), "dividend stocks")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if !strings.Contains(out, "Found 2 results for 'dividend stocks':") {
		t.Errorf("missing result header in output: %q", out)
	}
	if !strings.Contains(out, "Dividend Basics") || !strings.Contains(out, "https://example.com/b") {
		t.Errorf("missing result fields in output: %q", out)
	}
}

func TestTavilySearchNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	client := NewTavilyClientWithConfig("test-key", server.URL, nil)
	out, err := client.Search(context.Background(), "obscure topic")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if out != "No results found for query: obscure topic" {
		t.Errorf("unexpected no-results text: %q", out)
	}
}

func TestTavilySearchDegradesOnFailure(t *testing.T) {
	tests := []struct {
		name   string
		client *TavilyClient
		want   string
	}{
		{
			name:   "missing api key",
			client: NewTavilyClientWithConfig("", "http://unused", nil),
			want:   "Tavily API key not configured",
		},
		{
			name:   "unreachable endpoint",
			client: NewTavilyClientWithConfig("test-key", "http://127.0.0.1:1", nil),
			want:   "Error searching Tavily",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.client.Search(context.Background(), "anything")
			if err != nil {
				t.Fatalf("degraded path must not return error, got: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("expected %q in output, got %q", tt.want, out)
			}
		})
	}
}

func TestTavilySearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewTavilyClientWithConfig("test-key", server.URL, nil)
	out, err := client.Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if !strings.Contains(out, "Tavily API request failed: status 502") {
		t.Errorf("unexpected failure text: %q", out)
	}
}

// =============================================================================
// ArXiv Client
// =============================================================================

const arxivFeedFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2301.00001v1</id>
    <title>Portfolio Optimization
    with  Deep Learning</title>
    <summary>We study portfolio construction using neural networks and show improved risk-adjusted returns across several market regimes.</summary>
    <published>2023-01-02T10:00:00Z</published>
    <author><name>A. Researcher</name></author>
    <author><name>B. Scholar</name></author>
  </entry>
</feed>`

func TestArxivSearchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("search_query"); got != "all:portfolio optimization" {
			t.Errorf("unexpected search_query: %q", got)
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(arxivFeedFixture))
	}))
	defer server.Close()

	client := NewArxivClientWithConfig(server.URL, nil)
	out, err := client.Search(context.Background(), "portfolio optimization")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if !strings.Contains(out, "Found 1 papers for 'portfolio optimization':") {
		t.Errorf("missing header in output: %q", out)
	}
	if !strings.Contains(out, "Portfolio Optimization with Deep Learning") {
		t.Errorf("title whitespace not collapsed: %q", out)
	}
	if !strings.Contains(out, "Authors: A. Researcher, B. Scholar") {
		t.Errorf("missing authors line: %q", out)
	}
	if !strings.Contains(out, "Published: 2023-01-02") {
		t.Errorf("missing published date: %q", out)
	}
}

func TestArxivSearchNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0"?><feed xmlns="http://www.w3.org/2005/Atom"></feed>`))
	}))
	defer server.Close()

	client := NewArxivClientWithConfig(server.URL, nil)
	out, err := client.Search(context.Background(), "nothing here")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if out != "No papers found for query: nothing here" {
		t.Errorf("unexpected no-results text: %q", out)
	}
}

// =============================================================================
// Market Data Client
// =============================================================================

type fakeQuoteCache struct {
	store map[string]string
	sets  int
}

func newFakeQuoteCache() *fakeQuoteCache {
	return &fakeQuoteCache{store: make(map[string]string)}
}

func (c *fakeQuoteCache) Get(symbol string) (string, bool) {
	v, ok := c.store[symbol]
	return v, ok
}

func (c *fakeQuoteCache) Set(symbol, quote string) {
	c.store[symbol] = quote
	c.sets++
}

const quoteFixture = `{"quoteResponse":{"result":[{
	"symbol":"AAPL",
	"regularMarketPrice":190.25,
	"regularMarketPreviousClose":188.50,
	"regularMarketChange":1.75,
	"regularMarketChangePercent":0.93,
	"regularMarketVolume":52034567,
	"marketCap":2950000000000,
	"trailingPE":29.81,
	"trailingAnnualDividendYield":0.55,
	"fiftyTwoWeekHigh":199.62,
	"fiftyTwoWeekLow":164.08
}],"error":null}}`

func TestMarketDataQuoteSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbols"); got != "AAPL" {
			t.Errorf("unexpected symbols param: %q", got)
		}
		w.Write([]byte(quoteFixture))
	}))
	defer server.Close()

	client := NewMarketDataClientWithConfig(server.URL, nil, nil)
	out, err := client.Quote(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("Quote returned error: %v", err)
	}
	for _, want := range []string{
		"Stock: AAPL\n",
		"Price: $190.25\n",
		"Previous Close: $188.50\n",
		"Change: 1.75\n",
		"Change %: 0.93%\n",
		"Volume: 52,034,567\n",
		"Market Cap: $2,950,000,000,000\n",
		"P/E Ratio: 29.81\n",
		"52 Week High: $199.62\n",
		"52 Week Low: $164.08\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in quote block:\n%s", want, out)
		}
	}
}

func TestMarketDataQuoteUsesCache(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(quoteFixture))
	}))
	defer server.Close()

	cache := newFakeQuoteCache()
	client := NewMarketDataClientWithConfig(server.URL, cache, nil)

	first, err := client.Quote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("first Quote returned error: %v", err)
	}
	second, err := client.Quote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("second Quote returned error: %v", err)
	}
	if first != second {
		t.Errorf("cached quote differs from fetched quote")
	}
	if calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", calls)
	}
	if cache.sets != 1 {
		t.Errorf("expected 1 cache write, got %d", cache.sets)
	}
}

func TestMarketDataQuoteFailures(t *testing.T) {
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer notFound.Close()
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteResponse":{"result":[],"error":null}}`))
	}))
	defer empty.Close()

	tests := []struct {
		name    string
		baseURL string
		symbol  string
		want    string
	}{
		{"empty symbol", notFound.URL, "", "Invalid stock symbol:"},
		{"oversized symbol", notFound.URL, "ABCDEFGHIJK", "Invalid stock symbol:"},
		{"symbol not found", notFound.URL, "NOPE", "Stock symbol 'NOPE' not found. Please verify the symbol is correct."},
		{"no data", empty.URL, "ZZZZ", "No data found for stock symbol: ZZZZ. Please verify the symbol is correct."},
		{"network error", "http://127.0.0.1:1", "AAPL", "Network error while fetching data for AAPL. Please try again later."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewMarketDataClientWithConfig(tt.baseURL, nil, nil)
			out, err := client.Quote(context.Background(), tt.symbol)
			if err != nil {
				t.Fatalf("degraded path must not return error, got: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("expected %q in output, got %q", tt.want, out)
			}
		})
	}
}

func TestGroupThousands(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-52034567, "-52,034,567"},
	}
	for _, tt := range tests {
		if got := groupThousands(tt.in); got != tt.want {
			t.Errorf("groupThousands(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// =============================================================================
// Knowledge Base Helpers
// =============================================================================

func TestRetrievalScore(t *testing.T) {
	tests := []struct {
		n    int
		want float64
	}{
		{0, 0.0},
		{1, 0.2},
		{5, 1.0},
		{7, 1.0},
	}
	for _, tt := range tests {
		if got := retrievalScore(tt.n); got != tt.want {
			t.Errorf("retrievalScore(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}
