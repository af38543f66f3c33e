// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command advisor starts the Aleutian Advisor API server.
//
// The advisor answers wealth-management questions by fanning each query
// out to four information sources (web search, academic papers, market
// data, and a document knowledge base) and fusing the informative
// results into one narrative.
//
// Usage:
//
//	go run ./cmd/advisor
//	go run ./cmd/advisor -port 9090
//
// With all sources enabled:
//
//	TAVILY_API_KEY=... OPENAI_API_KEY=... WEAVIATE_HOST=localhost:8080 \
//	  go run ./cmd/advisor
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/advisor/health
//
//	# Ask a question
//	curl -X POST http://localhost:8080/v1/advisor/query \
//	  -H "Content-Type: application/json" \
//	  -d '{"question": "Should I rebalance into AAPL?"}'
//
//	# Parse a raw source context blob
//	curl -X POST http://localhost:8080/v1/advisor/context/parse \
//	  -H "Content-Type: application/json" \
//	  -d '{"context": "Stock: AAPL\nPrice: $190.25\n"}'
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/AleutianAI/AleutianAdvisor/services/advisor"
	"github.com/AleutianAI/AleutianAdvisor/services/advisor/contextparse"
	badgerstore "github.com/AleutianAI/AleutianAdvisor/services/advisor/storage/badger"
	"github.com/AleutianAI/AleutianAdvisor/services/advisor/tools"
)

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	debug := flag.Bool("debug", false, "Enable debug mode")
	flag.Parse()

	if *debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// W3C TraceContext propagation: trace context from incoming headers
	// flows through otelgin into every handler and collaborator call.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	ctx := context.Background()
	logger := slog.Default()

	collab, quoteStore, toolCount := buildCollaborators(logger)

	stats := advisor.NewStatsRecorder()
	orch, err := advisor.NewOrchestrator(ctx, collab, stats, logger)
	if err != nil {
		slog.Error("Failed to build orchestrator", slog.String("error", err.Error()))
		os.Exit(1)
	}

	parser := contextparse.NewParser(logger)
	handlers := advisor.NewHandlers(orch, parser, stats, toolCount, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("aleutian-advisor"))
	if *debug {
		router.Use(gin.Logger())
	}

	v1 := router.Group("/v1")
	advisor.RegisterRoutes(v1, handlers)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	printBanner(*port, toolCount)

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		slog.Info("Shutting down Aleutian Advisor server")
		if quoteStore != nil {
			if err := quoteStore.Close(); err != nil {
				slog.Warn("Failed to close quote store", slog.String("error", err.Error()))
			}
		}
		os.Exit(0)
	}()

	addr := fmt.Sprintf(":%d", *port)
	slog.Info("Starting Aleutian Advisor server", slog.String("address", addr))
	if err := router.Run(addr); err != nil {
		slog.Error("Failed to start server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildCollaborators constructs every source collaborator the environment
// supports. Each source degrades independently: a missing key or an
// unreachable backing service disables that source only.
func buildCollaborators(logger *slog.Logger) (advisor.Collaborators, *badgerstore.QuoteStore, int) {
	var collab advisor.Collaborators
	count := 0

	if os.Getenv("TAVILY_API_KEY") != "" {
		collab.Web = tools.NewTavilyClient(logger)
		count++
	} else {
		slog.Warn("TAVILY_API_KEY not set, web search disabled")
	}

	// arXiv needs no credentials.
	collab.Papers = tools.NewArxivClient(logger)
	count++

	// Quote cache: degrade to uncached lookups if BadgerDB is unavailable.
	var quoteStore *badgerstore.QuoteStore
	cacheDir := os.Getenv("QUOTE_CACHE_DIR")
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			cacheDir = filepath.Join(home, ".aleutian", "cache", "quotes")
		}
	}
	if cacheDir != "" {
		store, err := badgerstore.Open(badgerstore.DefaultConfig(cacheDir), logger)
		if err != nil {
			slog.Warn("Quote cache BadgerDB unavailable, lookups uncached",
				slog.String("dir", cacheDir),
				slog.String("error", err.Error()),
			)
		} else {
			quoteStore = store
		}
	}
	var cache tools.QuoteCache
	if quoteStore != nil {
		cache = quoteStore
	}
	collab.Market = tools.NewMarketDataClient(cache, logger)
	count++

	weaviateHost := os.Getenv("WEAVIATE_HOST")
	if weaviateHost != "" && os.Getenv("OPENAI_API_KEY") != "" {
		model := os.Getenv("ADVISOR_SYNTHESIS_MODEL")
		if model == "" {
			model = "gpt-4o"
		}
		kb, err := tools.NewWeaviateKnowledgeBase(weaviateHost, "http", model, logger)
		if err != nil {
			slog.Warn("Knowledge base unavailable",
				slog.String("host", weaviateHost),
				slog.String("error", err.Error()),
			)
		} else {
			collab.Knowledge = kb
			count++
		}
	} else {
		slog.Warn("WEAVIATE_HOST or OPENAI_API_KEY not set, knowledge base disabled")
	}

	return collab, quoteStore, count
}

func printBanner(port, toolCount int) {
	banner := `
╔═══════════════════════════════════════════════════════════════════╗
║                     ALEUTIAN ADVISOR SERVER                       ║
╠═══════════════════════════════════════════════════════════════════╣
║                                                                   ║
║  Multi-source wealth management advisory.                         ║
║  Sources enabled: %d of 4                                          ║
║                                                                   ║
║  Quick Start:                                                     ║
║  ┌─────────────────────────────────────────────────────────────┐  ║
║  │ # Health check                                              │  ║
║  │ curl http://localhost:%d/v1/advisor/health            │  ║
║  │                                                             │  ║
║  │ # Ask a question                                            │  ║
║  │ curl -X POST http://localhost:%d/v1/advisor/query \   │  ║
║  │   -H "Content-Type: application/json" \                     │  ║
║  │   -d '{"question": "How should I diversify?"}'              │  ║
║  │                                                             │  ║
║  │ # Usage analytics                                           │  ║
║  │ curl http://localhost:%d/v1/advisor/analytics         │  ║
║  └─────────────────────────────────────────────────────────────┘  ║
║                                                                   ║
║  Endpoints:                                                       ║
║  ├── Query: /query, /query/stream                                 ║
║  ├── Parsing: /context/parse                                      ║
║  ├── Analytics: /analytics, /analytics/reset                      ║
║  └── Health: /health, /ready, /metrics                            ║
║                                                                   ║
║  Press Ctrl+C to stop                                             ║
╚═══════════════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, toolCount, port, port, port)
}
