// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package advisor

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all advisor routes with the router.
//
// Description:
//
//	Registers all /v1/advisor/* endpoints with the given Gin router group.
//	The router group should already have any required middleware applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Endpoints:
//
//	POST /v1/advisor/query - Process a query through all sources
//	POST /v1/advisor/query/stream - Scripted progress sequence as SSE
//	POST /v1/advisor/context/parse - Parse a raw source context blob
//	GET  /v1/advisor/analytics - Usage statistics snapshot
//	POST /v1/advisor/analytics/reset - Clear usage statistics
//	GET  /v1/advisor/health - Health check
//	GET  /v1/advisor/ready - Readiness check
//
// Example:
//
//	stats := advisor.NewStatsRecorder()
//	orch, _ := advisor.NewOrchestrator(ctx, collab, stats, logger)
//	handlers := advisor.NewHandlers(orch, parser, stats, 4, logger)
//
//	v1 := router.Group("/v1")
//	advisor.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	adv := rg.Group("/advisor")
	{
		// Query processing
		adv.POST("/query", handlers.HandleQuery)
		adv.POST("/query/stream", handlers.HandleQueryStream)

		// Context parsing
		adv.POST("/context/parse", handlers.HandleParseContext)

		// Usage analytics
		adv.GET("/analytics", handlers.HandleAnalytics)
		adv.POST("/analytics/reset", handlers.HandleResetAnalytics)

		// Health checks
		adv.GET("/health", handlers.HandleHealth)
		adv.GET("/ready", handlers.HandleReady)
	}
}
