// Copyright (C) 2025 Kodiak AI (maintainers@kodiakai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KodiakAI/kodiak/services/assistant/handlers"
	"github.com/KodiakAI/kodiak/services/assistant/rag"
	"github.com/KodiakAI/kodiak/services/assistant/services"
)

// SetupRoutes registers the assistant's HTTP surface.
//
// # Routes
//
//   - GET  /health         liveness probe
//   - GET  /metrics        Prometheus metrics
//   - POST /api/chat       the answering pipeline
//   - GET  /api/documents  read-only document corpus search
//   - GET  /api/meetings   read-only meeting corpus search
func SetupRoutes(router *gin.Engine, chatService *services.ChatService, retriever rag.Retriever) {
	router.GET("/health", handlers.HandleHealthCheck())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/chat", handlers.HandleChat(chatService))
		api.GET("/documents", handlers.HandleSearchDocuments(retriever))
		api.GET("/meetings", handlers.HandleSearchMeetings(retriever))
	}
}
