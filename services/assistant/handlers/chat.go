// Copyright (C) 2025 Kodiak AI (maintainers@kodiakai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers provides gin HTTP handlers for the assistant API.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/KodiakAI/kodiak/services/assistant/datatypes"
	"github.com/KodiakAI/kodiak/services/assistant/observability"
	"github.com/KodiakAI/kodiak/services/assistant/services"
)

var chatTracer = otel.Tracer("kodiak.assistant.handlers")

// HandleChat returns the handler for POST /api/chat.
//
// # Description
//
// Parses and validates the chat request, applies defaults (missing
// conversation_id maps to the shared default conversation), and runs the
// answering pipeline. Malformed or invalid bodies get 400; synthesis
// failures get 500. Retrieval-side failures never surface here: the
// pipeline degrades and still answers.
func HandleChat(service *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := chatTracer.Start(c.Request.Context(), "HandleChat")
		defer span.End()

		var req datatypes.ChatRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to parse the chat request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		req.EnsureDefaults()
		if err := req.Validate(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Warn("Chat request failed validation", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		resp, err := service.Process(ctx, &req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Chat pipeline failed", "error", err)
			if m := observability.DefaultMetrics; m != nil {
				m.RecordRequest("chat", false)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if m := observability.DefaultMetrics; m != nil {
			m.RecordRequest("chat", true)
		}
		c.JSON(http.StatusOK, resp)
	}
}
