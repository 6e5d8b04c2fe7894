// Copyright (C) 2025 Kodiak AI (maintainers@kodiakai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/KodiakAI/kodiak/services/assistant/datatypes"
	"github.com/KodiakAI/kodiak/services/assistant/observability"
	"github.com/KodiakAI/kodiak/services/assistant/rag"
)

const defaultSearchLimit = 10

// searchParams extracts the q and limit query parameters. A missing or
// unparsable limit falls back to the default.
func searchParams(c *gin.Context) (query string, limit int, ok bool) {
	query = c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter 'q'"})
		return "", 0, false
	}

	limit = defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return query, limit, true
}

// HandleSearchDocuments returns the handler for GET /api/documents.
//
// # Description
//
// Runs a single-query similarity search against the document corpus and
// returns the raw records. Read-only: no memory, no expansion, no
// synthesis. Search failures surface as an empty result list.
func HandleSearchDocuments(retriever rag.Retriever) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := chatTracer.Start(c.Request.Context(), "HandleSearchDocuments")
		defer span.End()

		query, limit, ok := searchParams(c)
		if !ok {
			return
		}

		docs, _ := retriever.SearchBoth(ctx, query, limit)
		if docs == nil {
			docs = []datatypes.RetrievedRecord{}
		}
		if m := observability.DefaultMetrics; m != nil {
			m.RecordRequest("documents", true)
		}
		c.JSON(http.StatusOK, datatypes.SearchResponse{Results: docs})
	}
}

// HandleSearchMeetings returns the handler for GET /api/meetings.
//
// Mirror of HandleSearchDocuments for the meeting corpus.
func HandleSearchMeetings(retriever rag.Retriever) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := chatTracer.Start(c.Request.Context(), "HandleSearchMeetings")
		defer span.End()

		query, limit, ok := searchParams(c)
		if !ok {
			return
		}

		_, meetings := retriever.SearchBoth(ctx, query, limit)
		if meetings == nil {
			meetings = []datatypes.RetrievedRecord{}
		}
		if m := observability.DefaultMetrics; m != nil {
			m.RecordRequest("meetings", true)
		}
		c.JSON(http.StatusOK, datatypes.SearchResponse{Results: meetings})
	}
}
