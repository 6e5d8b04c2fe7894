// Copyright (C) 2025 Kodiak AI (maintainers@kodiakai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes provides data structures for the assistant service.
//
// This file contains request and response types for the chat and search
// endpoints. For retrieval-side domain types, see records.go.
package datatypes

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// MaxQueryBytes is the maximum size of a single chat query.
	// Guards against memory exhaustion from oversized payloads.
	MaxQueryBytes = 32 * 1024 // 32KB

	// DefaultConversationId is used when the client omits conversation_id.
	DefaultConversationId = "default"
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// chatValidate is the validator instance for chat datatypes.
// Initialized in init() with custom validators.
var chatValidate *validator.Validate

func init() {
	chatValidate = validator.New()
	_ = chatValidate.RegisterValidation("maxbytes", validateMaxBytes)
}

// validateMaxBytes checks byte length (not rune count) against MaxQueryBytes.
func validateMaxBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxQueryBytes
}

// =============================================================================
// Chat Request/Response
// =============================================================================

// ChatRequest represents the POST /api/chat request body.
//
// # Fields
//
//   - Query: Required. The user's natural-language question or message.
//     Limited to 32KB.
//   - ConversationId: Optional. Identifies the rolling conversation window
//     to read and append to. Defaults to DefaultConversationId when empty.
//
// # Validation
//
// Uses go-playground/validator:
//   - Query: required, max 32768 bytes
//
// # Examples
//
//	req := ChatRequest{
//	    Query:          "What did we decide about the rollout?",
//	    ConversationId: "conv_81f2",
//	}
type ChatRequest struct {
	Query          string `json:"query" validate:"required,maxbytes"`
	ConversationId string `json:"conversation_id"`
}

// Validate validates the ChatRequest fields.
func (r *ChatRequest) Validate() error {
	return chatValidate.Struct(r)
}

// EnsureDefaults applies the conversation id sentinel for empty requests.
func (r *ChatRequest) EnsureDefaults() {
	if r.ConversationId == "" {
		r.ConversationId = DefaultConversationId
	}
}

// ChatResponse represents the POST /api/chat response body.
//
// # Fields
//
//   - ResponseId: Unique identifier for this response (UUID v4),
//     generated server-side for log correlation.
//   - Timestamp: Unix timestamp in milliseconds (UTC).
//   - Answer: The synthesized answer text.
//   - Sources: Citations backing the answer, at most 5, sorted by
//     descending similarity. Empty for conversational turns.
//   - Confidence: Coarse confidence label derived from Sources.
type ChatResponse struct {
	ResponseId string          `json:"response_id"`
	Timestamp  int64           `json:"timestamp"`
	Answer     string          `json:"answer"`
	Sources    []Source        `json:"sources"`
	Confidence ConfidenceLevel `json:"confidence"`
}

// NewChatResponse creates a ChatResponse with auto-generated id and timestamp.
// A nil sources slice is normalized to an empty one so the JSON field is
// always an array.
func NewChatResponse(answer string, sources []Source, confidence ConfidenceLevel) *ChatResponse {
	if sources == nil {
		sources = []Source{}
	}
	return &ChatResponse{
		ResponseId: uuid.New().String(),
		Timestamp:  time.Now().UnixMilli(),
		Answer:     answer,
		Sources:    sources,
		Confidence: confidence,
	}
}

// =============================================================================
// Search Response
// =============================================================================

// SearchResponse represents the body of the read-only corpus search
// endpoints (GET /api/documents, GET /api/meetings).
type SearchResponse struct {
	Results []RetrievedRecord `json:"results"`
}
