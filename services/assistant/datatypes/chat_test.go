// Copyright (C) 2025 Kodiak AI (maintainers@kodiakai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"strings"
	"testing"
)

// =============================================================================
// ChatRequest Validation Tests
// =============================================================================

func TestChatRequest_Validate_Success(t *testing.T) {
	req := &ChatRequest{
		Query:          "What did we discuss in the last meeting?",
		ConversationId: "conv-1",
	}

	if err := req.Validate(); err != nil {
		t.Errorf("expected valid request, got error: %v", err)
	}
}

func TestChatRequest_Validate_MissingQuery(t *testing.T) {
	req := &ChatRequest{ConversationId: "conv-1"}

	if err := req.Validate(); err == nil {
		t.Error("expected error for missing query, got nil")
	}
}

func TestChatRequest_Validate_QueryAtLimit(t *testing.T) {
	req := &ChatRequest{Query: strings.Repeat("a", MaxQueryBytes)}

	if err := req.Validate(); err != nil {
		t.Errorf("expected query at the byte limit to validate, got error: %v", err)
	}
}

func TestChatRequest_Validate_QueryTooLarge(t *testing.T) {
	req := &ChatRequest{Query: strings.Repeat("a", MaxQueryBytes+1)}

	if err := req.Validate(); err == nil {
		t.Error("expected error for oversized query, got nil")
	}
}

func TestChatRequest_EnsureDefaults(t *testing.T) {
	req := &ChatRequest{Query: "hello"}
	req.EnsureDefaults()

	if req.ConversationId != DefaultConversationId {
		t.Errorf("expected conversation id %q, got %q", DefaultConversationId, req.ConversationId)
	}

	req = &ChatRequest{Query: "hello", ConversationId: "conv-2"}
	req.EnsureDefaults()

	if req.ConversationId != "conv-2" {
		t.Errorf("expected conversation id to be preserved, got %q", req.ConversationId)
	}
}

// =============================================================================
// ChatResponse Tests
// =============================================================================

func TestNewChatResponse_PopulatesIdentity(t *testing.T) {
	resp := NewChatResponse("answer", nil, ConfidenceLow)

	if resp.ResponseId == "" {
		t.Error("expected a generated response id")
	}
	if resp.Timestamp == 0 {
		t.Error("expected a non-zero timestamp")
	}
	if resp.Answer != "answer" {
		t.Errorf("expected answer to carry through, got %q", resp.Answer)
	}
}

func TestNewChatResponse_NormalizesNilSources(t *testing.T) {
	resp := NewChatResponse("answer", nil, ConfidenceHigh)

	if resp.Sources == nil {
		t.Error("expected nil sources to be normalized to an empty slice")
	}
	if len(resp.Sources) != 0 {
		t.Errorf("expected empty sources, got %d", len(resp.Sources))
	}
}
