// Copyright (C) 2025 Kodiak AI (maintainers@kodiakai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"testing"

	"github.com/weaviate/weaviate/entities/models"
)

// =============================================================================
// ParseGraphQLResponse Tests
// =============================================================================

func TestParseGraphQLResponse_NilResponse(t *testing.T) {
	if _, err := ParseGraphQLResponse[DocumentSearchResponse](nil); err == nil {
		t.Error("expected error for nil response, got nil")
	}
}

func TestParseGraphQLResponse_GraphQLErrors(t *testing.T) {
	resp := &models.GraphQLResponse{
		Errors: []*models.GraphQLError{{Message: "class not found"}},
	}

	if _, err := ParseGraphQLResponse[DocumentSearchResponse](resp); err == nil {
		t.Error("expected error when the response carries GraphQL errors, got nil")
	}
}

func TestParseGraphQLResponse_ParsesDocuments(t *testing.T) {
	certainty := 0.87
	resp := &models.GraphQLResponse{
		Data: map[string]models.JSONObject{
			"Get": map[string]interface{}{
				"AccountDocument": []interface{}{
					map[string]interface{}{
						"content": "the rollout plan",
						"title":   "Rollout Plan",
						"_additional": map[string]interface{}{
							"id":        "doc-1",
							"certainty": certainty,
						},
					},
				},
			},
		},
	}

	parsed, err := ParseGraphQLResponse[DocumentSearchResponse](resp)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(parsed.Get.AccountDocument) != 1 {
		t.Fatalf("expected 1 document, got %d", len(parsed.Get.AccountDocument))
	}

	rec := parsed.Get.AccountDocument[0].ToRecord()
	if rec.Id != "doc-1" {
		t.Errorf("expected id doc-1, got %q", rec.Id)
	}
	if rec.Similarity != certainty {
		t.Errorf("expected similarity %v, got %v", certainty, rec.Similarity)
	}
	if rec.Document == nil || rec.Document.Title != "Rollout Plan" {
		t.Error("expected document metadata to carry the title")
	}
	if rec.Meeting != nil {
		t.Error("expected meeting metadata to be nil for a document record")
	}
}

func TestMeetingResult_ToRecord_JoinsParticipants(t *testing.T) {
	m := MeetingResult{
		Content:      "notes",
		MeetingTitle: "Weekly Sync",
		Participants: []string{"A. Reyes", "J. Park"},
	}

	rec := m.ToRecord()
	if rec.Meeting == nil {
		t.Fatal("expected meeting metadata")
	}
	if rec.Meeting.Participants != "A. Reyes, J. Park" {
		t.Errorf("expected joined participants, got %q", rec.Meeting.Participants)
	}
	if rec.Similarity != 0 {
		t.Errorf("expected zero similarity when certainty is absent, got %v", rec.Similarity)
	}
}
