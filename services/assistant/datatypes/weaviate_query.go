// Copyright (C) 2025 Kodiak AI (maintainers@kodiakai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/weaviate/weaviate/entities/models"
)

// =============================================================================
// Generic GraphQL Response Parser
// =============================================================================

// ParseGraphQLResponse parses a Weaviate GraphQL response into the target type.
//
// # Description
//
// This generic function encapsulates the marshal/unmarshal pattern required to
// convert Weaviate's dynamic response (map[string]models.JSONObject) into a
// strongly-typed Go struct. The target type T must have json tags matching
// the expected response shape.
//
// # Type Parameters
//
//   - T: The target struct type with json tags matching the response shape.
//
// # Inputs
//
//   - resp: The GraphQL response from Weaviate client's Do() method.
//
// # Outputs
//
//   - *T: Pointer to the parsed struct.
//   - error: Non-nil if response is nil, carries GraphQL errors, or parsing fails.
//
// # Example
//
//	resp, err := client.GraphQL().Get().WithClassName("AccountDocument").Do(ctx)
//	if err != nil { ... }
//
//	parsed, err := ParseGraphQLResponse[DocumentSearchResponse](resp)
//	if err != nil { ... }
//
//	for _, d := range parsed.Get.AccountDocument {
//	    fmt.Println(d.Additional.ID)
//	}
//
// # Limitations
//
//   - Requires the target type to exactly match the expected response structure.
//   - Type mismatches will result in zero values, not errors.
//
// # Assumptions
//
//   - The response Data field is JSON-marshalable.
//   - The target type T has correct json tags.
func ParseGraphQLResponse[T any](resp *models.GraphQLResponse) (*T, error) {
	if resp == nil {
		return nil, fmt.Errorf("nil GraphQL response")
	}

	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("GraphQL query returned errors: %v", resp.Errors[0].Message)
	}

	respBytes, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GraphQL response data: %w", err)
	}

	var result T
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal into target type: %w", err)
	}

	return &result, nil
}

// =============================================================================
// Corpus Query Response Types
// =============================================================================

// DocumentSearchResponse represents a similarity search against the
// AccountDocument class.
type DocumentSearchResponse struct {
	Get struct {
		AccountDocument []DocumentResult `json:"AccountDocument"`
	} `json:"Get"`
}

// DocumentResult represents a single document chunk from a query.
type DocumentResult struct {
	Content    string `json:"content"`
	Title      string `json:"title"`
	Filename   string `json:"filename"`
	Source     string `json:"source"`
	UploadDate string `json:"upload_date"`
	CreatedAt  string `json:"created_at"`
	URL        string `json:"url"`
	FileURL    string `json:"file_url"`
	Additional struct {
		ID        string   `json:"id"`
		Certainty *float64 `json:"certainty"`
	} `json:"_additional"`
}

// MeetingSearchResponse represents a similarity search against the
// AccountMeeting class.
type MeetingSearchResponse struct {
	Get struct {
		AccountMeeting []MeetingResult `json:"AccountMeeting"`
	} `json:"Get"`
}

// MeetingResult represents a single meeting transcript chunk from a query.
type MeetingResult struct {
	Content       string   `json:"content"`
	MeetingTitle  string   `json:"meeting_title"`
	Title         string   `json:"title"`
	MeetingDate   string   `json:"meeting_date"`
	Date          string   `json:"date"`
	MeetingURL    string   `json:"meeting_url"`
	URL           string   `json:"url"`
	TranscriptURL string   `json:"transcript_url"`
	Participants  []string `json:"participants"`
	Speakers      []string `json:"speakers"`
	Additional    struct {
		ID        string   `json:"id"`
		Certainty *float64 `json:"certainty"`
	} `json:"_additional"`
}

// RecentMeetingsResponse represents a date-ordered fetch of the most recent
// meetings, used for temporal grounding rather than similarity search.
type RecentMeetingsResponse struct {
	Get struct {
		AccountMeeting []MeetingResult `json:"AccountMeeting"`
	} `json:"Get"`
}

// ToRecord converts a DocumentResult into the corpus-neutral record shape
// used by the aggregation and formatting stages.
func (d *DocumentResult) ToRecord() RetrievedRecord {
	similarity := 0.0
	if d.Additional.Certainty != nil {
		similarity = *d.Additional.Certainty
	}
	return RetrievedRecord{
		Id:         d.Additional.ID,
		Content:    d.Content,
		Similarity: similarity,
		Document: &DocumentMeta{
			Title:      d.Title,
			Filename:   d.Filename,
			Source:     d.Source,
			UploadDate: d.UploadDate,
			CreatedAt:  d.CreatedAt,
			URL:        d.URL,
			FileURL:    d.FileURL,
		},
	}
}

// ToRecord converts a MeetingResult into the corpus-neutral record shape.
func (m *MeetingResult) ToRecord() RetrievedRecord {
	similarity := 0.0
	if m.Additional.Certainty != nil {
		similarity = *m.Additional.Certainty
	}
	return RetrievedRecord{
		Id:         m.Additional.ID,
		Content:    m.Content,
		Similarity: similarity,
		Meeting: &MeetingMeta{
			MeetingTitle:  m.MeetingTitle,
			Title:         m.Title,
			MeetingDate:   m.MeetingDate,
			Date:          m.Date,
			MeetingURL:    m.MeetingURL,
			URL:           m.URL,
			TranscriptURL: m.TranscriptURL,
			Participants:  strings.Join(m.Participants, ", "),
			Speakers:      strings.Join(m.Speakers, ", "),
		},
	}
}
