// Copyright (C) 2025 Kodiak AI (maintainers@kodiakai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"

	"github.com/KodiakAI/kodiak/services/assistant/datatypes"
)

// RecentMeetingsLimit is how many meetings the temporal grounding block lists.
const RecentMeetingsLimit = 5

// Fallback strings for the temporal grounding block. The synthesis prompt
// receives one of these instead of failing the request.
const (
	noRecentMeetings          = "No recent meetings found."
	recentMeetingsUnavailable = "Could not fetch recent meetings."
)

// recentMeetingsPreamble introduces the block so the LLM trusts these dates
// over similarity-ranked search results for "latest"/"most recent" questions.
const recentMeetingsPreamble = "Here are the most recent meetings recorded (use these for chronological context):"

// RecencyProvider supplies the prompt block that grounds "latest meeting"
// style questions in actual dates.
type RecencyProvider interface {
	RecentMeetings(ctx context.Context) string
}

// WeaviateRecencyProvider implements RecencyProvider by listing the most
// recent AccountMeeting objects by meeting_date.
type WeaviateRecencyProvider struct {
	client *weaviate.Client
}

// NewWeaviateRecencyProvider creates a recency provider.
func NewWeaviateRecencyProvider(client *weaviate.Client) *WeaviateRecencyProvider {
	return &WeaviateRecencyProvider{client: client}
}

var _ RecencyProvider = (*WeaviateRecencyProvider)(nil)

// RecentMeetings returns the temporal grounding block.
//
// # Description
//
// Fetches the RecentMeetingsLimit most recent meetings ordered by
// meeting_date descending and renders them as a dated bullet list under a
// fixed instruction preamble. Best-effort: any failure yields a short
// unavailability note rather than an error, and an empty corpus yields
// "No recent meetings found.".
func (p *WeaviateRecencyProvider) RecentMeetings(ctx context.Context) string {
	ctx, span := tracer.Start(ctx, "WeaviateRecencyProvider.RecentMeetings")
	defer span.End()

	sortBy := graphql.Sort{
		Path:  []string{"meeting_date"},
		Order: graphql.Desc,
	}

	fields := []graphql.Field{
		{Name: "meeting_title"},
		{Name: "meeting_date"},
		{Name: "meeting_url"},
		{Name: "speakers"},
	}

	result, err := p.client.GraphQL().Get().
		WithClassName("AccountMeeting").
		WithFields(fields...).
		WithSort(sortBy).
		WithLimit(RecentMeetingsLimit).
		Do(ctx)
	if err != nil {
		slog.Error("Failed to fetch recent meetings", "error", err)
		span.RecordError(err)
		return recentMeetingsUnavailable
	}

	parsed, err := datatypes.ParseGraphQLResponse[datatypes.RecentMeetingsResponse](result)
	if err != nil {
		slog.Error("Failed to parse recent meetings", "error", err)
		span.RecordError(err)
		return recentMeetingsUnavailable
	}

	meetings := parsed.Get.AccountMeeting
	if len(meetings) == 0 {
		return noRecentMeetings
	}

	slog.Info("Fetched recent meetings for temporal grounding", "count", len(meetings))
	lines := []string{recentMeetingsPreamble}
	for i := range meetings {
		m := &meetings[i]
		date := m.MeetingDate
		if date == "" {
			date = "Unknown Date"
		}
		// Dates may arrive as full RFC 3339 timestamps; keep the date part.
		if idx := strings.Index(date, "T"); idx > 0 {
			date = date[:idx]
		}
		lines = append(lines, fmt.Sprintf("- **%s**: %s (URL: %s)", date, m.MeetingTitle, m.MeetingURL))
	}
	return strings.Join(lines, "\n")
}
