// Copyright (C) 2025 Kodiak AI (maintainers@kodiakai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KodiakAI/kodiak/services/assistant/datatypes"
)

const (
	// MinSimilarity is the inclusive relevance floor: records scoring at or
	// above it make it into the prompt context.
	MinSimilarity = 0.3

	// MaxSources caps the citation list returned to the user.
	MaxSources = 5
)

// firstNonEmpty returns the first non-empty value, or "" when all are empty.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// documentName resolves a display name for a document record.
func documentName(rec *datatypes.RetrievedRecord) string {
	m := rec.Document
	if m == nil {
		m = &datatypes.DocumentMeta{}
	}
	if name := firstNonEmpty(m.Title, m.Filename, m.Source, m.Name); name != "" {
		return name
	}
	return fmt.Sprintf("Document #%s", rec.Id)
}

// meetingName resolves a display name for a meeting record.
func meetingName(rec *datatypes.RetrievedRecord) string {
	m := rec.Meeting
	if m == nil {
		m = &datatypes.MeetingMeta{}
	}
	if name := firstNonEmpty(m.MeetingTitle, m.Title); name != "" {
		return name
	}
	return fmt.Sprintf("Meeting #%s", rec.Id)
}

// FormatContext renders retrieved records into a prompt context block and a
// user-facing source list.
//
// # Description
//
// Records below MinSimilarity are dropped. Each surviving record becomes
// one context block and one Source; display fields resolve through fixed
// priority chains over the record's metadata (title before filename before
// source, and so on), falling back to an id-based placeholder name. The
// source list is sorted by similarity descending across both corpora and
// capped at MaxSources; the context string is not capped beyond the
// aggregator's per-corpus limits.
//
// # Inputs
//
//   - docs: Consolidated document records, documents first in the context.
//   - meetings: Consolidated meeting records.
//
// # Outputs
//
//   - string: Newline-joined context blocks, empty when nothing survives
//     the similarity floor.
//   - []datatypes.Source: At most MaxSources citations, best first.
func FormatContext(docs, meetings []datatypes.RetrievedRecord) (string, []datatypes.Source) {
	var contextParts []string
	var sources []datatypes.Source

	for i := range docs {
		rec := &docs[i]
		if rec.Similarity < MinSimilarity {
			continue
		}

		name := documentName(rec)
		var date, url string
		if m := rec.Document; m != nil {
			date = firstNonEmpty(m.Date, m.UploadDate, m.CreatedAt)
			url = firstNonEmpty(m.URL, m.FileURL)
		}

		contextParts = append(contextParts, fmt.Sprintf(`
Source: %s
Type: Document
Date: %s
URL: %s
Content: %s
---`, name, date, url, rec.Content))

		sources = append(sources, datatypes.Source{
			Type:       datatypes.CorpusDocument,
			Name:       name,
			Excerpt:    datatypes.MakeExcerpt(rec.Content),
			Similarity: rec.Similarity,
			Date:       date,
			URL:        url,
		})
	}

	for i := range meetings {
		rec := &meetings[i]
		if rec.Similarity < MinSimilarity {
			continue
		}

		name := meetingName(rec)
		var date, url, participants string
		if m := rec.Meeting; m != nil {
			date = firstNonEmpty(m.MeetingDate, m.Date)
			url = firstNonEmpty(m.MeetingURL, m.URL, m.TranscriptURL)
			participants = firstNonEmpty(m.Participants, m.Speakers)
		}

		contextParts = append(contextParts, fmt.Sprintf(`
Source: %s
Type: Meeting
Date: %s
URL: %s
Participants: %s
Content: %s
---`, name, date, url, participants, rec.Content))

		sources = append(sources, datatypes.Source{
			Type:         datatypes.CorpusMeeting,
			Name:         name,
			Excerpt:      datatypes.MakeExcerpt(rec.Content),
			Similarity:   rec.Similarity,
			Date:         date,
			URL:          url,
			Participants: participants,
		})
	}

	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Similarity > sources[j].Similarity
	})
	if len(sources) > MaxSources {
		sources = sources[:MaxSources]
	}

	return strings.Join(contextParts, "\n"), sources
}
