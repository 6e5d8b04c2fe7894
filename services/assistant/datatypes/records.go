// Copyright (C) 2025 Kodiak AI (maintainers@kodiakai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes provides data structures for the assistant service.
//
// This file contains the retrieval-side domain types: the two corpora,
// retrieved records with their per-corpus metadata, user-facing sources,
// and the confidence enum. For HTTP request/response types, see chat.go.
package datatypes

// =============================================================================
// Corpus
// =============================================================================

// Corpus identifies which searchable collection a record came from.
//
// # Description
//
// The knowledge base has exactly two corpora: account documents and meeting
// transcripts. The corpus determines which metadata fields are consulted and
// how a record is rendered into a citable Source.
type Corpus string

const (
	// CorpusDocument is the account document corpus (Weaviate class AccountDocument).
	CorpusDocument Corpus = "document"

	// CorpusMeeting is the meeting transcript corpus (Weaviate class AccountMeeting).
	CorpusMeeting Corpus = "meeting"
)

// =============================================================================
// Retrieved Records
// =============================================================================

// DocumentMeta holds the optional metadata fields of a document record.
//
// # Description
//
// The source system stored metadata as a free-form mapping with keys that
// vary by uploader. This struct replaces the dynamic lookup with typed
// optional fields, constructed once at the retriever boundary. Empty string
// means the field was absent. Display resolution uses ordered accessor
// chains (see rag.FormatContext), first non-empty wins.
type DocumentMeta struct {
	Title      string `json:"title,omitempty"`
	Filename   string `json:"filename,omitempty"`
	Source     string `json:"source,omitempty"`
	Name       string `json:"name,omitempty"`
	Date       string `json:"date,omitempty"`
	UploadDate string `json:"upload_date,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	URL        string `json:"url,omitempty"`
	FileURL    string `json:"file_url,omitempty"`
}

// MeetingMeta holds the optional metadata fields of a meeting record.
type MeetingMeta struct {
	MeetingTitle  string `json:"meeting_title,omitempty"`
	Title         string `json:"title,omitempty"`
	MeetingDate   string `json:"meeting_date,omitempty"`
	Date          string `json:"date,omitempty"`
	MeetingURL    string `json:"meeting_url,omitempty"`
	URL           string `json:"url,omitempty"`
	TranscriptURL string `json:"transcript_url,omitempty"`
	Participants  string `json:"participants,omitempty"`
	Speakers      string `json:"speakers,omitempty"`
}

// RetrievedRecord is a single similarity-search hit from one corpus.
//
// # Description
//
// Records are ephemeral: produced per request by the retriever, aggregated,
// formatted, and discarded. Similarity is the backend's certainty, already
// normalized to [0, 1]. Exactly one of Document or Meeting is non-nil,
// matching the record's corpus.
//
// A record with an empty Id is excluded from deduplication tracking but may
// still appear in aggregated output (the retriever contract is expected to
// supply ids; this is a guard, not a feature).
type RetrievedRecord struct {
	// Id is the record identifier, unique within its corpus.
	Id string `json:"id"`

	// Content is the raw passage text.
	Content string `json:"content"`

	// Similarity is the normalized [0,1] relevance score from vector search.
	Similarity float64 `json:"similarity"`

	// Document holds document-corpus metadata. Nil for meeting records.
	Document *DocumentMeta `json:"document_metadata,omitempty"`

	// Meeting holds meeting-corpus metadata. Nil for document records.
	Meeting *MeetingMeta `json:"meeting_metadata,omitempty"`
}

// Corpus returns the corpus this record belongs to, inferred from which
// metadata struct is populated. Records with neither are treated as documents.
func (r *RetrievedRecord) Corpus() Corpus {
	if r.Meeting != nil {
		return CorpusMeeting
	}
	return CorpusDocument
}

// =============================================================================
// Sources
// =============================================================================

// MaxExcerptChars is the excerpt cap before the ellipsis is appended.
// A Source excerpt is therefore never longer than MaxExcerptChars+3.
const MaxExcerptChars = 200

// Source is a user-facing citation derived from a RetrievedRecord.
//
// # JSON Serialization
//
//	{
//	    "type": "meeting",
//	    "name": "Q3 Kickoff Call",
//	    "excerpt": "Discussed the rollout plan...",
//	    "similarity": 0.82,
//	    "date": "2025-06-14",
//	    "url": "https://...",
//	    "participants": "A. Reyes, J. Park"
//	}
type Source struct {
	Type         Corpus  `json:"type"`
	Name         string  `json:"name"`
	Excerpt      string  `json:"excerpt"`
	Similarity   float64 `json:"similarity"`
	Date         string  `json:"date,omitempty"`
	URL          string  `json:"url,omitempty"`
	Participants string  `json:"participants,omitempty"`
}

// MakeExcerpt truncates content to MaxExcerptChars, appending "..." when the
// content was longer. Byte-based, matching the source system's behavior.
func MakeExcerpt(content string) string {
	if len(content) > MaxExcerptChars {
		return content[:MaxExcerptChars] + "..."
	}
	return content
}

// =============================================================================
// Confidence
// =============================================================================

// ConfidenceLevel is the coarse citation-strength label attached to answers.
// It is an explainable heuristic over the final Source list, not a
// calibrated probability.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)
