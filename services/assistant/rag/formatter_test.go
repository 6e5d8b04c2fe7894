package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KodiakAI/kodiak/services/assistant/datatypes"
)

func TestFormatContext_SimilarityFloorInclusive(t *testing.T) {
	docs := []datatypes.RetrievedRecord{
		doc("at-floor", 0.3),
		doc("below-floor", 0.29),
	}

	context, sources := FormatContext(docs, nil)

	assert.Contains(t, context, "at-floor")
	assert.NotContains(t, context, "below-floor")
	assert.Len(t, sources, 1)
	assert.Equal(t, "at-floor", sources[0].Name)
}

func TestFormatContext_EmptyInput(t *testing.T) {
	context, sources := FormatContext(nil, nil)

	assert.Empty(t, context)
	assert.Empty(t, sources)
}

func TestFormatContext_DocumentNameChain(t *testing.T) {
	tests := []struct {
		name string
		meta datatypes.DocumentMeta
		id   string
		want string
	}{
		{"title wins", datatypes.DocumentMeta{Title: "T", Filename: "F", Source: "S"}, "1", "T"},
		{"filename next", datatypes.DocumentMeta{Filename: "F", Source: "S"}, "1", "F"},
		{"source next", datatypes.DocumentMeta{Source: "S", Name: "N"}, "1", "S"},
		{"name last", datatypes.DocumentMeta{Name: "N"}, "1", "N"},
		{"fallback to id", datatypes.DocumentMeta{}, "abc", "Document #abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := datatypes.RetrievedRecord{Id: tt.id, Content: "c", Similarity: 0.9, Document: &tt.meta}
			_, sources := FormatContext([]datatypes.RetrievedRecord{rec}, nil)
			assert.Equal(t, tt.want, sources[0].Name)
		})
	}
}

func TestFormatContext_MeetingNameChain(t *testing.T) {
	tests := []struct {
		name string
		meta datatypes.MeetingMeta
		id   string
		want string
	}{
		{"meeting_title wins", datatypes.MeetingMeta{MeetingTitle: "MT", Title: "T"}, "1", "MT"},
		{"title next", datatypes.MeetingMeta{Title: "T"}, "1", "T"},
		{"fallback to id", datatypes.MeetingMeta{}, "xyz", "Meeting #xyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := datatypes.RetrievedRecord{Id: tt.id, Content: "c", Similarity: 0.9, Meeting: &tt.meta}
			_, sources := FormatContext(nil, []datatypes.RetrievedRecord{rec})
			assert.Equal(t, tt.want, sources[0].Name)
		})
	}
}

func TestFormatContext_MeetingFieldChains(t *testing.T) {
	rec := datatypes.RetrievedRecord{
		Id: "m1", Content: "c", Similarity: 0.9,
		Meeting: &datatypes.MeetingMeta{
			MeetingTitle:  "Kickoff",
			Date:          "2025-02-01",
			TranscriptURL: "https://t.example/1",
			Speakers:      "A, B",
		},
	}

	context, sources := FormatContext(nil, []datatypes.RetrievedRecord{rec})

	// meeting_date absent, falls back to date; meeting_url and url absent,
	// transcript_url wins; participants absent, speakers win.
	assert.Equal(t, "2025-02-01", sources[0].Date)
	assert.Equal(t, "https://t.example/1", sources[0].URL)
	assert.Equal(t, "A, B", sources[0].Participants)
	assert.Contains(t, context, "Participants: A, B")
}

func TestFormatContext_ExcerptTruncation(t *testing.T) {
	long := strings.Repeat("x", 250)
	rec := datatypes.RetrievedRecord{Id: "d1", Content: long, Similarity: 0.9, Document: &datatypes.DocumentMeta{Title: "T"}}

	context, sources := FormatContext([]datatypes.RetrievedRecord{rec}, nil)

	assert.Len(t, sources[0].Excerpt, datatypes.MaxExcerptChars+3)
	assert.True(t, strings.HasSuffix(sources[0].Excerpt, "..."))
	// The context block carries the full content, not the excerpt.
	assert.Contains(t, context, long)
}

func TestFormatContext_ExcerptShortContentUntouched(t *testing.T) {
	rec := datatypes.RetrievedRecord{Id: "d1", Content: "short", Similarity: 0.9, Document: &datatypes.DocumentMeta{Title: "T"}}

	_, sources := FormatContext([]datatypes.RetrievedRecord{rec}, nil)

	assert.Equal(t, "short", sources[0].Excerpt)
}

func TestFormatContext_SourcesSortedAndCapped(t *testing.T) {
	docs := []datatypes.RetrievedRecord{doc("d1", 0.5), doc("d2", 0.7), doc("d3", 0.4)}
	meetings := []datatypes.RetrievedRecord{meeting("m1", 0.9), meeting("m2", 0.6), meeting("m3", 0.8)}

	_, sources := FormatContext(docs, meetings)

	assert.Len(t, sources, MaxSources)
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"m1", "m3", "d2", "m2", "d1"}, names)
}

func TestFormatContext_DocumentsBeforeMeetingsInContext(t *testing.T) {
	docs := []datatypes.RetrievedRecord{doc("the-doc", 0.4)}
	meetings := []datatypes.RetrievedRecord{meeting("the-meeting", 0.9)}

	context, _ := FormatContext(docs, meetings)

	docIdx := strings.Index(context, "the-doc")
	meetingIdx := strings.Index(context, "the-meeting")
	assert.True(t, docIdx >= 0 && meetingIdx >= 0)
	assert.Less(t, docIdx, meetingIdx)
}
