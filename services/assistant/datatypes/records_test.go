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
// Excerpt Tests
// =============================================================================

func TestMakeExcerpt_ShortContentUnchanged(t *testing.T) {
	content := "short passage"
	if got := MakeExcerpt(content); got != content {
		t.Errorf("expected short content unchanged, got %q", got)
	}
}

func TestMakeExcerpt_ContentAtLimitUnchanged(t *testing.T) {
	content := strings.Repeat("x", MaxExcerptChars)
	got := MakeExcerpt(content)

	if got != content {
		t.Error("expected content at the limit to be returned without ellipsis")
	}
}

func TestMakeExcerpt_LongContentTruncated(t *testing.T) {
	content := strings.Repeat("x", MaxExcerptChars+50)
	got := MakeExcerpt(content)

	if len(got) != MaxExcerptChars+3 {
		t.Errorf("expected excerpt of %d bytes, got %d", MaxExcerptChars+3, len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("expected truncated excerpt to end with ellipsis")
	}
	if got[:MaxExcerptChars] != content[:MaxExcerptChars] {
		t.Error("expected excerpt prefix to match content")
	}
}

// =============================================================================
// Corpus Inference Tests
// =============================================================================

func TestRetrievedRecord_Corpus(t *testing.T) {
	doc := RetrievedRecord{Id: "d1", Document: &DocumentMeta{Title: "roadmap"}}
	if doc.Corpus() != CorpusDocument {
		t.Errorf("expected document corpus, got %q", doc.Corpus())
	}

	meeting := RetrievedRecord{Id: "m1", Meeting: &MeetingMeta{MeetingTitle: "sync"}}
	if meeting.Corpus() != CorpusMeeting {
		t.Errorf("expected meeting corpus, got %q", meeting.Corpus())
	}

	bare := RetrievedRecord{Id: "x"}
	if bare.Corpus() != CorpusDocument {
		t.Errorf("expected bare record to default to document, got %q", bare.Corpus())
	}
}
