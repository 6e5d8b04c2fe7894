// Copyright (C) 2025 Kodiak AI (maintainers@kodiakai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rag

import (
	"context"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/KodiakAI/kodiak/services/assistant/datatypes"
)

const (
	// PerQueryLimit is how many hits each individual search requests per corpus.
	PerQueryLimit = 10

	// MaxRecordsPerCorpus caps the consolidated result list per corpus.
	MaxRecordsPerCorpus = 10
)

// Aggregator fans the primary query and its variants out to the retriever
// and consolidates the hits.
type Aggregator struct {
	retriever Retriever
}

// NewAggregator creates an aggregator over the given retriever.
func NewAggregator(retriever Retriever) *Aggregator {
	return &Aggregator{retriever: retriever}
}

// searchResult holds one query's hits, kept in query order so deduplication
// is deterministic regardless of which search finished first.
type searchResult struct {
	docs     []datatypes.RetrievedRecord
	meetings []datatypes.RetrievedRecord
}

// Aggregate searches every query and merges the results per corpus.
//
// # Description
//
// The primary query and each variant are searched concurrently, each
// requesting PerQueryLimit hits per corpus. Merging walks the results in
// query order (primary first, then variants in the order given), admitting
// each record id once: the copy seen for the earliest query wins, even if a
// later query scored the same record higher. Records with an empty id are
// admitted without dedup tracking. The merged lists are sorted by
// similarity descending with a stable sort, then truncated to
// MaxRecordsPerCorpus.
//
// # Inputs
//
//   - ctx: Request context.
//   - primary: The original user query.
//   - variants: Alternative phrasings, possibly empty.
//
// # Outputs
//
//   - docs: Up to MaxRecordsPerCorpus consolidated document records.
//   - meetings: Up to MaxRecordsPerCorpus consolidated meeting records.
func (a *Aggregator) Aggregate(ctx context.Context, primary string, variants []string) (docs, meetings []datatypes.RetrievedRecord) {
	ctx, span := tracer.Start(ctx, "Aggregator.Aggregate")
	defer span.End()

	queries := append([]string{primary}, variants...)
	results := make([]searchResult, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			d, m := a.retriever.SearchBoth(gctx, q, PerQueryLimit)
			results[i] = searchResult{docs: d, meetings: m}
			return nil
		})
	}
	// Searches never return errors, only empty results.
	_ = g.Wait()

	seenDocs := make(map[string]bool)
	seenMeetings := make(map[string]bool)
	for _, res := range results {
		docs = admit(docs, res.docs, seenDocs)
		meetings = admit(meetings, res.meetings, seenMeetings)
	}

	sortBySimilarity(docs)
	sortBySimilarity(meetings)

	if len(docs) > MaxRecordsPerCorpus {
		docs = docs[:MaxRecordsPerCorpus]
	}
	if len(meetings) > MaxRecordsPerCorpus {
		meetings = meetings[:MaxRecordsPerCorpus]
	}

	span.SetAttributes(
		attribute.Int("aggregate.queries", len(queries)),
		attribute.Int("aggregate.documents", len(docs)),
		attribute.Int("aggregate.meetings", len(meetings)),
	)
	slog.Info("Consolidated search results",
		"queries", len(queries), "documents", len(docs), "meetings", len(meetings))
	return docs, meetings
}

// admit appends records not yet seen. Empty ids skip the seen set entirely.
func admit(dst, src []datatypes.RetrievedRecord, seen map[string]bool) []datatypes.RetrievedRecord {
	for _, rec := range src {
		if rec.Id == "" {
			dst = append(dst, rec)
			continue
		}
		if seen[rec.Id] {
			continue
		}
		seen[rec.Id] = true
		dst = append(dst, rec)
	}
	return dst
}

// sortBySimilarity orders records best-first. The sort is stable so records
// with equal similarity keep their admission order.
func sortBySimilarity(records []datatypes.RetrievedRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Similarity > records[j].Similarity
	})
}
