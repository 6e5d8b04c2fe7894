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

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"go.opentelemetry.io/otel/attribute"

	"github.com/KodiakAI/kodiak/services/assistant/datatypes"
)

// EmbeddingProvider computes a vector for a piece of text.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SidecarEmbedder implements EmbeddingProvider against the embedding
// sidecar service.
type SidecarEmbedder struct{}

// NewSidecarEmbedder creates an embedder backed by EMBEDDING_SERVICE_URL.
func NewSidecarEmbedder() *SidecarEmbedder {
	return &SidecarEmbedder{}
}

// Embed implements EmbeddingProvider.
func (e *SidecarEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp datatypes.EmbeddingResponse
	if err := resp.GetWithContext(ctx, text); err != nil {
		return nil, err
	}
	return resp.Vector, nil
}

var _ EmbeddingProvider = (*SidecarEmbedder)(nil)

// Retriever performs dual-corpus similarity search for a single query.
//
// # Description
//
// SearchBoth embeds the query once and runs one search per corpus with the
// shared vector. Failures are isolated per corpus: a failed document search
// still returns meeting hits and vice versa. An embedding failure empties
// both. Callers that need to distinguish "no hits" from "search failed"
// cannot; the pipeline deliberately treats both as empty.
type Retriever interface {
	SearchBoth(ctx context.Context, query string, limit int) (docs, meetings []datatypes.RetrievedRecord)
}

// WeaviateRetriever implements Retriever against the AccountDocument and
// AccountMeeting classes.
//
// # Thread Safety
//
// Safe for concurrent use. The underlying Weaviate client handles
// connection pooling.
type WeaviateRetriever struct {
	client   *weaviate.Client
	embedder EmbeddingProvider
}

// NewWeaviateRetriever creates a dual-corpus retriever.
//
// # Inputs
//
//   - client: Weaviate client for database access.
//   - embedder: Provider for computing query embeddings.
func NewWeaviateRetriever(client *weaviate.Client, embedder EmbeddingProvider) *WeaviateRetriever {
	return &WeaviateRetriever{client: client, embedder: embedder}
}

var _ Retriever = (*WeaviateRetriever)(nil)

// SearchBoth implements Retriever.
func (r *WeaviateRetriever) SearchBoth(ctx context.Context, query string, limit int) ([]datatypes.RetrievedRecord, []datatypes.RetrievedRecord) {
	ctx, span := tracer.Start(ctx, "WeaviateRetriever.SearchBoth")
	defer span.End()

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		slog.Error("Failed to embed query, skipping search", "error", err)
		span.RecordError(err)
		return nil, nil
	}
	slog.Debug("Query embedded", "dim", len(vector))

	docs := r.searchDocuments(ctx, vector, limit)
	meetings := r.searchMeetings(ctx, vector, limit)

	span.SetAttributes(
		attribute.Int("search.documents", len(docs)),
		attribute.Int("search.meetings", len(meetings)),
	)
	slog.Info("Vector search complete", "documents", len(docs), "meetings", len(meetings))
	return docs, meetings
}

func (r *WeaviateRetriever) searchDocuments(ctx context.Context, vector []float32, limit int) []datatypes.RetrievedRecord {
	nearVector := r.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	// Request certainty (always [0,1]) instead of distance which varies by metric
	fields := []graphql.Field{
		{Name: "content"},
		{Name: "title"},
		{Name: "filename"},
		{Name: "source"},
		{Name: "upload_date"},
		{Name: "created_at"},
		{Name: "url"},
		{Name: "file_url"},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "id"},
			{Name: "certainty"},
		}},
	}

	result, err := r.client.GraphQL().Get().
		WithClassName("AccountDocument").
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		slog.Error("Document search failed", "error", err)
		return nil
	}

	parsed, err := datatypes.ParseGraphQLResponse[datatypes.DocumentSearchResponse](result)
	if err != nil {
		slog.Error("Failed to parse document search results", "error", err)
		return nil
	}

	records := make([]datatypes.RetrievedRecord, 0, len(parsed.Get.AccountDocument))
	for i := range parsed.Get.AccountDocument {
		records = append(records, parsed.Get.AccountDocument[i].ToRecord())
	}
	return records
}

func (r *WeaviateRetriever) searchMeetings(ctx context.Context, vector []float32, limit int) []datatypes.RetrievedRecord {
	nearVector := r.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "meeting_title"},
		{Name: "title"},
		{Name: "meeting_date"},
		{Name: "date"},
		{Name: "meeting_url"},
		{Name: "url"},
		{Name: "transcript_url"},
		{Name: "participants"},
		{Name: "speakers"},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "id"},
			{Name: "certainty"},
		}},
	}

	result, err := r.client.GraphQL().Get().
		WithClassName("AccountMeeting").
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		slog.Error("Meeting search failed", "error", err)
		return nil
	}

	parsed, err := datatypes.ParseGraphQLResponse[datatypes.MeetingSearchResponse](result)
	if err != nil {
		slog.Error("Failed to parse meeting search results", "error", err)
		return nil
	}

	records := make([]datatypes.RetrievedRecord, 0, len(parsed.Get.AccountMeeting))
	for i := range parsed.Get.AccountMeeting {
		records = append(records, parsed.Get.AccountMeeting[i].ToRecord())
	}
	return records
}
