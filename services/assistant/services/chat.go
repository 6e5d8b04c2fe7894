// Copyright (C) 2025 Kodiak AI (maintainers@kodiakai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package services provides business logic services for the assistant.
//
// This package contains service structs that encapsulate business logic,
// separating it from HTTP handlers. Services are responsible for:
//   - Orchestrating the retrieval pipeline and LLM calls
//   - Applying business rules and validation
//   - Managing conversation memory and error handling
//
// Services are designed to be:
//   - Testable: Dependencies are injected via constructors
//   - Composable: Services can call other services
//   - Traceable: All methods accept context for distributed tracing
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/KodiakAI/kodiak/services/assistant/conversation"
	"github.com/KodiakAI/kodiak/services/assistant/datatypes"
	"github.com/KodiakAI/kodiak/services/assistant/observability"
	"github.com/KodiakAI/kodiak/services/assistant/rag"
	"github.com/KodiakAI/kodiak/services/llm"
)

// chatTracer is the OpenTelemetry tracer for ChatService operations.
var chatTracer = otel.Tracer("kodiak.assistant.services.chat")

// NoRelevantContext replaces the knowledge-base context block when nothing
// survives retrieval and filtering. The answer is still synthesized; the
// prompt instructs the model to say what is missing.
const NoRelevantContext = "No relevant information found in the knowledge base."

// ChatService runs the full answering pipeline for one chat request.
//
// # Description
//
// The pipeline is: render conversation history, classify the query, then
// either answer conversationally (CHAT) or retrieve-and-synthesize
// (SEARCH). Retrieval fans the query and its LLM-generated variants out
// over both corpora, consolidates and filters the hits, adds temporal
// grounding, and feeds everything into the knowledge prompt. The completed
// exchange is appended to conversation memory only after synthesis
// succeeds.
//
// Retrieval-side failures degrade (empty variants, empty corpora, fallback
// recency block); only synthesis failures abort the request.
//
// # Example
//
//	service := NewChatService(store, classifier, expander, aggregator, recency, llmClient, prompts, metrics)
//	resp, err := service.Process(ctx, &req)
type ChatService struct {
	store      *conversation.Store
	classifier *rag.Classifier
	expander   *rag.Expander
	aggregator *rag.Aggregator
	recency    rag.RecencyProvider
	llmClient  llm.LLMClient
	prompts    rag.Prompts
	metrics    *observability.ChatMetrics
}

// NewChatService creates a ChatService with the provided dependencies.
//
// metrics may be nil, in which case no metrics are recorded. All other
// dependencies must be non-nil.
func NewChatService(
	store *conversation.Store,
	classifier *rag.Classifier,
	expander *rag.Expander,
	aggregator *rag.Aggregator,
	recency rag.RecencyProvider,
	llmClient llm.LLMClient,
	prompts rag.Prompts,
	metrics *observability.ChatMetrics,
) *ChatService {
	return &ChatService{
		store:      store,
		classifier: classifier,
		expander:   expander,
		aggregator: aggregator,
		recency:    recency,
		llmClient:  llmClient,
		prompts:    prompts,
		metrics:    metrics,
	}
}

// Process answers a chat request.
//
// # Description
//
// Runs classification and the appropriate answer path. CHAT queries skip
// retrieval entirely, return no sources, and report high confidence.
// SEARCH queries run the full retrieval pipeline and derive confidence
// from the final source list. In both paths the exchange is saved to
// conversation memory after a successful synthesis, so failed requests
// leave memory untouched.
//
// # Inputs
//
//   - ctx: Request context.
//   - req: Validated chat request with defaults applied.
//
// # Outputs
//
//   - *datatypes.ChatResponse: The answer, sources, and confidence.
//   - error: *SynthesisError when the LLM failed to produce an answer.
func (s *ChatService) Process(ctx context.Context, req *datatypes.ChatRequest) (*datatypes.ChatResponse, error) {
	ctx, span := chatTracer.Start(ctx, "ChatService.Process")
	defer span.End()
	span.SetAttributes(attribute.String("chat.conversation_id", req.ConversationId))

	start := time.Now()
	slog.Info("Processing chat request", "conversation_id", req.ConversationId)

	history := s.store.Render(req.ConversationId)

	cls := s.classifier.Classify(ctx, req.Query)
	if s.metrics != nil {
		s.metrics.RecordClassification(string(cls.Label), cls.Defaulted)
	}

	if cls.Label == rag.LabelChat {
		resp, err := s.processChat(ctx, req, history)
		if s.metrics != nil {
			s.metrics.RecordPipelineDuration("chat", time.Since(start).Seconds(), err == nil)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return resp, err
	}

	resp, err := s.processSearch(ctx, req, history)
	if s.metrics != nil {
		s.metrics.RecordPipelineDuration("search", time.Since(start).Seconds(), err == nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return resp, err
}

// processChat answers a conversational query without retrieval.
func (s *ChatService) processChat(ctx context.Context, req *datatypes.ChatRequest, history string) (*datatypes.ChatResponse, error) {
	ctx, span := chatTracer.Start(ctx, "ChatService.processChat")
	defer span.End()

	slog.Info("Conversational query, skipping retrieval")
	answer, err := s.llmClient.Generate(ctx, s.prompts.Chat(history, req.Query), llm.GenerationParams{})
	if err != nil {
		return nil, &SynthesisError{Stage: "chat", Err: err}
	}

	s.store.Append(req.ConversationId, req.Query, answer)
	return datatypes.NewChatResponse(answer, nil, datatypes.ConfidenceHigh), nil
}

// processSearch runs the retrieval pipeline and grounded synthesis.
func (s *ChatService) processSearch(ctx context.Context, req *datatypes.ChatRequest, history string) (*datatypes.ChatResponse, error) {
	ctx, span := chatTracer.Start(ctx, "ChatService.processSearch")
	defer span.End()

	variants := s.expander.Expand(ctx, req.Query)
	docs, meetings := s.aggregator.Aggregate(ctx, req.Query, variants)
	if s.metrics != nil {
		s.metrics.RecordRetrieval(len(docs), len(meetings))
	}

	contextText, sources := rag.FormatContext(docs, meetings)
	if strings.TrimSpace(contextText) == "" {
		contextText = NoRelevantContext
	}

	recentMeetings := s.recency.RecentMeetings(ctx)

	span.SetAttributes(
		attribute.Int("chat.variants", len(variants)),
		attribute.Int("chat.sources", len(sources)),
	)
	slog.Info("Synthesizing grounded answer",
		"variants", len(variants), "sources", len(sources), "context_chars", len(contextText))

	answer, err := s.llmClient.Generate(ctx, s.prompts.Knowledge(history, recentMeetings, contextText, req.Query), llm.GenerationParams{})
	if err != nil {
		return nil, &SynthesisError{Stage: "knowledge", Err: err}
	}

	s.store.Append(req.ConversationId, req.Query, answer)

	confidence := rag.EstimateConfidence(sources)
	if s.metrics != nil {
		s.metrics.RecordConfidence(string(confidence))
	}
	slog.Info("Chat request complete", "confidence", confidence, "sources", len(sources))
	return datatypes.NewChatResponse(answer, sources, confidence), nil
}

// =============================================================================
// Errors
// =============================================================================

// SynthesisError is returned when the LLM failed to produce an answer.
// Handlers map it to HTTP 500: unlike retrieval-side failures, there is no
// degraded answer to fall back to.
type SynthesisError struct {
	Stage string
	Err   error
}

// Error implements the error interface for SynthesisError.
func (e *SynthesisError) Error() string {
	return fmt.Sprintf("answer synthesis failed (%s): %v", e.Stage, e.Err)
}

// Unwrap exposes the underlying LLM error.
func (e *SynthesisError) Unwrap() error {
	return e.Err
}

// IsSynthesisError checks if an error is a SynthesisError.
// Useful for handlers to determine the appropriate HTTP status code.
func IsSynthesisError(err error) bool {
	_, ok := err.(*SynthesisError)
	return ok
}
