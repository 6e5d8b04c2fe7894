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
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/KodiakAI/kodiak/services/llm"
)

var tracer = otel.Tracer("kodiak.assistant.rag")

// QueryLabel is the routing decision for an incoming query.
type QueryLabel string

const (
	// LabelSearch routes the query through retrieval before synthesis.
	LabelSearch QueryLabel = "SEARCH"

	// LabelChat answers conversationally without touching the knowledge base.
	LabelChat QueryLabel = "CHAT"
)

// Classification is the classifier's outcome.
//
// # Description
//
// The classifier fails open: any failure or unrecognized verdict yields
// LabelSearch, because a wasted retrieval is cheaper than a missed one.
// Defaulted distinguishes an explicit LLM verdict from a fallback so the
// caller can observe how often the fail-open path fires. Err carries the
// failure that forced the default, nil when the LLM answered but with an
// unrecognized word.
type Classification struct {
	Label     QueryLabel
	Defaulted bool
	Err       error
}

// Classifier routes queries to the retrieval or conversational path using a
// single-word LLM verdict.
type Classifier struct {
	llm     llm.LLMClient
	prompts Prompts
}

// NewClassifier creates a query classifier backed by the given LLM.
func NewClassifier(client llm.LLMClient, prompts Prompts) *Classifier {
	return &Classifier{llm: client, prompts: prompts}
}

// Classify labels the query SEARCH or CHAT.
//
// # Description
//
// Asks the LLM for a one-word verdict. The raw response is trimmed and
// upper-cased before comparison; verdicts other than SEARCH or CHAT, and
// any LLM failure, produce a defaulted SEARCH classification. Classify
// never returns an error: the outcome struct carries the failure.
//
// # Inputs
//
//   - ctx: Request context.
//   - query: The raw user query.
//
// # Outputs
//
//   - Classification: The label plus whether it was defaulted.
func (c *Classifier) Classify(ctx context.Context, query string) Classification {
	ctx, span := tracer.Start(ctx, "Classifier.Classify")
	defer span.End()

	maxTokens := 8
	raw, err := c.llm.Generate(ctx, c.prompts.Classify(query), llm.GenerationParams{MaxTokens: &maxTokens})
	if err != nil {
		slog.Error("Query classification failed, defaulting to SEARCH", "error", err)
		span.SetAttributes(attribute.Bool("classify.defaulted", true))
		return Classification{Label: LabelSearch, Defaulted: true, Err: err}
	}

	verdict := QueryLabel(strings.ToUpper(strings.TrimSpace(raw)))
	if verdict != LabelSearch && verdict != LabelChat {
		slog.Warn("Unrecognized classification verdict, defaulting to SEARCH", "verdict", raw)
		span.SetAttributes(attribute.Bool("classify.defaulted", true))
		return Classification{Label: LabelSearch, Defaulted: true}
	}

	span.SetAttributes(attribute.String("classify.label", string(verdict)))
	slog.Info("Classified query", "label", verdict)
	return Classification{Label: verdict}
}
