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

	"go.opentelemetry.io/otel/attribute"

	"github.com/KodiakAI/kodiak/services/llm"
)

// MaxQueryVariants caps how many rephrasings the expander returns.
const MaxQueryVariants = 3

// Expander generates alternative phrasings of a query to widen vector-search
// recall.
type Expander struct {
	llm     llm.LLMClient
	prompts Prompts
}

// NewExpander creates a query expander backed by the given LLM.
func NewExpander(client llm.LLMClient, prompts Prompts) *Expander {
	return &Expander{llm: client, prompts: prompts}
}

// Expand returns up to MaxQueryVariants rephrasings of the query.
//
// # Description
//
// The LLM is asked for plain newline-separated lines. Each line is trimmed
// and blank lines are dropped; at most MaxQueryVariants survive. Expansion
// is best-effort: any failure returns an empty slice so the pipeline falls
// back to searching the original query alone.
//
// # Inputs
//
//   - ctx: Request context.
//   - query: The original user query.
//
// # Outputs
//
//   - []string: Zero to MaxQueryVariants rephrasings, never containing the
//     original query and never nil-padded.
func (e *Expander) Expand(ctx context.Context, query string) []string {
	ctx, span := tracer.Start(ctx, "Expander.Expand")
	defer span.End()

	raw, err := e.llm.Generate(ctx, e.prompts.MultiQuery(query), llm.GenerationParams{})
	if err != nil {
		slog.Error("Query expansion failed, searching original only", "error", err)
		return nil
	}

	var variants []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		variants = append(variants, line)
		if len(variants) == MaxQueryVariants {
			break
		}
	}

	span.SetAttributes(attribute.Int("expand.variants", len(variants)))
	slog.Info("Generated query variations", "count", len(variants))
	return variants
}
