package llm

import "context"

type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopK        *int     `json:"top_k"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// LLMClient defines the standard interface for any LLM backend.
type LLMClient interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// GenerateFunc adapts a plain function to the LLMClient interface.
// Useful for tests and for wrapping per-call behavior.
type GenerateFunc func(ctx context.Context, prompt string, params GenerationParams) (string, error)

func (f GenerateFunc) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	return f(ctx, prompt, params)
}

var _ LLMClient = (GenerateFunc)(nil)
