// Copyright (C) 2025 Kodiak AI (maintainers@kodiakai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

type EmbeddingRequest struct {
	Text string `json:"text"`
}

type EmbeddingResponse struct {
	Id        string    `json:"id"`
	Timestamp int64     `json:"timestamp"`
	Text      string    `json:"text"`
	Vector    []float32 `json:"vector"`
	Dim       int       `json:"dim"`
}

var embeddingHTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// GetWithContext fetches the embedding vector for text from the embedding
// sidecar service and populates the receiver.
//
// # Description
//
// Posts {"text": ...} to EMBEDDING_SERVICE_URL and decodes the response into
// the receiver. The context bounds the call; the shared HTTP client also
// enforces a 30s ceiling.
//
// # Inputs
//
//   - ctx: Context for cancellation and timeout.
//   - text: The text to embed.
//
// # Outputs
//
//   - error: Non-nil if the service is unreachable, returns a non-200
//     status, or the response cannot be decoded.
//
// # Assumptions
//
//   - EMBEDDING_SERVICE_URL is set and reachable.
//   - The service returns a fixed-dimension vector for any input.
func (e *EmbeddingResponse) GetWithContext(ctx context.Context, text string) error {
	embeddingServiceURL := os.Getenv("EMBEDDING_SERVICE_URL")
	if embeddingServiceURL == "" {
		return fmt.Errorf("EMBEDDING_SERVICE_URL not set")
	}

	reqBody, err := json.Marshal(EmbeddingRequest{Text: text})
	if err != nil {
		return fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, embeddingServiceURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := embeddingHTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("embedding service call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read embedding response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("embedding service returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, e); err != nil {
		return fmt.Errorf("failed to parse embedding response: %w", err)
	}

	if len(e.Vector) == 0 {
		return fmt.Errorf("embedding service returned an empty vector")
	}

	return nil
}
