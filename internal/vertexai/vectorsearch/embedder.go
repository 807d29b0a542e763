// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package vectorsearch

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const (
	// DefaultEmbeddingModel is the embedding model used when none is configured.
	DefaultEmbeddingModel = "gemini-embedding-001"

	// DefaultEmbeddingDimensions is the output dimensionality used when none
	// is configured. It must match the dimensions of the target index.
	DefaultEmbeddingDimensions = 768
)

// Embedder generates text embeddings with the Gemini embedding models.
type Embedder struct {
	client     *genai.Client
	model      string
	dimensions int32
}

// EmbedderOption configures an [Embedder].
type EmbedderOption func(*Embedder)

// WithEmbeddingModel sets the embedding model name.
func WithEmbeddingModel(model string) EmbedderOption {
	return func(e *Embedder) {
		e.model = model
	}
}

// WithEmbeddingDimensions sets the output dimensionality.
func WithEmbeddingDimensions(dimensions int32) EmbedderOption {
	return func(e *Embedder) {
		e.dimensions = dimensions
	}
}

// NewEmbedder creates an embedder on top of an existing genai client.
func NewEmbedder(client *genai.Client, opts ...EmbedderOption) *Embedder {
	e := &Embedder{
		client:     client,
		model:      DefaultEmbeddingModel,
		dimensions: DefaultEmbeddingDimensions,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Embed returns the embedding vector for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Models.EmbedContent(ctx, e.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{
			OutputDimensionality: genai.Ptr(e.dimensions),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("embedding response for model %s is empty", e.model)
	}

	return resp.Embeddings[0].Values, nil
}
