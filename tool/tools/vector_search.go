// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/vana-ai/vana/types"
)

// SemanticSearcher finds documents close to a query in embedding space and
// indexes new documents.
type SemanticSearcher interface {
	// Search returns the topK documents closest to the query.
	Search(ctx context.Context, query string, topK int) ([]*SemanticSearchResult, error)

	// Index adds or replaces a document in the search index.
	Index(ctx context.Context, id, text string, metadata map[string]string) error
}

// SemanticSearchResult is one match returned by a [SemanticSearcher].
type SemanticSearchResult struct {
	ID       string            `json:"id"`
	Score    float64           `json:"score"`
	Text     string            `json:"text,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

const defaultVectorSearchTopK = 5

// NewVectorSearchTool returns the tool that searches the vector index for
// documents semantically close to a query.
func NewVectorSearchTool(searcher SemanticSearcher) *FunctionTool {
	fn := func(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
		query, ok := args["query"].(string)
		if !ok || query == "" {
			return nil, fmt.Errorf("vector_search: query argument is required")
		}

		topK := defaultVectorSearchTopK
		if v, ok := args["top_k"].(float64); ok && v > 0 {
			topK = int(v)
		}

		results, err := searcher.Search(ctx, query, topK)
		if err != nil {
			return nil, fmt.Errorf("vector_search: %w", err)
		}

		matches := make([]map[string]any, 0, len(results))
		for _, result := range results {
			match := map[string]any{
				"id":    result.ID,
				"score": result.Score,
			}
			if result.Text != "" {
				match["text"] = result.Text
			}
			if len(result.Metadata) > 0 {
				match["metadata"] = result.Metadata
			}
			matches = append(matches, match)
		}

		return map[string]any{"matches": matches}, nil
	}

	return NewFunctionTool(fn).
		WithName("vector_search").
		WithDescription("Searches the vector index for documents semantically similar to a query.").
		WithDeclaration(&genai.FunctionDeclaration{
			Name:        "vector_search",
			Description: "Searches the vector index for documents semantically similar to a query.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query": {
						Type:        genai.TypeString,
						Description: "The query to search for.",
					},
					"top_k": {
						Type:        genai.TypeInteger,
						Description: "The number of closest documents to return.",
					},
				},
				Required: []string{"query"},
			},
		})
}

// NewIndexDocumentTool returns the tool that adds a document to the vector
// index.
func NewIndexDocumentTool(searcher SemanticSearcher) *FunctionTool {
	fn := func(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
		id, ok := args["id"].(string)
		if !ok || id == "" {
			return nil, fmt.Errorf("index_document: id argument is required")
		}
		text, ok := args["text"].(string)
		if !ok || text == "" {
			return nil, fmt.Errorf("index_document: text argument is required")
		}

		var metadata map[string]string
		if raw, ok := args["metadata"].(map[string]any); ok {
			metadata = make(map[string]string, len(raw))
			for k, v := range raw {
				metadata[k] = fmt.Sprintf("%v", v)
			}
		}

		if err := searcher.Index(ctx, id, text, metadata); err != nil {
			return nil, fmt.Errorf("index_document: %w", err)
		}

		return map[string]any{"status": "indexed", "id": id}, nil
	}

	return NewFunctionTool(fn).
		WithName("index_document").
		WithDescription("Adds a document to the vector index so it can be found by vector_search.").
		WithDeclaration(&genai.FunctionDeclaration{
			Name:        "index_document",
			Description: "Adds a document to the vector index so it can be found by vector_search.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"id": {
						Type:        genai.TypeString,
						Description: "The unique identifier for the document.",
					},
					"text": {
						Type:        genai.TypeString,
						Description: "The document text to index.",
					},
					"metadata": {
						Type:        genai.TypeObject,
						Description: "Optional key-value labels attached to the document.",
					},
				},
				Required: []string{"id", "text"},
			},
		})
}
