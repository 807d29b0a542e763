// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/vana-ai/vana/types"
)

// NewLoadMemoryTool returns the tool that searches the user's long-term
// memory for a query.
//
// Currently only the text parts of the matched memories are returned.
func NewLoadMemoryTool() *FunctionTool {
	fn := func(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
		query, ok := args["query"].(string)
		if !ok || query == "" {
			return nil, fmt.Errorf("load_memory: query argument is required")
		}

		response, err := toolCtx.SearchMemory(ctx, query)
		if err != nil {
			return nil, err
		}

		memories := make([]map[string]any, 0, len(response.Memories))
		for _, memory := range response.Memories {
			entry := map[string]any{
				"text": extractText(memory, " "),
			}
			if memory.Author != "" {
				entry["author"] = memory.Author
			}
			if !memory.Timestamp.IsZero() {
				entry["time"] = memory.Timestamp.String()
			}
			memories = append(memories, entry)
		}

		return map[string]any{"memories": memories}, nil
	}

	return NewFunctionTool(fn).
		WithName("load_memory").
		WithDescription("Loads the memory for the current user based on a query.").
		WithDeclaration(&genai.FunctionDeclaration{
			Name:        "load_memory",
			Description: "Loads the memory for the current user based on a query.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query": {
						Type:        genai.TypeString,
						Description: "The query to search the memory for.",
					},
				},
				Required: []string{"query"},
			},
		})
}
