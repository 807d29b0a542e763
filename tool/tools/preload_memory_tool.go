// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/vana-ai/vana/tool"
	"github.com/vana-ai/vana/types"
)

// PreloadMemoryTool preloads memories relevant to the current user query into
// the system instruction.
//
// Currently only the text parts of the matched memories are used.
type PreloadMemoryTool struct {
	*tool.Tool
}

var _ types.Tool = (*PreloadMemoryTool)(nil)

// NewPreloadMemoryTool returns the new [PreloadMemoryTool].
func NewPreloadMemoryTool() *PreloadMemoryTool {
	return &PreloadMemoryTool{
		Tool: tool.NewTool("preload_memory", "preload_memory", false),
	}
}

// ProcessLLMRequest implements [types.Tool].
func (t *PreloadMemoryTool) ProcessLLMRequest(ctx context.Context, toolCtx *types.ToolContext, request *types.LLMRequest) error {
	userContent := toolCtx.UserContent()
	if userContent == nil || len(userContent.Parts) == 0 || userContent.Parts[0].Text == "" {
		return nil
	}

	userQuery := userContent.Parts[0].Text
	response, err := toolCtx.SearchMemory(ctx, userQuery)
	if err != nil {
		return err
	}

	var memoryTextLines []string
	for _, memory := range response.Memories {
		if !memory.Timestamp.IsZero() {
			memoryTextLines = append(memoryTextLines, fmt.Sprintf("Time: %s", memory.Timestamp))
		}

		if memoryText := extractText(memory, " "); memoryText != "" {
			if memory.Author != "" {
				memoryTextLines = append(memoryTextLines, fmt.Sprintf("%s: %s", memory.Author, memoryText))
				continue
			}
			memoryTextLines = append(memoryTextLines, memoryText)
		}
	}
	if len(memoryTextLines) == 0 {
		return nil
	}

	si := `The following content is from your previous conversations with the user.
They may be useful for answering the user's current query.
<PAST_CONVERSATIONS>
` +
		strings.Join(memoryTextLines, "\n") +
		`
</PAST_CONVERSATIONS>
`
	request.AppendInstructions(si)

	return nil
}

// extractText extracts the text from the memory entry.
func extractText(memory *types.MemoryEntry, splitter string) string {
	if memory.Content == nil || len(memory.Content.Parts) == 0 {
		return ""
	}

	texts := make([]string, 0, len(memory.Content.Parts))
	for _, part := range memory.Content.Parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}

	return strings.Join(texts, splitter)
}
