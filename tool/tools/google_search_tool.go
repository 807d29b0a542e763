// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/vana-ai/vana/tool"
	"github.com/vana-ai/vana/types"
)

// GoogleSearchTool is a built-in tool that Gemini models invoke internally to
// retrieve results from Google Search.
//
// The tool operates inside the model and performs no local execution; it only
// flags the capability on the outgoing request.
type GoogleSearchTool struct {
	*tool.Tool
}

var _ types.Tool = (*GoogleSearchTool)(nil)

// NewGoogleSearchTool returns the new [GoogleSearchTool].
func NewGoogleSearchTool() *GoogleSearchTool {
	return &GoogleSearchTool{
		Tool: tool.NewTool("google_search", "google_search", false),
	}
}

// ProcessLLMRequest implements [types.Tool].
func (t *GoogleSearchTool) ProcessLLMRequest(ctx context.Context, toolCtx *types.ToolContext, request *types.LLMRequest) error {
	if request.Config == nil {
		request.Config = new(genai.GenerateContentConfig)
	}

	switch {
	case strings.HasPrefix(request.Model, "gemini-1"):
		if len(request.Config.Tools) > 0 {
			return errors.New("google search tool can not be used with other tools in Gemini 1.x")
		}
		request.Config.Tools = append(request.Config.Tools, &genai.Tool{
			GoogleSearchRetrieval: &genai.GoogleSearchRetrieval{},
		})
		return nil

	case strings.HasPrefix(request.Model, "gemini-"):
		request.Config.Tools = append(request.Config.Tools, &genai.Tool{
			GoogleSearch: &genai.GoogleSearch{},
		})
		return nil
	}

	return fmt.Errorf("google search tool is not supported for model %s", request.Model)
}
