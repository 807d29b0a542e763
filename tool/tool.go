// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"

	"google.golang.org/genai"

	"github.com/vana-ai/vana/types"
)

// Tool is the base for all tools.
type Tool struct {
	// The name of the tool.
	name string

	// The description of the tool.
	description string

	// Whether the tool is a long running operation, which typically returns a
	// resource id first and finishes the operation later.
	isLongRunning bool
}

var _ types.Tool = (*Tool)(nil)

// NewTool returns a tool with the given name, description and isLongRunning.
func NewTool(name, description string, isLongRunning bool) *Tool {
	return &Tool{
		name:          name,
		description:   description,
		isLongRunning: isLongRunning,
	}
}

// Name implements [types.Tool].
func (t *Tool) Name() string {
	return t.name
}

// Description implements [types.Tool].
func (t *Tool) Description() string {
	return t.description
}

// IsLongRunning implements [types.Tool].
func (t *Tool) IsLongRunning() bool {
	return t.isLongRunning
}

// GetDeclaration implements [types.Tool].
func (t *Tool) GetDeclaration() *genai.FunctionDeclaration {
	return nil
}

// Run implements [types.Tool].
func (t *Tool) Run(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
	return nil, types.NotImplementedError(t.name + ".Run")
}

// ProcessLLMRequest implements [types.Tool].
func (t *Tool) ProcessLLMRequest(ctx context.Context, toolCtx *types.ToolContext, request *types.LLMRequest) error {
	return ProcessRequest(t, request)
}

// ProcessRequest registers the tool's declaration on the outgoing request and
// records the tool in the request tool map.
//
// All function declarations are grouped under a single [genai.Tool] entry,
// which is what the Gemini API expects.
func ProcessRequest(t types.Tool, request *types.LLMRequest) error {
	funcDeclaration := t.GetDeclaration()
	if funcDeclaration == nil {
		return nil
	}

	if request.ToolMap == nil {
		request.ToolMap = make(map[string]types.Tool)
	}
	request.ToolMap[t.Name()] = t

	if request.Config == nil {
		request.Config = &genai.GenerateContentConfig{}
	}

	for _, tool := range request.Config.Tools {
		if len(tool.FunctionDeclarations) > 0 {
			tool.FunctionDeclarations = append(tool.FunctionDeclarations, funcDeclaration)
			return nil
		}
	}

	request.Config.Tools = append(request.Config.Tools, &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{funcDeclaration},
	})

	return nil
}
