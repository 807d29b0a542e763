// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"context"

	"google.golang.org/genai"
)

// Tool defines the interface that all tools must implement.
type Tool interface {
	// Name returns the name of the tool.
	Name() string

	// Description returns the description of the tool.
	Description() string

	// IsLongRunning reports whether the tool is a long running operation, which
	// typically returns a resource id first and finishes the operation later.
	IsLongRunning() bool

	// GetDeclaration gets the OpenAPI specification of this tool in the form of
	// a [*genai.FunctionDeclaration].
	//
	// A nil declaration means the tool is not callable as a function; it only
	// contributes to the request via ProcessLLMRequest.
	GetDeclaration() *genai.FunctionDeclaration

	// Run runs the tool with the given arguments and context.
	Run(ctx context.Context, args map[string]any, toolCtx *ToolContext) (any, error)

	// ProcessLLMRequest processes the outgoing LLM request for this tool.
	ProcessLLMRequest(ctx context.Context, toolCtx *ToolContext, llmRequest *LLMRequest) error
}

// Toolset is a collection of tools resolved per invocation context.
type Toolset interface {
	// GetTools returns the tools available to the agent in the given context.
	GetTools(rctx *ReadOnlyContext) []Tool

	// Close releases resources held by the toolset.
	Close() error
}
