// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"context"
	"iter"
)

// Model represents a generative AI model.
type Model interface {
	// Name returns the name of the LLM model.
	//
	// e.g. gemini-2.0-flash or gemini-2.0-flash-001.
	Name() string

	// SupportedModels returns a list of supported model name patterns for the
	// model registry.
	SupportedModels() []string

	// GenerateContent generates one content from the given contents and tools.
	GenerateContent(ctx context.Context, request *LLMRequest) (*LLMResponse, error)

	// StreamGenerateContent generates content from the given contents and tools
	// with a streaming call.
	StreamGenerateContent(ctx context.Context, request *LLMRequest) iter.Seq2[*LLMResponse, error]
}
