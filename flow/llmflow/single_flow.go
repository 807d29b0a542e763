// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"github.com/vana-ai/vana/types"
)

// SingleFlow is the LLM flow that handles tool calls for a single agent,
// without agent transfer.
type SingleFlow struct {
	*LLMFlow
}

var _ types.Flow = (*SingleFlow)(nil)

// NewSingleFlow creates a new [SingleFlow] with the default processors.
func NewSingleFlow() *SingleFlow {
	flow := &SingleFlow{
		LLMFlow: NewLLMFlow(),
	}
	flow.WithRequestProcessors(SingleRequestProcessors()...)

	return flow
}

// SingleRequestProcessors returns the default request processors for [SingleFlow].
func SingleRequestProcessors() []types.LLMRequestProcessor {
	return []types.LLMRequestProcessor{
		&BasicLLMRequestProcessor{},
		&InstructionsLLMRequestProcessor{},
		&IdentityLLMRequestProcessor{},
		&ContentLLMRequestProcessor{},
	}
}
