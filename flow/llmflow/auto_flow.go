// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"github.com/vana-ai/vana/types"
)

// AutoFlow is [SingleFlow] with agent transfer capability.
//
// Agent transfer is allowed in the following directions:
//
//  1. from parent to sub-agent;
//  2. from sub-agent to parent;
//  3. from sub-agent to its peer agents.
//
// Peer-agent transfer is only enabled when both conditions are met:
//
//   - The parent agent is also an LLM agent;
//   - the DisallowTransferToPeers option of this agent is false (default).
type AutoFlow struct {
	*LLMFlow
}

var _ types.Flow = (*AutoFlow)(nil)

// NewAutoFlow creates a new [AutoFlow] with the default processors.
func NewAutoFlow() *AutoFlow {
	flow := &AutoFlow{
		LLMFlow: NewLLMFlow(),
	}
	flow.WithRequestProcessors(AutoRequestProcessors()...)

	return flow
}

// AutoRequestProcessors returns the default request processors for [AutoFlow].
func AutoRequestProcessors() []types.LLMRequestProcessor {
	return append(SingleRequestProcessors(), &AgentTransferLLMRequestProcessor{})
}
