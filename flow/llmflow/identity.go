// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"context"
	"iter"

	"github.com/vana-ai/vana/types"
)

// IdentityLLMRequestProcessor gives the agent its identity from the framework.
type IdentityLLMRequestProcessor struct{}

var _ types.LLMRequestProcessor = (*IdentityLLMRequestProcessor)(nil)

// Run implements [types.LLMRequestProcessor].
func (p *IdentityLLMRequestProcessor) Run(ctx context.Context, ictx *types.InvocationContext, request *types.LLMRequest) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		agent := ictx.Agent
		si := []string{`You are an agent. Your internal name is "` + agent.Name() + `".`}
		if agent.Description() != "" {
			si = append(si, ` The description about you is "`+agent.Description()+`"`)
		}
		request.AppendInstructions(si...)
	}
}
