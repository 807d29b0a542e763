// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"iter"

	"github.com/vana-ai/vana/types"
)

// SequentialAgent is a shell agent that runs its sub-agents in sequence.
type SequentialAgent struct {
	workflowAgent
}

var _ types.Agent = (*SequentialAgent)(nil)

// NewSequentialAgent creates a new sequential agent with the given name and sub-agents.
func NewSequentialAgent(name string, agents ...types.Agent) *SequentialAgent {
	a := &SequentialAgent{}
	a.workflowAgent = newWorkflowAgent(a, name, types.WithSubAgents(agents...))
	return a
}

// Execute implements [types.Agent].
func (a *SequentialAgent) Execute(ctx context.Context, ictx *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		for _, subAgent := range a.SubAgents() {
			for event, err := range subAgent.Run(ctx, ictx) {
				if !yield(event, err) {
					return
				}
			}
		}
	}
}
