// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"iter"

	"github.com/vana-ai/vana/types"
)

// LoopAgent runs its sub-agents repeatedly until a sub-agent escalates or the
// iteration limit is reached.
type LoopAgent struct {
	workflowAgent

	// The maximum number of iterations to run the loop agent.
	//
	// Zero means the loop agent runs until a sub-agent escalates.
	maxIterations int
}

var _ types.Agent = (*LoopAgent)(nil)

// NewLoopAgent creates a new loop agent with the given name and sub-agents.
func NewLoopAgent(name string, agents ...types.Agent) *LoopAgent {
	a := &LoopAgent{
		maxIterations: 10,
	}
	a.workflowAgent = newWorkflowAgent(a, name, types.WithSubAgents(agents...))
	return a
}

// WithMaxIterations sets the maximum number of iterations.
func (a *LoopAgent) WithMaxIterations(maxIterations int) *LoopAgent {
	a.maxIterations = maxIterations
	return a
}

// Execute implements [types.Agent].
func (a *LoopAgent) Execute(ctx context.Context, ictx *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		timesLooped := 0
		for a.maxIterations == 0 || timesLooped < a.maxIterations {
			for _, subAgent := range a.SubAgents() {
				for event, err := range subAgent.Run(ctx, ictx) {
					if err != nil {
						yield(nil, err)
						return
					}
					if !yield(event, nil) {
						return
					}

					if event.Actions != nil && event.Actions.Escalate {
						return
					}
				}
			}
			timesLooped++
		}
	}
}
