// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"iter"

	"github.com/vana-ai/vana/types"
)

// workflowAgent holds the shared shell-agent plumbing of the workflow agents.
//
// self points at the embedding agent so tree lookups return the concrete type
// rather than the embedded base.
type workflowAgent struct {
	base *types.BaseAgent
	self types.Agent
}

func newWorkflowAgent(self types.Agent, name string, opts ...types.Option) workflowAgent {
	return workflowAgent{
		base: types.NewBaseAgent(name, opts...),
		self: self,
	}
}

// Name implements [types.Agent].
func (a *workflowAgent) Name() string {
	return a.base.Name()
}

// Description implements [types.Agent].
func (a *workflowAgent) Description() string {
	return a.base.Description()
}

// ParentAgent implements [types.Agent].
func (a *workflowAgent) ParentAgent() types.Agent {
	return a.base.ParentAgent()
}

// SetParentAgent records the parent of this agent in the agent tree.
func (a *workflowAgent) SetParentAgent(parent types.Agent) {
	a.base.Config.SetParentAgent(parent)
}

// SubAgents implements [types.Agent].
func (a *workflowAgent) SubAgents() []types.Agent {
	return a.base.SubAgents()
}

// BeforeAgentCallbacks implements [types.Agent].
func (a *workflowAgent) BeforeAgentCallbacks() []types.AgentCallback {
	return a.base.BeforeAgentCallbacks()
}

// AfterAgentCallbacks implements [types.Agent].
func (a *workflowAgent) AfterAgentCallbacks() []types.AgentCallback {
	return a.base.AfterAgentCallbacks()
}

// AsLLMAgent implements [types.Agent].
func (a *workflowAgent) AsLLMAgent() (types.LLMAgent, bool) {
	return nil, false
}

// Run implements [types.Agent].
func (a *workflowAgent) Run(ctx context.Context, parentContext *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return a.base.Run(ctx, parentContext)
}

// RootAgent implements [types.Agent].
func (a *workflowAgent) RootAgent() types.Agent {
	root := a.self
	for root.ParentAgent() != nil {
		root = root.ParentAgent()
	}
	return root
}

// FindAgent implements [types.Agent].
func (a *workflowAgent) FindAgent(name string) types.Agent {
	if name == a.base.Name() {
		return a.self
	}
	return a.FindSubAgent(name)
}

// FindSubAgent implements [types.Agent].
func (a *workflowAgent) FindSubAgent(name string) types.Agent {
	for _, subAgent := range a.base.SubAgents() {
		if result := subAgent.FindAgent(name); result != nil {
			return result
		}
	}
	return nil
}
