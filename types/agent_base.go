// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
)

// BaseAgent represents the base agent.
//
// Concrete agents embed BaseAgent and override Execute.
type BaseAgent struct {
	*Config
}

var _ Agent = (*BaseAgent)(nil)

// NewBaseAgent creates a new agent with the given name and wires the
// sub-agents' parent pointers.
func NewBaseAgent(name string, opts ...Option) *BaseAgent {
	base := &BaseAgent{
		Config: NewConfig(name),
	}
	for _, opt := range opts {
		opt.apply(base.Config)
	}

	for _, subAgent := range base.subAgents {
		if parent := subAgent.ParentAgent(); parent != nil {
			panic(fmt.Errorf("agent %s already has a parent agent, current parent: %s, trying to add: %s", subAgent.Name(), parent.Name(), base.Name()))
		}
		setParentAgent(subAgent, base)
	}

	return base
}

// setParentAgent assigns parent on agents that expose their config.
func setParentAgent(child, parent Agent) {
	if holder, ok := child.(interface{ SetParentAgent(Agent) }); ok {
		holder.SetParentAgent(parent)
	}
}

// AsLLMAgent implements [Agent].
func (a *BaseAgent) AsLLMAgent() (LLMAgent, bool) {
	return nil, false
}

// Name implements [Agent].
func (a *BaseAgent) Name() string {
	return a.Config.Name
}

// Description implements [Agent].
func (a *BaseAgent) Description() string {
	return a.Config.Description
}

// ParentAgent implements [Agent].
func (a *BaseAgent) ParentAgent() Agent {
	return a.parentAgent
}

// SubAgents implements [Agent].
func (a *BaseAgent) SubAgents() []Agent {
	return a.subAgents
}

// BeforeAgentCallbacks implements [Agent].
func (a *BaseAgent) BeforeAgentCallbacks() []AgentCallback {
	return a.beforeAgentCallbacks
}

// AfterAgentCallbacks implements [Agent].
func (a *BaseAgent) AfterAgentCallbacks() []AgentCallback {
	return a.afterAgentCallbacks
}

// Run implements [Agent].
//
// Run delegates Execute to ictx.Agent, so agents embedding BaseAgent get their
// own Execute called rather than the base one.
func (a *BaseAgent) Run(ctx context.Context, parentContext *InvocationContext) iter.Seq2[*Event, error] {
	return func(yield func(*Event, error) bool) {
		ictx := a.createInvocationContext(parentContext)

		beforeEvent, err := a.handleBeforeAgentCallbacks(ctx, ictx)
		if err != nil {
			yield(nil, err)
			return
		}
		if beforeEvent != nil {
			if !yield(beforeEvent, nil) {
				return
			}
			if ictx.EndInvocation {
				return
			}
		}

		for event, err := range ictx.Agent.Execute(ctx, ictx) {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(event, nil) {
				return
			}
		}

		if ictx.EndInvocation {
			return
		}

		afterEvent, err := a.handleAfterAgentCallbacks(ctx, ictx)
		if err != nil {
			yield(nil, err)
			return
		}
		if afterEvent != nil {
			if !yield(afterEvent, nil) {
				return
			}
		}
	}
}

// Execute implements [Agent].
func (a *BaseAgent) Execute(ctx context.Context, ictx *InvocationContext) iter.Seq2[*Event, error] {
	return func(yield func(*Event, error) bool) {
		yield(nil, NotImplementedError("Execute for BaseAgent is not implemented"))
	}
}

// RootAgent implements [Agent].
func (a *BaseAgent) RootAgent() Agent {
	rootAgent := Agent(a)
	for {
		parentAgent := rootAgent.ParentAgent()
		if parentAgent == nil {
			break
		}
		rootAgent = parentAgent
	}

	return rootAgent
}

// FindAgent implements [Agent].
func (a *BaseAgent) FindAgent(name string) Agent {
	if name == a.Config.Name {
		return a
	}
	return a.FindSubAgent(name)
}

// FindSubAgent finds the agent with the given name in this agent's descendants.
func (a *BaseAgent) FindSubAgent(name string) Agent {
	for _, subAgent := range a.subAgents {
		if result := subAgent.FindAgent(name); result != nil {
			return result
		}
	}
	return nil
}

// createInvocationContext creates the invocation context for this agent's run.
//
// The parent context is never mutated; each run gets its own shallow copy so
// that concurrent sub-agent runs cannot observe each other's Agent or Branch.
func (a *BaseAgent) createInvocationContext(parentContext *InvocationContext) *InvocationContext {
	ictx := *parentContext
	if ictx.Agent == nil || ictx.Agent.Name() != a.Name() {
		if byName := resolveAgentInContext(parentContext, a.Name()); byName != nil {
			ictx.Agent = byName
		} else {
			ictx.Agent = a
		}
	}
	return &ictx
}

// resolveAgentInContext looks up the full agent (not just the embedded base)
// from the invocation's agent tree.
func resolveAgentInContext(ictx *InvocationContext, name string) Agent {
	if ictx.Agent == nil {
		return nil
	}
	return ictx.Agent.RootAgent().FindAgent(name)
}

// handleBeforeAgentCallbacks runs the beforeAgentCallbacks if any exist.
func (a *BaseAgent) handleBeforeAgentCallbacks(ctx context.Context, ictx *InvocationContext) (*Event, error) {
	var event *Event

	if len(a.beforeAgentCallbacks) == 0 {
		return event, nil
	}

	callbackCtx := NewCallbackContext(ictx)
	for _, callback := range a.beforeAgentCallbacks {
		content, err := callback(callbackCtx)
		if err != nil {
			a.logger.ErrorContext(ctx, "before agent callback error", slog.Any("error", err))
			return nil, err
		}
		if content != nil {
			event = NewEvent().
				WithInvocationID(ictx.InvocationID).
				WithAuthor(a.Config.Name).
				WithBranch(ictx.Branch).
				WithContent(content).
				WithActions(callbackCtx.EventActions())
			ictx.EndInvocation = true
			return event, nil
		}
	}

	if callbackCtx.State().HasDelta() {
		event = NewEvent().
			WithInvocationID(ictx.InvocationID).
			WithAuthor(a.Config.Name).
			WithBranch(ictx.Branch).
			WithActions(callbackCtx.EventActions())
	}

	return event, nil
}

// handleAfterAgentCallbacks runs the afterAgentCallbacks if any exist.
func (a *BaseAgent) handleAfterAgentCallbacks(ctx context.Context, ictx *InvocationContext) (*Event, error) {
	var event *Event

	if len(a.afterAgentCallbacks) == 0 {
		return event, nil
	}

	callbackCtx := NewCallbackContext(ictx)
	for _, callback := range a.afterAgentCallbacks {
		content, err := callback(callbackCtx)
		if err != nil {
			a.logger.ErrorContext(ctx, "after agent callback error", slog.Any("error", err))
			return nil, err
		}
		if content != nil {
			event = NewEvent().
				WithInvocationID(ictx.InvocationID).
				WithAuthor(a.Config.Name).
				WithBranch(ictx.Branch).
				WithContent(content).
				WithActions(callbackCtx.EventActions())
			return event, nil
		}
	}

	if callbackCtx.State().HasDelta() {
		event = NewEvent().
			WithInvocationID(ictx.InvocationID).
			WithAuthor(a.Config.Name).
			WithBranch(ictx.Branch).
			WithActions(callbackCtx.EventActions())
	}

	return event, nil
}
