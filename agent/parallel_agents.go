// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"iter"

	"golang.org/x/sync/errgroup"

	"github.com/vana-ai/vana/types"
)

// ParallelAgent is a shell agent that runs its sub-agents in parallel in an
// isolated manner.
//
// This approach is beneficial for scenarios requiring multiple perspectives or
// attempts on a single task, such as:
//
//   - Running different algorithms simultaneously.
//   - Generating multiple responses for review by a subsequent evaluation agent.
type ParallelAgent struct {
	workflowAgent
}

var _ types.Agent = (*ParallelAgent)(nil)

// NewParallelAgent creates a new parallel agent with the given name and sub-agents.
func NewParallelAgent(name string, agents ...types.Agent) *ParallelAgent {
	a := &ParallelAgent{}
	a.workflowAgent = newWorkflowAgent(a, name, types.WithSubAgents(agents...))
	return a
}

// Execute implements [types.Agent].
//
// Each sub-agent runs on its own branch context so that peers cannot see
// each other's conversation history, and the parent context stays untouched.
func (a *ParallelAgent) Execute(ctx context.Context, ictx *types.InvocationContext) iter.Seq2[*types.Event, error] {
	agentRuns := make([]iter.Seq2[*types.Event, error], len(a.SubAgents()))
	for i, subAgent := range a.SubAgents() {
		agentRuns[i] = subAgent.Run(ctx, branchContextForSubAgent(a, subAgent, ictx))
	}

	return func(yield func(*types.Event, error) bool) {
		for event, err := range MergeAgentRun(ctx, agentRuns) {
			if !yield(event, err) {
				return
			}
		}
	}
}

// branchContextForSubAgent clones ictx for one sub-agent, extending the
// branch with "parent.child".
func branchContextForSubAgent(parent, subAgent types.Agent, ictx *types.InvocationContext) *types.InvocationContext {
	branchCtx := *ictx
	suffix := parent.Name() + "." + subAgent.Name()
	if branchCtx.Branch == "" {
		branchCtx.Branch = suffix
	} else {
		branchCtx.Branch += "." + suffix
	}
	branchCtx.Agent = subAgent
	return &branchCtx
}

// eventResult holds an event result from an agent run.
type eventResult struct {
	event *types.Event
	err   error
}

// MergeAgentRun merges the agent run event generators.
//
// Each agent run is drained on its own goroutine; events are yielded to the
// consumer in arrival order. Cancelling the consumer stops all runs.
func MergeAgentRun(ctx context.Context, agentRuns []iter.Seq2[*types.Event, error]) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		if len(agentRuns) == 0 {
			return
		}

		g, gctx := errgroup.WithContext(ctx)
		gctx, cancel := context.WithCancel(gctx)
		defer cancel()

		eventCh := make(chan eventResult)
		for _, agentRun := range agentRuns {
			g.Go(func() error {
				for event, err := range agentRun {
					select {
					case eventCh <- eventResult{event: event, err: err}:
					case <-gctx.Done():
						return gctx.Err()
					}
				}
				return nil
			})
		}

		go func() {
			g.Wait()
			close(eventCh)
		}()

		for result := range eventCh {
			if !yield(result.event, result.err) {
				return
			}
		}
	}
}
