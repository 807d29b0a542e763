// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"context"
	"iter"

	"google.golang.org/genai"
)

// AgentCallback represents a callback function that can be invoked before or after an agent runs.
type AgentCallback func(cctx *CallbackContext) (*genai.Content, error)

// Agent represents any agent in the orchestrator's agent tree.
type Agent interface {
	// Name returns the agent's name.
	//
	// Agent name must be an identifier and unique within the agent tree.
	// Agent name cannot be "user", since it's reserved for end-user's input.
	Name() string

	// Description returns the description about the agent's capability.
	//
	// The model uses this to determine whether to delegate control to the agent.
	// One-line description is enough and preferred.
	Description() string

	// ParentAgent is the parent agent of this agent.
	//
	// Note that an agent can ONLY be added as sub-agent once.
	ParentAgent() Agent

	// SubAgents returns the sub-agents of this agent.
	SubAgents() []Agent

	// BeforeAgentCallbacks returns the list of [AgentCallback] to be invoked before the agent run.
	//
	// When a list of callbacks is provided, the callbacks will be called in the
	// order they are listed until a callback does not return nil.
	BeforeAgentCallbacks() []AgentCallback

	// AfterAgentCallbacks returns the list of [AgentCallback] to be invoked after the agent run.
	//
	// When a list of callbacks is provided, the callbacks will be called in the
	// order they are listed until a callback does not return nil.
	AfterAgentCallbacks() []AgentCallback

	// Execute is the core logic to run this agent.
	Execute(ctx context.Context, ictx *InvocationContext) iter.Seq2[*Event, error]

	// Run is the entry method to run an agent. It wraps Execute with callback
	// handling and invocation context branching.
	Run(ctx context.Context, parentContext *InvocationContext) iter.Seq2[*Event, error]

	// RootAgent gets the root agent of this agent.
	RootAgent() Agent

	// FindAgent finds the agent with the given name in this agent and its descendants.
	FindAgent(name string) Agent

	// FindSubAgent finds the agent with the given name in this agent's descendants.
	FindSubAgent(name string) Agent

	// AsLLMAgent reports whether this agent is an [LLMAgent].
	AsLLMAgent() (LLMAgent, bool)
}

// InstructionProvider is a function that provides instructions based on context.
type InstructionProvider func(rctx *ReadOnlyContext) string

// BeforeModelCallback is called before sending a request to the model.
type BeforeModelCallback func(cctx *CallbackContext, request *LLMRequest) (*LLMResponse, error)

// AfterModelCallback is called after receiving a response from the model.
type AfterModelCallback func(cctx *CallbackContext, response *LLMResponse) (*LLMResponse, error)

// BeforeToolCallback is called before executing a tool.
type BeforeToolCallback func(tool Tool, args map[string]any, toolCtx *ToolContext) (map[string]any, error)

// AfterToolCallback is called after executing a tool.
type AfterToolCallback func(tool Tool, args map[string]any, toolCtx *ToolContext, toolResponse map[string]any) (map[string]any, error)

// IncludeContents whether to include contents in the model request.
type IncludeContents string

const (
	IncludeContentsDefault IncludeContents = "default"
	IncludeContentsNone    IncludeContents = "none"
)

// LLMAgent is an interface for agents that are specifically designed to work
// with LLMs (Large Language Models).
type LLMAgent interface {
	Agent

	// CanonicalModel returns the resolved model field as [Model].
	CanonicalModel(ctx context.Context) (Model, error)

	// CanonicalInstructions returns the resolved instruction for this agent.
	CanonicalInstructions(rctx *ReadOnlyContext) string

	// CanonicalGlobalInstruction returns the resolved global instruction, and
	// whether one is set. The global instruction applies to the whole agent tree.
	CanonicalGlobalInstruction(rctx *ReadOnlyContext) (string, bool)

	// CanonicalTools returns the resolved tools field as a list of [Tool] based on the context.
	CanonicalTools(rctx *ReadOnlyContext) []Tool

	// GenerateContentConfig returns the [*genai.GenerateContentConfig] for this agent.
	GenerateContentConfig() *genai.GenerateContentConfig

	// DisallowTransferToParent reports whether LLM-controlled transferring to the parent agent is disallowed.
	DisallowTransferToParent() bool

	// DisallowTransferToPeers reports whether LLM-controlled transferring to the peer agents is disallowed.
	DisallowTransferToPeers() bool

	// IncludeContents returns the mode of include contents in the model request.
	IncludeContents() IncludeContents

	// InputSchema returns the structured input schema.
	InputSchema() *genai.Schema

	// OutputSchema returns the structured output schema.
	OutputSchema() *genai.Schema

	// OutputKey returns the key in session state to store the output of the agent.
	OutputKey() string

	// BeforeModelCallbacks returns the callbacks invoked before each model request.
	BeforeModelCallbacks() []BeforeModelCallback

	// AfterModelCallbacks returns the callbacks invoked after each model response.
	AfterModelCallbacks() []AfterModelCallback

	// BeforeToolCallbacks returns the callbacks invoked before each tool call.
	BeforeToolCallbacks() []BeforeToolCallback

	// AfterToolCallbacks returns the callbacks invoked after each tool call.
	AfterToolCallbacks() []AfterToolCallback
}
