// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/vana-ai/vana/flow/llmflow"
	"github.com/vana-ai/vana/model"
	"github.com/vana-ai/vana/tool/tools"
	"github.com/vana-ai/vana/types"
)

// LLMAgent represents an agent powered by a Large Language Model.
type LLMAgent struct {
	base *types.BaseAgent

	// The model to use for the agent.
	//
	// When not set, the agent will inherit the model from its ancestor.
	model any // string | [types.Model]

	// Instructions for the LLM model, guiding the agent's behavior.
	instruction any // string | [types.InstructionProvider]

	// Instructions for all the agents in the entire agent tree.
	//
	// globalInstruction ONLY takes effect in the root agent.
	//
	// For example: use globalInstruction to make all agents have a stable
	// identity or personality.
	globalInstruction any // string | [types.InstructionProvider]

	// Tools available to this agent.
	tools []any // [tools.Function] | [types.Tool] | [types.Toolset]

	// generateContentConfig is the additional content generation configuration.
	//
	// Tools must be configured via tools, not through this config.
	//
	// For example: use this config to adjust model temperature, configure safety
	// settings, etc.
	generateContentConfig *genai.GenerateContentConfig

	// Disallows LLM-controlled transferring to the parent agent.
	disallowTransferToParent bool

	// Disallows LLM-controlled transferring to the peer agents.
	disallowTransferToPeers bool

	// includeContents whether to include contents in the model request.
	//
	// When set to 'none', the model request will not include any contents, such
	// as user messages, tool results, etc.
	includeContents types.IncludeContents

	// The input schema when agent is used as a tool.
	inputSchema *genai.Schema

	// The output schema when agent replies.
	//
	// NOTE: when this is set, agent can ONLY reply and CANNOT use any tools,
	// such as function tools, RAGs, agent transfer, etc.
	outputSchema *genai.Schema

	// The key in session state to store the output of the agent.
	//
	// Typical use cases:
	// - Extracts agent reply for later use, such as in tools, callbacks, etc.
	// - Connects agents to coordinate with each other.
	outputKey string

	// Callbacks to be called before calling the LLM.
	//
	// Callbacks are called in the order they are listed until a callback does
	// not return nil.
	beforeModelCallbacks []types.BeforeModelCallback

	// Callbacks to be called after calling the LLM.
	afterModelCallbacks []types.AfterModelCallback

	// Callbacks to be called before calling a tool.
	beforeToolCallbacks []types.BeforeToolCallback

	// Callbacks to be called after calling a tool.
	afterToolCallbacks []types.AfterToolCallback
}

var _ types.LLMAgent = (*LLMAgent)(nil)

// LLMAgentOption configures an [LLMAgent].
type LLMAgentOption func(*LLMAgent)

// WithModelString sets the model by name; the registry resolves it lazily.
func WithModelString(model string) LLMAgentOption {
	return func(a *LLMAgent) {
		a.model = model
	}
}

// WithModel sets the model to use.
func WithModel(model types.Model) LLMAgentOption {
	return func(a *LLMAgent) {
		a.model = model
	}
}

// WithDescription sets the description for the agent.
func WithDescription(description string) LLMAgentOption {
	return func(a *LLMAgent) {
		a.base.Config.Description = description
	}
}

// WithInstruction sets the instruction for the agent.
func WithInstruction[T string | types.InstructionProvider](instruction T) LLMAgentOption {
	return func(a *LLMAgent) {
		a.instruction = instruction
	}
}

// WithGlobalInstruction sets the global instruction for the agent.
func WithGlobalInstruction[T string | types.InstructionProvider](instruction T) LLMAgentOption {
	return func(a *LLMAgent) {
		a.globalInstruction = instruction
	}
}

// WithSubAgents adds sub-agents to the agent and wires their parent pointers.
func WithSubAgents(agents ...types.Agent) LLMAgentOption {
	return func(a *LLMAgent) {
		for _, subAgent := range agents {
			if parent := subAgent.ParentAgent(); parent != nil {
				panic(fmt.Errorf("agent %s already has a parent agent %s", subAgent.Name(), parent.Name()))
			}
			if holder, ok := subAgent.(interface{ SetParentAgent(types.Agent) }); ok {
				holder.SetParentAgent(a)
			}
		}
		a.base.Config.AddSubAgents(agents...)
	}
}

// WithFunctionTools adds plain functions as tools for the agent.
func WithFunctionTools(fns ...tools.Function) LLMAgentOption {
	return func(a *LLMAgent) {
		for _, fn := range fns {
			a.tools = append(a.tools, fn)
		}
	}
}

// WithTools adds [types.Tool] for the agent.
func WithTools(ts ...types.Tool) LLMAgentOption {
	return func(a *LLMAgent) {
		for _, t := range ts {
			a.tools = append(a.tools, t)
		}
	}
}

// WithToolsets adds [types.Toolset] for the agent.
func WithToolsets(ts ...types.Toolset) LLMAgentOption {
	return func(a *LLMAgent) {
		for _, t := range ts {
			a.tools = append(a.tools, t)
		}
	}
}

// WithGenerateContentConfig sets the [genai.GenerateContentConfig] for the agent.
func WithGenerateContentConfig(config *genai.GenerateContentConfig) LLMAgentOption {
	return func(a *LLMAgent) {
		a.generateContentConfig = config
	}
}

// WithDisallowTransferToParent prevents transferring control to the parent.
func WithDisallowTransferToParent(disallow bool) LLMAgentOption {
	return func(a *LLMAgent) {
		a.disallowTransferToParent = disallow
	}
}

// WithDisallowTransferToPeers prevents transferring control to peers.
func WithDisallowTransferToPeers(disallow bool) LLMAgentOption {
	return func(a *LLMAgent) {
		a.disallowTransferToPeers = disallow
	}
}

// WithIncludeContents sets the [types.IncludeContents] for the agent.
func WithIncludeContents(includeContents types.IncludeContents) LLMAgentOption {
	return func(a *LLMAgent) {
		a.includeContents = includeContents
	}
}

// WithInputSchema sets the input schema for structured input.
func WithInputSchema(schema *genai.Schema) LLMAgentOption {
	return func(a *LLMAgent) {
		a.inputSchema = schema
	}
}

// WithOutputSchema sets the output schema for structured output.
func WithOutputSchema(schema *genai.Schema) LLMAgentOption {
	return func(a *LLMAgent) {
		a.outputSchema = schema
	}
}

// WithOutputKey sets the key where to store model output in state.
func WithOutputKey(key string) LLMAgentOption {
	return func(a *LLMAgent) {
		a.outputKey = key
	}
}

// WithBeforeAgentCallbacks adds callbacks to run before the agent runs.
func WithBeforeAgentCallbacks(callbacks ...types.AgentCallback) LLMAgentOption {
	return func(a *LLMAgent) {
		a.base.Config.AddBeforeAgentCallbacks(callbacks...)
	}
}

// WithAfterAgentCallbacks adds callbacks to run after the agent runs.
func WithAfterAgentCallbacks(callbacks ...types.AgentCallback) LLMAgentOption {
	return func(a *LLMAgent) {
		a.base.Config.AddAfterAgentCallbacks(callbacks...)
	}
}

// WithBeforeModelCallback adds a callback to run before sending a request to the model.
func WithBeforeModelCallback(callback types.BeforeModelCallback) LLMAgentOption {
	return func(a *LLMAgent) {
		a.beforeModelCallbacks = append(a.beforeModelCallbacks, callback)
	}
}

// WithAfterModelCallback adds a callback to run after receiving a response from the model.
func WithAfterModelCallback(callback types.AfterModelCallback) LLMAgentOption {
	return func(a *LLMAgent) {
		a.afterModelCallbacks = append(a.afterModelCallbacks, callback)
	}
}

// WithBeforeToolCallback adds a callback to run before executing a tool.
func WithBeforeToolCallback(callback types.BeforeToolCallback) LLMAgentOption {
	return func(a *LLMAgent) {
		a.beforeToolCallbacks = append(a.beforeToolCallbacks, callback)
	}
}

// WithAfterToolCallback adds a callback to run after executing a tool.
func WithAfterToolCallback(callback types.AfterToolCallback) LLMAgentOption {
	return func(a *LLMAgent) {
		a.afterToolCallbacks = append(a.afterToolCallbacks, callback)
	}
}

// NewLLMAgent creates a new [LLMAgent] with the given name and options.
func NewLLMAgent(ctx context.Context, name string, opts ...LLMAgentOption) (*LLMAgent, error) {
	agent := &LLMAgent{
		base:            types.NewBaseAgent(name),
		includeContents: types.IncludeContentsDefault,
	}
	for _, opt := range opts {
		opt(agent)
	}

	if err := agent.validateConfig(ctx); err != nil {
		return nil, fmt.Errorf("invalid agent configuration: %w", err)
	}

	return agent, nil
}

// Name implements [types.Agent].
func (a *LLMAgent) Name() string {
	return a.base.Name()
}

// Description implements [types.Agent].
func (a *LLMAgent) Description() string {
	return a.base.Description()
}

// ParentAgent implements [types.Agent].
func (a *LLMAgent) ParentAgent() types.Agent {
	return a.base.ParentAgent()
}

// SetParentAgent records the parent of this agent in the agent tree.
func (a *LLMAgent) SetParentAgent(parent types.Agent) {
	a.base.Config.SetParentAgent(parent)
}

// SubAgents implements [types.Agent].
func (a *LLMAgent) SubAgents() []types.Agent {
	return a.base.SubAgents()
}

// BeforeAgentCallbacks implements [types.Agent].
func (a *LLMAgent) BeforeAgentCallbacks() []types.AgentCallback {
	return a.base.BeforeAgentCallbacks()
}

// AfterAgentCallbacks implements [types.Agent].
func (a *LLMAgent) AfterAgentCallbacks() []types.AgentCallback {
	return a.base.AfterAgentCallbacks()
}

// AsLLMAgent implements [types.Agent].
func (a *LLMAgent) AsLLMAgent() (types.LLMAgent, bool) {
	return a, true
}

// CanonicalModel returns the resolved model field as [types.Model].
//
// When the agent has no model of its own, the model is inherited from the
// closest LLM ancestor.
func (a *LLMAgent) CanonicalModel(ctx context.Context) (types.Model, error) {
	switch m := a.model.(type) {
	case types.Model:
		return m, nil
	case string:
		if m != "" {
			return model.GetRegistry().NewLLM(ctx, m)
		}
	}

	for ancestor := a.base.ParentAgent(); ancestor != nil; ancestor = ancestor.ParentAgent() {
		if llmAgent, ok := ancestor.AsLLMAgent(); ok {
			return llmAgent.CanonicalModel(ctx)
		}
	}

	return nil, fmt.Errorf("no model found for agent %s", a.Name())
}

// CanonicalInstructions returns the resolved instruction for this agent.
func (a *LLMAgent) CanonicalInstructions(rctx *types.ReadOnlyContext) string {
	switch inst := a.instruction.(type) {
	case string:
		return inst
	case types.InstructionProvider:
		return inst(rctx)
	default:
		return ""
	}
}

// CanonicalGlobalInstruction returns the resolved global instruction, and
// whether one is set.
func (a *LLMAgent) CanonicalGlobalInstruction(rctx *types.ReadOnlyContext) (string, bool) {
	switch ginst := a.globalInstruction.(type) {
	case string:
		return ginst, ginst != ""
	case types.InstructionProvider:
		return ginst(rctx), true
	default:
		return "", false
	}
}

// CanonicalTools returns the resolved tools field as a list of [types.Tool]
// based on the context.
func (a *LLMAgent) CanonicalTools(rctx *types.ReadOnlyContext) []types.Tool {
	resolvedTools := []types.Tool{}
	for _, t := range a.tools {
		switch t := t.(type) {
		case types.Tool:
			resolvedTools = append(resolvedTools, t)
		case tools.Function:
			resolvedTools = append(resolvedTools, tools.NewFunctionTool(t))
		case types.Toolset:
			resolvedTools = append(resolvedTools, t.GetTools(rctx)...)
		}
	}
	return resolvedTools
}

// llmFlow selects the flow for this agent's shape.
//
// Agents that can neither receive nor initiate transfers use the single flow.
func (a *LLMAgent) llmFlow() types.Flow {
	if a.disallowTransferToParent && a.disallowTransferToPeers && len(a.base.SubAgents()) == 0 {
		return llmflow.NewSingleFlow()
	}
	return llmflow.NewAutoFlow()
}

// saveOutputToState saves the model output to state if needed.
func (a *LLMAgent) saveOutputToState(event *types.Event) {
	if a.outputKey == "" || !event.IsFinalResponse() || event.Content == nil || len(event.Content.Parts) == 0 {
		return
	}

	texts := make([]string, 0, len(event.Content.Parts))
	for _, part := range event.Content.Parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	if len(texts) == 0 {
		return
	}

	if event.Actions == nil {
		event.Actions = types.NewEventActions()
	}
	event.Actions.StateDelta[a.outputKey] = strings.Join(texts, "")
}

// GenerateContentConfig implements [types.LLMAgent].
func (a *LLMAgent) GenerateContentConfig() *genai.GenerateContentConfig {
	return a.generateContentConfig
}

// DisallowTransferToParent implements [types.LLMAgent].
func (a *LLMAgent) DisallowTransferToParent() bool {
	return a.disallowTransferToParent
}

// DisallowTransferToPeers implements [types.LLMAgent].
func (a *LLMAgent) DisallowTransferToPeers() bool {
	return a.disallowTransferToPeers
}

// IncludeContents implements [types.LLMAgent].
func (a *LLMAgent) IncludeContents() types.IncludeContents {
	return a.includeContents
}

// InputSchema implements [types.LLMAgent].
func (a *LLMAgent) InputSchema() *genai.Schema {
	return a.inputSchema
}

// OutputSchema implements [types.LLMAgent].
func (a *LLMAgent) OutputSchema() *genai.Schema {
	return a.outputSchema
}

// OutputKey implements [types.LLMAgent].
func (a *LLMAgent) OutputKey() string {
	return a.outputKey
}

// BeforeModelCallbacks implements [types.LLMAgent].
func (a *LLMAgent) BeforeModelCallbacks() []types.BeforeModelCallback {
	return a.beforeModelCallbacks
}

// AfterModelCallbacks implements [types.LLMAgent].
func (a *LLMAgent) AfterModelCallbacks() []types.AfterModelCallback {
	return a.afterModelCallbacks
}

// BeforeToolCallbacks implements [types.LLMAgent].
func (a *LLMAgent) BeforeToolCallbacks() []types.BeforeToolCallback {
	return a.beforeToolCallbacks
}

// AfterToolCallbacks implements [types.LLMAgent].
func (a *LLMAgent) AfterToolCallbacks() []types.AfterToolCallback {
	return a.afterToolCallbacks
}

// Execute implements [types.Agent].
func (a *LLMAgent) Execute(ctx context.Context, ictx *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		for event, err := range a.llmFlow().Run(ctx, ictx) {
			if err != nil {
				yield(nil, err)
				return
			}
			a.saveOutputToState(event)

			if !yield(event, nil) {
				return
			}
		}
	}
}

// Run implements [types.Agent].
func (a *LLMAgent) Run(ctx context.Context, parentContext *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return a.base.Run(ctx, parentContext)
}

// RootAgent implements [types.Agent].
func (a *LLMAgent) RootAgent() types.Agent {
	root := types.Agent(a)
	for root.ParentAgent() != nil {
		root = root.ParentAgent()
	}
	return root
}

// FindAgent implements [types.Agent].
func (a *LLMAgent) FindAgent(name string) types.Agent {
	if name == a.Name() {
		return a
	}
	return a.FindSubAgent(name)
}

// FindSubAgent implements [types.Agent].
func (a *LLMAgent) FindSubAgent(name string) types.Agent {
	for _, subAgent := range a.SubAgents() {
		if result := subAgent.FindAgent(name); result != nil {
			return result
		}
	}
	return nil
}

// validateConfig validates the agent configuration.
func (a *LLMAgent) validateConfig(ctx context.Context) error {
	if a.outputSchema != nil {
		// Output schema cannot coexist with agent transfer configurations.
		if !a.disallowTransferToParent || !a.disallowTransferToPeers {
			a.base.Logger().WarnContext(ctx, "invalid config: outputSchema cannot co-exist with agent transfer configurations",
				slog.Bool("disallowTransferToParent", a.disallowTransferToParent),
				slog.Bool("disallowTransferToPeers", a.disallowTransferToPeers),
			)
			a.disallowTransferToParent = true
			a.disallowTransferToPeers = true
		}

		if len(a.tools) > 0 {
			return errors.New("invalid config: if outputSchema is set, tools must be empty")
		}

		if len(a.base.SubAgents()) > 0 {
			return errors.New("invalid config: if outputSchema is set, subAgents must be empty to disable agent transfer")
		}
	}

	return nil
}
