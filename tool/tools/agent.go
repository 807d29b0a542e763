// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"
	"maps"

	"github.com/bytedance/sonic"
	"google.golang.org/genai"

	"github.com/vana-ai/vana/tool"
	"github.com/vana-ai/vana/types"
)

// AgentTool wraps an agent so it can be called as a tool by another agent.
//
// The wrapped agent runs in a child invocation on the same session; its final
// response text is returned as the tool result, and any state changes it made
// are folded into the calling event.
type AgentTool struct {
	agent types.Agent

	skipSummarization bool
}

var _ types.Tool = (*AgentTool)(nil)

// NewAgentTool creates a new [AgentTool] wrapping the given agent.
func NewAgentTool(agent types.Agent) *AgentTool {
	return &AgentTool{
		agent: agent,
	}
}

// WithSkipSummarization makes the caller skip summarizing the tool result.
func (t *AgentTool) WithSkipSummarization(skip bool) *AgentTool {
	t.skipSummarization = skip
	return t
}

// Name implements [types.Tool].
func (t *AgentTool) Name() string {
	return t.agent.Name()
}

// Description implements [types.Tool].
func (t *AgentTool) Description() string {
	return t.agent.Description()
}

// IsLongRunning implements [types.Tool].
func (t *AgentTool) IsLongRunning() bool {
	return false
}

// GetDeclaration implements [types.Tool].
func (t *AgentTool) GetDeclaration() *genai.FunctionDeclaration {
	if llmAgent, ok := t.agent.AsLLMAgent(); ok {
		if schema := llmAgent.InputSchema(); schema != nil {
			return &genai.FunctionDeclaration{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  schema,
			}
		}
	}

	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"request": {
					Type:        genai.TypeString,
					Description: "The request to hand to the agent.",
				},
			},
			Required: []string{"request"},
		},
	}
}

// Run implements [types.Tool].
func (t *AgentTool) Run(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
	content, err := t.buildUserContent(args)
	if err != nil {
		return nil, err
	}

	parent := toolCtx.InvocationContext()
	childIctx := types.NewInvocationContext(t.agent, parent.Session, parent.SessionService,
		types.WithArtifactService(parent.ArtifactService),
		types.WithMemoryService(parent.MemoryService),
		types.WithBranch(parent.Branch),
		types.WithUserContent(content),
		types.WithRunConfig(parent.RunConfig),
	)

	if t.skipSummarization {
		toolCtx.Actions().SkipSummarization = true
	}

	var lastText string
	for event, err := range t.agent.Run(ctx, childIctx) {
		if err != nil {
			return nil, fmt.Errorf("run agent %s: %w", t.agent.Name(), err)
		}
		if event.Actions != nil && len(event.Actions.StateDelta) > 0 {
			maps.Copy(toolCtx.Actions().StateDelta, event.Actions.StateDelta)
		}
		if event.IsFinalResponse() && event.Content != nil {
			lastText = event.GetText()
		}
	}

	return map[string]any{"result": lastText}, nil
}

// ProcessLLMRequest implements [types.Tool].
func (t *AgentTool) ProcessLLMRequest(ctx context.Context, toolCtx *types.ToolContext, request *types.LLMRequest) error {
	return tool.ProcessRequest(t, request)
}

func (t *AgentTool) buildUserContent(args map[string]any) (*genai.Content, error) {
	if llmAgent, ok := t.agent.AsLLMAgent(); ok && llmAgent.InputSchema() != nil {
		text, err := sonic.ConfigFastest.MarshalToString(args)
		if err != nil {
			return nil, fmt.Errorf("marshal agent tool input: %w", err)
		}
		return genai.NewContentFromText(text, "user"), nil
	}

	request, _ := args["request"].(string)
	return genai.NewContentFromText(request, "user"), nil
}
