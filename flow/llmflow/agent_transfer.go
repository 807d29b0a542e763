// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"google.golang.org/genai"

	"github.com/vana-ai/vana/tool/tools"
	"github.com/vana-ai/vana/types"
)

// TransferToAgentFunctionCallName is the name of the function the model calls
// to hand the conversation over to another agent.
const TransferToAgentFunctionCallName = "transfer_to_agent"

// AgentTransferLLMRequestProcessor enables LLM-controlled transfer between the
// agent, its parent, and its peers.
type AgentTransferLLMRequestProcessor struct{}

var _ types.LLMRequestProcessor = (*AgentTransferLLMRequestProcessor)(nil)

// Run implements [types.LLMRequestProcessor].
func (rp *AgentTransferLLMRequestProcessor) Run(ctx context.Context, ictx *types.InvocationContext, request *types.LLMRequest) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		llmAgent, ok := ictx.Agent.AsLLMAgent()
		if !ok {
			return
		}

		transferTargets := rp.getTransferTargets(llmAgent)
		if len(transferTargets) == 0 {
			return
		}

		request.AppendInstructions(
			rp.buildTargetAgentsInstructions(llmAgent, transferTargets),
		)

		toolCtx := types.NewToolContext(ictx)
		if err := transferToAgentTool().ProcessLLMRequest(ctx, toolCtx, request); err != nil {
			yield(nil, err)
			return
		}
	}
}

// transferToAgentTool builds the function tool the model calls to transfer
// the conversation. The tool records the target on the tool context actions.
func transferToAgentTool() *tools.FunctionTool {
	fn := func(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
		agentName, ok := args["agent_name"].(string)
		if !ok || agentName == "" {
			return nil, fmt.Errorf("%s: agent_name argument is required", TransferToAgentFunctionCallName)
		}
		toolCtx.Actions().TransferToAgent = agentName
		return map[string]any{}, nil
	}

	return tools.NewFunctionTool(fn).
		WithName(TransferToAgentFunctionCallName).
		WithDescription("Transfer the question to another agent.").
		WithDeclaration(&genai.FunctionDeclaration{
			Name:        TransferToAgentFunctionCallName,
			Description: "Transfer the question to another agent.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"agent_name": {
						Type:        genai.TypeString,
						Description: "The name of the agent to transfer the question to.",
					},
				},
				Required: []string{"agent_name"},
			},
		})
}

func (rp *AgentTransferLLMRequestProcessor) buildTargetAgentsInfo(targetAgent types.Agent) string {
	return fmt.Sprintf(`
Agent name: %s
Agent description: %s
`, targetAgent.Name(), targetAgent.Description())
}

func (rp *AgentTransferLLMRequestProcessor) buildTargetAgentsInstructions(llmAgent types.LLMAgent, targetAgents []types.Agent) string {
	targetAgentsInfos := make([]string, len(targetAgents))
	for i, targetAgent := range targetAgents {
		targetAgentsInfos[i] = rp.buildTargetAgentsInfo(targetAgent)
	}

	sysInst := `
You have a list of other agents to transfer to:

` +
		strings.Join(targetAgentsInfos, "\n") + `

If you are the best to answer the question according to your description, you
can answer it.

If another agent is better for answering the question according to its
description, call ` + TransferToAgentFunctionCallName + ` function to transfer the
question to that agent. When transferring, do not generate any text other than
the function call.
`

	if parent := llmAgent.ParentAgent(); parent != nil {
		sysInst += `
Your parent agent is ` + parent.Name() + `. If neither the other agents nor
you are best for answering the question according to the descriptions, transfer
to your parent agent. If you don't have parent agent, try answer by yourself.
`
	}

	return sysInst
}

// getTransferTargets collects the agents this agent may transfer to: its
// sub-agents always, and the parent and peers when the parent is an LLM agent
// and the disallow options permit.
func (rp *AgentTransferLLMRequestProcessor) getTransferTargets(llmAgent types.LLMAgent) []types.Agent {
	agents := llmAgent.SubAgents()

	parent := llmAgent.ParentAgent()
	if parent == nil {
		return agents
	}
	if _, ok := parent.AsLLMAgent(); !ok {
		return agents
	}

	if !llmAgent.DisallowTransferToParent() {
		agents = append(agents, parent)
	}

	if !llmAgent.DisallowTransferToPeers() {
		for _, peer := range parent.SubAgents() {
			if peer.Name() != llmAgent.Name() {
				agents = append([]types.Agent{peer}, agents...)
			}
		}
	}

	return agents
}
