// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package specialist

import (
	"context"
	"fmt"

	"github.com/vana-ai/vana/agent"
	"github.com/vana-ai/vana/router"
	"github.com/vana-ai/vana/types"
)

// RootAgentName is the name of the orchestrator agent.
const RootAgentName = "vana"

// RoutingDecisionStateKey is the session state key holding the latest
// routing decision. It is temp-scoped, so the decision never outlives the
// invocation.
const RoutingDecisionStateKey = types.TempPrefix + "routing_decision"

// NewRootAgent builds the orchestrator with all specialists as sub-agents.
// Before each model call it runs the deterministic router over the user's
// message, records the decision in session state, and appends a routing
// hint to the request instructions.
func NewRootAgent(ctx context.Context, cfg Config) (*agent.LLMAgent, error) {
	research, err := NewResearchAgent(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build research agent: %w", err)
	}
	security, err := NewSecurityAgent(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build security agent: %w", err)
	}
	architecture, err := NewArchitectureAgent(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build architecture agent: %w", err)
	}
	devops, err := NewDevOpsAgent(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build devops agent: %w", err)
	}
	qa, err := NewQAAgent(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build qa agent: %w", err)
	}
	datascience, err := NewDataScienceAgent(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build datascience agent: %w", err)
	}

	return agent.NewLLMAgent(ctx, RootAgentName,
		agent.WithModelString(cfg.model()),
		agent.WithDescription("Routes software engineering questions to the right specialist."),
		agent.WithInstruction(rootInstruction),
		agent.WithGlobalInstruction(rootGlobalInstruction),
		agent.WithSubAgents(research, security, architecture, devops, qa, datascience),
		agent.WithBeforeModelCallback(RoutingCallback(router.NewDefault())),
	)
}

// RoutingCallback returns a before-model callback that routes the user's
// message with r and attaches the decision as a hint.
func RoutingCallback(r *router.Router) types.BeforeModelCallback {
	return func(cctx *types.CallbackContext, request *types.LLMRequest) (*types.LLMResponse, error) {
		query := userQuery(cctx)
		if query == "" {
			return nil, nil
		}

		decision := r.Route(query)
		cctx.State().Set(RoutingDecisionStateKey, decision)

		request.AppendInstructions(fmt.Sprintf(
			"Routing hint: the deterministic router suggests the %q specialist (confidence %.2f, reason: %s).",
			decision.Specialist, decision.Confidence, decision.Reason,
		))

		return nil, nil
	}
}

// userQuery extracts the text of the user content that started the
// invocation.
func userQuery(cctx *types.CallbackContext) string {
	content := cctx.UserContent()
	if content == nil {
		return ""
	}

	var query string
	for _, part := range content.Parts {
		query += part.Text
	}
	return query
}
