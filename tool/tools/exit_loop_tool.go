// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"

	"github.com/vana-ai/vana/types"
)

// ExitLoop exits the loop by escalating to the loop agent.
//
// Call this function only when you are instructed to do so.
func ExitLoop(toolCtx *types.ToolContext) {
	toolCtx.Actions().Escalate = true
}

// NewExitLoopTool returns the tool the model calls to break out of a loop
// agent.
func NewExitLoopTool() *FunctionTool {
	return NewFunctionTool(func(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
		ExitLoop(toolCtx)
		return map[string]any{}, nil
	}).
		WithName("exit_loop").
		WithDescription("Exits the loop. Call this function only when you are instructed to do so.")
}
