// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"maps"
	"reflect"
	"runtime"
	"strings"

	"google.golang.org/genai"

	"github.com/vana-ai/vana/tool"
	"github.com/vana-ai/vana/types"
)

// Function is a user-defined function callable by the model.
//
// The args map holds the arguments the model passed in the function call. The
// tool context gives access to session state, event actions and services.
type Function func(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error)

// FunctionTool wraps a [Function] as a [types.Tool].
type FunctionTool struct {
	name          string
	description   string
	isLongRunning bool
	fn            Function
	declaration   *genai.FunctionDeclaration
}

var _ types.Tool = (*FunctionTool)(nil)

// NewFunctionTool returns a new [FunctionTool] wrapping fn.
//
// The tool name defaults to the function's name; override it with
// [FunctionTool.WithName].
func NewFunctionTool(fn Function) *FunctionTool {
	funcName := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()
	if idx := strings.LastIndex(funcName, "."); idx > -1 {
		funcName = funcName[idx+1:]
	}

	return &FunctionTool{
		name: funcName,
		fn:   fn,
	}
}

// WithName sets the tool name.
func (t *FunctionTool) WithName(name string) *FunctionTool {
	t.name = name
	return t
}

// WithDescription sets the tool description.
func (t *FunctionTool) WithDescription(description string) *FunctionTool {
	t.description = description
	return t
}

// WithDeclaration sets the function declaration exposed to the model.
func (t *FunctionTool) WithDeclaration(declaration *genai.FunctionDeclaration) *FunctionTool {
	t.declaration = declaration
	return t
}

// WithLongRunning marks the tool as a long running operation.
func (t *FunctionTool) WithLongRunning(longRunning bool) *FunctionTool {
	t.isLongRunning = longRunning
	return t
}

// Name implements [types.Tool].
func (t *FunctionTool) Name() string {
	return t.name
}

// Description implements [types.Tool].
func (t *FunctionTool) Description() string {
	return t.description
}

// IsLongRunning implements [types.Tool].
func (t *FunctionTool) IsLongRunning() bool {
	return t.isLongRunning
}

// GetDeclaration implements [types.Tool].
func (t *FunctionTool) GetDeclaration() *genai.FunctionDeclaration {
	if t.declaration != nil {
		return t.declaration
	}
	return &genai.FunctionDeclaration{
		Name:        t.name,
		Description: t.description,
	}
}

// Run implements [types.Tool].
func (t *FunctionTool) Run(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
	return t.fn(ctx, maps.Clone(args), toolCtx)
}

// ProcessLLMRequest implements [types.Tool].
func (t *FunctionTool) ProcessLLMRequest(ctx context.Context, toolCtx *types.ToolContext, request *types.LLMRequest) error {
	return tool.ProcessRequest(t, request)
}
