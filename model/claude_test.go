// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"google.golang.org/genai"
)

func TestAsClaudeRole(t *testing.T) {
	tests := map[string]anthropic.MessageParamRole{
		"model":     anthropic.MessageParamRoleAssistant,
		"assistant": anthropic.MessageParamRoleAssistant,
		"user":      anthropic.MessageParamRoleUser,
		"":          anthropic.MessageParamRoleUser,
	}

	for role, want := range tests {
		if got := asClaudeRole(role); got != want {
			t.Errorf("asClaudeRole(%q) = %q, want %q", role, got, want)
		}
	}
}

func TestSystemInstructionText(t *testing.T) {
	if got := systemInstructionText(nil); got != "" {
		t.Errorf("systemInstructionText(nil) = %q, want empty", got)
	}

	instruction := &genai.Content{
		Parts: []*genai.Part{
			genai.NewPartFromText("You are a helpful agent."),
			genai.NewPartFromText(" Be brief."),
		},
	}
	want := "You are a helpful agent. Be brief."
	if got := systemInstructionText(instruction); got != want {
		t.Errorf("systemInstructionText() = %q, want %q", got, want)
	}
}

func TestContentToClaudeMessageParam(t *testing.T) {
	content := &genai.Content{
		Role: "model",
		Parts: []*genai.Part{
			genai.NewPartFromText("calling a tool"),
			{FunctionCall: &genai.FunctionCall{ID: "call-1", Name: "lookup", Args: map[string]any{"q": "go"}}},
		},
	}

	msgParam := contentToClaudeMessageParam(content)

	if msgParam.Role != anthropic.MessageParamRoleAssistant {
		t.Errorf("role = %q, want assistant", msgParam.Role)
	}
	if len(msgParam.Content) != 2 {
		t.Fatalf("got %d blocks, want 2", len(msgParam.Content))
	}
	if msgParam.Content[0].OfRequestTextBlock == nil {
		t.Error("first block should be a text block")
	}
	if msgParam.Content[1].OfRequestToolUseBlock == nil {
		t.Error("second block should be a tool use block")
	}
}

func TestContentToClaudeMessageParamSkipsUnknownParts(t *testing.T) {
	content := &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			genai.NewPartFromText("hello"),
			{}, // empty part has no supported payload
		},
	}

	msgParam := contentToClaudeMessageParam(content)

	if len(msgParam.Content) != 1 {
		t.Fatalf("got %d blocks, want 1 (empty part skipped)", len(msgParam.Content))
	}
}

func TestFunctionDeclarationToToolParam(t *testing.T) {
	declaration := &genai.FunctionDeclaration{
		Name:        "search",
		Description: "Searches the corpus.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"query": {Type: genai.TypeString},
			},
		},
	}

	toolUnion, err := functionDeclarationToToolParam(declaration)
	if err != nil {
		t.Fatal(err)
	}
	if toolUnion.OfTool == nil {
		t.Fatal("expected a tool variant")
	}
	if toolUnion.OfTool.Name != "search" {
		t.Errorf("name = %q, want search", toolUnion.OfTool.Name)
	}
	props, ok := toolUnion.OfTool.InputSchema.Properties.(map[string]*genai.Schema)
	if !ok || props["query"] == nil {
		t.Errorf("query property not carried into the input schema: %#v", toolUnion.OfTool.InputSchema.Properties)
	}
}

func TestFunctionDeclarationToToolParamRequiresName(t *testing.T) {
	if _, err := functionDeclarationToToolParam(&genai.FunctionDeclaration{}); err == nil {
		t.Error("expected an error for a nameless declaration")
	}
}
