// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"google.golang.org/genai"
)

// LLMRequest represents an LLM request that allows passing in tools, output
// schema and system instructions.
type LLMRequest struct {
	// The model name.
	Model string `json:"model,omitempty"`

	// The contents to send to the model.
	Contents []*genai.Content `json:"contents"`

	// Additional config for the generate content request.
	//
	// Tools in the generate content config should not be set directly; use
	// [LLMRequest.AppendTools].
	Config *genai.GenerateContentConfig `json:"config,omitempty"`

	// The tools map, keyed by tool name.
	ToolMap map[string]Tool `json:"-"`
}

// LLMRequestOption configures an [LLMRequest].
type LLMRequestOption func(*LLMRequest)

// WithModelName sets the model name.
func WithModelName(name string) LLMRequestOption {
	return func(r *LLMRequest) {
		r.Model = name
	}
}

// WithGenerationConfig sets the [*genai.GenerateContentConfig] for the request.
func WithGenerationConfig(config *genai.GenerateContentConfig) LLMRequestOption {
	return func(r *LLMRequest) {
		r.Config = config
	}
}

// WithSafetySettings appends [*genai.SafetySetting] to the request config.
func WithSafetySettings(settings ...*genai.SafetySetting) LLMRequestOption {
	return func(r *LLMRequest) {
		if r.Config == nil {
			r.Config = &genai.GenerateContentConfig{}
		}
		r.Config.SafetySettings = append(r.Config.SafetySettings, settings...)
	}
}

// NewLLMRequest creates a new [LLMRequest].
func NewLLMRequest(contents []*genai.Content, opts ...LLMRequestOption) *LLMRequest {
	r := &LLMRequest{
		Contents: contents,
		ToolMap:  make(map[string]Tool),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// AppendInstructions appends instructions to the system instruction.
func (r *LLMRequest) AppendInstructions(instructions ...string) {
	if len(instructions) == 0 {
		return
	}
	if r.Config == nil {
		r.Config = &genai.GenerateContentConfig{}
	}

	part := &genai.Part{
		Text: "\n\n" + strings.Join(instructions, "\n\n"),
	}
	if r.Config.SystemInstruction == nil {
		r.Config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{part},
		}
		return
	}

	r.Config.SystemInstruction.Parts = append(r.Config.SystemInstruction.Parts, part)
}

// AppendTools adds tools to the request and registers them in the tool map.
func (r *LLMRequest) AppendTools(tools ...Tool) *LLMRequest {
	if len(tools) == 0 {
		return r
	}
	if r.Config == nil {
		r.Config = &genai.GenerateContentConfig{}
	}
	if r.ToolMap == nil {
		r.ToolMap = make(map[string]Tool)
	}

	var declarations []*genai.FunctionDeclaration
	for _, tool := range tools {
		if decl := tool.GetDeclaration(); decl != nil {
			declarations = append(declarations, decl)
		}
		r.ToolMap[tool.Name()] = tool
	}
	if len(declarations) > 0 {
		r.Config.Tools = append(r.Config.Tools, &genai.Tool{
			FunctionDeclarations: declarations,
		})
	}

	return r
}

// SetOutputSchema configures the expected response format.
func (r *LLMRequest) SetOutputSchema(schema *genai.Schema) *LLMRequest {
	if r.Config == nil {
		r.Config = &genai.GenerateContentConfig{}
	}

	r.Config.ResponseSchema = schema
	r.Config.ResponseMIMEType = "application/json"

	return r
}

// ToJSON converts the request to a JSON string.
func (r *LLMRequest) ToJSON() (string, error) {
	out, err := sonic.ConfigFastest.MarshalToString(r)
	if err != nil {
		return "", fmt.Errorf("marshal LLMRequest to JSON: %w", err)
	}
	return out, nil
}
