// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/vana-ai/vana/types"
)

const (
	// GeminiDefaultModel is the default model name for [Gemini].
	GeminiDefaultModel = "gemini-2.0-flash"

	// EnvGoogleAPIKey is the environment variable name for the Gemini API key.
	EnvGoogleAPIKey = "GOOGLE_API_KEY"
)

// Gemini represents a Google Gemini language model.
type Gemini struct {
	name   string
	client *genai.Client
	logger *slog.Logger
}

var _ types.Model = (*Gemini)(nil)

// GeminiOption configures a [Gemini].
type GeminiOption func(*Gemini)

// WithGeminiLogger sets the logger for the model.
func WithGeminiLogger(logger *slog.Logger) GeminiOption {
	return func(m *Gemini) {
		m.logger = logger
	}
}

// NewGemini creates a new [Gemini] instance.
//
// If apiKey is empty, the client configuration is taken from the
// environment: [EnvGoogleAPIKey] for the Gemini API, or the
// GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT and
// GOOGLE_CLOUD_LOCATION variables for Vertex AI.
func NewGemini(ctx context.Context, apiKey, modelName string, opts ...GeminiOption) (*Gemini, error) {
	if modelName == "" {
		modelName = GeminiDefaultModel
	}

	config := &genai.ClientConfig{}
	if apiKey != "" {
		config.APIKey = apiKey
	} else if os.Getenv(EnvGoogleAPIKey) == "" && os.Getenv("GOOGLE_GENAI_USE_VERTEXAI") == "" {
		return nil, fmt.Errorf("either apiKey arg or %q environment variable must be set", EnvGoogleAPIKey)
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	m := &Gemini{
		name:   modelName,
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// Name returns the model name.
func (m *Gemini) Name() string {
	return m.name
}

// SupportedModels returns a list of supported Gemini models.
//
// See https://ai.google.dev/gemini-api/docs/models.
func (m *Gemini) SupportedModels() []string {
	return []string{
		"gemini-2.5-pro",
		"gemini-2.5-flash",
		"gemini-2.0-flash",
		"gemini-2.0-flash-lite",
		"gemini-1.5-pro",
		"gemini-1.5-flash",
		"gemini-1.5-flash-8b",
	}
}

// appendUserContent makes sure the conversation ends with a user turn. The
// Gemini API rejects histories whose last message is from the model.
func appendUserContent(contents []*genai.Content) []*genai.Content {
	switch {
	case len(contents) == 0:
		return append(contents, genai.NewContentFromText(
			`Handle the requests as specified in the System Instruction.`, genai.RoleUser))

	case strings.ToLower(contents[len(contents)-1].Role) != genai.RoleUser:
		return append(contents, genai.NewContentFromText(
			`Continue processing previous requests as instructed. Exit or provide a summary if no more outputs are needed.`, genai.RoleUser))

	default:
		return contents
	}
}

// GenerateContent generates one response from the model.
func (m *Gemini) GenerateContent(ctx context.Context, request *types.LLMRequest) (*types.LLMResponse, error) {
	contents := appendUserContent(request.Contents)

	response, err := m.client.Models.GenerateContent(ctx, m.name, contents, request.Config)
	if err != nil {
		return nil, fmt.Errorf("gemini API error: %w", err)
	}
	m.logger.DebugContext(ctx, "gemini response", buildResponseLog(response))

	return types.CreateLLMResponse(response), nil
}

// StreamGenerateContent streams generated content from the model.
//
// Text chunks are yielded with Partial set, followed by one aggregated
// response carrying the full text once the stream finishes.
func (m *Gemini) StreamGenerateContent(ctx context.Context, request *types.LLMRequest) iter.Seq2[*types.LLMResponse, error] {
	return func(yield func(*types.LLMResponse, error) bool) {
		contents := appendUserContent(request.Contents)

		stream := m.client.Models.GenerateContentStream(ctx, m.name, contents, request.Config)

		var (
			buf      strings.Builder
			lastResp *genai.GenerateContentResponse
		)
		for resp, err := range stream {
			if err != nil {
				yield(nil, err)
				return
			}
			if ctx.Err() != nil || resp == nil {
				return
			}

			lastResp = resp
			llmResp := types.CreateLLMResponse(resp)

			switch {
			case containsText(llmResp):
				buf.WriteString(llmResp.Content.Parts[0].Text)
				llmResp.Partial = true

			case buf.Len() > 0:
				if !yield(newAggregateText(buf.String()), nil) {
					return
				}
				buf.Reset()
			}

			if !yield(llmResp, nil) {
				return
			}
		}

		if buf.Len() > 0 && finishStop(lastResp) {
			yield(newAggregateText(buf.String()), nil)
		}
	}
}

func newAggregateText(s string) *types.LLMResponse {
	return &types.LLMResponse{
		Content: &genai.Content{
			Role:  genai.RoleModel,
			Parts: []*genai.Part{genai.NewPartFromText(s)},
		},
		TurnComplete: true,
	}
}

// containsText reports whether the first part carries a non-empty Text field.
func containsText(r *types.LLMResponse) bool {
	return r.Content != nil && len(r.Content.Parts) > 0 && r.Content.Parts[0].Text != ""
}

// finishStop reports whether the first candidate finished with STOP.
func finishStop(r *genai.GenerateContentResponse) bool {
	return r != nil && len(r.Candidates) > 0 && r.Candidates[0].FinishReason == genai.FinishReasonStop
}

const responseLogFmt = `
LLM Response:
-----------------------------------------------------------
Text:
%s
-----------------------------------------------------------
Function calls:
%s
-----------------------------------------------------------
`

func buildResponseLog(resp *genai.GenerateContentResponse) slog.Attr {
	functionCalls := resp.FunctionCalls()
	functionCallsText := make([]string, len(functionCalls))
	for i, funcCall := range functionCalls {
		functionCallsText[i] = fmt.Sprintf("name: %s, args: %v", funcCall.Name, funcCall.Args)
	}

	return slog.String("response", fmt.Sprintf(responseLogFmt, resp.Text(), strings.Join(functionCallsText, "\n")))
}
