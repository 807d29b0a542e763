// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"maps"
	"os"
	"slices"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/bytedance/sonic"
	"google.golang.org/genai"

	"github.com/vana-ai/vana/types"
)

const (
	// ClaudeDefaultModel is the default model name for [Claude].
	ClaudeDefaultModel = "claude-3-5-sonnet-latest"

	// EnvAnthropicAPIKey is the environment variable name for the Anthropic API key.
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"

	// claudeDefaultMaxTokens is used when the request does not set MaxOutputTokens.
	claudeDefaultMaxTokens = 4096
)

// Claude represents a Claude language model backed by the Anthropic API.
type Claude struct {
	name   string
	client anthropic.Client
}

var _ types.Model = (*Claude)(nil)

// NewClaude creates a new [Claude] instance.
//
// If apiKey is empty, the [EnvAnthropicAPIKey] environment variable is used.
func NewClaude(ctx context.Context, apiKey, modelName string) (*Claude, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvAnthropicAPIKey)
		if apiKey == "" {
			return nil, fmt.Errorf("either apiKey arg or %q environment variable must be set", EnvAnthropicAPIKey)
		}
	}
	if modelName == "" {
		modelName = ClaudeDefaultModel
	}

	return &Claude{
		name:   modelName,
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
	}, nil
}

// Name returns the model name.
func (m *Claude) Name() string {
	return m.name
}

// SupportedModels returns a list of supported Claude models.
func (m *Claude) SupportedModels() []string {
	return []string{
		// Anthropic API
		anthropic.ModelClaude3_7SonnetLatest,
		anthropic.ModelClaude3_7Sonnet20250219,
		anthropic.ModelClaude3_5HaikuLatest,
		anthropic.ModelClaude3_5Haiku20241022,
		anthropic.ModelClaude3_5SonnetLatest,
		anthropic.ModelClaude3_5Sonnet20241022,
		anthropic.ModelClaude3OpusLatest,

		// GCP Vertex AI
		"claude-3-7-sonnet@20250219",
		"claude-3-5-haiku@20241022",
		"claude-3-5-sonnet-v2@20241022",
	}
}

// buildMessageParams converts an [*types.LLMRequest] to Anthropic message parameters.
func (m *Claude) buildMessageParams(request *types.LLMRequest) (anthropic.MessageNewParams, error) {
	messages := make([]anthropic.MessageParam, 0, len(request.Contents))
	for _, content := range request.Contents {
		messages = append(messages, contentToClaudeMessageParam(content))
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(m.name),
		Messages:  messages,
		MaxTokens: claudeDefaultMaxTokens,
	}

	if config := request.Config; config != nil {
		if config.MaxOutputTokens > 0 {
			params.MaxTokens = int64(config.MaxOutputTokens)
		}
		if config.Temperature != nil {
			params.Temperature = anthropic.Float(float64(*config.Temperature))
		}
		if config.TopK != nil {
			params.TopK = anthropic.Int(int64(*config.TopK))
		}
		if config.TopP != nil {
			params.TopP = anthropic.Float(float64(*config.TopP))
		}

		if system := systemInstructionText(config.SystemInstruction); system != "" {
			params.System = []anthropic.TextBlockParam{
				{
					Text: system,
					Type: constant.ValueOf[constant.Text]().Default(),
				},
			}
		}

		var tools []anthropic.ToolUnionParam
		for _, genaiTool := range config.Tools {
			for _, funcDeclaration := range genaiTool.FunctionDeclarations {
				toolUnion, err := functionDeclarationToToolParam(funcDeclaration)
				if err != nil {
					return params, err
				}
				tools = append(tools, toolUnion)
			}
		}
		params.Tools = tools
	}

	return params, nil
}

// GenerateContent generates one response from the model.
func (m *Claude) GenerateContent(ctx context.Context, request *types.LLMRequest) (*types.LLMResponse, error) {
	params, err := m.buildMessageParams(request)
	if err != nil {
		return nil, err
	}

	message, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("claude API error: %w", err)
	}

	return claudeMessageToLLMResponse(message), nil
}

// StreamGenerateContent streams generated content from the model.
//
// Text deltas are yielded with Partial set, followed by one response built
// from the accumulated message once the stream finishes.
func (m *Claude) StreamGenerateContent(ctx context.Context, request *types.LLMRequest) iter.Seq2[*types.LLMResponse, error] {
	return func(yield func(*types.LLMResponse, error) bool) {
		params, err := m.buildMessageParams(request)
		if err != nil {
			yield(nil, err)
			return
		}

		stream := m.client.Messages.NewStreaming(ctx, params)

		var message anthropic.Message
		for stream.Next() {
			event := stream.Current()
			if err := message.Accumulate(event); err != nil {
				yield(nil, fmt.Errorf("accumulate claude message: %w", err))
				return
			}

			switch event.Type {
			case "content_block_delta":
				delta := event.AsContentBlockDeltaEvent()
				if delta.Delta.Type == "text_delta" && delta.Delta.Text != "" {
					partial := &types.LLMResponse{
						Content: &genai.Content{
							Role:  genai.RoleModel,
							Parts: []*genai.Part{genai.NewPartFromText(delta.Delta.Text)},
						},
						Partial: true,
					}
					if !yield(partial, nil) {
						return
					}
				}
			}
		}
		if err := stream.Err(); err != nil {
			yield(nil, err)
			return
		}

		final := claudeMessageToLLMResponse(&message)
		final.TurnComplete = true
		yield(final, nil)
	}
}

// systemInstructionText flattens a system instruction content into plain text.
func systemInstructionText(instruction *genai.Content) string {
	if instruction == nil {
		return ""
	}

	var text string
	for _, part := range instruction.Parts {
		if part != nil {
			text += part.Text
		}
	}
	return text
}

func functionDeclarationToToolParam(funcDeclaration *genai.FunctionDeclaration) (toolUnion anthropic.ToolUnionParam, err error) {
	if funcDeclaration.Name == "" {
		return toolUnion, errors.New("function declaration name is empty")
	}

	inputSchemaProps := make(map[string]*genai.Schema)
	if params := funcDeclaration.Parameters; params != nil && params.Properties != nil {
		maps.Insert(inputSchemaProps, maps.All(params.Properties))
	}
	inputSchema := anthropic.ToolInputSchemaParam{
		Type:       constant.ValueOf[constant.Object]().Default(),
		Properties: inputSchemaProps,
	}

	toolUnion = anthropic.ToolUnionParamOfTool(inputSchema, funcDeclaration.Name)
	toolUnion.OfTool.Description = param.NewOpt(funcDeclaration.Description)

	return toolUnion, nil
}

var modelRoles = []string{
	genai.RoleModel,
	"assistant",
}

func asClaudeRole(role string) anthropic.MessageParamRole {
	if slices.Contains(modelRoles, role) {
		return anthropic.MessageParamRoleAssistant
	}
	return anthropic.MessageParamRoleUser
}

func partToClaudeMessageBlock(part *genai.Part) (anthropic.ContentBlockParamUnion, error) {
	if part.Text != "" {
		params := anthropic.NewTextBlock(part.Text)
		params.OfRequestTextBlock.Type = constant.ValueOf[constant.Text]().Default()
		return params, nil
	}

	if part.FunctionCall != nil {
		funcCall := part.FunctionCall
		if funcCall.Name == "" {
			return anthropic.ContentBlockParamUnion{}, errors.New("function call name is empty")
		}

		params := anthropic.ContentBlockParamOfRequestToolUseBlock(funcCall.ID, funcCall.Args, funcCall.Name)
		params.OfRequestToolUseBlock.Type = constant.ValueOf[constant.ToolUse]().Default()
		return params, nil
	}

	if part.FunctionResponse != nil {
		funcResp := part.FunctionResponse
		result, err := sonic.ConfigFastest.MarshalToString(funcResp.Response)
		if err != nil {
			return anthropic.ContentBlockParamUnion{}, fmt.Errorf("marshal function response: %w", err)
		}
		params := anthropic.NewToolResultBlock(funcResp.ID, result, false)
		params.OfRequestToolResultBlock.Type = constant.ValueOf[constant.ToolResult]().Default()
		return params, nil
	}

	return anthropic.ContentBlockParamUnion{}, fmt.Errorf("unsupported part type: %#v", part)
}

// contentToClaudeMessageParam converts [*genai.Content] to [anthropic.MessageParam].
func contentToClaudeMessageParam(content *genai.Content) (msgParam anthropic.MessageParam) {
	msgParam.Role = asClaudeRole(content.Role)

	msgParam.Content = make([]anthropic.ContentBlockParamUnion, 0, len(content.Parts))
	for _, part := range content.Parts {
		msgBlock, err := partToClaudeMessageBlock(part)
		if err != nil {
			continue
		}
		msgParam.Content = append(msgParam.Content, msgBlock)
	}

	return msgParam
}

func claudeContentBlockToPart(contentBlock anthropic.ContentBlockUnion) (*genai.Part, error) {
	switch cBlock := contentBlock.AsAny().(type) {
	case anthropic.TextBlock:
		return genai.NewPartFromText(cBlock.Text), nil

	case anthropic.ToolUseBlock:
		if cBlock.Input == nil {
			return nil, fmt.Errorf("tool use input must be non-nil: %#v", cBlock)
		}
		var args map[string]any
		if err := sonic.ConfigFastest.Unmarshal(cBlock.Input, &args); err != nil {
			return nil, fmt.Errorf("unmarshal tool use input: %w", err)
		}
		part := genai.NewPartFromFunctionCall(cBlock.Name, args)
		part.FunctionCall.ID = cBlock.ID
		return part, nil
	}

	return nil, fmt.Errorf("unsupported content block: %T", contentBlock.AsAny())
}

// claudeMessageToLLMResponse converts an accumulated Anthropic message to an
// [*types.LLMResponse] in the genai content format.
func claudeMessageToLLMResponse(message *anthropic.Message) *types.LLMResponse {
	parts := make([]*genai.Part, 0, len(message.Content))
	for _, mcontent := range message.Content {
		part, err := claudeContentBlockToPart(mcontent)
		if err != nil {
			continue
		}
		parts = append(parts, part)
	}

	response := &types.LLMResponse{
		Content: &genai.Content{
			Role:  genai.RoleModel,
			Parts: parts,
		},
	}

	if message.Usage.InputTokens > 0 || message.Usage.OutputTokens > 0 {
		response.UsageMetadata = &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     int32(message.Usage.InputTokens),
			CandidatesTokenCount: int32(message.Usage.OutputTokens),
			TotalTokenCount:      int32(message.Usage.InputTokens + message.Usage.OutputTokens),
		}
	}

	return response
}
