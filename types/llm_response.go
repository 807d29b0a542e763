// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"google.golang.org/genai"
)

// LLMResponse represents a response from a language model.
//
// It provides structured access to content, errors, and metadata from the
// model's response.
type LLMResponse struct {
	// Content is the content of the response.
	Content *genai.Content `json:"content,omitempty"`

	// GroundingMetadata is the grounding metadata of the response.
	GroundingMetadata *genai.GroundingMetadata `json:"groundingMetadata,omitempty"`

	// Partial indicates whether the text content is part of an unfinished text stream.
	// Only used for streaming mode and when the content is plain text.
	Partial bool `json:"partial,omitempty"`

	// TurnComplete indicates whether the response from the model is complete.
	// Only used for streaming mode.
	TurnComplete bool `json:"turnComplete,omitempty"`

	// ErrorCode is the error code if the response is an error. Code varies by model.
	ErrorCode string `json:"errorCode,omitempty"`

	// ErrorMessage is the error message if the response is an error.
	ErrorMessage string `json:"errorMessage,omitempty"`

	// UsageMetadata is the token usage reported by the model.
	UsageMetadata *genai.GenerateContentResponseUsageMetadata `json:"usageMetadata,omitempty"`

	// CustomMetadata is an optional key-value pair to label an LLMResponse.
	// The entire map must be JSON serializable.
	CustomMetadata map[string]any `json:"customMetadata,omitempty"`
}

// CreateLLMResponse creates an [LLMResponse] from a [*genai.GenerateContentResponse].
func CreateLLMResponse(resp *genai.GenerateContentResponse) *LLMResponse {
	response := &LLMResponse{}

	if resp == nil {
		response.ErrorCode = "UNKNOWN_ERROR"
		response.ErrorMessage = "Generate content response is nil."
		return response
	}
	response.UsageMetadata = resp.UsageMetadata

	switch {
	case len(resp.Candidates) > 0:
		candidate := resp.Candidates[0]
		if candidate.Content != nil && len(candidate.Content.Parts) > 0 {
			response.Content = candidate.Content
			response.GroundingMetadata = candidate.GroundingMetadata
		} else {
			response.ErrorCode = string(candidate.FinishReason)
			response.ErrorMessage = candidate.FinishMessage
		}

	case resp.PromptFeedback != nil:
		promptFeedback := resp.PromptFeedback

		blockReason := "UNKNOWN_BLOCK"
		blockMessage := "Content was blocked. Check prompt feedback for details."
		for _, rating := range promptFeedback.SafetyRatings {
			if rating.Blocked {
				blockReason = string(rating.Category)
				blockMessage = "Content was blocked due to safety concerns."
				break
			}
		}

		response.ErrorCode = blockReason
		response.ErrorMessage = blockMessage

	default:
		response.ErrorCode = "UNKNOWN_ERROR"
		response.ErrorMessage = "Unknown error in generate content response."
	}

	return response
}

// WithPartial sets the partial flag and returns the response.
func (r *LLMResponse) WithPartial(partial bool) *LLMResponse {
	r.Partial = partial
	return r
}

// WithTurnComplete sets the turn complete flag and returns the response.
func (r *LLMResponse) WithTurnComplete(complete bool) *LLMResponse {
	r.TurnComplete = complete
	return r
}

// WithCustomMetadata sets the custom metadata and returns the response.
func (r *LLMResponse) WithCustomMetadata(metadata map[string]any) *LLMResponse {
	r.CustomMetadata = metadata
	return r
}

// IsError reports whether the response contains an error.
func (r *LLMResponse) IsError() bool {
	return r.ErrorCode != "" || r.ErrorMessage != ""
}

// GetText returns the concatenated text content of the response, or the empty
// string if no text parts are present.
func (r *LLMResponse) GetText() string {
	if r.Content == nil || len(r.Content.Parts) == 0 {
		return ""
	}

	var text string
	for _, part := range r.Content.Parts {
		text += part.Text
	}

	return text
}
