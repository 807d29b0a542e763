// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"testing"

	"google.golang.org/genai"
)

func TestNewEvent(t *testing.T) {
	event := NewEvent()

	if event.ID == "" {
		t.Error("NewEvent().ID is empty")
	}
	if event.Timestamp.IsZero() {
		t.Error("NewEvent().Timestamp is zero")
	}
	if event.Actions == nil {
		t.Error("NewEvent().Actions is nil")
	}
	if event.LLMResponse == nil {
		t.Error("NewEvent().LLMResponse is nil")
	}
}

func TestEventIsFinalResponse(t *testing.T) {
	tests := []struct {
		name  string
		event *Event
		want  bool
	}{
		{
			name: "plain text response",
			event: NewEvent().WithContent(&genai.Content{
				Parts: []*genai.Part{{Text: "done"}},
			}),
			want: true,
		},
		{
			name: "function call pending",
			event: NewEvent().WithContent(&genai.Content{
				Parts: []*genai.Part{{FunctionCall: &genai.FunctionCall{Name: "transfer_to_agent"}}},
			}),
			want: false,
		},
		{
			name: "function response pending",
			event: NewEvent().WithContent(&genai.Content{
				Parts: []*genai.Part{{FunctionResponse: &genai.FunctionResponse{Name: "transfer_to_agent"}}},
			}),
			want: false,
		},
		{
			name: "partial stream chunk",
			event: NewEvent().WithLLMResponse(&LLMResponse{
				Content: &genai.Content{Parts: []*genai.Part{{Text: "chu"}}},
				Partial: true,
			}),
			want: false,
		},
		{
			name: "skip summarization wins",
			event: NewEvent().
				WithContent(&genai.Content{
					Parts: []*genai.Part{{FunctionResponse: &genai.FunctionResponse{Name: "load_memory"}}},
				}).
				WithActions(NewEventActions().WithSkipSummarization(true)),
			want: true,
		},
		{
			name:  "empty event",
			event: NewEvent(),
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.IsFinalResponse(); got != tt.want {
				t.Errorf("IsFinalResponse() = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestEventGetFunctionCalls(t *testing.T) {
	event := NewEvent().WithContent(&genai.Content{
		Parts: []*genai.Part{
			{Text: "calling"},
			{FunctionCall: &genai.FunctionCall{Name: "vector_search"}},
			{FunctionCall: &genai.FunctionCall{Name: "load_memory"}},
		},
	})

	calls := event.GetFunctionCalls()
	if len(calls) != 2 {
		t.Fatalf("GetFunctionCalls() returned %d calls, want 2", len(calls))
	}
	if calls[0].Name != "vector_search" || calls[1].Name != "load_memory" {
		t.Errorf("GetFunctionCalls() = %q, %q, want vector_search, load_memory", calls[0].Name, calls[1].Name)
	}
}

func TestEventGetFunctionResponses(t *testing.T) {
	event := NewEvent().WithContent(&genai.Content{
		Parts: []*genai.Part{
			{FunctionResponse: &genai.FunctionResponse{Name: "vector_search"}},
		},
	})

	responses := event.GetFunctionResponses()
	if len(responses) != 1 || responses[0].Name != "vector_search" {
		t.Errorf("GetFunctionResponses() = %v, want one vector_search response", responses)
	}
}

func TestNewEventID(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := NewEventID()
		if len(id) != 8 {
			t.Fatalf("NewEventID() length = %d, want 8", len(id))
		}
		if seen[id] {
			t.Fatalf("NewEventID() returned duplicate %q", id)
		}
		seen[id] = true
	}
}
