// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/vana-ai/vana/types"
)

func newTextEvent(author, branch, text string) *types.Event {
	return types.NewEvent().
		WithAuthor(author).
		WithBranch(branch).
		WithContent(&genai.Content{
			Role:  "model",
			Parts: []*genai.Part{{Text: text}},
		})
}

func TestGetContentsFiltersEmptyEvents(t *testing.T) {
	cp := &ContentLLMRequestProcessor{}

	stateOnly := types.NewEvent().WithAuthor("assistant")
	stateOnly.Actions.StateDelta["k"] = "v"

	events := []*types.Event{
		newTextEvent("user", "", "hello"),
		stateOnly,
		newTextEvent("assistant", "", "hi there"),
	}

	contents, err := cp.getContents("", events, "assistant")
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 2 {
		t.Fatalf("got %d contents, want 2", len(contents))
	}
	if contents[0].Parts[0].Text != "hello" || contents[1].Parts[0].Text != "hi there" {
		t.Errorf("unexpected contents order: %q, %q", contents[0].Parts[0].Text, contents[1].Parts[0].Text)
	}
}

func TestGetContentsFiltersByBranch(t *testing.T) {
	cp := &ContentLLMRequestProcessor{}

	events := []*types.Event{
		newTextEvent("user", "", "shared"),
		newTextEvent("peer", "fanout.peer", "peer only"),
		newTextEvent("worker", "fanout.worker", "mine"),
	}

	contents, err := cp.getContents("fanout.worker", events, "worker")
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 2 {
		t.Fatalf("got %d contents, want 2", len(contents))
	}
	for _, content := range contents {
		for _, part := range content.Parts {
			if part.Text == "peer only" {
				t.Error("peer branch event leaked into request contents")
			}
		}
	}
}

func TestGetContentsConvertsForeignEvents(t *testing.T) {
	cp := &ContentLLMRequestProcessor{}

	events := []*types.Event{
		newTextEvent("user", "", "question"),
		newTextEvent("researcher", "", "research summary"),
	}

	contents, err := cp.getContents("", events, "writer")
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 2 {
		t.Fatalf("got %d contents, want 2", len(contents))
	}

	foreign := contents[1]
	if foreign.Role != "user" {
		t.Errorf("foreign event role = %q, want user", foreign.Role)
	}
	if foreign.Parts[0].Text != "For context:" {
		t.Errorf("foreign event preamble = %q", foreign.Parts[0].Text)
	}
	if want := "[researcher] said: research summary"; foreign.Parts[1].Text != want {
		t.Errorf("foreign event text = %q, want %q", foreign.Parts[1].Text, want)
	}
}

func TestGetContentsKeepsFunctionCallEvents(t *testing.T) {
	cp := &ContentLLMRequestProcessor{}

	callEvent := types.NewEvent().
		WithAuthor("assistant").
		WithContent(&genai.Content{
			Role: "model",
			Parts: []*genai.Part{
				{FunctionCall: &genai.FunctionCall{ID: FunctionCallIDPrefix + "1", Name: "lookup", Args: map[string]any{"q": "x"}}},
			},
		})
	responseEvent := types.NewEvent().
		WithAuthor("assistant").
		WithContent(&genai.Content{
			Role: "user",
			Parts: []*genai.Part{
				{FunctionResponse: &genai.FunctionResponse{ID: FunctionCallIDPrefix + "1", Name: "lookup", Response: map[string]any{"result": "y"}}},
			},
		})

	events := []*types.Event{
		newTextEvent("user", "", "look it up"),
		callEvent,
		responseEvent,
	}

	contents, err := cp.getContents("", events, "assistant")
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 3 {
		t.Fatalf("got %d contents, want 3", len(contents))
	}
	if contents[1].Parts[0].FunctionCall == nil {
		t.Fatal("function call dropped from contents")
	}
	if got := contents[1].Parts[0].FunctionCall.ID; got != "" {
		t.Errorf("client function call ID not stripped: %q", got)
	}
	if got := contents[2].Parts[0].FunctionResponse.ID; got != "" {
		t.Errorf("client function response ID not stripped: %q", got)
	}
	// The session events keep their IDs; only the request copies are stripped.
	if callEvent.Content.Parts[0].FunctionCall.ID == "" {
		t.Error("stripping the request copy mutated the session event")
	}
}

func TestRearrangeEventsForLatestFunctionResponse(t *testing.T) {
	cp := &ContentLLMRequestProcessor{}

	callEvent := types.NewEvent().
		WithAuthor("assistant").
		WithContent(&genai.Content{
			Role: "model",
			Parts: []*genai.Part{
				{FunctionCall: &genai.FunctionCall{ID: "op-1", Name: "long_op"}},
			},
		})
	intermediate := newTextEvent("user", "", "still waiting")
	responseEvent := types.NewEvent().
		WithAuthor("assistant").
		WithContent(&genai.Content{
			Role: "user",
			Parts: []*genai.Part{
				{FunctionResponse: &genai.FunctionResponse{ID: "op-1", Name: "long_op", Response: map[string]any{"done": true}}},
			},
		})

	result, err := cp.rearrangeEventsForLatestFunctionResponse([]*types.Event{callEvent, intermediate, responseEvent})
	if err != nil {
		t.Fatal(err)
	}
	if len(result) != 2 {
		t.Fatalf("got %d events, want 2 (intermediate removed)", len(result))
	}
	if len(result[0].GetFunctionCalls()) != 1 || len(result[1].GetFunctionResponses()) != 1 {
		t.Error("function call and response are not adjacent after rearranging")
	}
}

func TestConvertForeignEventFunctionParts(t *testing.T) {
	cp := &ContentLLMRequestProcessor{}

	event := types.NewEvent().
		WithAuthor("researcher").
		WithContent(&genai.Content{
			Role: "model",
			Parts: []*genai.Part{
				{FunctionCall: &genai.FunctionCall{Name: "search", Args: map[string]any{"q": "go"}}},
				{FunctionResponse: &genai.FunctionResponse{Name: "search", Response: map[string]any{"hits": 3}}},
			},
		})

	converted := cp.convertForeignEvent(event)
	if converted.Author != "user" {
		t.Errorf("converted author = %q, want user", converted.Author)
	}
	if len(converted.Content.Parts) != 3 {
		t.Fatalf("got %d parts, want 3", len(converted.Content.Parts))
	}
	if !strings.Contains(converted.Content.Parts[1].Text, "called tool `search`") {
		t.Errorf("function call not narrated: %q", converted.Content.Parts[1].Text)
	}
	if !strings.Contains(converted.Content.Parts[2].Text, "`search` returned result") {
		t.Errorf("function response not narrated: %q", converted.Content.Parts[2].Text)
	}
}
