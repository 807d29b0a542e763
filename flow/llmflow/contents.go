// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	"google.golang.org/genai"

	"github.com/vana-ai/vana/types"
)

// ContentLLMRequestProcessor builds the conversation contents for the LLM
// request from the session history.
type ContentLLMRequestProcessor struct{}

var _ types.LLMRequestProcessor = (*ContentLLMRequestProcessor)(nil)

// Run implements [types.LLMRequestProcessor].
func (cp *ContentLLMRequestProcessor) Run(ctx context.Context, ictx *types.InvocationContext, request *types.LLMRequest) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		llmAgent, ok := ictx.Agent.AsLLMAgent()
		if !ok {
			return
		}

		if llmAgent.IncludeContents() == types.IncludeContentsNone {
			return
		}

		contents, err := cp.getContents(ictx.Branch, ictx.Session.Events(), llmAgent.Name())
		if err != nil {
			yield(nil, err)
			return
		}
		request.Contents = contents
	}
}

// getContents builds the request contents from the session events.
func (cp *ContentLLMRequestProcessor) getContents(currentBranch string, events []*types.Event, agentName string) ([]*genai.Content, error) {
	var filteredEvents []*types.Event

	for _, event := range events {
		if cp.isEmptyEvent(event) {
			// Skip events without conversational content, e.g. events purely for
			// mutating session state.
			continue
		}

		if !cp.isEventBelongsToBranch(currentBranch, event) {
			continue
		}

		ev := event
		if cp.isOtherAgentReply(agentName, event) {
			ev = cp.convertForeignEvent(event)
		}
		filteredEvents = append(filteredEvents, ev)
	}

	resultEvents, err := cp.rearrangeEventsForLatestFunctionResponse(filteredEvents)
	if err != nil {
		return nil, err
	}
	resultEvents, err = cp.rearrangeEventsForAsyncFunctionResponsesInHistory(resultEvents)
	if err != nil {
		return nil, err
	}

	contents := make([]*genai.Content, 0, len(resultEvents))
	for _, event := range resultEvents {
		content := RemoveClientFunctionCallID(copyContent(event.Content))
		contents = append(contents, content)
	}

	return contents, nil
}

// isEmptyEvent reports whether the event carries no conversational content.
func (cp *ContentLLMRequestProcessor) isEmptyEvent(event *types.Event) bool {
	if event.LLMResponse == nil || event.Content == nil || event.Content.Role == "" || len(event.Content.Parts) == 0 {
		return true
	}

	for _, part := range event.Content.Parts {
		if part.Text != "" || part.FunctionCall != nil || part.FunctionResponse != nil || part.InlineData != nil || part.FileData != nil {
			return false
		}
	}
	return true
}

// rearrangeEventsForAsyncFunctionResponsesInHistory moves each function
// response event right after its matching function call event.
func (cp *ContentLLMRequestProcessor) rearrangeEventsForAsyncFunctionResponsesInHistory(events []*types.Event) ([]*types.Event, error) {
	funcCallIDToResponseEvents := make(map[string][]*types.Event)
	for _, event := range events {
		for _, funcResponse := range event.GetFunctionResponses() {
			funcCallIDToResponseEvents[funcResponse.ID] = append(funcCallIDToResponseEvents[funcResponse.ID], event)
		}
	}

	resultEvents := []*types.Event{}
	for _, event := range events {
		if len(event.GetFunctionResponses()) > 0 {
			// function_response is handled together with its function_call below.
			continue
		}

		if funcCalls := event.GetFunctionCalls(); len(funcCalls) > 0 {
			resultEvents = append(resultEvents, event)

			var responseEvents []*types.Event
			seen := make(map[*types.Event]bool)
			for _, funcCall := range funcCalls {
				for _, responseEvent := range funcCallIDToResponseEvents[funcCall.ID] {
					if !seen[responseEvent] {
						seen[responseEvent] = true
						responseEvents = append(responseEvents, responseEvent)
					}
				}
			}

			switch len(responseEvents) {
			case 0:
			case 1:
				resultEvents = append(resultEvents, responseEvents[0])
			default:
				merged, err := cp.mergeFunctionResponseEvents(responseEvents)
				if err != nil {
					return nil, err
				}
				resultEvents = append(resultEvents, merged)
			}
			continue
		}

		resultEvents = append(resultEvents, event)
	}

	return resultEvents, nil
}

// rearrangeEventsForLatestFunctionResponse rearranges the events for the
// latest function_response.
//
// If the latest function_response is for an async function_call, all events
// between the initial function_call and the latest function_response are
// removed.
func (cp *ContentLLMRequestProcessor) rearrangeEventsForLatestFunctionResponse(events []*types.Event) ([]*types.Event, error) {
	if len(events) == 0 {
		return events, nil
	}

	funcResponses := events[len(events)-1].GetFunctionResponses()
	if len(funcResponses) == 0 {
		// The latest event is not a function_response.
		return events, nil
	}

	funcResponseIDs := make(map[string]bool)
	for _, funcResponse := range funcResponses {
		funcResponseIDs[funcResponse.ID] = true
	}

	if len(events) >= 2 {
		for _, funcCall := range events[len(events)-2].GetFunctionCalls() {
			if funcResponseIDs[funcCall.ID] {
				// The latest function_response already follows its function_call.
				return events, nil
			}
		}
	}

	funcCallEventIdx := -1
	// Look for the corresponding function call event in reverse.
	for idx := len(events) - 2; idx >= 0; idx-- {
		funcCalls := events[idx].GetFunctionCalls()
		if len(funcCalls) == 0 {
			continue
		}
		for _, funcCall := range funcCalls {
			if funcResponseIDs[funcCall.ID] {
				funcCallEventIdx = idx
				break
			}
		}
		if funcCallEventIdx != -1 {
			// The last response event may only hold part of the responses for the
			// calls in this event.
			for _, funcCall := range funcCalls {
				funcResponseIDs[funcCall.ID] = true
			}
			break
		}
	}
	if funcCallEventIdx == -1 {
		return nil, fmt.Errorf("no function call event found for function response ids: %v", slices.Collect(maps.Keys(funcResponseIDs)))
	}

	// Collect all function response events between the function call event and
	// the latest function response event.
	var funcResponseEvents []*types.Event
	for idx := funcCallEventIdx + 1; idx < len(events)-1; idx++ {
		funcResponses := events[idx].GetFunctionResponses()
		if len(funcResponses) > 0 && funcResponseIDs[funcResponses[0].ID] {
			funcResponseEvents = append(funcResponseEvents, events[idx])
		}
	}
	funcResponseEvents = append(funcResponseEvents, events[len(events)-1])

	resultEvents := slices.Clone(events[:funcCallEventIdx+1])
	merged, err := cp.mergeFunctionResponseEvents(funcResponseEvents)
	if err != nil {
		return nil, err
	}
	resultEvents = append(resultEvents, merged)

	return resultEvents, nil
}

// isOtherAgentReply reports whether the event is a reply from another agent.
func (cp *ContentLLMRequestProcessor) isOtherAgentReply(currentAgentName string, event *types.Event) bool {
	return currentAgentName != "" && event.Author != currentAgentName && event.Author != "user"
}

// convertForeignEvent converts an event authored by another agent into a
// user-content event.
//
// This provides another agent's output as context to the current agent, so the
// current agent can continue to respond, such as summarizing the previous
// agent's reply.
func (cp *ContentLLMRequestProcessor) convertForeignEvent(event *types.Event) *types.Event {
	if event.Content == nil || len(event.Content.Parts) == 0 {
		return event
	}

	content := &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			genai.NewPartFromText("For context:"),
		},
	}

	for _, part := range event.Content.Parts {
		switch {
		case part.Text != "":
			content.Parts = append(content.Parts, genai.NewPartFromText(fmt.Sprintf("[%s] said: %s", event.Author, part.Text)))

		case part.FunctionCall != nil:
			content.Parts = append(content.Parts, genai.NewPartFromText(fmt.Sprintf("[%s] called tool `%s` with parameters: %v", event.Author, part.FunctionCall.Name, part.FunctionCall.Args)))

		case part.FunctionResponse != nil:
			content.Parts = append(content.Parts, genai.NewPartFromText(fmt.Sprintf("[%s] `%s` returned result: %v", event.Author, part.FunctionResponse.Name, part.FunctionResponse.Response)))

		default:
			content.Parts = append(content.Parts, part)
		}
	}

	ev := types.NewEvent().
		WithAuthor("user").
		WithContent(content).
		WithBranch(event.Branch)
	ev.Timestamp = event.Timestamp

	return ev
}

// mergeFunctionResponseEvents merges a list of function_response events into
// one event.
//
// The key goal is to ensure:
//  1. function_call and function_response are always of the same number.
//  2. The function_call and function_response are consecutive in the content.
func (cp *ContentLLMRequestProcessor) mergeFunctionResponseEvents(funcResponseEvents []*types.Event) (*types.Event, error) {
	if len(funcResponseEvents) == 0 {
		return nil, errors.New("at least one function_response event is required")
	}

	base := funcResponseEvents[0]
	if base.Content == nil || len(base.Content.Parts) == 0 {
		return nil, errors.New("there should be at least one function_response part")
	}

	mergedEvent := &types.Event{
		LLMResponse: &types.LLMResponse{
			Content: copyContent(base.Content),
		},
		InvocationID: base.InvocationID,
		Author:       base.Author,
		Actions:      base.Actions,
		Branch:       base.Branch,
		ID:           base.ID,
		Timestamp:    base.Timestamp,
	}
	partsInMergedEvent := mergedEvent.Content.Parts

	partIndices := make(map[string]int)
	for i, part := range partsInMergedEvent {
		if part.FunctionResponse != nil {
			partIndices[part.FunctionResponse.ID] = i
		}
	}

	for _, event := range funcResponseEvents[1:] {
		if event.Content == nil || len(event.Content.Parts) == 0 {
			return nil, errors.New("there should be at least one function_response part")
		}

		for _, part := range event.Content.Parts {
			if part.FunctionResponse != nil {
				funcCallID := part.FunctionResponse.ID
				if idx, ok := partIndices[funcCallID]; ok {
					partsInMergedEvent[idx] = part
					continue
				}
				partsInMergedEvent = append(partsInMergedEvent, part)
				partIndices[funcCallID] = len(partsInMergedEvent) - 1
				continue
			}
			partsInMergedEvent = append(partsInMergedEvent, part)
		}
	}
	mergedEvent.Content.Parts = partsInMergedEvent

	return mergedEvent, nil
}

// isEventBelongsToBranch reports whether the event belongs to the branch.
// An event belongs to a branch when event.Branch is a prefix of the
// invocation branch.
func (cp *ContentLLMRequestProcessor) isEventBelongsToBranch(invocationBranch string, event *types.Event) bool {
	if invocationBranch == "" || event.Branch == "" {
		return true
	}
	return strings.HasPrefix(invocationBranch, event.Branch)
}

// copyContent returns a copy of content whose parts and function call or
// response payloads can be mutated without touching the original.
func copyContent(content *genai.Content) *genai.Content {
	if content == nil {
		return nil
	}

	copied := &genai.Content{
		Role:  content.Role,
		Parts: make([]*genai.Part, len(content.Parts)),
	}
	for i, part := range content.Parts {
		p := *part
		if part.FunctionCall != nil {
			fc := *part.FunctionCall
			p.FunctionCall = &fc
		}
		if part.FunctionResponse != nil {
			fr := *part.FunctionResponse
			p.FunctionResponse = &fr
		}
		copied.Parts[i] = &p
	}

	return copied
}
