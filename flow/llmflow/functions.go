// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/vana-ai/vana/types"
)

// FunctionCallIDPrefix prefixes the function call IDs generated on the client
// side when the model response does not carry one.
const FunctionCallIDPrefix = "vana-"

// GenerateClientFunctionCallID generates a unique function call ID.
func GenerateClientFunctionCallID() string {
	return FunctionCallIDPrefix + uuid.NewString()
}

// PopulateClientFunctionCallID assigns an ID to each function call in the
// model response event that does not have one.
func PopulateClientFunctionCallID(ctx context.Context, modelResponseEvent *types.Event) {
	for _, funcCall := range modelResponseEvent.GetFunctionCalls() {
		if funcCall.ID == "" {
			funcCall.ID = GenerateClientFunctionCallID()
		}
	}
}

// RemoveClientFunctionCallID strips the client-generated function call IDs
// from the content before it is sent back to the model.
func RemoveClientFunctionCallID(content *genai.Content) *genai.Content {
	if content == nil {
		return nil
	}
	for _, part := range content.Parts {
		if part.FunctionCall != nil && strings.HasPrefix(part.FunctionCall.ID, FunctionCallIDPrefix) {
			part.FunctionCall.ID = ""
		}
		if part.FunctionResponse != nil && strings.HasPrefix(part.FunctionResponse.ID, FunctionCallIDPrefix) {
			part.FunctionResponse.ID = ""
		}
	}
	return content
}

// HandleFunctionCalls runs the tools requested by the function call event and
// returns the merged function response event.
//
// A non-empty filters set restricts processing to the function call IDs it
// contains; a nil or empty set processes every call. Returns a nil event when
// no function produced a response, e.g. only long running operations started.
func HandleFunctionCalls(ctx context.Context, ictx *types.InvocationContext, functionCallEvent *types.Event, toolMap map[string]types.Tool, filters map[string]bool) (*types.Event, error) {
	llmAgent, ok := ictx.Agent.AsLLMAgent()
	if !ok {
		return nil, nil
	}

	var funcResponseEvents []*types.Event
	for _, funcCall := range functionCallEvent.GetFunctionCalls() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if len(filters) > 0 && !filters[funcCall.ID] {
			continue
		}

		tool, toolCtx, err := getToolAndContext(ictx, funcCall, toolMap)
		if err != nil {
			return nil, err
		}

		funcArgs := funcCall.Args
		var funcResponse map[string]any
		for i, callback := range llmAgent.BeforeToolCallbacks() {
			funcResponse, err = callback(tool, funcArgs, toolCtx)
			if err != nil {
				return nil, fmt.Errorf("beforeToolCallbacks[%d]: %w", i, err)
			}
			if len(funcResponse) > 0 {
				break
			}
		}

		if len(funcResponse) == 0 {
			funcResponse, err = callTool(ctx, tool, funcArgs, toolCtx)
			if err != nil {
				return nil, err
			}
		}

		for i, callback := range llmAgent.AfterToolCallbacks() {
			altered, err := callback(tool, funcArgs, toolCtx, funcResponse)
			if err != nil {
				return nil, fmt.Errorf("afterToolCallbacks[%d]: %w", i, err)
			}
			if len(altered) > 0 {
				funcResponse = altered
				break
			}
		}

		if tool.IsLongRunning() && len(funcResponse) == 0 {
			// The operation returns later; nothing to report yet.
			continue
		}

		funcResponseEvents = append(funcResponseEvents, buildResponseEvent(tool, funcResponse, toolCtx, ictx))
	}

	if len(funcResponseEvents) == 0 {
		return nil, nil
	}

	return mergeParallelFunctionResponseEvents(funcResponseEvents)
}

func getToolAndContext(ictx *types.InvocationContext, funcCall *genai.FunctionCall, toolMap map[string]types.Tool) (types.Tool, *types.ToolContext, error) {
	tool, ok := toolMap[funcCall.Name]
	if !ok {
		return nil, nil, fmt.Errorf("function %s is not found in the tool map", funcCall.Name)
	}

	toolCtx := types.NewToolContext(ictx).
		WithFunctionCallID(funcCall.ID).
		WithEventActions(types.NewEventActions())

	return tool, toolCtx, nil
}

// callTool runs the tool and normalizes its result into a response map.
func callTool(ctx context.Context, tool types.Tool, args map[string]any, toolCtx *types.ToolContext) (map[string]any, error) {
	res, err := tool.Run(ctx, args, toolCtx)
	if err != nil {
		return nil, fmt.Errorf("run tool %s: %w", tool.Name(), err)
	}

	switch result := res.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return result, nil
	default:
		return map[string]any{"result": result}, nil
	}
}

func buildResponseEvent(tool types.Tool, funcResult map[string]any, toolCtx *types.ToolContext, ictx *types.InvocationContext) *types.Event {
	// The wire format requires the result to be an object.
	if len(funcResult) == 0 {
		funcResult = map[string]any{
			"result": funcResult,
		}
	}

	part := genai.NewPartFromFunctionResponse(tool.Name(), funcResult)
	part.FunctionResponse.ID = toolCtx.FunctionCallID()

	content := &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{part},
	}

	return types.NewEvent().
		WithInvocationID(ictx.InvocationID).
		WithAuthor(ictx.Agent.Name()).
		WithContent(content).
		WithActions(toolCtx.Actions()).
		WithBranch(ictx.Branch)
}

// mergeParallelFunctionResponseEvents merges the response events of parallel
// function calls into a single event carrying all response parts.
func mergeParallelFunctionResponseEvents(funcResponseEvents []*types.Event) (*types.Event, error) {
	switch len(funcResponseEvents) {
	case 0:
		return nil, errors.New("no function response events provided")
	case 1:
		return funcResponseEvents[0], nil
	}

	var mergedParts []*genai.Part
	for _, event := range funcResponseEvents {
		if event.Content != nil {
			mergedParts = append(mergedParts, event.Content.Parts...)
		}
	}

	// The first event is the base for the common attributes.
	baseEvent := funcResponseEvents[0]

	mergedActions := types.NewEventActions()
	for _, event := range funcResponseEvents {
		if event.Actions == nil {
			continue
		}
		maps.Copy(mergedActions.StateDelta, event.Actions.StateDelta)
		maps.Copy(mergedActions.ArtifactDelta, event.Actions.ArtifactDelta)
		if event.Actions.TransferToAgent != "" {
			mergedActions.TransferToAgent = event.Actions.TransferToAgent
		}
		mergedActions.SkipSummarization = mergedActions.SkipSummarization || event.Actions.SkipSummarization
		mergedActions.Escalate = mergedActions.Escalate || event.Actions.Escalate
	}

	mergedEvent := types.NewEvent().
		WithInvocationID(baseEvent.InvocationID).
		WithAuthor(baseEvent.Author).
		WithBranch(baseEvent.Branch).
		WithContent(&genai.Content{Role: "user", Parts: mergedParts}).
		WithActions(mergedActions)
	mergedEvent.Timestamp = baseEvent.Timestamp

	return mergedEvent, nil
}
