// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/vana-ai/vana/types"
)

// LLMFlow calls the LLM in a loop until a final response is generated.
//
// The flow ends when it transfers to another agent.
type LLMFlow struct {
	RequestProcessors  []types.LLMRequestProcessor
	ResponseProcessors []types.LLMResponseProcessor
	Logger             *slog.Logger
}

var _ types.Flow = (*LLMFlow)(nil)

// NewLLMFlow creates a new [LLMFlow] without any processors.
func NewLLMFlow() *LLMFlow {
	return &LLMFlow{
		Logger: slog.Default().With("flow", "LLMFlow"),
	}
}

// WithLogger sets the logger for the flow.
func (f *LLMFlow) WithLogger(logger *slog.Logger) *LLMFlow {
	f.Logger = logger.With("flow", "LLMFlow")
	return f
}

// WithRequestProcessors appends request processors to the flow.
func (f *LLMFlow) WithRequestProcessors(processors ...types.LLMRequestProcessor) *LLMFlow {
	f.RequestProcessors = append(f.RequestProcessors, processors...)
	return f
}

// WithResponseProcessors appends response processors to the flow.
func (f *LLMFlow) WithResponseProcessors(processors ...types.LLMResponseProcessor) *LLMFlow {
	f.ResponseProcessors = append(f.ResponseProcessors, processors...)
	return f
}

// Run implements [types.Flow].
func (f *LLMFlow) Run(ctx context.Context, ictx *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		for {
			var lastEvent *types.Event
			for event, err := range f.runOneStep(ctx, ictx) {
				if err != nil {
					yield(nil, err)
					return
				}
				lastEvent = event
				if !yield(event, nil) {
					return
				}
			}
			if lastEvent == nil || lastEvent.IsFinalResponse() {
				return
			}
		}
	}
}

// runOneStep makes one LLM call and dispatches the requested tool calls.
func (f *LLMFlow) runOneStep(ctx context.Context, ictx *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		request := types.NewLLMRequest(nil)

		// Preprocess before calling the LLM.
		for event, err := range f.preprocess(ctx, ictx, request) {
			if !yield(event, err) {
				return
			}
			if err != nil {
				return
			}
		}
		if ictx.EndInvocation {
			return
		}

		modelResponseEvent := types.NewEvent().
			WithInvocationID(ictx.InvocationID).
			WithAuthor(ictx.Agent.Name()).
			WithBranch(ictx.Branch)

		for response, err := range f.callLLM(ctx, ictx, request, modelResponseEvent) {
			if err != nil {
				yield(nil, err)
				return
			}

			// Postprocess after calling the LLM.
			for event, err := range f.postProcess(ctx, ictx, request, response, modelResponseEvent) {
				if err != nil {
					yield(nil, err)
					return
				}
				// Update the mutable event id to avoid conflicts between yields of
				// the shared skeleton event.
				modelResponseEvent.ID = types.NewEventID()
				if !yield(event, nil) {
					return
				}
			}
		}
	}
}

// preprocess runs the request processors and the per-tool request mutations
// before calling the LLM.
func (f *LLMFlow) preprocess(ctx context.Context, ictx *types.InvocationContext, request *types.LLMRequest) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		llmAgent, ok := ictx.Agent.AsLLMAgent()
		if !ok {
			return
		}

		for _, processor := range f.RequestProcessors {
			for event, err := range processor.Run(ctx, ictx, request) {
				if err != nil {
					yield(nil, err)
					return
				}
				if !yield(event, nil) {
					return
				}
			}
		}

		for _, tool := range llmAgent.CanonicalTools(types.NewReadOnlyContext(ictx)) {
			toolCtx := types.NewToolContext(ictx)
			if err := tool.ProcessLLMRequest(ctx, toolCtx, request); err != nil {
				yield(nil, fmt.Errorf("process request for tool %s: %w", tool.Name(), err))
				return
			}
		}
	}
}

// callLLM yields model responses for the request, running the model callbacks
// around the call.
func (f *LLMFlow) callLLM(ctx context.Context, ictx *types.InvocationContext, request *types.LLMRequest, modelResponseEvent *types.Event) iter.Seq2[*types.LLMResponse, error] {
	return func(yield func(*types.LLMResponse, error) bool) {
		// A before-model callback may short-circuit the call entirely.
		response, err := f.handleBeforeModelCallback(ctx, ictx, request, modelResponseEvent)
		if err != nil {
			yield(nil, err)
			return
		}
		if response != nil {
			yield(response, nil)
			return
		}

		// The execution stops right here when the current call pushes the
		// counter beyond the configured maximum.
		if err := ictx.IncrementLLMCallCount(); err != nil {
			yield(nil, err)
			return
		}

		llm, err := f.getLLM(ctx, ictx)
		if err != nil {
			yield(nil, err)
			return
		}

		if ictx.RunConfig != nil && ictx.RunConfig.StreamingMode == types.StreamingModeSSE {
			for response, err := range llm.StreamGenerateContent(ctx, request) {
				if err != nil {
					yield(nil, err)
					return
				}
				altered, err := f.handleAfterModelCallback(ctx, ictx, response, modelResponseEvent)
				if err != nil {
					yield(nil, err)
					return
				}
				if altered != nil {
					response = altered
				}
				if !yield(response, nil) {
					return
				}
			}
			return
		}

		response, err = llm.GenerateContent(ctx, request)
		if err != nil {
			yield(nil, err)
			return
		}
		altered, err := f.handleAfterModelCallback(ctx, ictx, response, modelResponseEvent)
		if err != nil {
			yield(nil, err)
			return
		}
		if altered != nil {
			response = altered
		}
		yield(response, nil)
	}
}

// postProcess runs the response processors, finalizes the model response
// event, and handles the function calls it carries.
func (f *LLMFlow) postProcess(ctx context.Context, ictx *types.InvocationContext, request *types.LLMRequest, response *types.LLMResponse, modelRespEvent *types.Event) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		for event, err := range f.postProcessRunProcessors(ctx, ictx, response) {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(event, nil) {
				return
			}
		}

		// Skip the model response event if there is no content and no error.
		// E.g. the content is filtered without being yielded in streaming mode.
		if response.Content == nil && !response.IsError() && !response.TurnComplete {
			return
		}

		modelResponseEvent := f.finalizeModelResponseEvent(ctx, response, modelRespEvent)
		if !yield(modelResponseEvent, nil) {
			return
		}

		if len(modelResponseEvent.GetFunctionCalls()) > 0 {
			for event, err := range f.postProcessHandleFunctionCalls(ctx, ictx, modelResponseEvent, request) {
				if err != nil {
					yield(nil, err)
					return
				}
				if !yield(event, nil) {
					return
				}
			}
		}
	}
}

func (f *LLMFlow) postProcessRunProcessors(ctx context.Context, ictx *types.InvocationContext, response *types.LLMResponse) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		for _, processor := range f.ResponseProcessors {
			for event, err := range processor.Run(ctx, ictx, response) {
				if err != nil {
					yield(nil, err)
					return
				}
				if !yield(event, nil) {
					return
				}
			}
		}
	}
}

func (f *LLMFlow) postProcessHandleFunctionCalls(ctx context.Context, ictx *types.InvocationContext, funcCallEvent *types.Event, request *types.LLMRequest) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		funcResponseEvent, err := HandleFunctionCalls(ctx, ictx, funcCallEvent, request.ToolMap, nil)
		if err != nil {
			yield(nil, err)
			return
		}
		if funcResponseEvent == nil {
			return
		}

		if !yield(funcResponseEvent, nil) {
			return
		}

		if funcResponseEvent.Actions == nil || funcResponseEvent.Actions.TransferToAgent == "" {
			return
		}

		agentToRun, err := f.getAgentToRun(ictx, funcResponseEvent.Actions.TransferToAgent)
		if err != nil {
			yield(nil, err)
			return
		}
		for event, err := range agentToRun.Run(ctx, ictx) {
			if !yield(event, err) {
				return
			}
		}
	}
}

func (f *LLMFlow) getAgentToRun(ictx *types.InvocationContext, transferToAgent string) (types.Agent, error) {
	rootAgent := ictx.Agent.RootAgent()
	agentToRun := rootAgent.FindAgent(transferToAgent)
	if agentToRun == nil {
		return nil, fmt.Errorf("agent %s not found in the agent tree", transferToAgent)
	}
	return agentToRun, nil
}

// handleBeforeModelCallback runs the before-model callbacks until one returns
// a response, which replaces the model call.
func (f *LLMFlow) handleBeforeModelCallback(ctx context.Context, ictx *types.InvocationContext, request *types.LLMRequest, modelResponseEvent *types.Event) (*types.LLMResponse, error) {
	llmAgent, ok := ictx.Agent.AsLLMAgent()
	if !ok {
		return nil, nil
	}
	callbacks := llmAgent.BeforeModelCallbacks()
	if len(callbacks) == 0 {
		return nil, nil
	}

	cctx := types.NewCallbackContext(ictx).WithEventActions(modelResponseEvent.Actions)
	for _, callback := range callbacks {
		response, err := callback(cctx, request)
		if err != nil {
			return nil, err
		}
		if response != nil {
			return response, nil
		}
	}

	return nil, nil
}

// handleAfterModelCallback runs the after-model callbacks until one returns a
// replacement response.
func (f *LLMFlow) handleAfterModelCallback(ctx context.Context, ictx *types.InvocationContext, response *types.LLMResponse, modelResponseEvent *types.Event) (*types.LLMResponse, error) {
	llmAgent, ok := ictx.Agent.AsLLMAgent()
	if !ok {
		return nil, nil
	}
	callbacks := llmAgent.AfterModelCallbacks()
	if len(callbacks) == 0 {
		return nil, nil
	}

	cctx := types.NewCallbackContext(ictx).WithEventActions(modelResponseEvent.Actions)
	for _, callback := range callbacks {
		altered, err := callback(cctx, response)
		if err != nil {
			return nil, err
		}
		if altered != nil {
			return altered, nil
		}
	}

	return nil, nil
}

// finalizeModelResponseEvent attaches the model response to the skeleton event
// and assigns client-side IDs to any function calls it carries.
func (f *LLMFlow) finalizeModelResponseEvent(ctx context.Context, response *types.LLMResponse, modelResponseEvent *types.Event) *types.Event {
	modelResponseEvent.LLMResponse = response

	if modelResponseEvent.Content != nil && len(modelResponseEvent.GetFunctionCalls()) > 0 {
		PopulateClientFunctionCallID(ctx, modelResponseEvent)
	}

	return modelResponseEvent
}

// getLLM resolves the model for the current agent.
func (f *LLMFlow) getLLM(ctx context.Context, ictx *types.InvocationContext) (types.Model, error) {
	llmAgent, ok := ictx.Agent.AsLLMAgent()
	if !ok {
		return nil, fmt.Errorf("agent %s is not an LLM agent", ictx.Agent.Name())
	}
	return llmAgent.CanonicalModel(ctx)
}
