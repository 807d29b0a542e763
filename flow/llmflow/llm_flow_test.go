// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow_test

import (
	"context"
	"iter"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/vana-ai/vana/agent"
	"github.com/vana-ai/vana/flow/llmflow"
	"github.com/vana-ai/vana/types"
)

// fakeModel yields a scripted sequence of responses.
type fakeModel struct {
	name      string
	responses []*types.LLMResponse
	calls     int
}

var _ types.Model = (*fakeModel)(nil)

func (m *fakeModel) Name() string              { return m.name }
func (m *fakeModel) SupportedModels() []string { return []string{m.name} }

func (m *fakeModel) GenerateContent(ctx context.Context, request *types.LLMRequest) (*types.LLMResponse, error) {
	response := m.responses[m.calls%len(m.responses)]
	m.calls++
	return response, nil
}

func (m *fakeModel) StreamGenerateContent(ctx context.Context, request *types.LLMRequest) iter.Seq2[*types.LLMResponse, error] {
	return func(yield func(*types.LLMResponse, error) bool) {
		response, err := m.GenerateContent(ctx, request)
		yield(response, err)
	}
}

func textResponse(text string) *types.LLMResponse {
	return &types.LLMResponse{
		Content: &genai.Content{
			Role:  "model",
			Parts: []*genai.Part{{Text: text}},
		},
	}
}

func functionCallResponse(name string, args map[string]any) *types.LLMResponse {
	return &types.LLMResponse{
		Content: &genai.Content{
			Role: "model",
			Parts: []*genai.Part{
				{FunctionCall: &genai.FunctionCall{Name: name, Args: args}},
			},
		},
	}
}

type memorySession struct {
	state  map[string]any
	events []*types.Event
}

func (s *memorySession) ID() string                      { return "s1" }
func (s *memorySession) AppName() string                 { return "vana" }
func (s *memorySession) UserID() string                  { return "u1" }
func (s *memorySession) State() map[string]any           { return s.state }
func (s *memorySession) Events() []*types.Event          { return s.events }
func (s *memorySession) LastUpdateTime() time.Time       { return time.Time{} }
func (s *memorySession) AddEvent(events ...*types.Event) { s.events = append(s.events, events...) }
func (s *memorySession) SetLastUpdateTime(time.Time)     {}

func newInvocationContext(a types.Agent) *types.InvocationContext {
	return types.NewInvocationContext(a, &memorySession{state: map[string]any{}}, nil,
		types.WithUserContent(genai.NewContentFromText("hello", "user")),
	)
}

func runAgent(t *testing.T, a types.Agent, ictx *types.InvocationContext) []*types.Event {
	t.Helper()
	var events []*types.Event
	for event, err := range a.Run(context.Background(), ictx) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		events = append(events, event)
	}
	return events
}

func TestFlowYieldsFinalResponse(t *testing.T) {
	model := &fakeModel{name: "fake-model", responses: []*types.LLMResponse{
		textResponse("the answer"),
	}}

	a, err := agent.NewLLMAgent(context.Background(), "assistant",
		agent.WithModel(model),
		agent.WithInstruction("Answer the question."),
		agent.WithDisallowTransferToParent(true),
		agent.WithDisallowTransferToPeers(true),
	)
	if err != nil {
		t.Fatal(err)
	}

	events := runAgent(t, a, newInvocationContext(a))

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if got := events[0].GetText(); got != "the answer" {
		t.Errorf("final text = %q, want %q", got, "the answer")
	}
	if !events[0].IsFinalResponse() {
		t.Error("model text event should be the final response")
	}
	if model.calls != 1 {
		t.Errorf("model called %d times, want 1", model.calls)
	}
}

func TestFlowRunsToolAndContinues(t *testing.T) {
	model := &fakeModel{name: "fake-model", responses: []*types.LLMResponse{
		functionCallResponse("echo", map[string]any{"text": "ping"}),
		textResponse("done"),
	}}

	var gotArgs map[string]any
	echoTool := newEchoTool(func(args map[string]any) { gotArgs = args })

	a, err := agent.NewLLMAgent(context.Background(), "assistant",
		agent.WithModel(model),
		agent.WithTools(echoTool),
		agent.WithDisallowTransferToParent(true),
		agent.WithDisallowTransferToPeers(true),
	)
	if err != nil {
		t.Fatal(err)
	}

	events := runAgent(t, a, newInvocationContext(a))

	// function call event, tool response event, then the final text.
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if len(events[0].GetFunctionCalls()) != 1 {
		t.Error("first event should carry the function call")
	}
	if events[0].GetFunctionCalls()[0].ID == "" {
		t.Error("client function call ID was not populated")
	}
	responses := events[1].GetFunctionResponses()
	if len(responses) != 1 || responses[0].Name != "echo" {
		t.Fatalf("second event should carry the echo response, got %+v", responses)
	}
	if gotArgs["text"] != "ping" {
		t.Errorf("tool args = %v, want text=ping", gotArgs)
	}
	if got := events[2].GetText(); got != "done" {
		t.Errorf("final text = %q, want done", got)
	}
	if model.calls != 2 {
		t.Errorf("model called %d times, want 2", model.calls)
	}
}

func TestFlowTransfersToSubAgent(t *testing.T) {
	ctx := context.Background()

	specialistModel := &fakeModel{name: "fake-model", responses: []*types.LLMResponse{
		textResponse("specialist answer"),
	}}
	specialist, err := agent.NewLLMAgent(ctx, "specialist",
		agent.WithModel(specialistModel),
		agent.WithDescription("Handles specialist questions."),
	)
	if err != nil {
		t.Fatal(err)
	}

	rootModel := &fakeModel{name: "fake-model", responses: []*types.LLMResponse{
		functionCallResponse(llmflow.TransferToAgentFunctionCallName, map[string]any{"agent_name": "specialist"}),
	}}
	root, err := agent.NewLLMAgent(ctx, "root",
		agent.WithModel(rootModel),
		agent.WithDescription("Routes questions to specialists."),
		agent.WithSubAgents(specialist),
	)
	if err != nil {
		t.Fatal(err)
	}

	events := runAgent(t, root, newInvocationContext(root))

	var sawTransfer, sawSpecialistAnswer bool
	for _, event := range events {
		if event.Actions != nil && event.Actions.TransferToAgent == "specialist" {
			sawTransfer = true
		}
		if event.Author == "specialist" && event.GetText() == "specialist answer" {
			sawSpecialistAnswer = true
		}
	}
	if !sawTransfer {
		t.Error("no event recorded the transfer to the specialist")
	}
	if !sawSpecialistAnswer {
		t.Error("specialist agent did not answer after the transfer")
	}
	if specialistModel.calls != 1 {
		t.Errorf("specialist model called %d times, want 1", specialistModel.calls)
	}
}

func TestBeforeModelCallbackShortCircuits(t *testing.T) {
	model := &fakeModel{name: "fake-model", responses: []*types.LLMResponse{
		textResponse("model answer"),
	}}

	a, err := agent.NewLLMAgent(context.Background(), "assistant",
		agent.WithModel(model),
		agent.WithBeforeModelCallback(func(cctx *types.CallbackContext, request *types.LLMRequest) (*types.LLMResponse, error) {
			return textResponse("cached answer"), nil
		}),
		agent.WithDisallowTransferToParent(true),
		agent.WithDisallowTransferToPeers(true),
	)
	if err != nil {
		t.Fatal(err)
	}

	events := runAgent(t, a, newInvocationContext(a))

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if got := events[0].GetText(); got != "cached answer" {
		t.Errorf("final text = %q, want the callback response", got)
	}
	if model.calls != 0 {
		t.Errorf("model called %d times, want 0 (callback short-circuits)", model.calls)
	}
}

// echoTool is a minimal named tool for exercising function call dispatch.
type echoTool struct {
	observe func(args map[string]any)
}

var _ types.Tool = (*echoTool)(nil)

func newEchoTool(observe func(args map[string]any)) *echoTool {
	return &echoTool{observe: observe}
}

func (t *echoTool) Name() string        { return "echo" }
func (t *echoTool) Description() string { return "Echoes the input text." }
func (t *echoTool) IsLongRunning() bool { return false }

func (t *echoTool) GetDeclaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"text": {Type: genai.TypeString},
			},
			Required: []string{"text"},
		},
	}
}

func (t *echoTool) Run(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
	t.observe(args)
	return map[string]any{"echoed": args["text"]}, nil
}

func (t *echoTool) ProcessLLMRequest(ctx context.Context, toolCtx *types.ToolContext, request *types.LLMRequest) error {
	if request.ToolMap == nil {
		request.ToolMap = map[string]types.Tool{}
	}
	request.ToolMap[t.Name()] = t
	if request.Config == nil {
		request.Config = &genai.GenerateContentConfig{}
	}
	request.Config.Tools = append(request.Config.Tools, &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{t.GetDeclaration()},
	})
	return nil
}
