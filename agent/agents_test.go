// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"iter"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/vana-ai/vana/types"
)

// stubAgent yields a scripted sequence of events.
type stubAgent struct {
	workflowAgent

	events []*types.Event
}

func newStubAgent(name string, events ...*types.Event) *stubAgent {
	a := &stubAgent{events: events}
	a.workflowAgent = newWorkflowAgent(a, name)
	return a
}

func (a *stubAgent) Execute(ctx context.Context, ictx *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		for _, event := range a.events {
			if !yield(event, nil) {
				return
			}
		}
	}
}

func textEvent(author, text string) *types.Event {
	return types.NewEvent().
		WithAuthor(author).
		WithContent(&genai.Content{
			Role:  "model",
			Parts: []*genai.Part{{Text: text}},
		})
}

type fakeSession struct {
	id      string
	appName string
	userID  string
	state   map[string]any
	events  []*types.Event
}

func (s *fakeSession) ID() string                      { return s.id }
func (s *fakeSession) AppName() string                 { return s.appName }
func (s *fakeSession) UserID() string                  { return s.userID }
func (s *fakeSession) State() map[string]any           { return s.state }
func (s *fakeSession) Events() []*types.Event          { return s.events }
func (s *fakeSession) LastUpdateTime() time.Time       { return time.Time{} }
func (s *fakeSession) AddEvent(events ...*types.Event) { s.events = append(s.events, events...) }
func (s *fakeSession) SetLastUpdateTime(time.Time)     {}

func newTestInvocationContext(agent types.Agent) *types.InvocationContext {
	session := &fakeSession{
		id:      "s1",
		appName: "vana",
		userID:  "u1",
		state:   map[string]any{},
	}
	return types.NewInvocationContext(agent, session, nil)
}

func collectEvents(t *testing.T, seq iter.Seq2[*types.Event, error]) []*types.Event {
	t.Helper()
	var events []*types.Event
	for event, err := range seq {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		events = append(events, event)
	}
	return events
}

func TestSequentialAgentRunsSubAgentsInOrder(t *testing.T) {
	first := newStubAgent("first", textEvent("first", "one"))
	second := newStubAgent("second", textEvent("second", "two"))
	seq := NewSequentialAgent("pipeline", first, second)

	ictx := newTestInvocationContext(seq)
	events := collectEvents(t, seq.Run(context.Background(), ictx))

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Author != "first" || events[1].Author != "second" {
		t.Errorf("event order = %q, %q, want first, second", events[0].Author, events[1].Author)
	}
}

func TestParallelAgentMergesAllSubAgentEvents(t *testing.T) {
	agents := []types.Agent{
		newStubAgent("a", textEvent("a", "1")),
		newStubAgent("b", textEvent("b", "2")),
		newStubAgent("c", textEvent("c", "3")),
	}
	par := NewParallelAgent("fanout", agents...)

	ictx := newTestInvocationContext(par)
	events := collectEvents(t, par.Run(context.Background(), ictx))

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	authors := map[string]bool{}
	for _, event := range events {
		authors[event.Author] = true
	}
	for _, want := range []string{"a", "b", "c"} {
		if !authors[want] {
			t.Errorf("missing event from sub-agent %q", want)
		}
	}
}

func TestLoopAgentStopsOnEscalate(t *testing.T) {
	escalating := types.NewEvent().
		WithAuthor("worker").
		WithActions(types.NewEventActions().WithEscalate(true))
	worker := newStubAgent("worker", escalating)
	loop := NewLoopAgent("loop", worker).WithMaxIterations(5)

	ictx := newTestInvocationContext(loop)
	events := collectEvents(t, loop.Run(context.Background(), ictx))

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1 (stop on escalate)", len(events))
	}
}

func TestLoopAgentHonorsMaxIterations(t *testing.T) {
	worker := newStubAgent("worker", textEvent("worker", "tick"))
	loop := NewLoopAgent("loop", worker).WithMaxIterations(3)

	ictx := newTestInvocationContext(loop)
	events := collectEvents(t, loop.Run(context.Background(), ictx))

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
}

func TestFindAgentResolvesTree(t *testing.T) {
	leaf := newStubAgent("leaf")
	mid := NewSequentialAgent("mid", leaf)
	root := NewSequentialAgent("root", mid)

	if got := root.FindAgent("leaf"); got != types.Agent(leaf) {
		t.Errorf("FindAgent(leaf) = %v, want the leaf agent", got)
	}
	if got := leaf.RootAgent(); got != types.Agent(root) {
		t.Errorf("RootAgent() = %v, want root", got)
	}
	if got := root.FindAgent("missing"); got != nil {
		t.Errorf("FindAgent(missing) = %v, want nil", got)
	}
}

// branchEchoAgent yields one event stamped with the branch it ran under.
type branchEchoAgent struct {
	workflowAgent
}

func newBranchEchoAgent(name string) *branchEchoAgent {
	a := &branchEchoAgent{}
	a.workflowAgent = newWorkflowAgent(a, name)
	return a
}

func (a *branchEchoAgent) Execute(ctx context.Context, ictx *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		event := types.NewEvent().
			WithAuthor(a.Name()).
			WithBranch(ictx.Branch)
		yield(event, nil)
	}
}

func TestParallelAgentIsolatesSubAgentBranches(t *testing.T) {
	par := NewParallelAgent("fanout",
		newBranchEchoAgent("a"),
		newBranchEchoAgent("b"),
		newBranchEchoAgent("c"),
	)

	ictx := newTestInvocationContext(par)
	events := collectEvents(t, par.Run(context.Background(), ictx))

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for _, event := range events {
		want := "fanout." + event.Author
		if event.Branch != want {
			t.Errorf("branch for %s = %q, want %q", event.Author, event.Branch, want)
		}
	}
	if ictx.Branch != "" {
		t.Errorf("parent branch mutated to %q", ictx.Branch)
	}
	if got := ictx.Agent; got != types.Agent(par) {
		t.Errorf("parent agent mutated to %v", got)
	}
}

func TestWithDescriptionSetsDescription(t *testing.T) {
	a, err := NewLLMAgent(context.Background(), "helper",
		WithModelString("gemini-2.0-flash"),
		WithDescription("Answers questions about the codebase."),
	)
	if err != nil {
		t.Fatal(err)
	}
	if got := a.Description(); got != "Answers questions about the codebase." {
		t.Errorf("Description() = %q", got)
	}
}
