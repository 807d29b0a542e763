// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"context"
	"iter"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/vana-ai/vana/agent"
	"github.com/vana-ai/vana/memory"
	"github.com/vana-ai/vana/session"
	"github.com/vana-ai/vana/types"
)

// scriptedAgent yields a fixed event sequence.
type scriptedAgent struct {
	*types.BaseAgent

	events []*types.Event
}

func newScriptedAgent(name string, events ...*types.Event) *scriptedAgent {
	return &scriptedAgent{
		BaseAgent: types.NewBaseAgent(name),
		events:    events,
	}
}

func (a *scriptedAgent) Execute(ctx context.Context, ictx *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		for _, event := range a.events {
			event.InvocationID = ictx.InvocationID
			if !yield(event, nil) {
				return
			}
		}
	}
}

func partialEvent(author, text string) *types.Event {
	event := types.NewEvent().
		WithAuthor(author).
		WithContent(genai.NewContentFromText(text, genai.RoleModel))
	event.Partial = true
	return event
}

func finalEvent(author, text string) *types.Event {
	return types.NewEvent().
		WithAuthor(author).
		WithContent(genai.NewContentFromText(text, genai.RoleModel))
}

func collect(t *testing.T, seq iter.Seq2[*types.Event, error]) []*types.Event {
	t.Helper()

	var events []*types.Event
	for event, err := range seq {
		if err != nil {
			t.Fatal(err)
		}
		events = append(events, event)
	}
	return events
}

func TestRunCommitsCompletedEvents(t *testing.T) {
	ctx := context.Background()
	svc := session.NewInMemoryService()
	if _, err := svc.CreateSession(ctx, "app", "u1", "s1", nil); err != nil {
		t.Fatal(err)
	}

	root := newScriptedAgent("root",
		partialEvent("root", "deploying"),
		finalEvent("root", "deployed to the cluster"),
	)
	r, err := NewRunner("app", root, WithSessionService(svc))
	if err != nil {
		t.Fatal(err)
	}

	events := collect(t, r.Run(ctx, "u1", "s1", genai.NewContentFromText("deploy it", genai.RoleUser), nil))
	if len(events) != 2 {
		t.Fatalf("yielded %d events, want 2", len(events))
	}

	stored, err := svc.GetSession(ctx, "app", "u1", "s1", nil)
	if err != nil {
		t.Fatal(err)
	}
	got := stored.Events()
	if len(got) != 2 {
		t.Fatalf("stored %d events, want user event and final event", len(got))
	}
	if got[0].Author != UserAuthor {
		t.Errorf("first stored author = %q, want %q", got[0].Author, UserAuthor)
	}
	if got[1].Partial {
		t.Error("partial streaming chunk was committed to the session")
	}
}

func TestRunUnknownSession(t *testing.T) {
	root := newScriptedAgent("root")
	r, err := NewRunner("app", root)
	if err != nil {
		t.Fatal(err)
	}

	var runErr error
	for _, err := range r.Run(context.Background(), "u1", "missing", genai.NewContentFromText("hi", genai.RoleUser), nil) {
		runErr = err
		break
	}
	if runErr == nil {
		t.Fatal("expected an error for an unknown session")
	}
}

func TestRunAddsCompletedSessionToMemory(t *testing.T) {
	ctx := context.Background()
	svc := session.NewInMemoryService()
	if _, err := svc.CreateSession(ctx, "app", "u1", "s1", nil); err != nil {
		t.Fatal(err)
	}
	mem := memory.NewInMemoryService()

	root := newScriptedAgent("root", finalEvent("root", "the kubernetes rollout succeeded"))
	r, err := NewRunner("app", root,
		WithSessionService(svc),
		WithMemoryService(mem),
	)
	if err != nil {
		t.Fatal(err)
	}
	collect(t, r.Run(ctx, "u1", "s1", genai.NewContentFromText("check the rollout", genai.RoleUser), nil))

	resp, err := mem.SearchMemory(ctx, "app", "u1", "kubernetes")
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Memories) == 0 {
		t.Fatal("completed session was not ingested into memory")
	}
}

func TestFindAgentToRun(t *testing.T) {
	ctx := context.Background()

	devops, err := agent.NewLLMAgent(ctx, "devops", agent.WithModelString("gemini-2.0-flash"))
	if err != nil {
		t.Fatal(err)
	}
	pinned := newScriptedAgent("pinned")
	root, err := agent.NewLLMAgent(ctx, "root",
		agent.WithModelString("gemini-2.0-flash"),
		agent.WithSubAgents(devops, pinned),
	)
	if err != nil {
		t.Fatal(err)
	}

	r, err := NewRunner("app", root)
	if err != nil {
		t.Fatal(err)
	}

	newSession := func(authors ...string) types.Session {
		sess := session.NewSession("app", "u1", "s1", nil, time.Now())
		for _, author := range authors {
			sess.AddEvent(finalEvent(author, "done"))
		}
		return sess
	}

	tests := map[string]struct {
		sess types.Session
		want string
	}{
		"empty session starts at the root": {
			sess: newSession(),
			want: "root",
		},
		"transferable specialist resumes": {
			sess: newSession("user", "devops"),
			want: "devops",
		},
		"root author stays at the root": {
			sess: newSession("devops", "root"),
			want: "root",
		},
		"unknown author falls back to the root": {
			sess: newSession("user", "gone"),
			want: "root",
		},
		"non-llm agent pins the conversation to the root": {
			sess: newSession("user", "pinned"),
			want: "root",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := r.findAgentToRun(tt.sess).Name(); got != tt.want {
				t.Errorf("findAgentToRun() = %q, want %q", got, tt.want)
			}
		})
	}
}
