// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package specialist

import (
	"context"
	"strings"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/vana-ai/vana/router"
	"github.com/vana-ai/vana/types"
)

type stubSession struct {
	state map[string]any
}

func (s *stubSession) ID() string                  { return "s1" }
func (s *stubSession) AppName() string             { return "vana" }
func (s *stubSession) UserID() string              { return "u1" }
func (s *stubSession) State() map[string]any       { return s.state }
func (s *stubSession) Events() []*types.Event      { return nil }
func (s *stubSession) LastUpdateTime() time.Time   { return time.Time{} }
func (s *stubSession) AddEvent(...*types.Event)    {}
func (s *stubSession) SetLastUpdateTime(time.Time) {}

func TestNewRootAgentTree(t *testing.T) {
	root, err := NewRootAgent(context.Background(), Config{})
	if err != nil {
		t.Fatal(err)
	}

	if root.Name() != RootAgentName {
		t.Errorf("root name = %q, want %q", root.Name(), RootAgentName)
	}

	want := map[string]bool{
		router.SpecialistResearch:     false,
		router.SpecialistSecurity:     false,
		router.SpecialistArchitecture: false,
		router.SpecialistDevOps:       false,
		router.SpecialistQA:           false,
		router.SpecialistDataScience:  false,
	}
	for _, sub := range root.SubAgents() {
		if _, ok := want[sub.Name()]; !ok {
			t.Errorf("unexpected sub-agent %q", sub.Name())
			continue
		}
		want[sub.Name()] = true
		if sub.ParentAgent() == nil || sub.ParentAgent().Name() != RootAgentName {
			t.Errorf("sub-agent %q is not parented to the root", sub.Name())
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("specialist %q missing from the tree", name)
		}
	}
}

func TestRoutingCallbackRecordsDecisionAndHint(t *testing.T) {
	callback := RoutingCallback(router.NewDefault())

	ictx := types.NewInvocationContext(nil, &stubSession{state: map[string]any{}}, nil,
		types.WithUserContent(genai.NewContentFromText("deploy this to kubernetes", "user")),
	)
	cctx := types.NewCallbackContext(ictx)
	request := types.NewLLMRequest(nil)

	resp, err := callback(cctx, request)
	if err != nil {
		t.Fatal(err)
	}
	if resp != nil {
		t.Fatal("routing callback must not short-circuit the model call")
	}

	raw, ok := cctx.EventActions().StateDelta[RoutingDecisionStateKey]
	if !ok {
		t.Fatal("routing decision not recorded in the state delta")
	}
	decision, ok := raw.(*router.Decision)
	if !ok {
		t.Fatalf("decision has type %T, want *router.Decision", raw)
	}
	if decision.Specialist != router.SpecialistDevOps {
		t.Errorf("specialist = %q, want devops", decision.Specialist)
	}

	if request.Config == nil || request.Config.SystemInstruction == nil {
		t.Fatal("routing hint not appended to the instructions")
	}
	var instructions string
	for _, part := range request.Config.SystemInstruction.Parts {
		instructions += part.Text
	}
	if !strings.Contains(instructions, "Routing hint") || !strings.Contains(instructions, "devops") {
		t.Errorf("instructions missing the routing hint: %q", instructions)
	}
}

func TestRoutingCallbackNoUserContent(t *testing.T) {
	callback := RoutingCallback(router.NewDefault())

	ictx := types.NewInvocationContext(nil, &stubSession{state: map[string]any{}}, nil)
	cctx := types.NewCallbackContext(ictx)
	request := types.NewLLMRequest(nil)

	if _, err := callback(cctx, request); err != nil {
		t.Fatal(err)
	}
	if _, ok := cctx.EventActions().StateDelta[RoutingDecisionStateKey]; ok {
		t.Error("no decision should be recorded without user content")
	}
}

func TestDataScienceAgentWithoutSearcherHasNoVectorTools(t *testing.T) {
	a, err := NewDataScienceAgent(context.Background(), Config{})
	if err != nil {
		t.Fatal(err)
	}

	for _, tool := range a.CanonicalTools(nil) {
		if tool.Name() == "vector_search" || tool.Name() == "index_document" {
			t.Errorf("unexpected vector tool %q without a searcher", tool.Name())
		}
	}
}
