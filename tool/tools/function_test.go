// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/vana-ai/vana/types"
)

type fakeSession struct {
	state map[string]any
}

func (s *fakeSession) ID() string                  { return "s1" }
func (s *fakeSession) AppName() string             { return "vana" }
func (s *fakeSession) UserID() string              { return "u1" }
func (s *fakeSession) State() map[string]any       { return s.state }
func (s *fakeSession) Events() []*types.Event      { return nil }
func (s *fakeSession) LastUpdateTime() time.Time   { return time.Time{} }
func (s *fakeSession) AddEvent(...*types.Event)    {}
func (s *fakeSession) SetLastUpdateTime(time.Time) {}

func newToolContext() *types.ToolContext {
	ictx := types.NewInvocationContext(nil, &fakeSession{state: map[string]any{}}, nil)
	return types.NewToolContext(ictx).WithEventActions(types.NewEventActions())
}

func TestFunctionToolRun(t *testing.T) {
	var got map[string]any
	ft := NewFunctionTool(func(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
		got = args
		return map[string]any{"ok": true}, nil
	}).WithName("probe").WithDescription("A probe tool.")

	res, err := ft.Run(context.Background(), map[string]any{"key": "value"}, newToolContext())
	if err != nil {
		t.Fatal(err)
	}
	if got["key"] != "value" {
		t.Errorf("args = %v, want key=value", got)
	}
	result, ok := res.(map[string]any)
	if !ok || result["ok"] != true {
		t.Errorf("result = %v, want ok=true", res)
	}
	if ft.Name() != "probe" {
		t.Errorf("Name() = %q, want probe", ft.Name())
	}
}

func TestFunctionToolProcessLLMRequestGroupsDeclarations(t *testing.T) {
	first := NewFunctionTool(func(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
		return nil, nil
	}).WithName("first").WithDeclaration(&genai.FunctionDeclaration{Name: "first"})
	second := NewFunctionTool(func(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
		return nil, nil
	}).WithName("second").WithDeclaration(&genai.FunctionDeclaration{Name: "second"})

	request := types.NewLLMRequest(nil)
	toolCtx := newToolContext()

	if err := first.ProcessLLMRequest(context.Background(), toolCtx, request); err != nil {
		t.Fatal(err)
	}
	if err := second.ProcessLLMRequest(context.Background(), toolCtx, request); err != nil {
		t.Fatal(err)
	}

	if len(request.Config.Tools) != 1 {
		t.Fatalf("got %d tool entries, want 1 (declarations grouped)", len(request.Config.Tools))
	}
	if len(request.Config.Tools[0].FunctionDeclarations) != 2 {
		t.Errorf("got %d declarations, want 2", len(request.Config.Tools[0].FunctionDeclarations))
	}
	if request.ToolMap["first"] == nil || request.ToolMap["second"] == nil {
		t.Error("tools not registered in the request tool map")
	}
}

func TestExitLoopToolEscalates(t *testing.T) {
	toolCtx := newToolContext()

	et := NewExitLoopTool()
	if _, err := et.Run(context.Background(), map[string]any{}, toolCtx); err != nil {
		t.Fatal(err)
	}

	if !toolCtx.Actions().Escalate {
		t.Error("exit_loop did not set the escalate action")
	}
}

func TestVectorSearchTool(t *testing.T) {
	searcher := &fakeSearcher{
		results: []*SemanticSearchResult{
			{ID: "doc-1", Score: 0.92, Text: "first match"},
			{ID: "doc-2", Score: 0.81, Text: "second match"},
		},
	}

	vt := NewVectorSearchTool(searcher)
	res, err := vt.Run(context.Background(), map[string]any{"query": "deploy pipeline", "top_k": float64(2)}, newToolContext())
	if err != nil {
		t.Fatal(err)
	}

	if searcher.lastQuery != "deploy pipeline" || searcher.lastTopK != 2 {
		t.Errorf("searcher called with (%q, %d), want (deploy pipeline, 2)", searcher.lastQuery, searcher.lastTopK)
	}
	matches := res.(map[string]any)["matches"].([]map[string]any)
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0]["id"] != "doc-1" {
		t.Errorf("first match id = %v, want doc-1", matches[0]["id"])
	}
}

func TestIndexDocumentTool(t *testing.T) {
	searcher := &fakeSearcher{}

	it := NewIndexDocumentTool(searcher)
	res, err := it.Run(context.Background(), map[string]any{
		"id":       "doc-9",
		"text":     "runbook for rollbacks",
		"metadata": map[string]any{"team": "devops"},
	}, newToolContext())
	if err != nil {
		t.Fatal(err)
	}

	if searcher.indexedID != "doc-9" || searcher.indexedText != "runbook for rollbacks" {
		t.Errorf("indexed (%q, %q), want (doc-9, runbook for rollbacks)", searcher.indexedID, searcher.indexedText)
	}
	if searcher.indexedMeta["team"] != "devops" {
		t.Errorf("metadata = %v, want team=devops", searcher.indexedMeta)
	}
	if res.(map[string]any)["status"] != "indexed" {
		t.Errorf("result = %v, want status=indexed", res)
	}
}

func TestIndexDocumentToolRejectsMissingArgs(t *testing.T) {
	it := NewIndexDocumentTool(&fakeSearcher{})

	if _, err := it.Run(context.Background(), map[string]any{"text": "no id"}, newToolContext()); err == nil {
		t.Error("expected an error for a missing id argument")
	}
	if _, err := it.Run(context.Background(), map[string]any{"id": "doc"}, newToolContext()); err == nil {
		t.Error("expected an error for a missing text argument")
	}
}

type fakeSearcher struct {
	results   []*SemanticSearchResult
	lastQuery string
	lastTopK  int

	indexedID   string
	indexedText string
	indexedMeta map[string]string
}

func (s *fakeSearcher) Search(ctx context.Context, query string, topK int) ([]*SemanticSearchResult, error) {
	s.lastQuery = query
	s.lastTopK = topK
	return s.results, nil
}

func (s *fakeSearcher) Index(ctx context.Context, id, text string, metadata map[string]string) error {
	s.indexedID = id
	s.indexedText = text
	s.indexedMeta = metadata
	return nil
}
