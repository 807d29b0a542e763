// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"context"
	"testing"
	"time"

	"github.com/vana-ai/vana/types"
)

type stubSession struct {
	state map[string]any
}

func (s *stubSession) ID() string                { return "session" }
func (s *stubSession) AppName() string           { return "app" }
func (s *stubSession) UserID() string            { return "user" }
func (s *stubSession) State() map[string]any     { return s.state }
func (s *stubSession) Events() []*types.Event    { return nil }
func (s *stubSession) LastUpdateTime() time.Time { return time.Time{} }
func (s *stubSession) AddEvent(...*types.Event)  {}
func (s *stubSession) SetLastUpdateTime(time.Time) {
}

func TestPopulateValues(t *testing.T) {
	session := &stubSession{
		state: map[string]any{
			"topic":       "release notes",
			"user:locale": "en",
		},
	}
	ictx := types.NewInvocationContext(nil, session, nil)
	p := &InstructionsLLMRequestProcessor{}

	tests := map[string]struct {
		template string
		want     string
	}{
		"plain state key": {
			template: "Write about {topic}.",
			want:     "Write about release notes.",
		},
		"prefixed state key": {
			template: "Respond in {user:locale}.",
			want:     "Respond in en.",
		},
		"missing optional key": {
			template: "Context: {missing?}.",
			want:     "Context: .",
		},
		"missing required key kept verbatim": {
			template: "Context: {missing}.",
			want:     "Context: {missing}.",
		},
		"invalid name kept verbatim": {
			template: "JSON uses {1,2,3} braces.",
			want:     "JSON uses {1,2,3} braces.",
		},
		"no placeholders": {
			template: "Just answer.",
			want:     "Just answer.",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := p.populateValues(context.Background(), tt.template, ictx)
			if got != tt.want {
				t.Errorf("populateValues(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestIsValidStateName(t *testing.T) {
	p := &InstructionsLLMRequestProcessor{}

	tests := map[string]bool{
		"topic":        true,
		"_private":     true,
		"app:config":   true,
		"user:locale":  true,
		"temp:scratch": true,
		"1invalid":     false,
		"bad:prefix":   false,
		"a:b:c":        false,
		"":             false,
		"with space":   false,
	}

	for name, want := range tests {
		if got := p.isValidStateName(name); got != want {
			t.Errorf("isValidStateName(%q) = %t, want %t", name, got, want)
		}
	}
}
