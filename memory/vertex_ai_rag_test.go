// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"strings"
	"testing"

	"github.com/bytedance/sonic"
)

func TestBuildTranscript(t *testing.T) {
	ses := &fakeSession{id: "s1", appName: "app", userID: "u1"}
	ses.events = append(ses.events,
		textEvent("user", "how do I\ndeploy?"),
		textEvent("assistant", "Use the pipeline."),
	)

	transcript, err := buildTranscript(ses)
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(transcript, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	var first transcriptLine
	if err := sonic.ConfigFastest.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatal(err)
	}
	if first.Author != "user" {
		t.Errorf("author = %q, want user", first.Author)
	}
	if strings.Contains(first.Text, "\n") {
		t.Errorf("newlines not flattened: %q", first.Text)
	}
}

func TestBuildTranscriptSkipsNonTextEvents(t *testing.T) {
	ses := &fakeSession{id: "s1", appName: "app", userID: "u1"}
	ses.events = append(ses.events, textEvent("user", "question"))
	// An event without content contributes nothing.
	ses.events = append(ses.events, textEvent("assistant", ""))

	transcript, err := buildTranscript(ses)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(strings.Split(transcript, "\n")); got != 1 {
		t.Errorf("got %d lines, want 1", got)
	}
}
