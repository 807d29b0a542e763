// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLoadWebPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><style>body { color: red }</style></head>` +
			`<body><h1>Release Notes</h1><script>alert(1)</script>` +
			`<p>Version 2.0 ships the new router.</p><span>ok</span></body></html>`))
	}))
	defer srv.Close()

	wt := NewWebPageTool(srv.Client())
	text, err := wt.LoadWebPage(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(text, "Release Notes") {
		t.Errorf("text %q should contain the heading", text)
	}
	if !strings.Contains(text, "Version 2.0 ships the new router.") {
		t.Errorf("text %q should contain the paragraph", text)
	}
	if strings.Contains(text, "alert(1)") {
		t.Errorf("script content leaked into text: %q", text)
	}
	if strings.Contains(text, "color: red") {
		t.Errorf("style content leaked into text: %q", text)
	}
	// Very short lines are dropped.
	if strings.Contains(text, "\nok") || text == "ok" {
		t.Errorf("short line not filtered: %q", text)
	}
}

func TestLoadWebPageNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	wt := NewWebPageTool(srv.Client())
	if _, err := wt.LoadWebPage(context.Background(), srv.URL); err == nil {
		t.Error("expected an error for a non-200 response")
	}
}
