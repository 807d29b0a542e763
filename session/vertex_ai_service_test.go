// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"google.golang.org/genai"

	"github.com/vana-ai/vana/types"
)

type staticToken string

func (t staticToken) Token(ctx context.Context) (string, error) {
	return string(t), nil
}

// newFakeEngine serves a minimal slice of the Agent Engine sessions API.
func newFakeEngine(t *testing.T) (*httptest.Server, *VertexAIService, *[]string) {
	t.Helper()

	var paths []string
	mux := http.NewServeMux()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want a bearer token", got)
		}
		paths = append(paths, r.Method+" "+r.URL.Path)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	engine := "/projects/p/locations/us-central1/reasoningEngines/42"

	mux.HandleFunc("POST "+engine+"/sessions", func(w http.ResponseWriter, r *http.Request) {
		sonic.ConfigDefault.NewEncoder(w).Encode(map[string]any{
			"name": engine[1:] + "/sessions/s123/operations/op1",
			"done": true,
		})
	})
	mux.HandleFunc("GET "+engine+"/sessions/s123", func(w http.ResponseWriter, r *http.Request) {
		sonic.ConfigDefault.NewEncoder(w).Encode(map[string]any{
			"name":         engine[1:] + "/sessions/s123",
			"userId":       "u1",
			"sessionState": map[string]any{"topic": "go"},
		})
	})
	mux.HandleFunc("GET "+engine+"/sessions/s123/events", func(w http.ResponseWriter, r *http.Request) {
		sonic.ConfigDefault.NewEncoder(w).Encode(map[string]any{
			"sessionEvents": []map[string]any{
				{
					"author": "user",
					"content": map[string]any{
						"role":  "user",
						"parts": []map[string]any{{"text": "hello"}},
					},
				},
			},
		})
	})
	mux.HandleFunc("GET "+engine+"/sessions", func(w http.ResponseWriter, r *http.Request) {
		sonic.ConfigDefault.NewEncoder(w).Encode(map[string]any{
			"sessions": []map[string]any{
				{"name": engine[1:] + "/sessions/s123", "userId": "u1"},
			},
		})
	})
	mux.HandleFunc("DELETE "+engine+"/sessions/s123", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST "+engine+"/sessions/s123:appendEvent", func(w http.ResponseWriter, r *http.Request) {
		var apiEv apiEvent
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&apiEv); err != nil {
			t.Errorf("decode appended event: %v", err)
		}
		if apiEv.Author != "assistant" {
			t.Errorf("appended author = %q, want assistant", apiEv.Author)
		}
		w.WriteHeader(http.StatusOK)
	})

	svc := NewVertexAIService("p", "us-central1",
		WithVertexBaseURL(srv.URL),
		WithVertexHTTPClient(srv.Client()),
		withCredentialsProvider(staticToken("test-token")),
	)

	return srv, svc, &paths
}

func TestVertexCreateSession(t *testing.T) {
	_, svc, _ := newFakeEngine(t)

	ses, err := svc.CreateSession(context.Background(), "42", "u1", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if ses.ID() != "s123" {
		t.Errorf("session ID = %q, want s123", ses.ID())
	}
	if ses.State()["topic"] != "go" {
		t.Errorf("session state = %v, want topic=go", ses.State())
	}
	if len(ses.Events()) != 1 || ses.Events()[0].GetText() != "hello" {
		t.Errorf("session events not loaded: %+v", ses.Events())
	}
}

func TestVertexCreateSessionRejectsUserID(t *testing.T) {
	_, svc, _ := newFakeEngine(t)

	if _, err := svc.CreateSession(context.Background(), "42", "u1", "custom", nil); err == nil {
		t.Error("expected an error for a user-provided session ID")
	}
}

func TestVertexGetSessionWrongUser(t *testing.T) {
	_, svc, _ := newFakeEngine(t)

	if _, err := svc.GetSession(context.Background(), "42", "someone-else", "s123", nil); err == nil {
		t.Error("expected an error for a session owned by another user")
	}
}

func TestVertexListSessions(t *testing.T) {
	_, svc, _ := newFakeEngine(t)

	sessions, err := svc.ListSessions(context.Background(), "42", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].ID() != "s123" {
		t.Errorf("sessions = %+v, want one session s123", sessions)
	}
}

func TestVertexDeleteSession(t *testing.T) {
	_, svc, paths := newFakeEngine(t)

	if err := svc.DeleteSession(context.Background(), "42", "u1", "s123"); err != nil {
		t.Fatal(err)
	}
	want := "DELETE /projects/p/locations/us-central1/reasoningEngines/42/sessions/s123"
	if len(*paths) != 1 || (*paths)[0] != want {
		t.Errorf("requests = %v, want [%s]", *paths, want)
	}
}

func TestVertexAppendEvent(t *testing.T) {
	_, svc, _ := newFakeEngine(t)

	ses := NewSession("42", "u1", "s123", nil, time.Now())
	event := types.NewEvent().
		WithAuthor("assistant").
		WithContent(genai.NewContentFromText("answer", "model"))

	if _, err := svc.AppendEvent(context.Background(), ses, event); err != nil {
		t.Fatal(err)
	}
	if len(ses.Events()) != 1 {
		t.Errorf("caller session has %d events, want 1", len(ses.Events()))
	}
}
