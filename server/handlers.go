// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/mux"
	"google.golang.org/genai"

	"github.com/vana-ai/vana/types"
)

const maxRequestBody = 4 << 20 // 4MB

// runRequest is the body of /run and /run_sse.
type runRequest struct {
	AppName    string         `json:"appName"`
	UserID     string         `json:"userId"`
	SessionID  string         `json:"sessionId"`
	NewMessage *genai.Content `json:"newMessage"`
}

// createSessionRequest is the optional body of the session create endpoints.
type createSessionRequest struct {
	State map[string]any `json:"state"`
}

type sessionPayload struct {
	ID             string          `json:"id"`
	AppName        string          `json:"appName"`
	UserID         string          `json:"userId"`
	State          map[string]any  `json:"state,omitempty"`
	Events         []*eventPayload `json:"events,omitempty"`
	LastUpdateTime time.Time       `json:"lastUpdateTime"`
}

type eventPayload struct {
	*types.LLMResponse

	ID           string               `json:"id"`
	InvocationID string               `json:"invocationId"`
	Author       string               `json:"author"`
	Branch       string               `json:"branch,omitempty"`
	Timestamp    time.Time            `json:"timestamp"`
	Actions      *eventActionsPayload `json:"actions,omitempty"`
}

type eventActionsPayload struct {
	SkipSummarization bool           `json:"skipSummarization,omitempty"`
	StateDelta        map[string]any `json:"stateDelta,omitempty"`
	ArtifactDelta     map[string]int `json:"artifactDelta,omitempty"`
	TransferToAgent   string         `json:"transferAgent,omitempty"`
	Escalate          bool           `json:"escalate,omitempty"`
}

type errorPayload struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newEventPayload(event *types.Event) *eventPayload {
	p := &eventPayload{
		LLMResponse:  event.LLMResponse,
		ID:           event.ID,
		InvocationID: event.InvocationID,
		Author:       event.Author,
		Branch:       event.Branch,
		Timestamp:    event.Timestamp,
	}
	if event.Actions != nil {
		p.Actions = &eventActionsPayload{
			SkipSummarization: event.Actions.SkipSummarization,
			StateDelta:        event.Actions.StateDelta,
			ArtifactDelta:     event.Actions.ArtifactDelta,
			TransferToAgent:   event.Actions.TransferToAgent,
			Escalate:          event.Actions.Escalate,
		}
	}
	return p
}

func newSessionPayload(sess types.Session) *sessionPayload {
	events := make([]*eventPayload, 0, len(sess.Events()))
	for _, event := range sess.Events() {
		events = append(events, newEventPayload(event))
	}
	return &sessionPayload{
		ID:             sess.ID(),
		AppName:        sess.AppName(),
		UserID:         sess.UserID(),
		State:          sess.State(),
		Events:         events,
		LastUpdateTime: sess.LastUpdateTime(),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.ConfigFastest.Marshal(v)
	if err != nil {
		s.logger.Error("marshal response", slog.Any("error", err))
		http.Error(w, `{"error":{"code":500,"message":"encode response"}}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, &errorPayload{
		Error: errorDetail{
			Code:    status,
			Message: err.Error(),
		},
	})
}

func (s *Server) decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	if len(body) == 0 {
		return nil
	}
	if err := sonic.ConfigFastest.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req createSessionRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	sess, err := s.runner.SessionService().CreateSession(r.Context(), vars["app"], vars["user"], vars["id"], req.State)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newSessionPayload(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	sess, err := s.runner.SessionService().GetSession(r.Context(), vars["app"], vars["user"], vars["id"], nil)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newSessionPayload(sess))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	sessions, err := s.runner.SessionService().ListSessions(r.Context(), vars["app"], vars["user"])
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	payloads := make([]*sessionPayload, 0, len(sessions))
	for _, sess := range sessions {
		payloads = append(payloads, newSessionPayload(sess))
	}
	s.writeJSON(w, http.StatusOK, payloads)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := s.runner.SessionService().DeleteSession(r.Context(), vars["app"], vars["user"], vars["id"]); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decodeRunRequest(r *http.Request) (*runRequest, int, error) {
	var req runRequest
	if err := s.decodeBody(r, &req); err != nil {
		return nil, http.StatusBadRequest, err
	}
	if req.AppName != s.runner.AppName() {
		return nil, http.StatusNotFound, fmt.Errorf("unknown app %q", req.AppName)
	}
	if req.UserID == "" || req.SessionID == "" {
		return nil, http.StatusBadRequest, fmt.Errorf("userId and sessionId are required")
	}
	return &req, 0, nil
}

// handleRun runs one invocation and returns the completed events as a JSON
// array. Partial streaming chunks are skipped.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	req, status, err := s.decodeRunRequest(r)
	if err != nil {
		s.writeError(w, status, err)
		return
	}

	runConfig := &types.RunConfig{StreamingMode: types.StreamingModeNone}
	events := make([]*eventPayload, 0, 8)
	for event, err := range s.runner.Run(r.Context(), req.UserID, req.SessionID, req.NewMessage, runConfig) {
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		if event.Partial {
			continue
		}
		events = append(events, newEventPayload(event))
	}
	s.writeJSON(w, http.StatusOK, events)
}

// handleRunSSE runs one invocation and streams every event as a
// server-sent-events data frame, flushing per event.
func (s *Server) handleRunSSE(w http.ResponseWriter, r *http.Request) {
	req, status, err := s.decodeRunRequest(r)
	if err != nil {
		s.writeError(w, status, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	runConfig := &types.RunConfig{StreamingMode: types.StreamingModeSSE}
	for event, err := range s.runner.Run(r.Context(), req.UserID, req.SessionID, req.NewMessage, runConfig) {
		if err != nil {
			s.writeSSEError(w, flusher, err)
			return
		}

		data, err := sonic.ConfigFastest.Marshal(newEventPayload(event))
		if err != nil {
			s.logger.Error("marshal sse event", slog.Any("error", err))
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}

func (s *Server) writeSSEError(w http.ResponseWriter, flusher http.Flusher, err error) {
	data, merr := sonic.ConfigFastest.Marshal(&errorPayload{
		Error: errorDetail{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		},
	})
	if merr != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}
