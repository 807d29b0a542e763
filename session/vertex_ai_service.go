// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/auth/credentials"
	"github.com/bytedance/sonic"
	"google.golang.org/genai"

	"github.com/vana-ai/vana/types"
)

// VertexAIService implements [types.SessionService] on top of the Vertex AI
// Agent Engine sessions REST API. The appName passed to the service methods
// is the reasoning engine resource ID (or full resource name).
type VertexAIService struct {
	project  string
	location string
	baseURL  string
	hc       *http.Client
	creds    credentialsProvider
	logger   *slog.Logger
}

var _ types.SessionService = (*VertexAIService)(nil)

// credentialsProvider yields bearer tokens for outgoing requests.
type credentialsProvider interface {
	Token(ctx context.Context) (string, error)
}

type defaultCredentials struct{}

func (defaultCredentials) Token(ctx context.Context) (string, error) {
	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		Scopes: []string{"https://www.googleapis.com/auth/cloud-platform"},
	})
	if err != nil {
		return "", fmt.Errorf("detect default credentials: %w", err)
	}
	token, err := creds.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("get access token: %w", err)
	}
	return token.Value, nil
}

// VertexAIServiceOption configures a [VertexAIService].
type VertexAIServiceOption func(*VertexAIService)

// WithVertexHTTPClient sets the HTTP client used for API calls.
func WithVertexHTTPClient(hc *http.Client) VertexAIServiceOption {
	return func(s *VertexAIService) {
		s.hc = hc
	}
}

// WithVertexBaseURL overrides the API endpoint.
func WithVertexBaseURL(baseURL string) VertexAIServiceOption {
	return func(s *VertexAIService) {
		s.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithVertexLogger sets the logger for the service.
func WithVertexLogger(logger *slog.Logger) VertexAIServiceOption {
	return func(s *VertexAIService) {
		s.logger = logger
	}
}

// withCredentialsProvider swaps the token source; used by tests.
func withCredentialsProvider(creds credentialsProvider) VertexAIServiceOption {
	return func(s *VertexAIService) {
		s.creds = creds
	}
}

// NewVertexAIService creates a session service for the given project and
// location. Credentials are resolved through Application Default Credentials.
func NewVertexAIService(project, location string, opts ...VertexAIServiceOption) *VertexAIService {
	s := &VertexAIService{
		project:  project,
		location: location,
		baseURL:  fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1beta1", location),
		hc:       http.DefaultClient,
		creds:    defaultCredentials{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// reasoningEngine resolves appName into a full reasoning engine resource name.
func (s *VertexAIService) reasoningEngine(appName string) string {
	if strings.HasPrefix(appName, "projects/") {
		return appName
	}
	return fmt.Sprintf("projects/%s/locations/%s/reasoningEngines/%s", s.project, s.location, appName)
}

// apiSession is the wire format of an Agent Engine session.
type apiSession struct {
	Name         string         `json:"name,omitempty"`
	UserID       string         `json:"userId,omitempty"`
	SessionState map[string]any `json:"sessionState,omitempty"`
	UpdateTime   time.Time      `json:"updateTime,omitempty"`
}

// apiEvent is the wire format of a session event.
type apiEvent struct {
	Author       string          `json:"author,omitempty"`
	InvocationID string          `json:"invocationId,omitempty"`
	Timestamp    time.Time       `json:"timestamp,omitempty"`
	Content      *genai.Content  `json:"content,omitempty"`
	Actions      *apiEventAction `json:"actions,omitempty"`
	Branch       string          `json:"branch,omitempty"`
	ErrorCode    string          `json:"errorCode,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
}

type apiEventAction struct {
	StateDelta      map[string]any `json:"stateDelta,omitempty"`
	TransferToAgent string         `json:"transferAgent,omitempty"`
	Escalate        bool           `json:"escalate,omitempty"`
}

type apiOperation struct {
	Name string `json:"name"`
	Done bool   `json:"done"`
}

// sessionIDRe extracts the session ID from an operation or session resource name.
var sessionIDRe = regexp.MustCompile(`/sessions/([^/]+)`)

// CreateSession creates a session in the Agent Engine deployment.
//
// The API assigns session IDs; passing a non-empty sessionID is an error.
func (s *VertexAIService) CreateSession(ctx context.Context, appName, userID, sessionID string, state map[string]any) (types.Session, error) {
	if sessionID != "" {
		return nil, fmt.Errorf("user-provided session IDs are not supported by the Vertex AI session service")
	}

	body := map[string]any{"userId": userID}
	if len(state) > 0 {
		body["sessionState"] = state
	}

	var op apiOperation
	path := s.reasoningEngine(appName) + "/sessions"
	if err := s.do(ctx, http.MethodPost, path, body, &op); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	m := sessionIDRe.FindStringSubmatch(op.Name)
	if m == nil {
		return nil, fmt.Errorf("create session: no session ID in operation %q", op.Name)
	}
	sessionID = m[1]

	return s.GetSession(ctx, appName, userID, sessionID, nil)
}

// GetSession retrieves a session and its events.
func (s *VertexAIService) GetSession(ctx context.Context, appName, userID, sessionID string, config *types.GetSessionConfig) (types.Session, error) {
	path := s.sessionPath(appName, sessionID)

	var apiSes apiSession
	if err := s.do(ctx, http.MethodGet, path, nil, &apiSes); err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	if apiSes.UserID != userID {
		return nil, fmt.Errorf("session %s does not belong to user %s", sessionID, userID)
	}

	var eventsResp struct {
		SessionEvents []*apiEvent `json:"sessionEvents"`
	}
	if err := s.do(ctx, http.MethodGet, path+"/events", nil, &eventsResp); err != nil {
		return nil, fmt.Errorf("list session events %s: %w", sessionID, err)
	}

	ses := NewSession(appName, userID, sessionID, apiSes.SessionState, apiSes.UpdateTime)
	for _, apiEv := range eventsResp.SessionEvents {
		event := apiEv.toEvent()
		if config != nil && !config.AfterTimestamp.IsZero() && event.Timestamp.Before(config.AfterTimestamp) {
			continue
		}
		ses.AddEvent(event)
	}
	if config != nil && config.NumRecentEvents > 0 {
		ses.events = ses.RecentEvents(config.NumRecentEvents)
	}

	return ses, nil
}

// ListSessions lists the user's sessions. The returned sessions carry no
// events and no state.
func (s *VertexAIService) ListSessions(ctx context.Context, appName, userID string) ([]types.Session, error) {
	path := s.reasoningEngine(appName) + "/sessions?filter=" + url.QueryEscape(fmt.Sprintf("user_id=%q", userID))

	var resp struct {
		Sessions []*apiSession `json:"sessions"`
	}
	if err := s.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessions := make([]types.Session, 0, len(resp.Sessions))
	for _, apiSes := range resp.Sessions {
		m := sessionIDRe.FindStringSubmatch(apiSes.Name)
		if m == nil {
			continue
		}
		sessions = append(sessions, NewSession(appName, userID, m[1], nil, apiSes.UpdateTime))
	}

	return sessions, nil
}

// DeleteSession deletes a session.
func (s *VertexAIService) DeleteSession(ctx context.Context, appName, userID, sessionID string) error {
	if err := s.do(ctx, http.MethodDelete, s.sessionPath(appName, sessionID), nil, nil); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

// AppendEvent appends an event to the stored session and to the caller's copy.
func (s *VertexAIService) AppendEvent(ctx context.Context, ses types.Session, event *types.Event) (*types.Event, error) {
	ses.AddEvent(event)
	ses.SetLastUpdateTime(event.Timestamp)

	path := s.sessionPath(ses.AppName(), ses.ID()) + ":appendEvent"
	if err := s.do(ctx, http.MethodPost, path, newAPIEvent(event), nil); err != nil {
		return nil, fmt.Errorf("append event to session %s: %w", ses.ID(), err)
	}

	return event, nil
}

// ListEvents lists events for a session.
func (s *VertexAIService) ListEvents(ctx context.Context, appName, userID, sessionID string, maxEvents int, since *time.Time) ([]*types.Event, error) {
	config := &types.GetSessionConfig{NumRecentEvents: maxEvents}
	if since != nil {
		config.AfterTimestamp = *since
	}

	ses, err := s.GetSession(ctx, appName, userID, sessionID, config)
	if err != nil {
		return nil, err
	}
	return ses.Events(), nil
}

func (s *VertexAIService) sessionPath(appName, sessionID string) string {
	return s.reasoningEngine(appName) + "/sessions/" + sessionID
}

// do performs one authenticated API call and decodes the response into out.
func (s *VertexAIService) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := sonic.ConfigFastest.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+"/"+path, reqBody)
	if err != nil {
		return err
	}
	token, err := s.creds.Token(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	s.logger.DebugContext(ctx, "vertex session API call",
		slog.String("method", method),
		slog.String("path", path),
	)

	resp, err := s.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<22))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := sonic.ConfigFastest.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// newAPIEvent converts a [*types.Event] to its wire format.
func newAPIEvent(event *types.Event) *apiEvent {
	apiEv := &apiEvent{
		Author:       event.Author,
		InvocationID: event.InvocationID,
		Timestamp:    event.Timestamp,
		Branch:       event.Branch,
	}
	if event.LLMResponse != nil {
		apiEv.Content = event.Content
		apiEv.ErrorCode = event.ErrorCode
		apiEv.ErrorMessage = event.ErrorMessage
	}
	if event.Actions != nil {
		apiEv.Actions = &apiEventAction{
			StateDelta:      event.Actions.StateDelta,
			TransferToAgent: event.Actions.TransferToAgent,
			Escalate:        event.Actions.Escalate,
		}
	}
	return apiEv
}

// toEvent converts a wire event back to a [*types.Event].
func (apiEv *apiEvent) toEvent() *types.Event {
	event := types.NewEvent().
		WithAuthor(apiEv.Author).
		WithInvocationID(apiEv.InvocationID).
		WithBranch(apiEv.Branch)
	event.Timestamp = apiEv.Timestamp
	event.Content = apiEv.Content
	event.ErrorCode = apiEv.ErrorCode
	event.ErrorMessage = apiEv.ErrorMessage
	if apiEv.Actions != nil {
		event.Actions.StateDelta = apiEv.Actions.StateDelta
		event.Actions.TransferToAgent = apiEv.Actions.TransferToAgent
		event.Actions.Escalate = apiEv.Actions.Escalate
	}
	return event
}
