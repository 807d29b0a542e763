// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vana-ai/vana/types"
)

// InMemoryService is an in-memory implementation of [types.SessionService].
type InMemoryService struct {
	// sessions maps app name -> user ID -> session ID -> session.
	sessions map[string]map[string]map[string]*Session

	// userState maps app name -> user ID -> key -> value.
	userState map[string]map[string]map[string]any

	// appState maps app name -> key -> value.
	appState map[string]map[string]any

	logger *slog.Logger
	mu     sync.RWMutex
}

var _ types.SessionService = (*InMemoryService)(nil)

// InMemoryServiceOption configures an [InMemoryService].
type InMemoryServiceOption func(*InMemoryService)

// WithInMemoryLogger sets the logger for the service.
func WithInMemoryLogger(logger *slog.Logger) InMemoryServiceOption {
	return func(s *InMemoryService) {
		s.logger = logger
	}
}

// NewInMemoryService creates a new [InMemoryService].
func NewInMemoryService(opts ...InMemoryServiceOption) *InMemoryService {
	s := &InMemoryService{
		sessions:  make(map[string]map[string]map[string]*Session),
		userState: make(map[string]map[string]map[string]any),
		appState:  make(map[string]map[string]any),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateSession creates a new session. If sessionID is empty a random ID is
// generated.
func (s *InMemoryService) CreateSession(ctx context.Context, appName, userID, sessionID string, state map[string]any) (types.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	s.logger.InfoContext(ctx, "creating session",
		slog.String("app_name", appName),
		slog.String("user_id", userID),
		slog.String("session_id", sessionID),
	)

	ses := NewSession(appName, userID, sessionID, nil, time.Now())
	maps.Copy(ses.state, state)

	if _, ok := s.sessions[appName]; !ok {
		s.sessions[appName] = make(map[string]map[string]*Session)
	}
	if _, ok := s.sessions[appName][userID]; !ok {
		s.sessions[appName][userID] = make(map[string]*Session)
	}
	s.sessions[appName][userID][sessionID] = ses

	return s.mergeState(appName, userID, copySession(ses)), nil
}

// GetSession retrieves a session by ID. The returned session is a copy;
// mutating it does not alter the stored one.
func (s *InMemoryService) GetSession(ctx context.Context, appName, userID, sessionID string, config *types.GetSessionConfig) (types.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, err := s.lookup(appName, userID, sessionID)
	if err != nil {
		return nil, err
	}

	copied := copySession(stored)
	if config != nil {
		if !config.AfterTimestamp.IsZero() {
			kept := make([]*types.Event, 0, len(copied.events))
			for _, event := range copied.events {
				if !event.Timestamp.Before(config.AfterTimestamp) {
					kept = append(kept, event)
				}
			}
			copied.events = kept
		}
		if config.NumRecentEvents > 0 {
			copied.events = copied.RecentEvents(config.NumRecentEvents)
		}
	}

	return s.mergeState(appName, userID, copied), nil
}

// ListSessions lists all sessions for a user. The returned sessions carry no
// events and no state.
func (s *InMemoryService) ListSessions(ctx context.Context, appName, userID string) ([]types.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]types.Session, 0, len(s.sessions[appName][userID]))
	for _, ses := range s.sessions[appName][userID] {
		sessions = append(sessions, NewSession(ses.appName, ses.userID, ses.id, nil, ses.lastUpdateTime))
	}

	return sessions, nil
}

// DeleteSession deletes a session. Deleting an unknown session is a no-op.
func (s *InMemoryService) DeleteSession(ctx context.Context, appName, userID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if users, ok := s.sessions[appName]; ok {
		delete(users[userID], sessionID)
	}
	return nil
}

// AppendEvent appends an event to a session and folds the event's state
// delta into the stored session. Keys with the app: and user: prefixes are
// routed to the app and user scoped storage; temp: keys are dropped.
func (s *InMemoryService) AppendEvent(ctx context.Context, ses types.Session, event *types.Event) (*types.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appName := ses.AppName()
	userID := ses.UserID()
	sessionID := ses.ID()

	ses.AddEvent(event)
	ses.SetLastUpdateTime(event.Timestamp)

	stored, err := s.lookup(appName, userID, sessionID)
	if err != nil {
		// The caller holds a session the service no longer knows about.
		// Keep their copy updated but report nothing stored.
		return event, nil
	}

	stored.AddEvent(event)
	stored.SetLastUpdateTime(event.Timestamp)

	if event.Actions != nil {
		for key, value := range event.Actions.StateDelta {
			switch {
			case strings.HasPrefix(key, types.AppPrefix):
				if _, ok := s.appState[appName]; !ok {
					s.appState[appName] = make(map[string]any)
				}
				s.appState[appName][strings.TrimPrefix(key, types.AppPrefix)] = value

			case strings.HasPrefix(key, types.UserPrefix):
				if _, ok := s.userState[appName]; !ok {
					s.userState[appName] = make(map[string]map[string]any)
				}
				if _, ok := s.userState[appName][userID]; !ok {
					s.userState[appName][userID] = make(map[string]any)
				}
				s.userState[appName][userID][strings.TrimPrefix(key, types.UserPrefix)] = value

			case strings.HasPrefix(key, types.TempPrefix):
				// Invocation-scoped values are never persisted.

			default:
				stored.state[key] = value
			}
		}
	}

	return event, nil
}

// ListEvents lists events for a session, optionally limited by count and
// start time.
func (s *InMemoryService) ListEvents(ctx context.Context, appName, userID, sessionID string, maxEvents int, since *time.Time) ([]*types.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, err := s.lookup(appName, userID, sessionID)
	if err != nil {
		return nil, err
	}

	events := stored.events
	if since != nil {
		kept := make([]*types.Event, 0, len(events))
		for _, event := range events {
			if !event.Timestamp.Before(*since) {
				kept = append(kept, event)
			}
		}
		events = kept
	}
	if maxEvents > 0 && len(events) > maxEvents {
		events = events[len(events)-maxEvents:]
	}

	out := make([]*types.Event, len(events))
	copy(out, events)
	return out, nil
}

// lookup finds the stored session. Callers must hold s.mu.
func (s *InMemoryService) lookup(appName, userID, sessionID string) (*Session, error) {
	users, ok := s.sessions[appName]
	if !ok {
		return nil, fmt.Errorf("app %q not found", appName)
	}
	byID, ok := users[userID]
	if !ok {
		return nil, fmt.Errorf("user %q not found for app %q", userID, appName)
	}
	ses, ok := byID[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %q not found for user %q in app %q", sessionID, userID, appName)
	}
	return ses, nil
}

// copySession creates a copy of a session with its own state map and event
// slice. Events themselves are shared; callers treat them as immutable.
func copySession(ses *Session) *Session {
	copied := NewSession(ses.appName, ses.userID, ses.id, nil, ses.lastUpdateTime)
	copied.events = append(copied.events, ses.events...)
	maps.Copy(copied.state, ses.state)
	return copied
}

// mergeState merges app and user scoped state into the session state under
// their prefixes. Callers must hold s.mu.
func (s *InMemoryService) mergeState(appName, userID string, ses *Session) *Session {
	for key, value := range s.appState[appName] {
		ses.state[types.AppPrefix+key] = value
	}
	for key, value := range s.userState[appName][userID] {
		ses.state[types.UserPrefix+key] = value
	}
	return ses
}
