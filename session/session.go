// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"time"

	"github.com/vana-ai/vana/types"
)

// Session holds the interaction history and state for one conversation.
type Session struct {
	id             string
	appName        string
	userID         string
	events         []*types.Event
	state          map[string]any
	lastUpdateTime time.Time
}

var _ types.Session = (*Session)(nil)

// NewSession creates a new session with the given parameters.
func NewSession(appName, userID, id string, state map[string]any, lastUpdateTime time.Time) *Session {
	if state == nil {
		state = make(map[string]any)
	}

	return &Session{
		id:             id,
		appName:        appName,
		userID:         userID,
		state:          state,
		lastUpdateTime: lastUpdateTime,
	}
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// AppName returns the application name.
func (s *Session) AppName() string {
	return s.appName
}

// UserID returns the user ID.
func (s *Session) UserID() string {
	return s.userID
}

// Events returns the events in this session.
func (s *Session) Events() []*types.Event {
	return s.events
}

// State returns the state of this session.
func (s *Session) State() map[string]any {
	return s.state
}

// LastUpdateTime returns the last time this session was updated.
func (s *Session) LastUpdateTime() time.Time {
	return s.lastUpdateTime
}

// SetLastUpdateTime sets the last update time of this session.
func (s *Session) SetLastUpdateTime(t time.Time) {
	s.lastUpdateTime = t
}

// AddEvent adds events to this session.
func (s *Session) AddEvent(events ...*types.Event) {
	s.events = append(s.events, events...)
}

// RecentEvents returns the most recent n events, or all events when n is
// zero, negative, or larger than the history.
func (s *Session) RecentEvents(n int) []*types.Event {
	if n <= 0 || n > len(s.events) {
		return s.events
	}
	return s.events[len(s.events)-n:]
}
