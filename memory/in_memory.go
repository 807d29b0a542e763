// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/vana-ai/vana/types"
)

// wordRe splits text into lowercase word tokens for keyword matching.
var wordRe = regexp.MustCompile(`[A-Za-z0-9]+`)

// InMemoryService is an in-memory memory service for prototyping purposes
// only. It uses keyword matching instead of semantic search.
type InMemoryService struct {
	// sessionEvents maps "appName/userID" -> session ID -> events.
	sessionEvents map[string]map[string][]*types.Event
	logger        *slog.Logger
	mu            sync.RWMutex
}

var _ types.MemoryService = (*InMemoryService)(nil)

// InMemoryOption configures an [InMemoryService].
type InMemoryOption func(*InMemoryService)

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) InMemoryOption {
	return func(s *InMemoryService) {
		s.logger = logger
	}
}

// NewInMemoryService creates a new [InMemoryService].
func NewInMemoryService(opts ...InMemoryOption) *InMemoryService {
	s := &InMemoryService{
		sessionEvents: make(map[string]map[string][]*types.Event),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func userKey(appName, userID string) string {
	return appName + "/" + userID
}

func extractWordsLower(text string) map[string]bool {
	words := make(map[string]bool)
	for _, word := range wordRe.FindAllString(text, -1) {
		words[strings.ToLower(word)] = true
	}
	return words
}

// AddSessionToMemory adds the session's text events to memory. Adding the
// same session again replaces its previous entry.
func (s *InMemoryService) AddSessionToMemory(ctx context.Context, session types.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userKey(session.AppName(), session.UserID())
	if _, ok := s.sessionEvents[key]; !ok {
		s.sessionEvents[key] = make(map[string][]*types.Event)
	}

	var events []*types.Event
	for _, event := range session.Events() {
		if event.Content != nil && len(event.Content.Parts) > 0 {
			events = append(events, event)
		}
	}
	s.sessionEvents[key][session.ID()] = events

	s.logger.InfoContext(ctx, "added session to memory",
		slog.String("app_name", session.AppName()),
		slog.String("user_id", session.UserID()),
		slog.String("session_id", session.ID()),
		slog.Int("events", len(events)),
	)

	return nil
}

// SearchMemory returns stored events whose text shares at least one word
// with the query. Each matching event is returned once.
func (s *InMemoryService) SearchMemory(ctx context.Context, appName, userID, query string) (*types.SearchMemoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	response := &types.SearchMemoryResponse{
		Memories: make([]*types.MemoryEntry, 0),
	}

	bySession, ok := s.sessionEvents[userKey(appName, userID)]
	if !ok {
		return response, nil
	}

	queryWords := extractWordsLower(query)
	if len(queryWords) == 0 {
		return response, nil
	}

	for _, events := range bySession {
		for _, event := range events {
			var texts []string
			for _, part := range event.Content.Parts {
				if part.Text != "" {
					texts = append(texts, part.Text)
				}
			}
			eventWords := extractWordsLower(strings.Join(texts, " "))

			for word := range queryWords {
				if eventWords[word] {
					response.Memories = append(response.Memories, &types.MemoryEntry{
						Content:   event.Content,
						Author:    event.Author,
						Timestamp: event.Timestamp,
					})
					break
				}
			}
		}
	}

	return response, nil
}
