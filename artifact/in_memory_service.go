// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/vana-ai/vana/types"
)

// userNamespacePrefix marks filenames that are scoped to the user instead
// of a single session.
const userNamespacePrefix = "user:"

// InMemoryService keeps artifact versions in process memory.
type InMemoryService struct {
	mu        sync.Mutex
	artifacts map[string][]*genai.Part
}

var _ types.ArtifactService = (*InMemoryService)(nil)

// NewInMemoryService creates a new [InMemoryService].
func NewInMemoryService() *InMemoryService {
	return &InMemoryService{
		artifacts: make(map[string][]*genai.Part),
	}
}

func hasUserNamespace(filename string) bool {
	return strings.HasPrefix(filename, userNamespacePrefix)
}

func artifactPath(appName, userID, sessionID, filename string) string {
	if hasUserNamespace(filename) {
		return fmt.Sprintf("%s/%s/user/%s", appName, userID, filename)
	}
	return fmt.Sprintf("%s/%s/%s/%s", appName, userID, sessionID, filename)
}

// SaveArtifact implements [types.ArtifactService].
func (s *InMemoryService) SaveArtifact(ctx context.Context, appName, userID, sessionID, filename string, artifact *genai.Part) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := artifactPath(appName, userID, sessionID, filename)
	version := len(s.artifacts[path])
	s.artifacts[path] = append(s.artifacts[path], artifact)

	return version, nil
}

// LoadArtifact implements [types.ArtifactService].
func (s *InMemoryService) LoadArtifact(ctx context.Context, appName, userID, sessionID, filename string, version int) (*genai.Part, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := artifactPath(appName, userID, sessionID, filename)
	versions := s.artifacts[path]
	if len(versions) == 0 {
		return nil, nil
	}
	if version < 0 {
		version = len(versions) - 1
	}
	if version >= len(versions) {
		return nil, fmt.Errorf("artifact %s has no version %d", filename, version)
	}

	return versions[version], nil
}

// ListArtifactKey implements [types.ArtifactService].
func (s *InMemoryService) ListArtifactKey(ctx context.Context, appName, userID, sessionID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessionPrefix := fmt.Sprintf("%s/%s/%s/", appName, userID, sessionID)
	userPrefix := fmt.Sprintf("%s/%s/user/", appName, userID)

	filenames := []string{}
	for path := range s.artifacts {
		switch {
		case strings.HasPrefix(path, sessionPrefix):
			filenames = append(filenames, strings.TrimPrefix(path, sessionPrefix))
		case strings.HasPrefix(path, userPrefix):
			filenames = append(filenames, strings.TrimPrefix(path, userPrefix))
		}
	}
	slices.Sort(filenames)

	return filenames, nil
}

// DeleteArtifact implements [types.ArtifactService].
func (s *InMemoryService) DeleteArtifact(ctx context.Context, appName, userID, sessionID, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.artifacts, artifactPath(appName, userID, sessionID, filename))

	return nil
}

// ListVersions implements [types.ArtifactService].
func (s *InMemoryService) ListVersions(ctx context.Context, appName, userID, sessionID, filename string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	versions := s.artifacts[artifactPath(appName, userID, sessionID, filename)]
	if len(versions) == 0 {
		return nil, nil
	}

	list := make([]int, len(versions))
	for i := range versions {
		list[i] = i
	}

	return list, nil
}

// Close implements [types.ArtifactService].
func (s *InMemoryService) Close() error {
	return nil
}
