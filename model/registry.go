// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/vana-ai/vana/types"
)

// init registers the built-in model backends.
func init() {
	RegisterLLMType(
		[]string{
			`claude-.*`,
		},
		func(ctx context.Context, modelName string) (types.Model, error) {
			return NewClaude(ctx, "", modelName)
		},
	)

	RegisterLLMType(
		[]string{
			`gemini-.*`,
			`projects/.*/locations/.*/endpoints/.*`,
			`projects/.*/locations/.*/publishers/google/models/gemini-.*`,
		},
		func(ctx context.Context, modelName string) (types.Model, error) {
			return NewGemini(ctx, "", modelName)
		},
	)
}

// ModelCreatorFunc creates a model instance for the given model name.
type ModelCreatorFunc func(ctx context.Context, modelName string) (types.Model, error)

// modelEntry pairs a name pattern with its model creator.
type modelEntry struct {
	pattern *regexp.Regexp
	creator ModelCreatorFunc
}

// LLMRegistry resolves model implementations from model names using
// regex patterns. Resolution results are cached per model name.
type LLMRegistry struct {
	mu         sync.RWMutex
	registry   []modelEntry
	cacheSize  int
	modelCache map[string]ModelCreatorFunc
}

var (
	defaultRegistry *LLMRegistry
	registryOnce    sync.Once
)

// GetRegistry returns the singleton registry instance.
func GetRegistry() *LLMRegistry {
	registryOnce.Do(func() {
		defaultRegistry = NewLLMRegistry(32)
	})
	return defaultRegistry
}

// NewLLMRegistry creates a new registry with the given resolution cache size.
func NewLLMRegistry(cacheSize int) *LLMRegistry {
	return &LLMRegistry{
		cacheSize:  cacheSize,
		modelCache: make(map[string]ModelCreatorFunc),
	}
}

// RegisterLLM registers a model name pattern with a creator function.
// Registering an existing pattern replaces its creator.
func (r *LLMRegistry) RegisterLLM(modelPattern string, creator ModelCreatorFunc) error {
	regex, err := regexp.Compile(modelPattern)
	if err != nil {
		return fmt.Errorf("compile model pattern %q: %w", modelPattern, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, entry := range r.registry {
		if entry.pattern.String() == modelPattern {
			r.registry[i].creator = creator
			return nil
		}
	}

	r.registry = append(r.registry, modelEntry{
		pattern: regex,
		creator: creator,
	})
	return nil
}

// ResolveLLM finds the creator for the given model name. Patterns are
// matched in registration order; the first match wins.
func (r *LLMRegistry) ResolveLLM(modelName string) (ModelCreatorFunc, error) {
	r.mu.RLock()
	if creator, ok := r.modelCache[modelName]; ok {
		r.mu.RUnlock()
		return creator, nil
	}

	var matchedCreator ModelCreatorFunc
	for _, entry := range r.registry {
		if entry.pattern.MatchString(modelName) {
			matchedCreator = entry.creator
			break
		}
	}
	r.mu.RUnlock()

	if matchedCreator == nil {
		return nil, fmt.Errorf("model %q not found in registry", modelName)
	}

	r.mu.Lock()
	if len(r.modelCache) >= r.cacheSize {
		// Cheap eviction: drop everything when full.
		r.modelCache = make(map[string]ModelCreatorFunc)
	}
	r.modelCache[modelName] = matchedCreator
	r.mu.Unlock()

	return matchedCreator, nil
}

// NewLLM creates a model instance for the given model name.
func (r *LLMRegistry) NewLLM(ctx context.Context, modelName string) (types.Model, error) {
	creator, err := r.ResolveLLM(modelName)
	if err != nil {
		return nil, err
	}
	return creator(ctx, modelName)
}

// RegisterLLM registers a model pattern on the default registry.
func RegisterLLM(modelPattern string, creator ModelCreatorFunc) error {
	return GetRegistry().RegisterLLM(modelPattern, creator)
}

// RegisterLLMType registers multiple patterns for a single model creator
// on the default registry.
func RegisterLLMType(patterns []string, creator ModelCreatorFunc) {
	registry := GetRegistry()
	for _, pattern := range patterns {
		if err := registry.RegisterLLM(pattern, creator); err != nil {
			panic(err)
		}
	}
}

// NewLLM creates a model instance for the given model name using the
// default registry.
func NewLLM(ctx context.Context, modelName string) (types.Model, error) {
	return GetRegistry().NewLLM(ctx, modelName)
}
