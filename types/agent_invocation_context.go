// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

// LLMCallsLimitExceededError represents the error thrown when the number of
// LLM calls exceeds the limit.
type LLMCallsLimitExceededError string

// NewLLMCallsLimitExceededError returns a new [LLMCallsLimitExceededError].
func NewLLMCallsLimitExceededError(msg string, a ...any) error {
	return LLMCallsLimitExceededError(fmt.Sprintf(msg, a...))
}

// Error returns a string representation of the LLMCallsLimitExceededError.
func (e LLMCallsLimitExceededError) Error() string {
	return string(e)
}

// InvocationCostManager keeps track of the cost of an invocation.
type InvocationCostManager struct {
	// A counter that keeps track of number of llm calls made.
	llmCalls int
}

// IncrementAndEnforceLLMCallsLimit increments llmCalls and enforces the limit.
func (mgr *InvocationCostManager) IncrementAndEnforceLLMCallsLimit(runConfig *RunConfig) error {
	mgr.llmCalls++
	if runConfig != nil && runConfig.MaxLLMCalls > 0 && mgr.llmCalls > runConfig.MaxLLMCalls {
		return NewLLMCallsLimitExceededError("max number of llm calls limit of %d exceeded", runConfig.MaxLLMCalls)
	}
	return nil
}

// InvocationContext represents the data of a single invocation of an agent.
//
// An invocation:
//
//   - Starts with a user message and ends with a final response.
//   - Can contain one or multiple agent calls.
//   - Is handled by runner.Run().
//
// An invocation runs an agent until it does not request to transfer to another
// agent.
//
// An LLM agent call can contain one or multiple steps. An LLM agent runs steps
// in a loop until:
//
//   - A final response is generated.
//   - The agent transfers to another agent.
//   - EndInvocation is set to true by any callbacks or tools.
//
// A step:
//
//   - Calls the LLM only once and yields its response.
//   - Calls the tools and yields their responses if requested.
//
//	┌─────────────────────── invocation ──────────────────────────┐
//	┌──────────── llm_agent_call_1 ────────────┐ ┌─ agent_call_2 ─┐
//	┌──── step_1 ────────┐ ┌───── step_2 ──────┐
//	[call_llm] [call_tool] [call_llm] [transfer]
type InvocationContext struct {
	ArtifactService ArtifactService
	SessionService  SessionService
	MemoryService   MemoryService

	// InvocationID is the id of this invocation context. Readonly.
	InvocationID string

	// The branch of the invocation context.
	//
	// The format is like agent_1.agent_2.agent_3, where agent_1 is the parent of
	// agent_2, and agent_2 is the parent of agent_3.
	//
	// Branch is used when multiple sub-agents shouldn't see their peer agents'
	// conversation history.
	Branch string

	// The current agent of this invocation context. Readonly.
	Agent Agent

	// The user content that started this invocation. Readonly.
	UserContent *genai.Content

	// The current session of this invocation context. Readonly.
	Session Session

	// Whether to end this invocation.
	//
	// Set to true in callbacks or tools to terminate this invocation.
	EndInvocation bool

	// Configurations for runtime behavior of this invocation.
	RunConfig *RunConfig

	// A container to keep track of different kinds of costs incurred as a part
	// of this invocation.
	invocationCostManager *InvocationCostManager
}

// InvocationContextOption is a function that modifies the [InvocationContext].
type InvocationContextOption func(*InvocationContext)

// WithArtifactService sets the artifact service.
func WithArtifactService(svc ArtifactService) InvocationContextOption {
	return func(ictx *InvocationContext) {
		ictx.ArtifactService = svc
	}
}

// WithMemoryService sets the memory service.
func WithMemoryService(svc MemoryService) InvocationContextOption {
	return func(ictx *InvocationContext) {
		ictx.MemoryService = svc
	}
}

// WithBranch sets the branch.
func WithBranch(branch string) InvocationContextOption {
	return func(ictx *InvocationContext) {
		ictx.Branch = branch
	}
}

// WithInvocationID sets the invocation ID.
func WithInvocationID(id string) InvocationContextOption {
	return func(ictx *InvocationContext) {
		ictx.InvocationID = id
	}
}

// WithUserContent sets the user content that started this invocation.
func WithUserContent(content *genai.Content) InvocationContextOption {
	return func(ictx *InvocationContext) {
		ictx.UserContent = content
	}
}

// WithRunConfig sets the run config.
func WithRunConfig(runConfig *RunConfig) InvocationContextOption {
	return func(ictx *InvocationContext) {
		ictx.RunConfig = runConfig
	}
}

// NewInvocationContext creates a new [InvocationContext].
func NewInvocationContext(agent Agent, session Session, sessionSvc SessionService, opts ...InvocationContextOption) *InvocationContext {
	ictx := &InvocationContext{
		Agent:                 agent,
		Session:               session,
		SessionService:        sessionSvc,
		InvocationID:          NewInvocationContextID(),
		invocationCostManager: &InvocationCostManager{},
	}
	for _, opt := range opts {
		opt(ictx)
	}

	return ictx
}

// IncrementLLMCallCount tracks the number of llm calls made.
func (ictx *InvocationContext) IncrementLLMCallCount() error {
	return ictx.invocationCostManager.IncrementAndEnforceLLMCallsLimit(ictx.RunConfig)
}

// AppName returns the application name of the current session.
func (ictx *InvocationContext) AppName() string {
	return ictx.Session.AppName()
}

// UserID returns the user ID of the current session.
func (ictx *InvocationContext) UserID() string {
	return ictx.Session.UserID()
}

// NewInvocationContextID generates a new invocation context ID.
func NewInvocationContextID() string {
	return `e-` + uuid.NewString()
}
