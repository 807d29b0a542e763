// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"google.golang.org/genai"

	"github.com/vana-ai/vana/session"
	"github.com/vana-ai/vana/types"
)

// UserAuthor is the author recorded on events carrying end-user input.
const UserAuthor = "user"

// Runner composes an agent tree with the services an invocation needs.
type Runner struct {
	appName string
	agent   types.Agent

	sessionService  types.SessionService
	memoryService   types.MemoryService
	artifactService types.ArtifactService

	logger *slog.Logger
}

// Option configures a [Runner].
type Option func(*Runner)

// WithSessionService sets the session service. The default is an in-memory
// service.
func WithSessionService(svc types.SessionService) Option {
	return func(r *Runner) {
		r.sessionService = svc
	}
}

// WithMemoryService sets the memory service. When set, completed sessions
// are ingested into memory after the final response.
func WithMemoryService(svc types.MemoryService) Option {
	return func(r *Runner) {
		r.memoryService = svc
	}
}

// WithArtifactService sets the artifact service.
func WithArtifactService(svc types.ArtifactService) Option {
	return func(r *Runner) {
		r.artifactService = svc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a new [Runner] for the given app and root agent.
func NewRunner(appName string, agent types.Agent, opts ...Option) (*Runner, error) {
	if appName == "" {
		return nil, errors.New("appName is required")
	}
	if agent == nil {
		return nil, errors.New("agent is required")
	}

	r := &Runner{
		appName: appName,
		agent:   agent,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.sessionService == nil {
		r.sessionService = session.NewInMemoryService()
	}

	return r, nil
}

// AppName returns the app name this runner serves.
func (r *Runner) AppName() string {
	return r.appName
}

// Agent returns the root agent.
func (r *Runner) Agent() types.Agent {
	return r.agent
}

// SessionService returns the session service backing this runner.
func (r *Runner) SessionService() types.SessionService {
	return r.sessionService
}

// Run executes one invocation: it appends newMessage to the session as a
// user event, runs the agent tree, and yields the resulting events. Events
// that are not partial streaming chunks are committed to the session before
// they are yielded.
func (r *Runner) Run(ctx context.Context, userID, sessionID string, newMessage *genai.Content, runConfig *types.RunConfig) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		sess, err := r.sessionService.GetSession(ctx, r.appName, userID, sessionID, nil)
		if err != nil {
			yield(nil, fmt.Errorf("resolve session %s: %w", sessionID, err))
			return
		}

		agentToRun := r.findAgentToRun(sess)
		ictx := types.NewInvocationContext(agentToRun, sess, r.sessionService,
			types.WithUserContent(newMessage),
			types.WithMemoryService(r.memoryService),
			types.WithArtifactService(r.artifactService),
			types.WithRunConfig(runConfig),
		)

		if newMessage != nil {
			userEvent := types.NewEvent().
				WithInvocationID(ictx.InvocationID).
				WithAuthor(UserAuthor).
				WithContent(newMessage)
			if _, err := r.sessionService.AppendEvent(ctx, sess, userEvent); err != nil {
				yield(nil, fmt.Errorf("append user event: %w", err))
				return
			}
		}

		var last *types.Event
		for event, err := range agentToRun.Run(ctx, ictx) {
			if err != nil {
				yield(nil, err)
				return
			}

			if !event.Partial {
				if _, err := r.sessionService.AppendEvent(ctx, sess, event); err != nil {
					yield(nil, fmt.Errorf("commit event %s: %w", event.ID, err))
					return
				}
			}

			last = event
			if !yield(event, nil) {
				return
			}
		}

		if r.memoryService != nil && last != nil && last.IsFinalResponse() {
			if err := r.memoryService.AddSessionToMemory(ctx, sess); err != nil {
				r.logger.WarnContext(ctx, "add session to memory", slog.String("session", sess.ID()), slog.Any("error", err))
			}
		}
	}
}

// findAgentToRun picks the agent that should continue the conversation.
//
// The author of the most recent non-user event resumes the invocation when
// it is still reachable through LLM-controlled transfer. Otherwise the root
// agent starts over.
func (r *Runner) findAgentToRun(sess types.Session) types.Agent {
	events := sess.Events()
	for i := len(events) - 1; i >= 0; i-- {
		author := events[i].Author
		if author == "" || author == UserAuthor {
			continue
		}
		if author == r.agent.Name() {
			return r.agent
		}

		candidate := r.agent.FindSubAgent(author)
		if candidate == nil {
			r.logger.Warn("event author not found in agent tree", slog.String("author", author))
			continue
		}
		if isTransferableAcrossAgentTree(candidate) {
			return candidate
		}
	}

	return r.agent
}

// isTransferableAcrossAgentTree reports whether the agent and all its
// ancestors allow transferring back up the tree. Workflow agents in the
// chain pin the conversation to the root.
func isTransferableAcrossAgentTree(agent types.Agent) bool {
	for a := agent; a != nil; a = a.ParentAgent() {
		llmAgent, ok := a.AsLLMAgent()
		if !ok {
			return false
		}
		if llmAgent.DisallowTransferToParent() {
			return false
		}
	}
	return true
}
