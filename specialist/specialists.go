// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package specialist

import (
	"context"
	"net/http"

	"github.com/vana-ai/vana/agent"
	"github.com/vana-ai/vana/router"
	"github.com/vana-ai/vana/tool/tools"
)

// DefaultModel is the model used when [Config.Model] is empty.
const DefaultModel = "gemini-2.0-flash"

// Config carries the shared dependencies for building the agent tree.
type Config struct {
	// Model is the model name used by every agent.
	Model string

	// Searcher backs the data science vector tools. When nil the data
	// science agent is built without them.
	Searcher tools.SemanticSearcher

	// HTTPClient is used by the web page tool. Nil means
	// http.DefaultClient.
	HTTPClient *http.Client
}

func (c Config) model() string {
	if c.Model == "" {
		return DefaultModel
	}
	return c.Model
}

// NewResearchAgent builds the research specialist with search and web
// fetch tools.
func NewResearchAgent(ctx context.Context, cfg Config) (*agent.LLMAgent, error) {
	return agent.NewLLMAgent(ctx, router.SpecialistResearch,
		agent.WithModelString(cfg.model()),
		agent.WithDescription("Gathers information: web research, comparisons, documentation lookups, and summaries."),
		agent.WithInstruction(researchInstruction),
		agent.WithTools(
			tools.NewGoogleSearchTool(),
			tools.NewWebPageTool(cfg.HTTPClient).Tool(),
		),
	)
}

// NewSecurityAgent builds the security specialist.
func NewSecurityAgent(ctx context.Context, cfg Config) (*agent.LLMAgent, error) {
	return agent.NewLLMAgent(ctx, router.SpecialistSecurity,
		agent.WithModelString(cfg.model()),
		agent.WithDescription("Analyzes vulnerabilities, threat models, and secure design questions."),
		agent.WithInstruction(securityInstruction),
	)
}

// NewArchitectureAgent builds the software architecture specialist.
func NewArchitectureAgent(ctx context.Context, cfg Config) (*agent.LLMAgent, error) {
	return agent.NewLLMAgent(ctx, router.SpecialistArchitecture,
		agent.WithModelString(cfg.model()),
		agent.WithDescription("Advises on system design, service boundaries, API design, and scalability trade-offs."),
		agent.WithInstruction(architectureInstruction),
	)
}

// NewDevOpsAgent builds the DevOps specialist.
func NewDevOpsAgent(ctx context.Context, cfg Config) (*agent.LLMAgent, error) {
	return agent.NewLLMAgent(ctx, router.SpecialistDevOps,
		agent.WithModelString(cfg.model()),
		agent.WithDescription("Handles deployment, CI/CD, containers, infrastructure, and incident response."),
		agent.WithInstruction(devopsInstruction),
	)
}

// NewQAAgent builds the QA specialist.
func NewQAAgent(ctx context.Context, cfg Config) (*agent.LLMAgent, error) {
	return agent.NewLLMAgent(ctx, router.SpecialistQA,
		agent.WithModelString(cfg.model()),
		agent.WithDescription("Designs test strategies, writes tests, and debugs flaky test suites."),
		agent.WithInstruction(qaInstruction),
	)
}

// NewDataScienceAgent builds the data science specialist. When cfg.Searcher
// is set the agent carries the vector search and indexing tools.
func NewDataScienceAgent(ctx context.Context, cfg Config) (*agent.LLMAgent, error) {
	opts := []agent.LLMAgentOption{
		agent.WithModelString(cfg.model()),
		agent.WithDescription("Answers data analysis and retrieval questions over the indexed document corpus."),
		agent.WithInstruction(datascienceInstruction),
	}
	if cfg.Searcher != nil {
		opts = append(opts, agent.WithTools(
			tools.NewVectorSearchTool(cfg.Searcher),
			tools.NewIndexDocumentTool(cfg.Searcher),
		))
	}

	return agent.NewLLMAgent(ctx, router.SpecialistDataScience, opts...)
}
