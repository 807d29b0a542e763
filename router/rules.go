// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package router

import "regexp"

// Specialist agent names the default rules route to. They match the agent
// names registered by the specialist package.
const (
	SpecialistResearch     = "research"
	SpecialistSecurity     = "security"
	SpecialistArchitecture = "architecture"
	SpecialistDevOps       = "devops"
	SpecialistQA           = "qa"
	SpecialistDataScience  = "datascience"
)

// DefaultFallback is the specialist used when no rule matches.
const DefaultFallback = SpecialistResearch

// DefaultRules returns the built-in routing rules, in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Specialist: SpecialistSecurity,
			Keywords: []string{
				"security", "vulnerability", "vulnerabilities", "exploit",
				"cve", "owasp", "authentication", "authorization", "encrypt",
				"penetration", "threat model", "xss", "sql injection",
			},
			Weight: 2,
		},
		{
			Specialist: SpecialistDevOps,
			Keywords: []string{
				"deploy", "deployment", "kubernetes", "docker", "container",
				"ci/cd", "pipeline", "terraform", "rollback", "cloud run",
				"monitoring", "alerting", "infrastructure",
			},
			Weight: 2,
		},
		{
			Specialist: SpecialistQA,
			Keywords: []string{
				"test", "testing", "unit test", "integration test", "qa",
				"coverage", "regression", "flaky", "assertion", "mock",
			},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\btdd\b`),
			},
			Weight: 2,
		},
		{
			Specialist: SpecialistDataScience,
			Keywords: []string{
				"data", "dataset", "embedding", "embeddings", "model training",
				"statistics", "analysis", "pandas", "vector search", "semantic",
				"machine learning", "ml ",
			},
			Weight: 2,
		},
		{
			Specialist: SpecialistArchitecture,
			Keywords: []string{
				"architecture", "design pattern", "microservice", "monolith",
				"scalability", "api design", "schema", "system design",
				"tradeoff", "trade-off", "refactor",
			},
			Weight: 2,
		},
		{
			Specialist: SpecialistResearch,
			Keywords: []string{
				"research", "find", "search", "look up", "latest", "news",
				"compare", "summarize", "what is", "how does",
			},
			Weight: 1,
		},
	}
}

// NewDefault creates a router with the built-in rules and fallback.
func NewDefault() *Router {
	return New(DefaultFallback, DefaultRules()...)
}
