// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

// Package router implements the deterministic query router.
//
// The router scores a user query against an ordered rule list with keyword
// and regex heuristics and produces a [Decision] naming the specialist that
// should handle it. It runs before the model call; the decision is recorded
// in session state and surfaced to the orchestrator as a routing hint, so
// the final delegation choice still belongs to the model.
package router

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule scores a query for one specialist. Keywords match as substrings of
// the lowercased query; patterns match as-is. Each hit contributes Weight
// to the rule's score.
type Rule struct {
	// Specialist is the agent name this rule routes to.
	Specialist string

	// Keywords are lowercase substrings that indicate this specialist.
	Keywords []string

	// Patterns are optional regexes for matches keywords cannot express.
	Patterns []*regexp.Regexp

	// Weight is the score contributed per hit. Zero means 1.
	Weight float64
}

// Decision is the routing outcome for one query.
type Decision struct {
	// Specialist is the chosen agent name.
	Specialist string `json:"specialist"`

	// Confidence is in [0, 1]. Zero means the fallback was chosen without
	// any signal.
	Confidence float64 `json:"confidence"`

	// Matched lists the keywords and patterns that fired.
	Matched []string `json:"matched,omitempty"`

	// Reason is a short human-readable explanation.
	Reason string `json:"reason"`
}

// Router routes queries to specialists. Rules are evaluated in order; the
// highest score wins and ties go to the earlier rule.
type Router struct {
	rules    []Rule
	fallback string
}

// New creates a router with the given fallback specialist and rules.
func New(fallback string, rules ...Rule) *Router {
	return &Router{
		rules:    rules,
		fallback: fallback,
	}
}

// Route scores the query against all rules and returns a decision. An empty
// or whitespace query routes to the fallback with zero confidence.
func (r *Router) Route(query string) *Decision {
	query = strings.TrimSpace(query)
	if query == "" {
		return &Decision{
			Specialist: r.fallback,
			Reason:     "empty query, using fallback",
		}
	}

	lowered := strings.ToLower(query)

	var (
		best        *Rule
		bestScore   float64
		bestMatched []string
	)
	for i := range r.rules {
		rule := &r.rules[i]
		score, matched := rule.score(lowered)
		if score > bestScore {
			best = rule
			bestScore = score
			bestMatched = matched
		}
	}

	if best == nil {
		return &Decision{
			Specialist: r.fallback,
			Reason:     "no rule matched, using fallback",
		}
	}

	return &Decision{
		Specialist: best.Specialist,
		Confidence: confidence(bestScore),
		Matched:    bestMatched,
		Reason: fmt.Sprintf("matched %s on %s",
			best.Specialist, strings.Join(bestMatched, ", ")),
	}
}

// score returns the rule's score for the lowercased query and the hits that
// produced it.
func (r *Rule) score(lowered string) (float64, []string) {
	weight := r.Weight
	if weight == 0 {
		weight = 1
	}

	var (
		score   float64
		matched []string
	)
	for _, keyword := range r.Keywords {
		if strings.Contains(lowered, keyword) {
			score += weight
			matched = append(matched, keyword)
		}
	}
	for _, pattern := range r.Patterns {
		if pattern.MatchString(lowered) {
			score += weight
			matched = append(matched, pattern.String())
		}
	}

	return score, matched
}

// confidence maps a raw score onto [0, 1), rising with each additional hit.
func confidence(score float64) float64 {
	if score <= 0 {
		return 0
	}
	return score / (score + 1)
}
