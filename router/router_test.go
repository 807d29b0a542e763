// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package router

import (
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRouteScoresByKeywordCountAndWeight(t *testing.T) {
	r := New("fallback",
		Rule{Specialist: "light", Keywords: []string{"alpha", "beta"}, Weight: 1},
		Rule{Specialist: "heavy", Keywords: []string{"gamma"}, Weight: 3},
	)

	// Two light hits (score 2) lose to one heavy hit (score 3).
	d := r.Route("alpha beta gamma")
	if d.Specialist != "heavy" {
		t.Errorf("specialist = %q, want heavy", d.Specialist)
	}
	if diff := cmp.Diff([]string{"gamma"}, d.Matched); diff != "" {
		t.Errorf("matched mismatch (-want +got):\n%s", diff)
	}
}

func TestRouteTieGoesToEarlierRule(t *testing.T) {
	r := New("fallback",
		Rule{Specialist: "first", Keywords: []string{"shared"}},
		Rule{Specialist: "second", Keywords: []string{"shared"}},
	)

	if d := r.Route("a shared term"); d.Specialist != "first" {
		t.Errorf("specialist = %q, want the earlier rule on a tie", d.Specialist)
	}
}

func TestRouteEmptyQueryFallsBack(t *testing.T) {
	r := New("fallback", Rule{Specialist: "other", Keywords: []string{"x"}})

	for _, query := range []string{"", "   ", "\n\t"} {
		d := r.Route(query)
		if d.Specialist != "fallback" {
			t.Errorf("Route(%q).Specialist = %q, want fallback", query, d.Specialist)
		}
		if d.Confidence != 0 {
			t.Errorf("Route(%q).Confidence = %v, want 0", query, d.Confidence)
		}
	}
}

func TestRouteNoMatchFallsBack(t *testing.T) {
	r := New("fallback", Rule{Specialist: "other", Keywords: []string{"nothing"}})

	d := r.Route("completely unrelated question")
	if d.Specialist != "fallback" || d.Confidence != 0 {
		t.Errorf("decision = %+v, want fallback with zero confidence", d)
	}
}

func TestRouteMatchingIsCaseInsensitive(t *testing.T) {
	r := New("fallback", Rule{Specialist: "security", Keywords: []string{"cve"}})

	if d := r.Route("Is CVE-2024-1234 exploitable?"); d.Specialist != "security" {
		t.Errorf("specialist = %q, want security", d.Specialist)
	}
}

func TestRoutePatternsMatch(t *testing.T) {
	r := New("fallback", Rule{
		Specialist: "qa",
		Patterns:   []*regexp.Regexp{regexp.MustCompile(`\btdd\b`)},
	})

	if d := r.Route("should we use TDD here"); d.Specialist != "qa" {
		t.Errorf("specialist = %q, want qa", d.Specialist)
	}
	// \b guards against substring hits.
	if d := r.Route("studded tires"); d.Specialist != "fallback" {
		t.Errorf("specialist = %q, want fallback for a substring-only hit", d.Specialist)
	}
}

func TestConfidenceBounds(t *testing.T) {
	r := New("fallback", Rule{
		Specialist: "devops",
		Keywords:   []string{"deploy", "docker", "pipeline", "terraform"},
		Weight:     2,
	})

	single := r.Route("how do I deploy")
	many := r.Route("deploy the docker pipeline with terraform")

	if single.Confidence <= 0 || single.Confidence >= 1 {
		t.Errorf("single-hit confidence = %v, want within (0, 1)", single.Confidence)
	}
	if many.Confidence <= single.Confidence {
		t.Errorf("more hits should raise confidence: %v <= %v", many.Confidence, single.Confidence)
	}
	if many.Confidence >= 1 {
		t.Errorf("confidence = %v, must stay below 1", many.Confidence)
	}
}

func TestDefaultRulesRouteRepresentativeQueries(t *testing.T) {
	r := NewDefault()

	tests := map[string]string{
		"Is this endpoint vulnerable to SQL injection?":  SpecialistSecurity,
		"Deploy the service to Cloud Run with a rollback plan": SpecialistDevOps,
		"Write unit tests for the parser":                SpecialistQA,
		"Run a vector search over the embeddings":        SpecialistDataScience,
		"Should we split the monolith into microservices?": SpecialistArchitecture,
		"What is the latest release of Go?":              SpecialistResearch,
	}

	for query, want := range tests {
		if d := r.Route(query); d.Specialist != want {
			t.Errorf("Route(%q) = %q (%s), want %q", query, d.Specialist, d.Reason, want)
		}
	}
}
