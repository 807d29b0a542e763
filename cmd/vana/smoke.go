// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// smokeCmd sends a handful of representative queries to a running
// deployment and checks that each one reaches the expected specialist.
type smokeCmd struct {
	URL  string `help:"Base URL of the deployment." default:"http://localhost:8080"`
	App  string `help:"App name registered on the server." default:"vana"`
	User string `help:"User ID used for the probe sessions." default:"smoke"`

	Timeout time.Duration `help:"Per-request timeout." default:"120s"`
}

type smokeProbe struct {
	name   string
	query  string
	expect string
}

var smokeProbes = []smokeProbe{
	{"research", "Find the latest news about the Go programming language", "research"},
	{"security", "Is this login form vulnerable to sql injection?", "security"},
	{"architecture", "Should we split this monolith into microservices?", "architecture"},
	{"devops", "How do I deploy this service to kubernetes?", "devops"},
	{"qa", "Write a unit test for the session store", "qa"},
	{"datascience", "Run a semantic search over the indexed design docs", "datascience"},
}

func (c *smokeCmd) Run() error {
	client := &http.Client{Timeout: c.Timeout}

	failures := 0
	for _, probe := range smokeProbes {
		if err := c.runProbe(client, probe); err != nil {
			failures++
			fmt.Printf("FAIL %-14s %v\n", probe.name, err)
			continue
		}
		fmt.Printf("PASS %-14s\n", probe.name)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d probes failed", failures, len(smokeProbes))
	}
	fmt.Printf("all %d probes passed\n", len(smokeProbes))
	return nil
}

func (c *smokeCmd) runProbe(client *http.Client, probe smokeProbe) error {
	sessionID, err := c.createSession(client)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	body, err := sonic.ConfigFastest.Marshal(map[string]any{
		"appName":   c.App,
		"userId":    c.User,
		"sessionId": sessionID,
		"newMessage": map[string]any{
			"role":  "user",
			"parts": []map[string]any{{"text": probe.query}},
		},
	})
	if err != nil {
		return err
	}

	resp, err := client.Post(c.URL+"/run", "application/json", strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("/run returned %d: %s", resp.StatusCode, data)
	}
	if !strings.Contains(string(data), probe.expect) {
		return fmt.Errorf("response does not mention %q", probe.expect)
	}
	return nil
}

func (c *smokeCmd) createSession(client *http.Client) (string, error) {
	url := fmt.Sprintf("%s/apps/%s/users/%s/sessions", c.URL, c.App, c.User)
	resp, err := client.Post(url, "application/json", http.NoBody)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, data)
	}

	var sess struct {
		ID string `json:"id"`
	}
	if err := sonic.ConfigFastest.Unmarshal(data, &sess); err != nil {
		return "", fmt.Errorf("decode session: %w", err)
	}
	return sess.ID, nil
}
