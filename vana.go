// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

// Package vana is a multi-agent orchestrator: a root agent delegates user
// queries to specialist agents via transfer_to_agent function calls, backed by
// session, state, and memory services on top of Gemini and Vertex AI.
package vana

// Version is the version of the VANA orchestrator.
var Version = "v0.1.0"
