// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

// Package tools provides the tool implementations shipped with the
// orchestrator: function wrappers, agent-as-a-tool, memory access, web
// fetching, vector search, and the built-in Google Search passthrough.
package tools
