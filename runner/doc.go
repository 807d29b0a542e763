// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

// Package runner drives agent invocations: it resolves the session, appends
// the user's message, streams the agent's events, and commits completed
// events back to the session service.
package runner
