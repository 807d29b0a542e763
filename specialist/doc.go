// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

// Package specialist assembles the VANA agent tree: one factory per
// specialist agent and [NewRootAgent] for the orchestrator that delegates
// to them.
package specialist
