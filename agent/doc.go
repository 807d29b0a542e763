// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

// Package agent provides the concrete agent implementations of the
// orchestrator: the LLM-backed [LLMAgent] and the workflow agents
// ([SequentialAgent], [ParallelAgent], [LoopAgent]).
package agent
