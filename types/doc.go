// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

// Package types defines the core contracts of the VANA orchestrator.
//
// It contains the [Agent] and [LLMAgent] interfaces together with the
// [BaseAgent] scaffolding, the [Event] stream model that agents yield while
// running, the delta-aware session [State] with its app:/user:/temp: key
// scoping, and the service interfaces ([SessionService], [MemoryService],
// [ArtifactService]) that the orchestrator is wired with.
//
// Agents communicate exclusively through events. An invocation starts with a
// user message and ends with a final response; inside it, the active agent may
// call the model, execute tools, and transfer control to another agent in the
// tree via [EventActions.TransferToAgent]. All of that is observable as an
// iter.Seq2[*Event, error] stream.
package types
