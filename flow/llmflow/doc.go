// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

// Package llmflow implements the model-call loop shared by all LLM agents.
//
// A flow runs a pipeline of request processors to assemble the outgoing
// [types.LLMRequest], calls the model, runs the response processors, and
// dispatches any function calls the model requested. The loop repeats until
// the model yields a final response or control transfers to another agent.
//
// Two flow configurations exist:
//
//   - [SingleFlow] calls the model and tools, without agent transfer.
//   - [AutoFlow] extends [SingleFlow] with transfer between the agent, its
//     parent, and its peers.
package llmflow
