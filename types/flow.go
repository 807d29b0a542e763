// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"context"
	"iter"
)

// Flow represents the basic interface that all flows must implement.
type Flow interface {
	// Run runs the flow with the given invocation context and returns a sequence of events.
	Run(ctx context.Context, ictx *InvocationContext) iter.Seq2[*Event, error]
}

// LLMRequestProcessor mutates an outgoing [LLMRequest] before the model call.
//
// A processor may yield events, e.g. to record state deltas it produced.
type LLMRequestProcessor interface {
	Run(ctx context.Context, ictx *InvocationContext, request *LLMRequest) iter.Seq2[*Event, error]
}

// LLMResponseProcessor inspects or mutates an [LLMResponse] after the model call.
type LLMResponseProcessor interface {
	Run(ctx context.Context, ictx *InvocationContext, response *LLMResponse) iter.Seq2[*Event, error]
}
