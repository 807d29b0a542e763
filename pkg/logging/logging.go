// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging propagates a request-scoped [*slog.Logger] through
// [context.Context].
//
// The server middleware seeds the context for each request and the services
// below it retrieve the logger with [FromContext].
package logging

import (
	"context"
	"log/slog"
)

// contextKey is how we find [*slog.Logger] in a [context.Context].
type contextKey struct{}

// NewContext returns a new [context.Context], derived from ctx, which carries
// logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the [*slog.Logger] carried by ctx, or the process-wide
// default logger when ctx carries none.
func FromContext(ctx context.Context) *slog.Logger {
	if v := ctx.Value(contextKey{}); v != nil {
		return v.(*slog.Logger)
	}
	return slog.Default()
}
