// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestFromContextReturnsCarriedLogger(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	ctx := NewContext(context.Background(), logger)

	if got := FromContext(ctx); got != logger {
		t.Errorf("FromContext returned %v, want the carried logger", got)
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if got := FromContext(context.Background()); got != slog.Default() {
		t.Errorf("FromContext returned %v, want slog.Default()", got)
	}
}
