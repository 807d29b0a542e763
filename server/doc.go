// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the runner and session services over an HTTP API:
// session CRUD under /apps/{app}/users/{user}/sessions plus /run and
// /run_sse for invocations.
package server
