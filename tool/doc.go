// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

// Package tool provides the base type shared by all tool implementations.
//
// A tool exposes a function declaration to the model and executes the
// requested call when the model asks for it. Tools without a declaration only
// mutate the outgoing request, e.g. the built-in Google Search passthrough or
// the memory preloader.
package tool
