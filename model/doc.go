// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

// Package model provides the language model backends used by agents.
//
// Two backends are implemented: [Gemini] over the google.golang.org/genai
// client (Gemini API or Vertex AI, selected by environment) and [Claude]
// over the official Anthropic SDK. Backends are resolved by model name
// through the [LLMRegistry], so agents can be configured with a plain
// model string such as "gemini-2.0-flash" or "claude-3-5-haiku-latest".
package model
