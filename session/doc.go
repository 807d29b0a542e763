// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

// Package session provides the session service implementations.
//
// [InMemoryService] keeps sessions in process memory and is meant for
// prototyping and tests. [VertexAIService] persists sessions in a Vertex AI
// Agent Engine deployment over its REST API.
package session
