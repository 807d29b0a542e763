// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

// Package memory provides the long-term memory services.
//
// [InMemoryService] matches past session text by keyword and is meant for
// prototyping and tests. [VertexAIRagService] stores session transcripts in
// a Vertex AI RAG corpus and retrieves them by semantic similarity.
package memory
