// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

// Package vectorsearch wraps Vertex AI Vector Search for the data science
// tooling: embedding generation, datapoint upserts, and nearest-neighbor
// queries, plus index admin helpers.
package vectorsearch
