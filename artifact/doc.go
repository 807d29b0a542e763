// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

// Package artifact stores versioned binary artifacts per app, user, and
// session.
//
// Artifacts are [genai.Part] values identified by a filename. Saving the
// same filename again creates a new version. Filenames with the "user:"
// prefix are scoped to the user rather than to a single session, so they
// are visible from every session of that user.
//
// Two implementations are provided: [InMemoryService] for tests and
// prototyping, and [GCSService] backed by a Google Cloud Storage bucket.
package artifact
