// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package project orchestrates a full analysis run over one project:
// key map refresh, artifact analysis, embedding, and the suggestion
// passes across every tracker, in dependency order (mini trackers,
// then the doc tracker, then the module-level main tracker). It is
// the engine behind `lattice analyze-project`.
//
// Runs are idempotent: a second run over an unchanged project
// short-circuits on the recorded state snapshot, and even a forced
// full pass produces byte-identical trackers.
package project
