// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands defines the lattice command tree: tracker
// generation and analysis, key and dependency queries, manual grid
// edits, merges, exports, the grid codec primitives, cache and
// configuration maintenance, and the interactive browser. Every
// non-interactive command speaks the {status, message, data?}
// envelope in --json mode.
package commands
