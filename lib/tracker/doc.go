// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tracker reads, mutates, and writes tracker files.
//
// A tracker is a key-definition block, a column header, and one
// compressed grid row per key:
//
//	--- Keys Defined in doc_tracker ---
//	1A: docs
//	1A1: docs/setup.md
//	--- End of Key Definitions ---
//	X 1A 1A1
//	1A = p
//	1A1 = p
//
// Definitions, header, and rows carry the same keys in the same
// hierarchical order; any disagreement marks the file corrupt and the
// parser rejects it rather than repairing silently. Three kinds of
// tracker exist (main, doc, mini) which differ only in the universe
// of keys they may contain.
package tracker
