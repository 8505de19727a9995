// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package keymap maintains the global key map: the authoritative
// assignment of hierarchical keys to project paths.
//
// Keys are assigned deterministically per tracked root. A root is a
// tier-1 container and always takes letter A of its own sequence;
// files get 1-based indexes, immediate subdirectories get lowercase
// letters, and directories two levels below a container are promoted
// to the next tier with the root's next uppercase letter. Because
// every root runs the same sequences, distinct roots can produce the
// same base key for different paths; the map resolves this with
// global instance suffixes: at the first collision every claimant of
// the base receives a #N suffix, numbered by first registration, and
// the suffix becomes part of the canonical key everywhere.
//
// The map is an explicitly constructed service: commands load it at
// start, mutate it, and persist it atomically at the end. Nothing in
// this package is process-global.
package keymap
