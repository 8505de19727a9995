// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package gridkey defines the hierarchical key grammar used to address
// tracked artifacts in lattice trackers.
//
// A key packs a filesystem position into a short string:
//
//	<tier><dir>[<sub>][<index>][#<instance>]
//
//   - tier: positive integer, the promotion depth of the containing
//     directory (roots are tier 1; directories nested two levels below
//     a container are promoted to the next tier).
//   - dir: one uppercase letter addressing the container within its
//     root's per-tier sequence.
//   - sub: optional lowercase letter addressing an immediate
//     subdirectory of the container.
//   - index: optional positive integer addressing a file within the
//     container (absent for directory keys).
//   - instance: optional global-instance suffix (#N) applied when two
//     distinct paths across all roots computed the same base key.
//
// Examples: "1A" (a root), "1A2" (second file in a root), "1Aa"
// (subdirectory), "2Ba3" (file in a promoted directory's subdirectory),
// "2C1#2" (second global instance of base "2C1").
//
// The package is pure key algebra: parsing, formatting, validation, and
// the two orderings used elsewhere (hierarchical order for grid axes,
// natural order for display). Key assignment to actual paths lives in
// lib/keymap.
package gridkey
