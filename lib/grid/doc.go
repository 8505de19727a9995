// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package grid implements the run-length-encoded dependency grid and
// its character lattice.
//
// A grid is a square matrix of dependency characters over an ordered
// key list. The diagonal (a key against itself) is implied and never
// stored: each persisted row holds N-1 characters, run-length encoded
// with the count omitted for single-character runs. "n4<n" is three
// runs: four n's, one '<', one more 'n'.
//
// Characters form a specificity lattice: verified characters outrank
// strong suggestions, which outrank weak suggestions, which outrank
// the placeholder. Suggestion updates move cells strictly up the
// lattice and never replace a verified character; only explicit
// corrective writes may do that.
package grid
