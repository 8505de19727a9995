// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework for the lattice binary: a
// pflag-based command tree with struct-tag flag binding, categorized
// errors, the JSON result envelope shared by every command, and
// typo suggestions for unknown commands and flags.
package cli
