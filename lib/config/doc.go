// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the two configuration files of a lattice
// project.
//
// The project manifest, lattice.jsonc at the project root, is
// human-authored and declares what the project is: tracked code and
// doc roots plus exclusion lists. It allows comments and trailing
// commas and is never rewritten by tooling.
//
// The settings file, lattice.yaml inside the memory directory, is the
// mutable key-value store behind update-config and reset-config:
// paths, model names, similarity thresholds, and compute limits.
// Missing keys take defaults, so an absent file is a valid (default)
// configuration.
package config
