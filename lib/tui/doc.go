// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides shared terminal user interface components for
// Lattice's interactive viewers. Built on bubbletea (Elm architecture),
// these components handle the common chrome: the color theme, fuzzy
// filter matching, and scrollbar rendering.
//
// Domain-specific viewers (the tracker browser) import this package
// for consistent look and behavior. Each viewer owns its own data
// source, layout, and domain-specific rendering.
package tui
