// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package trackerui implements the interactive tracker browser: a
// bubbletea TUI with a fuzzy-filterable key list on the left and a
// dependency detail pane on the right.
//
// The browser is read-only. It loads the project's trackers and the
// global key map once at startup and navigates them in memory; edits
// go through the command layer (add-dependency, set-char) and show up
// on the next launch.
package trackerui
