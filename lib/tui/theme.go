// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/lattice/lib/grid"
)

// Theme defines the color palette for Lattice's terminal UIs. All
// colors use lipgloss ANSI 256-color codes for broad terminal
// compatibility.
//
// The fields cover both universal chrome (text, selection, borders)
// and the semantic category that recurs across views: the dependency
// character. Verified relationships get saturated colors, suggestions
// get progressively dimmer ones, so a grid row reads at a glance.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Dependency character colors.
	CharDependsOn   lipgloss.Color
	CharRequiredBy  lipgloss.Color
	CharMutual      lipgloss.Color
	CharDocLink     lipgloss.Color
	CharNoLink      lipgloss.Color
	CharStrong      lipgloss.Color
	CharWeak        lipgloss.Color
	CharPlaceholder lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	AccentColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Search and filter match highlighting.
	SearchHighlightBackground lipgloss.Color
}

// CharColor returns the color for a dependency character. Unknown
// characters return FaintText.
func (theme Theme) CharColor(ch grid.Char) lipgloss.Color {
	switch ch {
	case grid.DependsOn:
		return theme.CharDependsOn
	case grid.RequiredBy:
		return theme.CharRequiredBy
	case grid.Mutual:
		return theme.CharMutual
	case grid.DocLink:
		return theme.CharDocLink
	case grid.NoLink:
		return theme.CharNoLink
	case grid.Strong:
		return theme.CharStrong
	case grid.Weak:
		return theme.CharWeak
	case grid.Placeholder:
		return theme.CharPlaceholder
	default:
		return theme.FaintText
	}
}

// DefaultTheme is the built-in dark-terminal color scheme. Designed for
// 256-color terminals with a dark background (the common case for
// development environments and tmux sessions).
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	CharDependsOn:   lipgloss.Color("114"), // green
	CharRequiredBy:  lipgloss.Color("75"),  // blue
	CharMutual:      lipgloss.Color("208"), // orange
	CharDocLink:     lipgloss.Color("141"), // light purple
	CharNoLink:      lipgloss.Color("240"), // dim gray
	CharStrong:      lipgloss.Color("220"), // amber
	CharWeak:        lipgloss.Color("245"), // gray
	CharPlaceholder: lipgloss.Color("238"), // near-invisible

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	AccentColor:      lipgloss.Color("220"),
	HelpText:         lipgloss.Color("241"),

	SearchHighlightBackground: lipgloss.Color("22"), // dark green tint
}
