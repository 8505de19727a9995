// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"
	"unicode"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// FuzzyResult holds the outcome of a fuzzy match: the fzf score
// (higher is better, zero means no match) and the rune positions in
// the text that matched, for highlight rendering.
type FuzzyResult struct {
	Score     int
	Positions []int
}

// FuzzyMatch runs fzf's FuzzyMatchV2 algorithm against a single text.
// Matching is case-insensitive: both the text and the pattern are
// lowercased before scoring, so "mcp" matches "MCP SERVER CONFIG".
//
// The slab is an optional scratch allocation reused across calls in a
// hot loop (one slab per filter pass); nil allocates per call.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{}
	}

	lowered := make([]rune, len(pattern))
	for i, r := range pattern {
		lowered[i] = unicode.ToLower(r)
	}
	chars := util.ToChars([]byte(strings.ToLower(text)))

	result, positions := algo.FuzzyMatchV2(true, false, true, &chars, lowered, true, slab)
	if result.Score <= 0 {
		return FuzzyResult{}
	}
	matched := []int{}
	if positions != nil {
		matched = *positions
	}
	return FuzzyResult{Score: result.Score, Positions: matched}
}

// NewSlab allocates a scratch slab sized for interactive filtering.
func NewSlab() *util.Slab {
	return util.MakeSlab(100*1024, 2048)
}
