// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trackerui

import (
	"sort"

	"github.com/bureau-foundation/lattice/lib/tui"
)

// Item is one row in the key list: a tracker key and the path it
// resolves to.
type Item struct {
	Key  string
	Path string
}

// visibleItem is an Item that passed the current filter, carrying the
// match score and the matched rune positions within its display text
// for highlighting.
type visibleItem struct {
	item      Item
	score     int
	positions []int
}

// FilterModel implements fzf-style fuzzy matching over the key list.
// The query matches against "key  path" as one string, so "2Ba cod"
// narrows by key prefix and path fragment together.
type FilterModel struct {
	// Input is the current filter query text.
	Input string

	// Active is true when the filter input has keyboard focus
	// (the user pressed / to start typing).
	Active bool
}

// searchText is the string the filter matches against for an item.
// Key first so short queries bias toward key matches.
func searchText(item Item) string {
	return item.Key + "  " + item.Path
}

// Apply filters and ranks items against the current query. An empty
// query returns every item in input order with no highlights. Results
// are ordered by descending fzf score; ties keep input order, which is
// the tracker's key order.
func (filter *FilterModel) Apply(items []Item) []visibleItem {
	if filter.Input == "" {
		visible := make([]visibleItem, len(items))
		for i, item := range items {
			visible[i] = visibleItem{item: item}
		}
		return visible
	}

	pattern := []rune(filter.Input)
	slab := tui.NewSlab()
	visible := make([]visibleItem, 0, len(items))
	for _, item := range items {
		result := tui.FuzzyMatch(searchText(item), pattern, slab)
		if result.Score <= 0 {
			continue
		}
		visible = append(visible, visibleItem{
			item:      item,
			score:     result.Score,
			positions: result.Positions,
		})
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].score > visible[j].score
	})
	return visible
}
