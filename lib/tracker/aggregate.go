// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tracker

import (
	"fmt"
	"sort"

	"github.com/bureau-foundation/lattice/lib/grid"
	"github.com/bureau-foundation/lattice/lib/gridkey"
)

// Link is a directed key pair as seen from one grid cell: Row holds
// the character describing its relation to Col.
type Link struct {
	Row string `json:"row"`
	Col string `json:"col"`
}

// LinkInfo is the priority-resolved observation of one directed link
// across several trackers.
type LinkInfo struct {
	Char grid.Char `json:"char"`
	// Origins names the trackers whose character survived priority
	// resolution, sorted and deduplicated.
	Origins []string `json:"origins"`
}

// Aggregate folds several trackers into one directed link map for
// read-only views (visualization, dependency listings). Placeholders
// contribute nothing. Per link the most specific character wins and
// resets the origin set; equal-specificity observations merge through
// the character lattice, with opposite directed links fusing to
// mutual. An unfusable tie keeps the earlier character, so callers
// pass trackers in a deterministic order.
//
// Unlike Merge this never fails on disagreement: the result is a
// view, not a persisted tracker.
func Aggregate(trackers []*Tracker) (map[Link]LinkInfo, error) {
	links := make(map[Link]LinkInfo)
	for _, t := range trackers {
		err := t.grid.Cells(func(row, col string, ch grid.Char) error {
			if ch == grid.Placeholder {
				return nil
			}
			l := Link{Row: row, Col: col}
			existing, ok := links[l]
			if !ok {
				links[l] = LinkInfo{Char: ch, Origins: []string{t.Name}}
				return nil
			}
			switch {
			case ch.Specificity() > existing.Char.Specificity():
				links[l] = LinkInfo{Char: ch, Origins: []string{t.Name}}
			case ch.Specificity() == existing.Char.Specificity():
				merged, err := grid.MergeChars(existing.Char, ch)
				if err != nil {
					merged = existing.Char
				}
				existing.Char = merged
				existing.Origins = addOrigin(existing.Origins, t.Name)
				links[l] = existing
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("tracker: aggregate %s: %w", t.Name, err)
		}
	}
	return links, nil
}

// SortedLinks returns the map's links in hierarchical row-major
// order.
func SortedLinks(links map[Link]LinkInfo) []Link {
	out := make([]Link, 0, len(links))
	for l := range links {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := gridkey.CompareStrings(out[i].Row, out[j].Row); c != 0 {
			return c < 0
		}
		return gridkey.CompareStrings(out[i].Col, out[j].Col) < 0
	})
	return out
}

func addOrigin(origins []string, name string) []string {
	i := sort.SearchStrings(origins, name)
	if i < len(origins) && origins[i] == name {
		return origins
	}
	origins = append(origins, "")
	copy(origins[i+1:], origins[i:])
	origins[i] = name
	return origins
}
