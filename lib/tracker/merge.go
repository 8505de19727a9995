// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tracker

import (
	"fmt"
	"sort"

	"github.com/bureau-foundation/lattice/lib/grid"
)

// Conflict is one cell where the two merged trackers hold characters
// of equal specificity that disagree.
type Conflict struct {
	Row, Col string
	A, B     grid.Char
}

// DefConflict is a key defined with different paths in the two
// trackers.
type DefConflict struct {
	Key          string
	PathA, PathB string
}

// ConflictError reports every disagreement found during a merge.
// When it is returned no merged tracker is produced; resolution is
// the operator's job, never automatic.
type ConflictError struct {
	NameA, NameB string
	Cells        []Conflict
	Defs         []DefConflict
}

func (e *ConflictError) Error() string {
	total := len(e.Cells) + len(e.Defs)
	var first string
	switch {
	case len(e.Defs) > 0:
		d := e.Defs[0]
		first = fmt.Sprintf("key %s defined as %q vs %q", d.Key, d.PathA, d.PathB)
	case len(e.Cells) > 0:
		c := e.Cells[0]
		first = fmt.Sprintf("cell (%s, %s) holds %q vs %q", c.Row, c.Col, c.A, c.B)
	}
	return fmt.Sprintf("tracker: merging %s with %s: %d conflicts (first: %s)", e.NameA, e.NameB, total, first)
}

// Merge produces a tracker holding the union of a's and b's keys and
// the lattice-merge of every shared cell. The more specific character
// always wins; opposite directed links of equal rank combine to
// mutual; any other equal-specificity disagreement is collected into
// a ConflictError and nothing is produced.
func Merge(a, b *Tracker, name string) (*Tracker, error) {
	if a.Kind != b.Kind {
		return nil, fmt.Errorf("tracker: cannot merge %s tracker %s with %s tracker %s", a.Kind, a.Name, b.Kind, b.Name)
	}

	conflict := &ConflictError{NameA: a.Name, NameB: b.Name}

	defs := copyDefs(a.defs)
	for k, p := range b.defs {
		if existing, ok := defs[k]; ok && existing != p {
			conflict.Defs = append(conflict.Defs, DefConflict{Key: k, PathA: existing, PathB: p})
			continue
		}
		defs[k] = p
	}

	type cellKey struct{ row, col string }
	cells := make(map[cellKey]grid.Char)
	collect := func(from *Tracker) error {
		return from.grid.Cells(func(row, col string, ch grid.Char) error {
			if ch == grid.Placeholder {
				return nil
			}
			key := cellKey{row, col}
			existing, ok := cells[key]
			if !ok {
				cells[key] = ch
				return nil
			}
			merged, err := grid.MergeChars(existing, ch)
			if err != nil {
				conflict.Cells = append(conflict.Cells, Conflict{Row: row, Col: col, A: existing, B: ch})
				return nil
			}
			cells[key] = merged
			return nil
		})
	}
	if err := collect(a); err != nil {
		return nil, err
	}
	if err := collect(b); err != nil {
		return nil, err
	}

	if len(conflict.Cells) > 0 || len(conflict.Defs) > 0 {
		sort.Slice(conflict.Cells, func(i, j int) bool {
			if conflict.Cells[i].Row != conflict.Cells[j].Row {
				return conflict.Cells[i].Row < conflict.Cells[j].Row
			}
			return conflict.Cells[i].Col < conflict.Cells[j].Col
		})
		sort.Slice(conflict.Defs, func(i, j int) bool {
			return conflict.Defs[i].Key < conflict.Defs[j].Key
		})
		return nil, conflict
	}

	merged, err := New(name, a.Kind, defs)
	if err != nil {
		return nil, err
	}
	for key, ch := range cells {
		if err := merged.SetCell(key.row, key.col, ch); err != nil {
			return nil, fmt.Errorf("tracker: merge: %w", err)
		}
	}
	return merged, nil
}
