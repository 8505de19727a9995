// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trackerui

import (
	"github.com/bureau-foundation/lattice/lib/grid"
)

// Relation is one row of the detail pane: a related key, the path it
// resolves to, and the dependency characters in both directions.
// Outgoing is the cell on the selected key's row (selected → other);
// Incoming is the cell on its column (other → selected).
type Relation struct {
	Key      string
	Path     string
	Outgoing grid.Char
	Incoming grid.Char
}

// relationships extracts the non-placeholder relations of a key in
// the active tracker, in the tracker's key order. Pairs where both
// directions are still placeholder are omitted: an unexamined pair
// says nothing worth a row.
func (m *Model) relationships(key string) []Relation {
	active := m.Active()
	if !active.Has(key) {
		return nil
	}
	var relations []Relation
	for _, other := range active.Keys() {
		if other == key {
			continue
		}
		outgoing, err := active.Cell(key, other)
		if err != nil {
			continue
		}
		incoming, err := active.Cell(other, key)
		if err != nil {
			continue
		}
		if outgoing == grid.Placeholder && incoming == grid.Placeholder {
			continue
		}
		relations = append(relations, Relation{
			Key:      other,
			Path:     m.pathFor(other),
			Outgoing: outgoing,
			Incoming: incoming,
		})
	}
	return relations
}

// pathFor resolves a key to its path: the active tracker's own
// definitions first, then the global key map for foreign keys.
func (m *Model) pathFor(key string) string {
	if path, ok := m.Active().PathFor(key); ok {
		return path
	}
	if m.keyMap != nil {
		if path, ok := m.keyMap.PathFor(key); ok {
			return path
		}
	}
	return ""
}

// charDescription is the one-phrase reading of a dependency character
// from the row key's perspective.
func charDescription(ch grid.Char) string {
	switch ch {
	case grid.DependsOn:
		return "depends on"
	case grid.RequiredBy:
		return "required by"
	case grid.Mutual:
		return "mutual dependency"
	case grid.DocLink:
		return "documentation link"
	case grid.NoLink:
		return "verified independent"
	case grid.Strong:
		return "strong suggestion"
	case grid.Weak:
		return "weak suggestion"
	case grid.Placeholder:
		return "unexamined"
	default:
		return string(ch)
	}
}
