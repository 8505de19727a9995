// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tracker

import (
	"fmt"
	"strings"

	"github.com/bureau-foundation/lattice/lib/grid"
)

// Kind classifies which universe of keys a tracker may contain.
type Kind string

const (
	// Main tracks module-level dependencies between code
	// directories.
	Main Kind = "main"
	// Doc tracks documentation artifacts.
	Doc Kind = "doc"
	// Mini tracks files and sub-file concepts within one module.
	Mini Kind = "mini"
)

// Tracker is the typed model of one tracker file.
type Tracker struct {
	// Name is the identity recorded in the definitions header,
	// conventionally the file base name without extension.
	Name string
	// Kind classifies the tracker. It is derived from the file
	// naming convention, not stored in the file.
	Kind Kind
	// Path is the tracker's location on disk. Empty until saved.
	Path string

	defs map[string]string
	grid *grid.Grid
}

// New builds an empty tracker over the given key definitions (key to
// project-relative path). Every cell starts as the placeholder.
func New(name string, kind Kind, defs map[string]string) (*Tracker, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(defs))
	for k, p := range defs {
		if err := validateDefPath(k, p); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	g, err := grid.New(keys)
	if err != nil {
		return nil, fmt.Errorf("tracker %s: %w", name, err)
	}
	return &Tracker{Name: name, Kind: kind, defs: copyDefs(defs), grid: g}, nil
}

// Keys returns the tracker's keys in grid order.
func (t *Tracker) Keys() []string {
	return t.grid.Keys()
}

// Len returns the number of keys.
func (t *Tracker) Len() int {
	return t.grid.Len()
}

// Has reports whether the tracker contains key.
func (t *Tracker) Has(key string) bool {
	return t.grid.Has(key)
}

// PathFor returns the defined path of a key.
func (t *Tracker) PathFor(key string) (string, bool) {
	p, ok := t.defs[key]
	return p, ok
}

// Definitions returns a copy of the key-to-path map.
func (t *Tracker) Definitions() map[string]string {
	return copyDefs(t.defs)
}

// Grid exposes the underlying grid for cell reads and lattice
// updates. Key membership must be changed through the tracker so the
// definitions stay in step.
func (t *Tracker) Grid() *grid.Grid {
	return t.grid
}

// Cell returns the character at (rowKey, colKey).
func (t *Tracker) Cell(rowKey, colKey string) (grid.Char, error) {
	return t.grid.Cell(rowKey, colKey)
}

// SetCell writes a corrective character.
func (t *Tracker) SetCell(rowKey, colKey string, ch grid.Char) error {
	return t.grid.SetCell(rowKey, colKey, ch)
}

// Row returns the decompressed row for key, diagonal included.
func (t *Tracker) Row(key string) ([]grid.Char, error) {
	return t.grid.Row(key)
}

// Column returns the decompressed column for key, diagonal included.
func (t *Tracker) Column(key string) ([]grid.Char, error) {
	return t.grid.Column(key)
}

// AddKeys extends the tracker with new key definitions. Existing
// cells are preserved; new cells start as the placeholder.
func (t *Tracker) AddKeys(defs map[string]string) error {
	keys := make([]string, 0, len(defs))
	for k, p := range defs {
		if err := validateDefPath(k, p); err != nil {
			return err
		}
		keys = append(keys, k)
	}
	if err := t.grid.AddKeys(keys...); err != nil {
		return fmt.Errorf("tracker %s: %w", t.Name, err)
	}
	for k, p := range defs {
		t.defs[k] = p
	}
	return nil
}

// RemoveKey deletes a key's definition, row, and column.
func (t *Tracker) RemoveKey(key string) error {
	if err := t.grid.RemoveKey(key); err != nil {
		return fmt.Errorf("tracker %s: %w", t.Name, err)
	}
	delete(t.defs, key)
	return nil
}

// Validate checks the definitions and grid agree.
func (t *Tracker) Validate() error {
	if err := t.grid.Validate(); err != nil {
		return fmt.Errorf("tracker %s: %w", t.Name, err)
	}
	if len(t.defs) != t.grid.Len() {
		return fmt.Errorf("tracker %s: %d definitions but %d grid keys", t.Name, len(t.defs), t.grid.Len())
	}
	for _, k := range t.grid.Keys() {
		if _, ok := t.defs[k]; !ok {
			return fmt.Errorf("tracker %s: grid key %q has no definition", t.Name, k)
		}
	}
	return nil
}

func copyDefs(defs map[string]string) map[string]string {
	out := make(map[string]string, len(defs))
	for k, p := range defs {
		out[k] = p
	}
	return out
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("tracker: empty name")
	}
	if strings.ContainsAny(name, "\r\n") {
		return fmt.Errorf("tracker: name %q contains a line break", name)
	}
	return nil
}

func validateDefPath(key, path string) error {
	if path == "" {
		return fmt.Errorf("tracker: key %q has an empty path", key)
	}
	if strings.ContainsAny(path, "\r\n") {
		return fmt.Errorf("tracker: path for key %q contains a line break", key)
	}
	return nil
}
