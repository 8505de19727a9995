// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grid

import (
	"errors"
	"fmt"
	"slices"

	"github.com/bureau-foundation/lattice/lib/gridkey"
)

// ErrUnknownKey reports a key that is not part of the grid.
var ErrUnknownKey = errors.New("key not in grid")

// Grid is a square dependency matrix over an ordered key list. Rows
// are stored compressed with the diagonal spliced out.
type Grid struct {
	keys []string
	pos  map[string]int
	rows []string
}

// New builds a grid over the given keys with every cell set to the
// placeholder. Keys are sorted hierarchically; duplicates and
// malformed keys are errors.
func New(keys []string) (*Grid, error) {
	sorted := slices.Clone(keys)
	for _, k := range sorted {
		if !gridkey.Valid(k) {
			return nil, fmt.Errorf("grid: invalid key %q", k)
		}
	}
	gridkey.SortStrings(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return nil, fmt.Errorf("grid: duplicate key %q", sorted[i])
		}
	}
	g := &Grid{keys: sorted, rows: make([]string, len(sorted))}
	for i := range g.rows {
		g.rows[i] = placeholderRow(len(sorted) - 1)
	}
	g.reindex()
	return g, nil
}

// FromRows reassembles a grid from parsed tracker content. Keys must
// already be in hierarchical order and rows aligned with them; each
// row must decompress to exactly len(keys)-1 characters with no
// explicit diagonal. Violations indicate a corrupt tracker.
func FromRows(keys, rows []string) (*Grid, error) {
	if len(keys) != len(rows) {
		return nil, fmt.Errorf("grid: %d keys but %d rows", len(keys), len(rows))
	}
	for i, k := range keys {
		if !gridkey.Valid(k) {
			return nil, fmt.Errorf("grid: invalid key %q", k)
		}
		if i > 0 && gridkey.CompareStrings(keys[i-1], k) >= 0 {
			return nil, fmt.Errorf("grid: keys out of order: %q before %q", keys[i-1], k)
		}
	}
	g := &Grid{keys: slices.Clone(keys), rows: slices.Clone(rows)}
	g.reindex()
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks that every row decompresses to the expected width
// and contains no explicit diagonal character.
func (g *Grid) Validate() error {
	if len(g.rows) != len(g.keys) {
		return fmt.Errorf("grid: %d keys but %d rows", len(g.keys), len(g.rows))
	}
	want := len(g.keys) - 1
	if want < 0 {
		want = 0
	}
	for i, row := range g.rows {
		seq, err := Decompress(row)
		if err != nil {
			return fmt.Errorf("grid: row %q: %w", g.keys[i], err)
		}
		if len(seq) != want {
			return fmt.Errorf("grid: row %q has %d columns, want %d", g.keys[i], len(seq), want)
		}
		for _, c := range seq {
			if c == Diagonal {
				return fmt.Errorf("grid: row %q contains an explicit diagonal character", g.keys[i])
			}
		}
	}
	return nil
}

// Len returns the number of keys.
func (g *Grid) Len() int {
	return len(g.keys)
}

// Keys returns the keys in grid order.
func (g *Grid) Keys() []string {
	return slices.Clone(g.keys)
}

// Has reports whether key is part of the grid.
func (g *Grid) Has(key string) bool {
	_, ok := g.pos[key]
	return ok
}

// Cell returns the character at (rowKey, colKey). The diagonal reads
// back as Diagonal.
func (g *Grid) Cell(rowKey, colKey string) (Char, error) {
	ri, ci, err := g.locate(rowKey, colKey)
	if err != nil {
		return 0, err
	}
	if ri == ci {
		return Diagonal, nil
	}
	ch, err := CharAt(g.rows[ri], offsetFor(ri, ci))
	if err != nil {
		return 0, fmt.Errorf("grid: row %q: %w", rowKey, err)
	}
	return ch, nil
}

// SetCell writes a corrective character. Any persistable character
// may replace any other; the diagonal is immutable.
func (g *Grid) SetCell(rowKey, colKey string, ch Char) error {
	if !ch.Valid() || ch == Diagonal {
		return fmt.Errorf("grid: cannot store %q", ch)
	}
	ri, ci, err := g.locate(rowKey, colKey)
	if err != nil {
		return err
	}
	if ri == ci {
		return fmt.Errorf("grid: cell (%s, %s) is the diagonal", rowKey, colKey)
	}
	row, err := SetCharAt(g.rows[ri], offsetFor(ri, ci), ch)
	if err != nil {
		return fmt.Errorf("grid: row %q: %w", rowKey, err)
	}
	g.rows[ri] = row
	return nil
}

// Suggest applies a lattice-monotone update: ch is written only when
// it is strictly more specific than the current cell and the current
// cell is not verified. The diagonal is never written. Reports
// whether the cell changed.
func (g *Grid) Suggest(rowKey, colKey string, ch Char) (bool, error) {
	cur, err := g.Cell(rowKey, colKey)
	if err != nil {
		return false, err
	}
	if cur == Diagonal || cur.IsVerified() {
		return false, nil
	}
	if ch.Specificity() <= cur.Specificity() {
		return false, nil
	}
	if err := g.SetCell(rowKey, colKey, ch); err != nil {
		return false, err
	}
	return true, nil
}

// Row returns the full decompressed row for key, including the
// implied Diagonal at the key's own position.
func (g *Grid) Row(key string) ([]Char, error) {
	ri, ok := g.pos[key]
	if !ok {
		return nil, fmt.Errorf("grid: row %q: %w", key, ErrUnknownKey)
	}
	seq, err := Decompress(g.rows[ri])
	if err != nil {
		return nil, fmt.Errorf("grid: row %q: %w", key, err)
	}
	full := make([]Char, 0, len(seq)+1)
	full = append(full, seq[:ri]...)
	full = append(full, Diagonal)
	full = append(full, seq[ri:]...)
	return full, nil
}

// Column returns the full column for key, including the implied
// Diagonal.
func (g *Grid) Column(key string) ([]Char, error) {
	ci, ok := g.pos[key]
	if !ok {
		return nil, fmt.Errorf("grid: column %q: %w", key, ErrUnknownKey)
	}
	col := make([]Char, len(g.keys))
	for ri, rk := range g.keys {
		if ri == ci {
			col[ri] = Diagonal
			continue
		}
		ch, err := CharAt(g.rows[ri], offsetFor(ri, ci))
		if err != nil {
			return nil, fmt.Errorf("grid: row %q: %w", rk, err)
		}
		col[ri] = ch
	}
	return col, nil
}

// CompressedRow returns the stored encoding of a row, without the
// diagonal.
func (g *Grid) CompressedRow(key string) (string, error) {
	ri, ok := g.pos[key]
	if !ok {
		return "", fmt.Errorf("grid: row %q: %w", key, ErrUnknownKey)
	}
	return g.rows[ri], nil
}

// AddKeys inserts keys, preserving hierarchical order. Existing cells
// keep their characters; every new cell starts as the placeholder.
func (g *Grid) AddKeys(newKeys ...string) error {
	if len(newKeys) == 0 {
		return nil
	}
	for _, k := range newKeys {
		if !gridkey.Valid(k) {
			return fmt.Errorf("grid: invalid key %q", k)
		}
		if _, ok := g.pos[k]; ok {
			return fmt.Errorf("grid: key %q already present", k)
		}
	}
	merged := append(slices.Clone(g.keys), newKeys...)
	gridkey.SortStrings(merged)
	for i := 1; i < len(merged); i++ {
		if merged[i] == merged[i-1] {
			return fmt.Errorf("grid: duplicate key %q", merged[i])
		}
	}
	newPos := make(map[string]int, len(merged))
	for i, k := range merged {
		newPos[k] = i
	}

	rows := make([]string, len(merged))
	for i, rk := range merged {
		oldRi, existed := g.pos[rk]
		if !existed {
			rows[i] = placeholderRow(len(merged) - 1)
			continue
		}
		oldSeq, err := Decompress(g.rows[oldRi])
		if err != nil {
			return fmt.Errorf("grid: row %q: %w", rk, err)
		}
		seq := make([]Char, 0, len(merged)-1)
		for j, ck := range merged {
			if j == i {
				continue
			}
			oldCi, existedCol := g.pos[ck]
			if !existedCol {
				seq = append(seq, Placeholder)
				continue
			}
			seq = append(seq, oldSeq[offsetFor(oldRi, oldCi)])
		}
		row, err := Compress(seq)
		if err != nil {
			return fmt.Errorf("grid: row %q: %w", rk, err)
		}
		rows[i] = row
	}
	g.keys, g.pos, g.rows = merged, newPos, rows
	return nil
}

// RemoveKey deletes a key's row and column and re-serializes the
// remaining rows contiguously.
func (g *Grid) RemoveKey(key string) error {
	ri, ok := g.pos[key]
	if !ok {
		return fmt.Errorf("grid: %q: %w", key, ErrUnknownKey)
	}
	keys := slices.Delete(slices.Clone(g.keys), ri, ri+1)
	rows := make([]string, 0, len(keys))
	for i, rk := range g.keys {
		if i == ri {
			continue
		}
		seq, err := Decompress(g.rows[i])
		if err != nil {
			return fmt.Errorf("grid: row %q: %w", rk, err)
		}
		off := offsetFor(i, ri)
		seq = slices.Delete(seq, off, off+1)
		row, err := Compress(seq)
		if err != nil {
			return fmt.Errorf("grid: row %q: %w", rk, err)
		}
		rows = append(rows, row)
	}
	g.keys, g.rows = keys, rows
	g.reindex()
	return nil
}

// Cells calls fn for every off-diagonal cell in row-major order.
// Iteration stops at the first error, which is returned.
func (g *Grid) Cells(fn func(rowKey, colKey string, ch Char) error) error {
	for ri, rk := range g.keys {
		seq, err := Decompress(g.rows[ri])
		if err != nil {
			return fmt.Errorf("grid: row %q: %w", rk, err)
		}
		for j, ch := range seq {
			ci := j
			if j >= ri {
				ci = j + 1
			}
			if err := fn(rk, g.keys[ci], ch); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Grid) locate(rowKey, colKey string) (ri, ci int, err error) {
	ri, ok := g.pos[rowKey]
	if !ok {
		return 0, 0, fmt.Errorf("grid: row %q: %w", rowKey, ErrUnknownKey)
	}
	ci, ok = g.pos[colKey]
	if !ok {
		return 0, 0, fmt.Errorf("grid: column %q: %w", colKey, ErrUnknownKey)
	}
	return ri, ci, nil
}

func (g *Grid) reindex() {
	g.pos = make(map[string]int, len(g.keys))
	for i, k := range g.keys {
		g.pos[k] = i
	}
}

// offsetFor maps a column index to its position in a row with the
// diagonal spliced out.
func offsetFor(ri, ci int) int {
	if ci > ri {
		return ci - 1
	}
	return ci
}

func placeholderRow(n int) string {
	if n <= 0 {
		return ""
	}
	return renderRuns([]run{{Placeholder, n}})
}
