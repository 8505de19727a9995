// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tracker

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/bureau-foundation/lattice/lib/grid"
)

// ExportFormat selects an export encoding.
type ExportFormat string

const (
	ExportMD   ExportFormat = "md"
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
	ExportDOT  ExportFormat = "dot"
)

// ParseExportFormat validates a format name.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(s); f {
	case ExportMD, ExportJSON, ExportCSV, ExportDOT:
		return f, nil
	default:
		return "", fmt.Errorf("tracker: unsupported export format %q", s)
	}
}

// Export writes the tracker to w in the given format. CSV and DOT
// list one entry per cell, skipping placeholders and the implied
// diagonal.
func (t *Tracker) Export(w io.Writer, format ExportFormat) error {
	switch format {
	case ExportMD:
		data, err := t.Render()
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case ExportJSON:
		return t.exportJSON(w)
	case ExportCSV:
		return t.exportCSV(w)
	case ExportDOT:
		return t.exportDOT(w)
	default:
		return fmt.Errorf("tracker: unsupported export format %q", format)
	}
}

type exportedDef struct {
	Key  string `json:"key"`
	Path string `json:"path"`
}

type exportedRow struct {
	Key string `json:"key"`
	Row string `json:"row"`
}

type exportedTracker struct {
	Name string        `json:"name"`
	Kind Kind          `json:"kind"`
	Keys []exportedDef `json:"keys"`
	Grid []exportedRow `json:"grid"`
}

func (t *Tracker) exportJSON(w io.Writer) error {
	out := exportedTracker{Name: t.Name, Kind: t.Kind}
	for _, k := range t.grid.Keys() {
		out.Keys = append(out.Keys, exportedDef{Key: k, Path: t.defs[k]})
		row, err := t.grid.CompressedRow(k)
		if err != nil {
			return fmt.Errorf("tracker %s: %w", t.Name, err)
		}
		out.Grid = append(out.Grid, exportedRow{Key: k, Row: row})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (t *Tracker) exportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Source", "Target", "Dependency Type"}); err != nil {
		return err
	}
	err := t.grid.Cells(func(row, col string, ch grid.Char) error {
		if ch == grid.Placeholder {
			return nil
		}
		return cw.Write([]string{row, col, ch.String()})
	})
	if err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func (t *Tracker) exportDOT(w io.Writer) error {
	var b bytes.Buffer
	fmt.Fprintf(&b, "digraph %q {\n", t.Name)
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box];\n")
	for _, k := range t.grid.Keys() {
		fmt.Fprintf(&b, "  %q [label=%q];\n", k, k)
	}
	err := t.grid.Cells(func(row, col string, ch grid.Char) error {
		if ch == grid.Placeholder {
			return nil
		}
		fmt.Fprintf(&b, "  %q -> %q [label=%q];\n", row, col, ch)
		return nil
	})
	if err != nil {
		return err
	}
	b.WriteString("}\n")
	_, err = w.Write(b.Bytes())
	return err
}
