// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tracker

import (
	"fmt"
	"os"
	"strings"

	"github.com/bureau-foundation/lattice/lib/grid"
	"github.com/bureau-foundation/lattice/lib/gridkey"
)

const (
	defsOpenPrefix = "--- Keys Defined in "
	defsOpenSuffix = " ---"
	defsClose      = "--- End of Key Definitions ---"
)

// CorruptError reports a tracker file that violates the grammar or
// whose sections disagree. Corrupt trackers are rejected, never
// repaired in place; regeneration is the recovery path.
type CorruptError struct {
	Path   string
	Line   int // 1-based; 0 when the defect spans the whole file
	Detail string
}

func (e *CorruptError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("tracker: %s:%d: %s", e.Path, e.Line, e.Detail)
	}
	return fmt.Sprintf("tracker: %s: %s", e.Path, e.Detail)
}

func corrupt(path string, line int, format string, args ...any) error {
	return &CorruptError{Path: path, Line: line, Detail: fmt.Sprintf(format, args...)}
}

// Load reads and parses the tracker at path, classifying its kind
// from the file name.
func Load(path string) (*Tracker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tracker: reading %s: %w", path, err)
	}
	return Parse(path, data, KindForPath(path))
}

// Parse parses tracker file content. Blank lines between logical
// lines are tolerated; everything else must follow the grammar
// exactly. The path is recorded on the result and used in error
// context.
func Parse(path string, data []byte, kind Kind) (*Tracker, error) {
	cur := &lineCursor{lines: strings.Split(string(data), "\n")}

	line, ln, ok := cur.next()
	if !ok {
		return nil, corrupt(path, 0, "empty file")
	}
	if !strings.HasPrefix(line, defsOpenPrefix) || !strings.HasSuffix(line, defsOpenSuffix) {
		return nil, corrupt(path, ln, "expected key definitions marker, got %q", line)
	}
	name := line[len(defsOpenPrefix) : len(line)-len(defsOpenSuffix)]
	if name == "" {
		return nil, corrupt(path, ln, "empty tracker name in definitions marker")
	}

	defs := make(map[string]string)
	var keys []string
	for {
		line, ln, ok = cur.next()
		if !ok {
			return nil, corrupt(path, 0, "unterminated key definitions")
		}
		if line == defsClose {
			break
		}
		key, defPath, found := strings.Cut(line, ": ")
		if !found {
			return nil, corrupt(path, ln, "malformed key definition %q", line)
		}
		if !gridkey.Valid(key) {
			return nil, corrupt(path, ln, "invalid key %q", key)
		}
		if defPath == "" {
			return nil, corrupt(path, ln, "empty path for key %s", key)
		}
		if _, dup := defs[key]; dup {
			return nil, corrupt(path, ln, "duplicate key %s", key)
		}
		if len(keys) > 0 && gridkey.CompareStrings(keys[len(keys)-1], key) >= 0 {
			return nil, corrupt(path, ln, "key %s out of hierarchical order after %s", key, keys[len(keys)-1])
		}
		defs[key] = defPath
		keys = append(keys, key)
	}

	line, ln, ok = cur.next()
	if !ok {
		return nil, corrupt(path, 0, "missing column header")
	}
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "X" {
		return nil, corrupt(path, ln, "expected column header starting with X, got %q", line)
	}
	cols := fields[1:]
	if len(cols) != len(keys) {
		return nil, corrupt(path, ln, "header lists %d columns but %d keys are defined", len(cols), len(keys))
	}
	for i, col := range cols {
		if col != keys[i] {
			return nil, corrupt(path, ln, "header column %d is %s, definitions say %s", i+1, col, keys[i])
		}
	}

	rows := make([]string, 0, len(keys))
	for i := range keys {
		line, ln, ok = cur.next()
		if !ok {
			return nil, corrupt(path, 0, "missing grid row for key %s", keys[i])
		}
		rowKey, rle, found := strings.Cut(line, " = ")
		if !found {
			// A row with zero columns serializes as "<key> = " and
			// editors may strip the trailing space.
			rowKey, found = strings.CutSuffix(line, " =")
			rle = ""
		}
		if !found {
			return nil, corrupt(path, ln, "malformed grid row %q", line)
		}
		if rowKey != keys[i] {
			return nil, corrupt(path, ln, "grid row %d is for key %s, expected %s", i+1, rowKey, keys[i])
		}
		rows = append(rows, rle)
	}

	if line, ln, ok = cur.next(); ok {
		return nil, corrupt(path, ln, "unexpected content after grid: %q", line)
	}

	g, err := grid.FromRows(keys, rows)
	if err != nil {
		return nil, corrupt(path, 0, "%v", err)
	}
	return &Tracker{Name: name, Kind: kind, Path: path, defs: defs, grid: g}, nil
}

// lineCursor yields non-blank lines with their 1-based numbers,
// tolerating CRLF endings.
type lineCursor struct {
	lines []string
	n     int
}

func (c *lineCursor) next() (line string, num int, ok bool) {
	for c.n < len(c.lines) {
		line = strings.TrimRight(c.lines[c.n], "\r")
		c.n++
		if strings.TrimSpace(line) == "" {
			continue
		}
		return line, c.n, true
	}
	return "", 0, false
}
