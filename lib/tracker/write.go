// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tracker

import (
	"bytes"
	"fmt"
	"time"

	"github.com/bureau-foundation/lattice/lib/atomicfile"
	"github.com/bureau-foundation/lattice/lib/backup"
)

// Render serializes the tracker in canonical form: definitions,
// header, and rows in grid order with canonical run-length encoding.
// Equal trackers always render to identical bytes.
func (t *Tracker) Render() ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s%s%s\n", defsOpenPrefix, t.Name, defsOpenSuffix)
	keys := t.grid.Keys()
	for _, k := range keys {
		p, ok := t.defs[k]
		if !ok {
			return nil, fmt.Errorf("tracker %s: grid key %q has no definition", t.Name, k)
		}
		fmt.Fprintf(&b, "%s: %s\n", k, p)
	}
	b.WriteString(defsClose + "\n")

	b.WriteString("X")
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
	}
	b.WriteByte('\n')

	for _, k := range keys {
		row, err := t.grid.CompressedRow(k)
		if err != nil {
			return nil, fmt.Errorf("tracker %s: %w", t.Name, err)
		}
		fmt.Fprintf(&b, "%s = %s\n", k, row)
	}
	return b.Bytes(), nil
}

// SaveOptions control persistence side effects.
type SaveOptions struct {
	// BackupDir, when set, receives a compressed copy of the
	// previous file bytes before the write.
	BackupDir string
	// Now stamps the backup file name. Zero means time.Now().
	Now time.Time
}

// Save atomically writes the tracker to its Path.
func (t *Tracker) Save(opts SaveOptions) error {
	if t.Path == "" {
		return fmt.Errorf("tracker %s: no path to save to", t.Name)
	}
	data, err := t.Render()
	if err != nil {
		return err
	}
	if opts.BackupDir != "" {
		now := opts.Now
		if now.IsZero() {
			now = time.Now()
		}
		if _, err := backup.Create(t.Path, opts.BackupDir, now); err != nil {
			return fmt.Errorf("tracker %s: %w", t.Name, err)
		}
	}
	if err := atomicfile.Write(t.Path, data, 0o644); err != nil {
		return fmt.Errorf("tracker %s: %w", t.Name, err)
	}
	return nil
}
