// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keymap

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/bureau-foundation/lattice/lib/atomicfile"
	"github.com/bureau-foundation/lattice/lib/gridkey"
)

// FileName is the map's filename inside the memory directory.
const FileName = "global_key_map.json"

// FileVersion is the on-disk format version this package writes.
const FileVersion = 1

type mapFile struct {
	Version      int            `json:"version"`
	Entries      []Entry        `json:"entries"`
	FileIndex    map[string]int `json:"file_index,omitempty"`
	SubLetter    map[string]int `json:"sub_letter,omitempty"`
	DirLetter    map[string]int `json:"dir_letter,omitempty"`
	InstanceNext map[string]int `json:"instance_next,omitempty"`
}

// Load reads a key map file. The error wraps fs.ErrNotExist when the
// file is missing.
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keymap: load: %w", err)
	}
	var f mapFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("keymap: load %s: %w", path, err)
	}
	if f.Version != FileVersion {
		return nil, fmt.Errorf("keymap: load %s: unsupported version %d", path, f.Version)
	}

	m := NewMap()
	for i, e := range f.Entries {
		k, err := gridkey.Parse(e.Base)
		if err != nil {
			return nil, fmt.Errorf("keymap: load %s: entry %d: %w", path, i, err)
		}
		if k.Instance != 0 {
			return nil, fmt.Errorf("keymap: load %s: entry %d: base %s carries a suffix", path, i, e.Base)
		}
		if e.Instance < 0 {
			return nil, fmt.Errorf("keymap: load %s: entry %d: negative instance", path, i)
		}
		if e.Path == "" {
			return nil, fmt.Errorf("keymap: load %s: entry %d: empty path", path, i)
		}
		if _, dup := m.byPath[e.Path]; dup {
			return nil, fmt.Errorf("keymap: load %s: duplicate path %s", path, e.Path)
		}
		if _, dup := m.byKey[e.Key()]; dup {
			return nil, fmt.Errorf("keymap: load %s: duplicate key %s", path, e.Key())
		}
		p := new(Entry)
		*p = e
		m.entries = append(m.entries, p)
		m.byPath[p.Path] = p
		m.byKey[p.Key()] = p
		m.byBase[p.Base] = append(m.byBase[p.Base], p)
	}
	copyCounter(m.fileIndex, f.FileIndex)
	copyCounter(m.subLetter, f.SubLetter)
	copyCounter(m.dirLetter, f.DirLetter)
	copyCounter(m.instanceNext, f.InstanceNext)

	// A base with suffixed entries must keep suffixing past its
	// highest claimant, even if the stored counter lags.
	for base, peers := range m.byBase {
		max := 0
		for _, e := range peers {
			if e.Instance > max {
				max = e.Instance
			}
		}
		if max > 0 && m.instanceNext[base] <= max {
			m.instanceNext[base] = max + 1
		}
	}
	return m, nil
}

// LoadOrNew reads a key map file, returning an empty map when the
// file does not exist yet.
func LoadOrNew(path string) (*Map, error) {
	m, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewMap(), nil
	}
	return m, err
}

// Save writes the map atomically as versioned JSON. Entries keep
// first-registration order so instance suffixes stay reproducible.
func (m *Map) Save(path string) error {
	f := mapFile{
		Version:      FileVersion,
		Entries:      m.Entries(),
		FileIndex:    m.fileIndex,
		SubLetter:    m.subLetter,
		DirLetter:    m.dirLetter,
		InstanceNext: m.instanceNext,
	}
	data, err := json.MarshalIndent(&f, "", "  ")
	if err != nil {
		return fmt.Errorf("keymap: save: %w", err)
	}
	data = append(data, '\n')
	if err := atomicfile.Write(path, data, 0o644); err != nil {
		return fmt.Errorf("keymap: save: %w", err)
	}
	return nil
}

func copyCounter(dst, src map[string]int) {
	for k, v := range src {
		dst[k] = v
	}
}
