// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package embed

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bureau-foundation/lattice/lib/atomicfile"
	"github.com/bureau-foundation/lattice/lib/codec"
	"github.com/bureau-foundation/lattice/lib/contenthash"
)

// ManifestName is the index filename inside the embeddings directory.
const ManifestName = "manifest.cbor"

// ManifestVersion is the on-disk manifest format version this package
// writes.
const ManifestVersion = 1

// Space identifies the embedding space a store holds: which models
// produced the vectors and their dimension. Vectors from different
// spaces are not comparable, so a space change invalidates the whole
// store.
type Space struct {
	DocModel  string `cbor:"doc_model"`
	CodeModel string `cbor:"code_model"`
	Dim       int    `cbor:"dim"`
}

// Entry records one embedded artifact in the manifest.
type Entry struct {
	// Key is the canonical grid key of the artifact, including any
	// instance suffix.
	Key string `cbor:"key"`

	// Hash is the BLAKE3 digest of the artifact content the vector
	// was computed from. The vector is stale whenever the artifact's
	// current digest differs.
	Hash contenthash.Hash `cbor:"hash"`

	// MTime is the source file's modification time (unix seconds) at
	// embedding time. Diagnostic only — staleness decisions use Hash.
	MTime int64 `cbor:"mtime"`

	// File is the vector file name within the store directory.
	File string `cbor:"file"`
}

type manifest struct {
	Version int              `cbor:"version"`
	Space   Space            `cbor:"space"`
	Entries map[string]Entry `cbor:"entries"`
}

// Store is an on-disk vector store: one manifest plus one vector file
// per embedded artifact. Not safe for concurrent use.
type Store struct {
	dir      string
	space    Space
	entries  map[string]Entry
	vectors  map[string][]float32
	dirty    bool
	resetOld bool
}

// Open opens (or initializes) the vector store in dir for the given
// embedding space. An existing manifest recorded under a different
// space is discarded: its vectors were produced by other models and
// cannot be compared with new ones.
func Open(dir string, space Space) (*Store, error) {
	if space.Dim <= 0 {
		return nil, fmt.Errorf("embed: open %s: non-positive dimension %d", dir, space.Dim)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("embed: open: %w", err)
	}

	s := &Store{
		dir:     dir,
		space:   space,
		entries: make(map[string]Entry),
		vectors: make(map[string][]float32),
	}

	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("embed: open: %w", err)
	}

	var m manifest
	if err := codec.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("embed: open %s: corrupt manifest: %w", dir, err)
	}
	if m.Version != ManifestVersion {
		return nil, fmt.Errorf("embed: open %s: unsupported manifest version %d", dir, m.Version)
	}

	if m.Space != space {
		// Space changed: start over. The stale vector files are
		// removed on the next Prune.
		s.resetOld = true
		s.dirty = true
		return s, nil
	}

	for key, entry := range m.Entries {
		if entry.Key != key {
			return nil, fmt.Errorf("embed: open %s: manifest entry %q disagrees with its key %q",
				dir, key, entry.Key)
		}
		s.entries[key] = entry
	}
	return s, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// Space returns the embedding space the store was opened for.
func (s *Store) Space() Space {
	return s.space
}

// Reset reports whether Open discarded a manifest from a different
// embedding space. Callers use it to warn that a full re-embed is
// running.
func (s *Store) Reset() bool {
	return s.resetOld
}

// Len returns the number of embedded artifacts in the manifest.
func (s *Store) Len() int {
	return len(s.entries)
}

// Keys returns the embedded artifact keys in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Entry returns the manifest record for key.
func (s *Store) Entry(key string) (Entry, bool) {
	entry, ok := s.entries[key]
	return entry, ok
}

// Fresh reports whether the store holds a vector for key computed
// from content with the given digest.
func (s *Store) Fresh(key string, hash contenthash.Hash) bool {
	entry, ok := s.entries[key]
	return ok && entry.Hash == hash
}

// Put stores a vector for key, replacing any previous one. The vector
// file is written immediately (atomic rename); the manifest is
// rewritten on Save.
func (s *Store) Put(key string, vector []float32, hash contenthash.Hash, mtime time.Time) error {
	if len(vector) != s.space.Dim {
		return fmt.Errorf("embed: put %s: vector has %d dimensions, store expects %d",
			key, len(vector), s.space.Dim)
	}

	file := vectorFileName(key)
	data := encodeVectorFile(vector)
	if err := atomicfile.Write(filepath.Join(s.dir, file), data, 0o644); err != nil {
		return fmt.Errorf("embed: put %s: %w", key, err)
	}

	s.entries[key] = Entry{
		Key:   key,
		Hash:  hash,
		MTime: mtime.Unix(),
		File:  file,
	}
	s.vectors[key] = vector
	s.dirty = true
	return nil
}

// Vector returns the stored vector for key. The second return is
// false when the store has no entry for the key. A present entry
// whose vector file is missing or corrupt is an error.
func (s *Store) Vector(key string) ([]float32, bool, error) {
	if vector, ok := s.vectors[key]; ok {
		return vector, true, nil
	}
	entry, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}

	data, err := os.ReadFile(filepath.Join(s.dir, entry.File))
	if err != nil {
		return nil, false, fmt.Errorf("embed: vector %s: %w", key, err)
	}
	vector, err := decodeVectorFile(data)
	if err != nil {
		return nil, false, fmt.Errorf("embed: vector %s: %w", key, err)
	}
	if len(vector) != s.space.Dim {
		return nil, false, fmt.Errorf("embed: vector %s: file has %d dimensions, store expects %d",
			key, len(vector), s.space.Dim)
	}

	s.vectors[key] = vector
	return vector, true, nil
}

// Similarity returns the cosine similarity between the vectors of two
// keys, clamped to [0, 1]. Identical keys score 1.0 without a lookup;
// a missing vector on either side scores 0.0.
func (s *Store) Similarity(keyA, keyB string) (float64, error) {
	if keyA == keyB {
		return 1.0, nil
	}
	vectorA, okA, err := s.Vector(keyA)
	if err != nil {
		return 0, err
	}
	vectorB, okB, err := s.Vector(keyB)
	if err != nil {
		return 0, err
	}
	if !okA || !okB {
		return 0.0, nil
	}
	return Cosine(vectorA, vectorB), nil
}

// Remove drops the entry for key and deletes its vector file. Removing
// an absent key is a no-op.
func (s *Store) Remove(key string) error {
	entry, ok := s.entries[key]
	if !ok {
		return nil
	}
	delete(s.entries, key)
	delete(s.vectors, key)
	s.dirty = true

	err := os.Remove(filepath.Join(s.dir, entry.File))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("embed: remove %s: %w", key, err)
	}
	return nil
}

// Save writes the manifest atomically if anything changed since Open.
func (s *Store) Save() error {
	if !s.dirty {
		return nil
	}
	m := manifest{
		Version: ManifestVersion,
		Space:   s.space,
		Entries: s.entries,
	}
	data, err := codec.Marshal(&m)
	if err != nil {
		return fmt.Errorf("embed: save manifest: %w", err)
	}
	if err := atomicfile.Write(filepath.Join(s.dir, ManifestName), data, 0o644); err != nil {
		return fmt.Errorf("embed: save manifest: %w", err)
	}
	s.dirty = false
	return nil
}

// Prune deletes vector files in the store directory that no manifest
// entry references (left behind by key removals or a space reset).
// Returns the number of files removed.
func (s *Store) Prune() (int, error) {
	referenced := make(map[string]bool, len(s.entries))
	for _, entry := range s.entries {
		referenced[entry.File] = true
	}

	names, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("embed: prune: %w", err)
	}

	removed := 0
	for _, d := range names {
		name := d.Name()
		if d.IsDir() || !strings.HasSuffix(name, ".vec") || referenced[name] {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			return removed, fmt.Errorf("embed: prune %s: %w", name, err)
		}
		removed++
	}
	return removed, nil
}

// vectorFileName maps a canonical key to its vector file name. The
// only key character unsafe in this role is the instance separator
// '#' (awkward in shells and URLs); it maps to '_', which the key
// grammar itself never produces, so the mapping is injective.
func vectorFileName(key string) string {
	return strings.ReplaceAll(key, "#", "_") + ".vec"
}
