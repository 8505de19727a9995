// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package embed

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bureau-foundation/lattice/lib/contenthash"
)

var testSpace = Space{DocModel: "doc-model", CodeModel: "code-model", Dim: 8}

func openTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := Open(dir, testSpace)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestStorePutVectorRoundtrip(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir)

	vector := []float32{1, 2, 3, 4, 5, 6, 7, 8}
	hash := contenthash.HashBytes([]byte("content"))
	mtime := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	if err := s.Put("1A2", vector, hash, mtime); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Reopen to force reads from disk.
	s2 := openTestStore(t, dir)
	got, ok, err := s2.Vector("1A2")
	if err != nil {
		t.Fatalf("Vector: %v", err)
	}
	if !ok {
		t.Fatal("Vector: entry missing after reopen")
	}
	for i := range vector {
		if math.Float32bits(got[i]) != math.Float32bits(vector[i]) {
			t.Fatalf("value %d: got %v, want %v", i, got[i], vector[i])
		}
	}

	entry, ok := s2.Entry("1A2")
	if !ok {
		t.Fatal("Entry missing")
	}
	if entry.Hash != hash {
		t.Errorf("entry hash = %s, want %s", entry.Hash, hash)
	}
	if entry.MTime != mtime.Unix() {
		t.Errorf("entry mtime = %d, want %d", entry.MTime, mtime.Unix())
	}
}

func TestStorePutWrongDimension(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	err := s.Put("1A1", []float32{1, 2, 3}, contenthash.Hash{}, time.Now())
	if err == nil {
		t.Error("Put accepted a 3-dimension vector in an 8-dimension store")
	}
}

func TestStoreMissingVector(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	_, ok, err := s.Vector("9Z")
	if err != nil {
		t.Fatalf("Vector: %v", err)
	}
	if ok {
		t.Error("Vector reported presence for an absent key")
	}
}

func TestStoreFresh(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	hash := contenthash.HashBytes([]byte("v1"))
	if err := s.Put("1A1", make([]float32, 8), hash, time.Now()); err != nil {
		t.Fatal(err)
	}

	if !s.Fresh("1A1", hash) {
		t.Error("Fresh = false for matching hash")
	}
	if s.Fresh("1A1", contenthash.HashBytes([]byte("v2"))) {
		t.Error("Fresh = true for changed content")
	}
	if s.Fresh("1A2", hash) {
		t.Error("Fresh = true for absent key")
	}
}

func TestStoreSimilarity(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	hash := contenthash.Hash{}
	if err := s.Put("1A1", []float32{1, 0, 0, 0, 0, 0, 0, 0}, hash, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := s.Put("1A2", []float32{0, 1, 0, 0, 0, 0, 0, 0}, hash, time.Now()); err != nil {
		t.Fatal(err)
	}

	// Identical key: 1.0 without any stored vector at all.
	got, err := s.Similarity("9Q", "9Q")
	if err != nil || got != 1.0 {
		t.Errorf("Similarity(identical) = %v, %v; want 1.0", got, err)
	}

	// Missing side: 0.0, not an error.
	got, err = s.Similarity("1A1", "9Q")
	if err != nil || got != 0.0 {
		t.Errorf("Similarity(missing) = %v, %v; want 0.0", got, err)
	}

	// Orthogonal stored vectors.
	got, err = s.Similarity("1A1", "1A2")
	if err != nil {
		t.Fatalf("Similarity: %v", err)
	}
	if got != 0.0 {
		t.Errorf("Similarity(orthogonal) = %v, want 0.0", got)
	}
}

func TestStoreSpaceChangeResets(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir)
	if err := s.Put("1A1", make([]float32, 8), contenthash.Hash{}, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}

	changed := testSpace
	changed.CodeModel = "code-model-v2"
	s2, err := Open(dir, changed)
	if err != nil {
		t.Fatalf("Open with changed space: %v", err)
	}
	if !s2.Reset() {
		t.Error("Reset = false after model change")
	}
	if s2.Len() != 0 {
		t.Errorf("Len = %d after space reset, want 0", s2.Len())
	}

	// The orphaned vector file from the old space is prunable.
	removed, err := s2.Prune()
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("Prune removed %d files, want 1", removed)
	}
}

func TestStoreRemove(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir)
	if err := s.Put("2C1#2", make([]float32, 8), contenthash.Hash{}, time.Now()); err != nil {
		t.Fatal(err)
	}

	vecPath := filepath.Join(dir, "2C1_2.vec")
	if _, err := os.Stat(vecPath); err != nil {
		t.Fatalf("vector file for suffixed key: %v", err)
	}

	if err := s.Remove("2C1#2"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(vecPath); !os.IsNotExist(err) {
		t.Error("vector file survived Remove")
	}
	if _, ok := s.Entry("2C1#2"); ok {
		t.Error("entry survived Remove")
	}

	// Removing an absent key is a no-op.
	if err := s.Remove("2C1#2"); err != nil {
		t.Errorf("Remove absent: %v", err)
	}
}

func TestStoreManifestDeterministic(t *testing.T) {
	write := func(dir string) []byte {
		s := openTestStore(t, dir)
		hash := contenthash.HashBytes([]byte("x"))
		ts := time.Unix(1760000000, 0)
		// Go map iteration order varies run to run; deterministic
		// CBOR encoding must hide that.
		for _, key := range []string{"1A1", "1B2", "1A2"} {
			if err := s.Put(key, make([]float32, 8), hash, ts); err != nil {
				t.Fatal(err)
			}
		}
		if err := s.Save(); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(filepath.Join(dir, ManifestName))
		if err != nil {
			t.Fatal(err)
		}
		return data
	}

	first := write(t.TempDir())
	second := write(t.TempDir())
	if string(first) != string(second) {
		t.Error("manifest bytes differ across identical runs")
	}
}

func TestStoreCorruptManifest(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ManifestName), []byte{0xFF, 0x00}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(dir, testSpace); err == nil {
		t.Error("Open accepted a corrupt manifest")
	}
}
