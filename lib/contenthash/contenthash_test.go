// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package contenthash

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHashBytesDeterministic(t *testing.T) {
	a := HashBytes([]byte("package main\n"))
	b := HashBytes([]byte("package main\n"))
	if a != b {
		t.Fatal("same bytes hashed differently")
	}
	if a == HashBytes([]byte("package main")) {
		t.Fatal("different bytes collided")
	}
	if a.IsZero() {
		t.Fatal("digest is zero")
	}
}

func TestHashFileMatchesHashBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.go")
	content := []byte("package main\n\nfunc main() {}\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	fromFile, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if fromFile != HashBytes(content) {
		t.Fatal("file and byte hashing disagree")
	}
}

func TestHashFileMissing(t *testing.T) {
	if _, err := HashFile(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("hashing a missing file succeeded")
	}
}

func TestParseRoundTrip(t *testing.T) {
	h := HashBytes([]byte("x"))
	s := h.String()
	if len(s) != 64 {
		t.Fatalf("hex length = %d", len(s))
	}
	parsed, err := Parse(s)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != h {
		t.Fatal("round trip changed digest")
	}

	if _, err := Parse("zz"); err == nil {
		t.Fatal("parsed invalid hex")
	}
	if _, err := Parse("abcd"); err == nil {
		t.Fatal("parsed short digest")
	}
}
