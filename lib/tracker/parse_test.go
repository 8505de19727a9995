// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tracker

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/lattice/lib/backup"
)

const sampleTracker = `--- Keys Defined in doc_tracker ---
1A: docs
1A1: docs/setup.md
1A2: docs/usage.md
--- End of Key Definitions ---
X 1A 1A1 1A2
1A = p2
1A1 = p<
1A2 = p2
`

func TestParseSample(t *testing.T) {
	tr, err := Parse("doc_tracker.md", []byte(sampleTracker), Doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tr.Name != "doc_tracker" || tr.Kind != Doc {
		t.Errorf("identity = (%q, %q)", tr.Name, tr.Kind)
	}
	if got := tr.Keys(); len(got) != 3 || got[0] != "1A" || got[2] != "1A2" {
		t.Errorf("Keys = %v", got)
	}
	if p, ok := tr.PathFor("1A1"); !ok || p != "docs/setup.md" {
		t.Errorf("PathFor(1A1) = (%q, %v)", p, ok)
	}
	ch, err := tr.Cell("1A1", "1A2")
	if err != nil {
		t.Fatal(err)
	}
	if ch != '<' {
		t.Errorf("Cell(1A1, 1A2) = %q", ch)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	tr, err := Parse("doc_tracker.md", []byte(sampleTracker), Doc)
	if err != nil {
		t.Fatal(err)
	}
	data, err := tr.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(data) != sampleTracker {
		t.Errorf("Render =\n%s\nwant\n%s", data, sampleTracker)
	}
}

func TestParseToleratesBlankLinesAndCRLF(t *testing.T) {
	loose := strings.ReplaceAll(sampleTracker, "--- End of Key Definitions ---\n", "--- End of Key Definitions ---\n\n")
	loose = strings.ReplaceAll(loose, "\n", "\r\n")
	tr, err := Parse("doc_tracker.md", []byte(loose), Doc)
	if err != nil {
		t.Fatalf("Parse with blank lines and CRLF: %v", err)
	}
	// Canonical form drops both.
	data, err := tr.Render()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != sampleTracker {
		t.Error("Render did not canonicalize loose input")
	}
}

func TestParseSingleKeyEmptyRow(t *testing.T) {
	for _, input := range []string{
		"--- Keys Defined in t ---\n1A1: src/a.go\n--- End of Key Definitions ---\nX 1A1\n1A1 = \n",
		// Editors often strip the trailing space.
		"--- Keys Defined in t ---\n1A1: src/a.go\n--- End of Key Definitions ---\nX 1A1\n1A1 =\n",
	} {
		tr, err := Parse("t_module.md", []byte(input), Mini)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if tr.Len() != 1 {
			t.Errorf("Len = %d, want 1", tr.Len())
		}
	}
}

func TestParseCorrupt(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty file", ""},
		{"missing opening marker", "not a tracker\n"},
		{"empty name", "--- Keys Defined in  ---\n--- End of Key Definitions ---\nX\n"},
		{"unterminated definitions", "--- Keys Defined in t ---\n1A: src\n"},
		{"malformed definition", "--- Keys Defined in t ---\n1A src\n--- End of Key Definitions ---\nX 1A\n1A = \n"},
		{"invalid key", "--- Keys Defined in t ---\nzz: src\n--- End of Key Definitions ---\nX zz\nzz = \n"},
		{"duplicate key", "--- Keys Defined in t ---\n1A: src\n1A: lib\n--- End of Key Definitions ---\nX 1A 1A\n1A = p\n1A = p\n"},
		{"definitions out of order", "--- Keys Defined in t ---\n1A2: b\n1A1: a\n--- End of Key Definitions ---\nX 1A2 1A1\n1A2 = p\n1A1 = p\n"},
		{"missing header", "--- Keys Defined in t ---\n1A: src\n--- End of Key Definitions ---\n"},
		{"header not X", "--- Keys Defined in t ---\n1A: src\n--- End of Key Definitions ---\nY 1A\n1A = \n"},
		{"header count mismatch", "--- Keys Defined in t ---\n1A: src\n--- End of Key Definitions ---\nX 1A 1B\n1A = \n"},
		{"header key mismatch", "--- Keys Defined in t ---\n1A: src\n--- End of Key Definitions ---\nX 1B\n1A = \n"},
		{"missing row", "--- Keys Defined in t ---\n1A: src\n1B: lib\n--- End of Key Definitions ---\nX 1A 1B\n1A = p\n"},
		{"row key mismatch", "--- Keys Defined in t ---\n1A: src\n1B: lib\n--- End of Key Definitions ---\nX 1A 1B\n1A = p\n1C = p\n"},
		{"row too short", "--- Keys Defined in t ---\n1A: src\n1B: lib\n1C: api\n--- End of Key Definitions ---\nX 1A 1B 1C\n1A = p\n1B = p2\n1C = p2\n"},
		{"row too long", "--- Keys Defined in t ---\n1A: src\n1B: lib\n--- End of Key Definitions ---\nX 1A 1B\n1A = p3\n1B = p\n"},
		{"explicit diagonal", "--- Keys Defined in t ---\n1A: src\n1B: lib\n--- End of Key Definitions ---\nX 1A 1B\n1A = o\n1B = p\n"},
		{"non-canonical run", "--- Keys Defined in t ---\n1A: src\n1B: lib\n--- End of Key Definitions ---\nX 1A 1B\n1A = p1\n1B = p\n"},
		{"content after grid", "--- Keys Defined in t ---\n1A: src\n--- End of Key Definitions ---\nX 1A\n1A = \nleftover\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse("t.md", []byte(tc.input), Mini)
			if err == nil {
				t.Fatal("corrupt input accepted")
			}
			var ce *CorruptError
			if !errors.As(err, &ce) {
				t.Errorf("error %v is not a CorruptError", err)
			} else if ce.Path != "t.md" {
				t.Errorf("CorruptError.Path = %q", ce.Path)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DocFile)

	tr, err := New("doc_tracker", Doc, map[string]string{
		"1A1": "docs/setup.md",
		"1A2": "docs/usage.md",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.SetCell("1A1", "1A2", '<'); err != nil {
		t.Fatal(err)
	}
	tr.Path = path
	if err := tr.Save(SaveOptions{}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Kind != Doc {
		t.Errorf("Kind = %q, want doc", loaded.Kind)
	}
	ch, err := loaded.Cell("1A1", "1A2")
	if err != nil {
		t.Fatal(err)
	}
	if ch != '<' {
		t.Errorf("Cell after reload = %q", ch)
	}
}

func TestSaveBacksUpPreviousBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DocFile)
	backupDir := filepath.Join(dir, "backups")

	tr, err := New("doc_tracker", Doc, map[string]string{"1A1": "docs/a.md"})
	if err != nil {
		t.Fatal(err)
	}
	tr.Path = path
	if err := tr.Save(SaveOptions{}); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := tr.AddKeys(map[string]string{"1A2": "docs/b.md"}); err != nil {
		t.Fatal(err)
	}
	ts := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := tr.Save(SaveOptions{BackupDir: backupDir, Now: ts}); err != nil {
		t.Fatal(err)
	}

	backups, err := backup.List(backupDir, DocFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Fatalf("backup count = %d, want 1", len(backups))
	}
	restored, err := backup.Read(backups[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(restored) != string(before) {
		t.Error("backup does not hold the pre-write bytes")
	}
}

func TestAddAndRemoveKeys(t *testing.T) {
	tr, err := New("t", Mini, map[string]string{"1A1": "src/a.go", "1A2": "src/b.go"})
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.SetCell("1A1", "1A2", 'x'); err != nil {
		t.Fatal(err)
	}
	if err := tr.AddKeys(map[string]string{"1A3": "src/c.go"}); err != nil {
		t.Fatal(err)
	}
	if tr.Len() != 3 {
		t.Fatalf("Len = %d, want 3", tr.Len())
	}
	if ch, _ := tr.Cell("1A1", "1A2"); ch != 'x' {
		t.Errorf("cell lost across AddKeys: %q", ch)
	}
	if err := tr.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	if err := tr.RemoveKey("1A2"); err != nil {
		t.Fatal(err)
	}
	if tr.Has("1A2") {
		t.Error("removed key still present")
	}
	if _, ok := tr.PathFor("1A2"); ok {
		t.Error("removed key still defined")
	}
	if tr.Len() != 2 {
		t.Errorf("Len after removal = %d, want 2", tr.Len())
	}
	if err := tr.Validate(); err != nil {
		t.Errorf("Validate after removal: %v", err)
	}
}
