// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestParseManifestJSONC(t *testing.T) {
	data := []byte(`{
	// tracked source trees
	"code_roots": ["src", "lib"],
	"doc_roots": ["docs"], // trailing comma next line
	"excluded_extensions": [".pyc",],
}`)
	m, err := ParseManifest("lattice.jsonc", data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !slices.Equal(m.CodeRoots, []string{"src", "lib"}) {
		t.Errorf("code roots = %v", m.CodeRoots)
	}
	if !slices.Equal(m.DocRoots, []string{"docs"}) {
		t.Errorf("doc roots = %v", m.DocRoots)
	}
	// An explicit list replaces the default wholesale.
	if !slices.Equal(m.ExcludedExtensions, []string{".pyc"}) {
		t.Errorf("extensions = %v", m.ExcludedExtensions)
	}
	// Omitted lists keep their defaults.
	if !slices.Contains(m.ExcludedDirs, ".git") {
		t.Errorf("default excluded dirs lost: %v", m.ExcludedDirs)
	}
	if !slices.Contains(m.ExcludedPatterns, "*_module.md") {
		t.Errorf("default excluded patterns lost: %v", m.ExcludedPatterns)
	}
}

func TestManifestValidate(t *testing.T) {
	cases := []struct {
		name    string
		m       Manifest
		wantErr bool
	}{
		{"ok", Manifest{CodeRoots: []string{"src"}, DocRoots: []string{"docs"}}, false},
		{"doc only", Manifest{DocRoots: []string{"docs"}}, false},
		{"no roots", Manifest{}, true},
		{"absolute root", Manifest{CodeRoots: []string{"/src"}}, true},
		{"escaping root", Manifest{CodeRoots: []string{"../src"}}, true},
		{"dot root", Manifest{CodeRoots: []string{"."}}, true},
		{"duplicate", Manifest{CodeRoots: []string{"src", "src"}}, true},
		{"duplicate across groups", Manifest{CodeRoots: []string{"src"}, DocRoots: []string{"src"}}, true},
		{"nested roots", Manifest{CodeRoots: []string{"src", "src/inner"}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.m.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestExcluder(t *testing.T) {
	m := DefaultManifest()
	m.ExcludedPatterns = append(m.ExcludedPatterns, "src/generated/*")
	excluded := m.Excluder()

	cases := []struct {
		rel   string
		isDir bool
		want  bool
	}{
		{"src/.git", true, true},
		{"src/node_modules", true, true},
		{"src/auth", false, false},
		{"src/auth", true, false},
		{"src/x.pyc", false, true},
		{"src/x.PYC", false, true},
		{"src/keep.go", false, false},
		{"src/auth_module.md", false, true},
		{"src/generated/out.go", false, true},
		{"src/real/out.go", false, false},
	}
	for _, tc := range cases {
		if got := excluded(tc.rel, tc.isDir); got != tc.want {
			t.Errorf("excluded(%q, dir=%v) = %v, want %v", tc.rel, tc.isDir, got, tc.want)
		}
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ManifestName), []byte(`{"code_roots": ["src"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "src", "auth")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot: %v", err)
	}
	if got != root {
		t.Fatalf("root = %q, want %q", got, root)
	}

	if _, err := FindProjectRoot(t.TempDir()); err == nil {
		t.Fatal("found a project root where none exists")
	}
}

func TestOpenProject(t *testing.T) {
	root := t.TempDir()
	manifest := `{
	"code_roots": ["src"],
}`
	if err := os.WriteFile(filepath.Join(root, ManifestName), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "src"), 0o755); err != nil {
		t.Fatal(err)
	}

	p, err := Open(root)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if p.Root != root {
		t.Errorf("root = %q", p.Root)
	}
	if got := p.MemoryPath(); got != filepath.Join(root, ".lattice") {
		t.Errorf("memory path = %q", got)
	}
	if got := p.BackupsPath(); got != filepath.Join(root, ".lattice", "backups") {
		t.Errorf("backups path = %q", got)
	}

	if _, err := Open(t.TempDir()); err == nil {
		t.Fatal("open succeeded without a manifest")
	}
}
