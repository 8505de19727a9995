// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// ManifestName is the manifest filename that marks a project root.
const ManifestName = "lattice.jsonc"

// Manifest declares the tracked surface of a project. It is
// human-authored JSONC; tooling reads it and never writes it.
type Manifest struct {
	// CodeRoots and DocRoots are project-relative directories,
	// slash-separated. Code roots feed the main tracker and the
	// mini trackers; doc roots feed the doc tracker.
	CodeRoots []string `json:"code_roots"`
	DocRoots  []string `json:"doc_roots"`

	// ExcludedDirs are directory basenames skipped everywhere.
	ExcludedDirs []string `json:"excluded_dirs"`
	// ExcludedExtensions are file extensions (with dot) skipped
	// everywhere, compared case-insensitively.
	ExcludedExtensions []string `json:"excluded_extensions"`
	// ExcludedPatterns are shell patterns matched against both the
	// project-relative path and the basename.
	ExcludedPatterns []string `json:"excluded_patterns"`
}

// DefaultManifest returns a manifest with the stock exclusion lists
// and no roots. Exclusion defaults apply only when the manifest file
// omits the corresponding list entirely.
func DefaultManifest() *Manifest {
	return &Manifest{
		ExcludedDirs: []string{
			".git", ".hg", ".idea", ".vscode", "__pycache__",
			"node_modules", ".venv", "venv", "dist", "build",
		},
		ExcludedExtensions: []string{
			".pyc", ".pyo", ".so", ".o", ".a", ".class", ".jar",
			".exe", ".dll", ".bin", ".log", ".tmp",
		},
		// Mini trackers live inside code roots and must not be
		// tracked as project files themselves.
		ExcludedPatterns: []string{"*_module.md"},
	}
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(manifestPath string) (*Manifest, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("config: manifest: %w", err)
	}
	return ParseManifest(manifestPath, data)
}

// ParseManifest strips JSONC comments and trailing commas, then
// unmarshals and validates the manifest.
func ParseManifest(manifestPath string, data []byte) (*Manifest, error) {
	m := DefaultManifest()
	if err := json.Unmarshal(jsonc.ToJSON(data), m); err != nil {
		return nil, fmt.Errorf("config: manifest %s: %w", manifestPath, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("config: manifest %s: %w", manifestPath, err)
	}
	return m, nil
}

// Validate checks root declarations: at least one root, all of them
// clean relative paths, none nested inside another.
func (m *Manifest) Validate() error {
	if len(m.CodeRoots)+len(m.DocRoots) == 0 {
		return fmt.Errorf("no code_roots or doc_roots declared")
	}
	all := make([]string, 0, len(m.CodeRoots)+len(m.DocRoots))
	all = append(all, m.CodeRoots...)
	all = append(all, m.DocRoots...)

	seen := make(map[string]bool)
	cleaned := make([]string, 0, len(all))
	for _, r := range all {
		c := path.Clean(r)
		if c == "." || c == "" || c == "/" {
			return fmt.Errorf("root %q resolves to the project root itself", r)
		}
		if path.IsAbs(c) || c == ".." || strings.HasPrefix(c, "../") {
			return fmt.Errorf("root %q is not inside the project", r)
		}
		if seen[c] {
			return fmt.Errorf("root %q declared twice", c)
		}
		seen[c] = true
		cleaned = append(cleaned, c)
	}
	for _, a := range cleaned {
		for _, b := range cleaned {
			if a != b && strings.HasPrefix(b, a+"/") {
				return fmt.Errorf("root %q is nested inside root %q", b, a)
			}
		}
	}
	return nil
}

// Excluder returns the exclusion predicate used by key generation and
// artifact discovery. The predicate takes a project-relative path.
func (m *Manifest) Excluder() func(rel string, isDir bool) bool {
	dirs := make(map[string]bool, len(m.ExcludedDirs))
	for _, d := range m.ExcludedDirs {
		dirs[d] = true
	}
	exts := make(map[string]bool, len(m.ExcludedExtensions))
	for _, e := range m.ExcludedExtensions {
		exts[strings.ToLower(e)] = true
	}
	patterns := append([]string(nil), m.ExcludedPatterns...)

	return func(rel string, isDir bool) bool {
		base := path.Base(rel)
		if isDir && dirs[base] {
			return true
		}
		if !isDir && exts[strings.ToLower(path.Ext(base))] {
			return true
		}
		for _, p := range patterns {
			if ok, _ := path.Match(p, base); ok {
				return true
			}
			if ok, _ := path.Match(p, rel); ok {
				return true
			}
		}
		return false
	}
}

// FindProjectRoot walks upward from start until it finds a directory
// containing the manifest file. Returns the absolute project root.
func FindProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("config: %w", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ManifestName)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("config: no %s found in %s or any parent", ManifestName, start)
		}
		dir = parent
	}
}
