// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tracker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// MainFile is the conventional main tracker file name under the
	// memory directory.
	MainFile = "module_relationship_tracker.md"
	// DocFile is the conventional doc tracker file name under the
	// memory directory.
	DocFile = "doc_tracker.md"
	// MiniSuffix marks a module's mini tracker.
	MiniSuffix = "_module.md"
)

// KindForPath classifies a tracker file by its naming convention.
// Files following no convention are treated as mini trackers.
func KindForPath(path string) Kind {
	switch filepath.Base(path) {
	case MainFile:
		return Main
	case DocFile:
		return Doc
	default:
		return Mini
	}
}

// MainPath returns the main tracker location under the memory
// directory.
func MainPath(memoryDir string) string {
	return filepath.Join(memoryDir, MainFile)
}

// DocPath returns the doc tracker location under the memory
// directory.
func DocPath(memoryDir string) string {
	return filepath.Join(memoryDir, DocFile)
}

// MiniPath returns the conventional mini tracker path for a module
// directory: <dir>/<base>_module.md.
func MiniPath(moduleDir string) string {
	return filepath.Join(moduleDir, filepath.Base(moduleDir)+MiniSuffix)
}

// Discover returns every tracker file of a project: the main and doc
// trackers under memoryDir when present, then each *_module.md under
// the code roots in sorted order. Missing roots are skipped.
func Discover(memoryDir string, codeRoots []string) ([]string, error) {
	var paths []string
	for _, p := range []string{MainPath(memoryDir), DocPath(memoryDir)} {
		if _, err := os.Stat(p); err == nil {
			paths = append(paths, p)
		}
	}

	seen := make(map[string]bool)
	var minis []string
	for _, root := range codeRoots {
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if strings.HasSuffix(d.Name(), MiniSuffix) && !seen[p] {
				seen[p] = true
				minis = append(minis, p)
			}
			return nil
		})
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("tracker: scanning %s: %w", root, err)
		}
	}
	sort.Strings(minis)
	return append(paths, minis...), nil
}
