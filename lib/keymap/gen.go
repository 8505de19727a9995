// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keymap

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bureau-foundation/lattice/lib/gridkey"
)

// GenerateOptions configures a generation walk.
type GenerateOptions struct {
	// ProjectRoot is the absolute directory all tracked paths are
	// relative to.
	ProjectRoot string
	// CodeRoots and DocRoots are project-relative directories to
	// walk, slash-separated. Code roots are processed first, each
	// group in sorted order.
	CodeRoots []string
	DocRoots  []string
	// Exclude reports whether a project-relative path should be
	// skipped. Nil excludes nothing. Excluded directories are not
	// descended into.
	Exclude func(rel string, isDir bool) bool
}

// GenerateResult reports what a generation walk changed.
type GenerateResult struct {
	// New lists entries registered by this walk, in registration
	// order.
	New []Entry
	// Removed lists entries whose paths no longer exist under the
	// tracked roots.
	Removed []Entry
}

// Generate walks the tracked roots and assigns keys to every
// directory and file that is not excluded. Paths already in the map
// keep their keys untouched; new paths consume the persisted
// counters, so regeneration over an unchanged tree changes nothing
// and incremental additions never renumber existing entries.
// Entries whose paths have disappeared are removed from the map.
//
// On error the map may hold a partial update and should be discarded
// without saving.
func (m *Map) Generate(opts GenerateOptions) (*GenerateResult, error) {
	if opts.ProjectRoot == "" {
		return nil, fmt.Errorf("keymap: generate: project root required")
	}
	if len(opts.CodeRoots) == 0 && len(opts.DocRoots) == 0 {
		return nil, fmt.Errorf("keymap: generate: no roots configured")
	}
	w := &walker{m: m, opts: opts, seen: make(map[string]bool), result: new(GenerateResult)}

	roots := append(sortedClean(opts.CodeRoots), sortedClean(opts.DocRoots)...)
	done := make(map[string]bool)
	for _, root := range roots {
		if done[root] {
			continue
		}
		done[root] = true
		if err := w.walkRoot(root); err != nil {
			return nil, err
		}
	}

	for _, e := range m.Entries() {
		if !w.seen[e.Path] {
			removed, _ := m.Remove(e.Path)
			w.result.Removed = append(w.result.Removed, removed)
		}
	}
	return w.result, nil
}

type walker struct {
	m      *Map
	opts   GenerateOptions
	seen   map[string]bool
	result *GenerateResult
}

// container is a directory that owns its own file indexes and
// subdirectory letters: a root or a promoted directory.
type container struct {
	rel  string
	key  gridkey.Key // tier and directory letter only
	root string
}

func (w *walker) walkRoot(root string) error {
	info, err := os.Stat(w.abs(root))
	if err != nil {
		if os.IsNotExist(err) {
			return &PathNotFoundError{Path: root}
		}
		return fmt.Errorf("keymap: generate: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("keymap: generate: root %s is not a directory", root)
	}

	// Every root is the sole tier-1 container of its own letter
	// sequence, so roots share the base 1A and are told apart by
	// instance suffixes.
	base := gridkey.Key{Tier: 1, Dir: 'A'}
	if err := w.track(root, base, true); err != nil {
		return err
	}
	queue := []container{{rel: root, key: base, root: root}}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		next, err := w.processContainer(c)
		if err != nil {
			return err
		}
		queue = append(queue, next...)
	}
	return nil
}

// processContainer assigns keys for the container's files, its
// immediate subdirectories and their files, and promotes directories
// two levels down into new containers of the next tier.
func (w *walker) processContainer(c container) ([]container, error) {
	files, dirs, err := w.listDir(c.rel)
	if err != nil {
		return nil, err
	}
	for _, name := range files {
		rel := path.Join(c.rel, name)
		if err := w.trackFile(rel, c.rel, c.key); err != nil {
			return nil, err
		}
	}

	type promoted struct {
		rel string
		sub byte
	}
	var candidates []promoted
	for _, name := range dirs {
		rel := path.Join(c.rel, name)
		w.seen[rel] = true
		sub, err := w.subKey(c, rel)
		if err != nil {
			return nil, err
		}
		subFiles, subDirs, err := w.listDir(rel)
		if err != nil {
			return nil, err
		}
		for _, fn := range subFiles {
			frel := path.Join(rel, fn)
			if err := w.trackFile(frel, rel, sub); err != nil {
				return nil, err
			}
		}
		for _, dn := range subDirs {
			candidates = append(candidates, promoted{rel: path.Join(rel, dn), sub: sub.Sub})
		}
	}

	// Promotion order follows the parent subdirectory letter, then
	// the directory name, so letter assignment is reproducible.
	slices.SortFunc(candidates, func(a, b promoted) int {
		if a.sub != b.sub {
			return int(a.sub) - int(b.sub)
		}
		return strings.Compare(a.rel, b.rel)
	})
	var next []container
	for _, p := range candidates {
		w.seen[p.rel] = true
		key, err := w.promoteKey(c, p.rel)
		if err != nil {
			return nil, err
		}
		next = append(next, container{rel: p.rel, key: key, root: c.root})
	}
	return next, nil
}

// subKey returns the container-plus-letter key for an immediate
// subdirectory, assigning the next lowercase letter only when the
// path is new.
func (w *walker) subKey(c container, rel string) (gridkey.Key, error) {
	if e, ok := w.m.byPath[rel]; ok {
		return gridkey.MustParse(e.Base), nil
	}
	n := w.m.nextSubLetter(c.rel)
	if n >= 26 {
		return gridkey.Key{}, fmt.Errorf("keymap: generate: more than 26 subdirectories under %s", c.rel)
	}
	key := c.key
	key.Sub = byte('a' + n)
	if err := w.track(rel, key, true); err != nil {
		return gridkey.Key{}, err
	}
	return key, nil
}

// promoteKey returns the next-tier container key for a directory two
// levels below c, assigning the root's next uppercase letter only
// when the path is new.
func (w *walker) promoteKey(c container, rel string) (gridkey.Key, error) {
	if e, ok := w.m.byPath[rel]; ok {
		return gridkey.MustParse(e.Base), nil
	}
	tier := c.key.Tier + 1
	n := w.m.nextDirLetter(c.root, tier)
	if n >= 26 {
		return gridkey.Key{}, fmt.Errorf("keymap: generate: tier %d letters exhausted under root %s", tier, c.root)
	}
	key := gridkey.Key{Tier: tier, Dir: byte('A' + n)}
	if err := w.track(rel, key, true); err != nil {
		return gridkey.Key{}, err
	}
	return key, nil
}

func (w *walker) trackFile(rel, containerPath string, base gridkey.Key) error {
	w.seen[rel] = true
	if _, ok := w.m.byPath[rel]; ok {
		return nil
	}
	key := base
	key.Index = w.m.nextFileIndex(containerPath)
	return w.track(rel, key, false)
}

func (w *walker) track(rel string, base gridkey.Key, isDir bool) error {
	w.seen[rel] = true
	if _, ok := w.m.byPath[rel]; ok {
		return nil
	}
	e, err := w.m.Register(rel, base, isDir)
	if err != nil {
		return err
	}
	w.result.New = append(w.result.New, e)
	return nil
}

// listDir returns the regular files and directories under rel,
// sorted by name, with exclusions and irregular entries dropped.
func (w *walker) listDir(rel string) (files, dirs []string, err error) {
	entries, err := os.ReadDir(w.abs(rel))
	if err != nil {
		return nil, nil, fmt.Errorf("keymap: generate: %w", err)
	}
	for _, e := range entries {
		child := path.Join(rel, e.Name())
		switch {
		case e.IsDir():
			if w.excluded(child, true) {
				continue
			}
			dirs = append(dirs, e.Name())
		case e.Type().IsRegular():
			if w.excluded(child, false) {
				continue
			}
			files = append(files, e.Name())
		}
	}
	return files, dirs, nil
}

func (w *walker) excluded(rel string, isDir bool) bool {
	return w.opts.Exclude != nil && w.opts.Exclude(rel, isDir)
}

func (w *walker) abs(rel string) string {
	return filepath.Join(w.opts.ProjectRoot, filepath.FromSlash(rel))
}

func sortedClean(roots []string) []string {
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		r = path.Clean(r)
		if r != "" && r != "." {
			out = append(out, r)
		}
	}
	slices.Sort(out)
	return out
}

func (m *Map) nextFileIndex(containerPath string) int {
	n := m.fileIndex[containerPath]
	if n < 1 {
		n = 1
	}
	m.fileIndex[containerPath] = n + 1
	return n
}

func (m *Map) nextSubLetter(containerPath string) int {
	n := m.subLetter[containerPath]
	m.subLetter[containerPath] = n + 1
	return n
}

func (m *Map) nextDirLetter(root string, tier int) int {
	k := fmt.Sprintf("%s@%d", root, tier)
	n := m.dirLetter[k]
	m.dirLetter[k] = n + 1
	return n
}
