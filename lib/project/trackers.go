// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bureau-foundation/lattice/lib/config"
	"github.com/bureau-foundation/lattice/lib/grid"
	"github.com/bureau-foundation/lattice/lib/keymap"
	"github.com/bureau-foundation/lattice/lib/suggest"
	"github.com/bureau-foundation/lattice/lib/tracker"
)

// enginePolicy derives the suggestion policy from the settings.
func enginePolicy(s *config.Settings) suggest.Policy {
	return suggest.Policy{
		StrongDoc:          s.Thresholds.DocSimilarity,
		StrongCode:         s.Thresholds.CodeSimilarity,
		WeakMargin:         s.Thresholds.WeakMargin,
		StaticVerified:     s.Compute.StaticAuthoritative,
		StructuralVerified: s.Compute.DocStructural == config.DocStructuralVerify,
	}
}

// Plan names one tracker a project maintains and the key universe it
// covers. Plans come out in dependency order: mini trackers, then the
// doc tracker, then the main tracker.
type Plan struct {
	// Path is the tracker's absolute file location.
	Path string
	// Name is the tracker identity written in the definitions header.
	Name string
	Kind tracker.Kind
	// Defs maps each local key to its project-relative path.
	Defs map[string]string
}

// Plans derives the project's tracker set from the key map: one mini
// tracker per module directory, a doc tracker when doc roots hold
// tracked entries, and the module-level main tracker. Empty universes
// produce no plan.
func Plans(p *config.Project, km *keymap.Map) []Plan {
	modules := moduleDirs(km, p.Manifest.CodeRoots)
	var plans []Plan

	for _, mod := range modules {
		defs := make(map[string]string)
		for _, e := range km.Entries() {
			if e.IsDir || !underDir(e.Path, mod.Path) {
				continue
			}
			if owner, ok := moduleFor(e.Path, modules); !ok || owner.Key() != mod.Key() {
				continue
			}
			defs[e.Key()] = e.Path
		}
		if len(defs) == 0 {
			continue
		}
		path := tracker.MiniPath(filepath.Join(p.Root, filepath.FromSlash(mod.Path)))
		plans = append(plans, Plan{
			Path: path,
			Name: strings.TrimSuffix(filepath.Base(path), ".md"),
			Kind: tracker.Mini,
			Defs: defs,
		})
	}

	docDefs := make(map[string]string)
	for _, e := range km.Entries() {
		if underAny(e.Path, p.Manifest.DocRoots) {
			docDefs[e.Key()] = e.Path
		}
	}
	if len(docDefs) > 0 {
		plans = append(plans, Plan{
			Path: tracker.DocPath(p.MemoryPath()),
			Name: strings.TrimSuffix(tracker.DocFile, ".md"),
			Kind: tracker.Doc,
			Defs: docDefs,
		})
	}

	if len(modules) > 0 {
		mainDefs := make(map[string]string, len(modules))
		for _, mod := range modules {
			mainDefs[mod.Key()] = mod.Path
		}
		plans = append(plans, Plan{
			Path: tracker.MainPath(p.MemoryPath()),
			Name: strings.TrimSuffix(tracker.MainFile, ".md"),
			Kind: tracker.Main,
			Defs: mainDefs,
		})
	}
	return plans
}

// updateTrackers runs the suggestion passes in dependency order: one
// mini tracker per module, then the doc tracker, then the main
// tracker, which aggregates the file-level evidence to module
// granularity. Trackers whose content did not change are not
// rewritten, which keeps repeat runs byte-identical.
func (r *Runner) updateTrackers(km *keymap.Map, arts []artifact, sim suggest.Similarity) ([]TrackerUpdate, error) {
	p := r.Project
	sources := buildSources(km, arts, goModulePath(p.Root))
	engine := &suggest.Engine{Policy: enginePolicy(p.Settings), Similarity: sim}
	modules := moduleDirs(km, p.Manifest.CodeRoots)

	var updates []TrackerUpdate
	for _, plan := range Plans(p, km) {
		var apply func(*tracker.Tracker) (int, error)
		if plan.Kind == tracker.Main {
			apply = func(t *tracker.Tracker) (int, error) {
				return r.aggregateMain(t, km, arts, sources, modules)
			}
		}
		update, err := r.updateOne(km, engine, sources, plan, apply)
		if err != nil {
			return nil, err
		}
		updates = append(updates, update)
	}
	return updates, nil
}

// updateOne reconciles one tracker's key set against the key map,
// runs the suggestion engine (or the custom apply step for the main
// tracker), and saves the file when anything changed. Keys already
// in the tracker that still resolve through the key map are kept
// even when foreign to the plan's universe.
func (r *Runner) updateOne(km *keymap.Map, engine *suggest.Engine, sources map[string]suggest.Source, plan Plan, apply func(*tracker.Tracker) (int, error)) (TrackerUpdate, error) {
	p := r.Project
	update := TrackerUpdate{Name: plan.Name, Path: relPath(p.Root, plan.Path)}

	t, reshaped, err := reconcile(km, plan)
	if err != nil {
		return update, err
	}

	changes := 0
	if apply != nil {
		changes, err = apply(t)
		if err != nil {
			return update, err
		}
	} else {
		res, err := engine.Run(t, sources)
		if err != nil {
			return update, err
		}
		changes = len(res.Changes)
	}
	update.Keys = t.Len()
	update.Changes = changes

	if reshaped || changes > 0 {
		t.Path = plan.Path
		err := t.Save(tracker.SaveOptions{BackupDir: p.BackupsPath(), Now: r.clock().Now()})
		if err != nil {
			return update, err
		}
		update.Written = true
		r.logger().Info("tracker updated",
			"tracker", update.Path, "keys", update.Keys, "changes", changes)
	}
	return update, nil
}

// reconcile loads the tracker at the plan's path (or starts an empty
// one), drops keys the key map no longer defines, and adds the
// wanted keys that are missing. Reports whether the key set changed.
func reconcile(km *keymap.Map, plan Plan) (*tracker.Tracker, bool, error) {
	t, err := tracker.Load(plan.Path)
	if errors.Is(err, fs.ErrNotExist) {
		t, err = tracker.New(plan.Name, plan.Kind, plan.Defs)
		if err != nil {
			return nil, false, err
		}
		return t, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	reshaped := false
	for _, k := range t.Keys() {
		if _, ok := km.PathFor(k); ok {
			continue
		}
		if err := t.RemoveKey(k); err != nil {
			return nil, false, err
		}
		reshaped = true
	}

	missing := make(map[string]string)
	for k, rel := range plan.Defs {
		if !t.Has(k) {
			missing[k] = rel
		}
	}
	if len(missing) > 0 {
		if err := t.AddKeys(missing); err != nil {
			return nil, false, err
		}
		reshaped = true
	}
	return t, reshaped, nil
}

// aggregateMain folds file-level reference evidence up to module
// granularity: an artifact in module A referencing anything in
// module B proposes a directed dependency at (A, B). Updates go
// through the lattice, so verified module cells survive.
func (r *Runner) aggregateMain(t *tracker.Tracker, km *keymap.Map, arts []artifact, sources map[string]suggest.Source, modules []keymap.Entry) (int, error) {
	verified := r.Project.Settings.Compute.StaticAuthoritative

	type pair struct{ row, col string }
	outgoing := make(map[pair]bool)
	docLink := make(map[pair]bool)
	for _, a := range arts {
		src := sources[a.key]
		from, ok := moduleFor(a.path, modules)
		if !ok {
			continue
		}
		for ref := range src.Refs {
			to, ok := moduleFor(ref, modules)
			if !ok || to.Key() == from.Key() {
				continue
			}
			pr := pair{row: from.Key(), col: to.Key()}
			if src.IsDoc {
				docLink[pr] = true
			} else {
				outgoing[pr] = true
			}
		}
	}

	changes := 0
	propose := func(row, col string, ch grid.Char) error {
		if !verified && ch.IsVerified() {
			ch = grid.Strong
		}
		changed, err := t.Grid().Suggest(row, col, ch)
		if err != nil {
			return fmt.Errorf("project: main tracker cell (%s, %s): %w", row, col, err)
		}
		if changed {
			changes++
		}
		return nil
	}
	for pr := range outgoing {
		ch := grid.DependsOn
		if outgoing[pair{row: pr.col, col: pr.row}] {
			ch = grid.Mutual
		}
		if err := propose(pr.row, pr.col, ch); err != nil {
			return changes, err
		}
	}
	for pr := range docLink {
		if err := propose(pr.row, pr.col, grid.DocLink); err != nil {
			return changes, err
		}
	}
	return changes, nil
}

// moduleDirs returns the module-granularity directories in sorted
// path order: every code root with tracked files of its own, plus
// each root's tracked immediate subdirectories.
func moduleDirs(km *keymap.Map, codeRoots []string) []keymap.Entry {
	roots := make(map[string]bool, len(codeRoots))
	for _, root := range codeRoots {
		roots[filepath.ToSlash(filepath.Clean(root))] = true
	}

	hasOwnFiles := make(map[string]bool)
	for _, e := range km.Entries() {
		if e.IsDir {
			continue
		}
		dir := filepath.ToSlash(filepath.Dir(e.Path))
		if roots[dir] {
			hasOwnFiles[dir] = true
		}
	}

	var modules []keymap.Entry
	for _, e := range km.Entries() {
		if !e.IsDir {
			continue
		}
		if roots[e.Path] {
			if hasOwnFiles[e.Path] {
				modules = append(modules, e)
			}
			continue
		}
		if roots[filepath.ToSlash(filepath.Dir(e.Path))] {
			modules = append(modules, e)
		}
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i].Path < modules[j].Path })
	return modules
}

// moduleFor maps a tracked path to its owning module by longest
// path prefix.
func moduleFor(rel string, modules []keymap.Entry) (keymap.Entry, bool) {
	var best keymap.Entry
	found := false
	for _, m := range modules {
		if rel != m.Path && !underDir(rel, m.Path) {
			continue
		}
		if !found || len(m.Path) > len(best.Path) {
			best = m
			found = true
		}
	}
	return best, found
}

func underDir(rel, dir string) bool {
	return strings.HasPrefix(rel, dir+"/")
}

func underAny(rel string, roots []string) bool {
	for _, root := range roots {
		clean := filepath.ToSlash(filepath.Clean(root))
		if rel == clean || underDir(rel, clean) {
			return true
		}
	}
	return false
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
