// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package visual renders the aggregated dependency view as Mermaid
// flowcharts. Directory keys become nested subgraphs, file keys
// become nodes, and dependency characters pick the arrow style. The
// output is deterministic for a given link map.
package visual

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/bureau-foundation/lattice/lib/grid"
	"github.com/bureau-foundation/lattice/lib/gridkey"
	"github.com/bureau-foundation/lattice/lib/keymap"
	"github.com/bureau-foundation/lattice/lib/tracker"
)

// edge is one drawable relation after pair consolidation.
type edge struct {
	from, to string
	ch       grid.Char
}

// Mermaid renders links as a flowchart. focus narrows the view: a
// single directory key selects its module (internal edges plus the
// interface to the rest of the project), any other non-empty focus
// keeps edges touching at least one focus key, and an empty focus
// draws the whole project. Focus keys resolve through the key map, so
// a bare base with several instances is rejected as ambiguous.
func Mermaid(links map[tracker.Link]tracker.LinkInfo, km *keymap.Map, focus []string) (string, error) {
	entries := make(map[string]keymap.Entry)
	for _, e := range km.Entries() {
		entries[e.Key()] = e
	}

	focusKeys := make(map[string]bool, len(focus))
	var moduleRoot keymap.Entry
	moduleView := false
	for _, f := range focus {
		e, err := km.ResolveKey(f)
		if err != nil {
			return "", fmt.Errorf("visual: focus: %w", err)
		}
		focusKeys[e.Key()] = true
	}
	if len(focus) == 1 {
		for k := range focusKeys {
			if entries[k].IsDir {
				moduleView = true
				moduleRoot = entries[k]
			}
		}
	}

	edges := consolidate(links)
	edges = filterScope(edges, focusKeys, moduleView, moduleRoot, entries)
	edges = filterStructural(edges, entries)

	nodes := make(map[string]bool)
	for _, e := range edges {
		nodes[e.from] = true
		nodes[e.to] = true
	}
	for k := range focusKeys {
		nodes[k] = true
	}
	if len(nodes) == 0 {
		return "flowchart TB\n\n%% no dependencies to draw\n", nil
	}

	var b strings.Builder
	b.WriteString("flowchart TB\n")
	renderNodes(&b, nodes, entries)
	renderEdges(&b, edges)
	return b.String(), nil
}

// consolidate folds the directed link map into one edge per key pair.
// Verified absences and placeholders are not drawn. A mutual
// observation in either direction wins; reciprocal directed links
// collapse to a single dependency arrow; otherwise the pair's first
// link in hierarchical order decides.
func consolidate(links map[tracker.Link]tracker.LinkInfo) []edge {
	drawable := make(map[tracker.Link]grid.Char, len(links))
	for l, info := range links {
		if info.Char == grid.NoLink || info.Char == grid.Placeholder {
			continue
		}
		drawable[l] = info.Char
	}

	var edges []edge
	done := make(map[tracker.Link]bool)
	for _, l := range tracker.SortedLinks(links) {
		fwd, ok := drawable[l]
		if !ok {
			continue
		}
		pair := l
		if gridkey.CompareStrings(pair.Row, pair.Col) > 0 {
			pair = tracker.Link{Row: l.Col, Col: l.Row}
		}
		if done[pair] {
			continue
		}
		done[pair] = true

		rev, hasRev := drawable[tracker.Link{Row: l.Col, Col: l.Row}]
		switch {
		case fwd == grid.Mutual || (hasRev && rev == grid.Mutual):
			edges = append(edges, edge{l.Row, l.Col, grid.Mutual})
		case fwd == grid.DependsOn && hasRev && rev == grid.RequiredBy:
			edges = append(edges, edge{l.Row, l.Col, grid.DependsOn})
		case fwd == grid.RequiredBy && hasRev && rev == grid.DependsOn:
			edges = append(edges, edge{l.Col, l.Row, grid.DependsOn})
		default:
			edges = append(edges, edge{l.Row, l.Col, fwd})
		}
	}
	return edges
}

func filterScope(edges []edge, focusKeys map[string]bool, moduleView bool, moduleRoot keymap.Entry, entries map[string]keymap.Entry) []edge {
	if len(focusKeys) == 0 {
		return edges
	}
	var kept []edge
	if moduleView {
		inModule := func(key string) bool {
			e, ok := entries[key]
			if !ok {
				return false
			}
			return e.Path == moduleRoot.Path || strings.HasPrefix(e.Path, moduleRoot.Path+"/")
		}
		for _, e := range edges {
			if inModule(e.from) || inModule(e.to) {
				kept = append(kept, e)
			}
		}
		return kept
	}
	for _, e := range edges {
		if focusKeys[e.from] || focusKeys[e.to] {
			kept = append(kept, e)
		}
	}
	return kept
}

// filterStructural drops edges that carry no information in a
// diagram: mutual links between a directory and its direct child
// (containment, not dependency), and links whose endpoints mix a file
// with a directory unless they are documentation links. Edges with an
// endpoint missing from the key map are dropped too; stale keys are
// the validate command's concern.
func filterStructural(edges []edge, entries map[string]keymap.Entry) []edge {
	var kept []edge
	for _, e := range edges {
		from, okFrom := entries[e.from]
		to, okTo := entries[e.to]
		if !okFrom || !okTo {
			continue
		}
		if e.ch == grid.Mutual && directParentChild(from, to) {
			continue
		}
		if e.ch != grid.DocLink && from.IsDir != to.IsDir {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

func directParentChild(a, b keymap.Entry) bool {
	return path.Dir(a.Path) == b.Path || path.Dir(b.Path) == a.Path
}

// renderNodes writes the node and subgraph declarations. Every drawn
// key is nested under its nearest tracked ancestor directory, so the
// diagram mirrors the project layout even when intermediate
// directories are untracked.
func renderNodes(b *strings.Builder, nodes map[string]bool, entries map[string]keymap.Entry) {
	dirByPath := make(map[string]string)
	for k, e := range entries {
		if e.IsDir {
			dirByPath[e.Path] = k
		}
	}

	// Close over the ancestor chain: every tracked ancestor of a
	// drawn node becomes a subgraph.
	placed := make(map[string]bool, len(nodes))
	for k := range nodes {
		e, ok := entries[k]
		if !ok {
			continue
		}
		placed[k] = true
		for dir := path.Dir(e.Path); dir != "." && dir != "/"; dir = path.Dir(dir) {
			if dk, ok := dirByPath[dir]; ok {
				placed[dk] = true
			}
		}
	}

	children := make(map[string][]string)
	var roots []string
	for k := range placed {
		parent := nearestPlacedDir(entries[k].Path, dirByPath, placed)
		if parent == "" {
			roots = append(roots, k)
		} else {
			children[parent] = append(children[parent], k)
		}
	}
	sortKeys(roots)
	for _, ks := range children {
		sortKeys(ks)
	}

	var write func(key string, depth int)
	write = func(key string, depth int) {
		e := entries[key]
		indent := strings.Repeat("  ", depth)
		label := fmt.Sprintf("%s<br>%s", key, path.Base(e.Path))
		if e.IsDir {
			fmt.Fprintf(b, "%ssubgraph %s [\"%s\"]\n", indent, nodeID(key), label)
			for _, c := range children[key] {
				write(c, depth+1)
			}
			fmt.Fprintf(b, "%send\n", indent)
			return
		}
		fmt.Fprintf(b, "%s%s[\"%s\"]\n", indent+"  ", nodeID(key), label)
	}
	for _, r := range roots {
		write(r, 0)
	}
}

func renderEdges(b *strings.Builder, edges []edge) {
	if len(edges) == 0 {
		return
	}
	sort.Slice(edges, func(i, j int) bool {
		if c := gridkey.CompareStrings(edges[i].from, edges[j].from); c != 0 {
			return c < 0
		}
		if c := gridkey.CompareStrings(edges[i].to, edges[j].to); c != 0 {
			return c < 0
		}
		return edges[i].ch < edges[j].ch
	})

	b.WriteString("\n  %% dependencies\n")
	for _, e := range edges {
		arrow, label := "-->", e.ch.String()
		from, to := e.from, e.to
		switch e.ch {
		case grid.DependsOn:
			arrow, label = "-->", "relies on"
		case grid.RequiredBy:
			// Drawn from the dependent side: to requires from.
			arrow, label = "-->", "relies on"
			from, to = e.to, e.from
		case grid.Mutual:
			arrow, label = "<-->", "mutual"
		case grid.DocLink:
			arrow, label = "-.->", "docs"
		case grid.Weak:
			arrow, label = "-.->", "semantic (weak)"
		case grid.Strong:
			arrow, label = "==>", "semantic (strong)"
		}
		fmt.Fprintf(b, "  %s %s|\"%s\"| %s\n", nodeID(from), arrow, label, nodeID(to))
	}
}

// nearestPlacedDir walks up the path until it finds a placed
// directory key, or "" when the node sits at the top level.
func nearestPlacedDir(p string, dirByPath map[string]string, placed map[string]bool) string {
	for dir := path.Dir(p); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if k, ok := dirByPath[dir]; ok && placed[k] {
			return k
		}
	}
	return ""
}

func sortKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		return gridkey.CompareStrings(keys[i], keys[j]) < 0
	})
}

// nodeID sanitizes a key for use as a Mermaid identifier. The
// instance separator is the only non-alphanumeric character a key can
// carry, and its position is fixed by the grammar, so the mapping
// stays injective.
func nodeID(key string) string {
	return strings.ReplaceAll(key, "#", "_")
}
