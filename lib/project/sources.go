// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/lattice/lib/analyze"
	"github.com/bureau-foundation/lattice/lib/keymap"
	"github.com/bureau-foundation/lattice/lib/suggest"
)

// buildSources resolves every artifact's raw references against the
// key map and shapes the evidence the suggestion engine consumes,
// keyed by canonical key.
func buildSources(km *keymap.Map, arts []artifact, goModule string) map[string]suggest.Source {
	resolver := &analyze.Resolver{
		Tracked: func(rel string) bool {
			_, ok := km.KeyFor(rel)
			return ok
		},
		GoModule: goModule,
	}

	sources := make(map[string]suggest.Source, km.Len())
	for _, e := range km.Entries() {
		if e.IsDir {
			sources[e.Key()] = suggest.Source{IsDir: true}
		}
	}
	for _, a := range arts {
		src := suggest.Source{IsDoc: a.analysis.Type.IsDoc()}
		if refs := resolver.Resolve(a.analysis); len(refs) > 0 {
			src.Refs = make(map[string]bool, len(refs))
			for _, ref := range refs {
				src.Refs[ref] = true
			}
		}
		sources[a.key] = src
	}
	return sources
}

// goModulePath reads the module path from the project's go.mod, when
// there is one. It only feeds Go import resolution.
func goModulePath(root string) string {
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "module "); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}
