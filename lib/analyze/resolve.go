// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package analyze

import (
	"path"
	"strings"
)

// Resolver maps raw reference strings to tracked project paths.
type Resolver struct {
	// Tracked reports whether a project-relative path has a key in
	// the global key map. Required.
	Tracked func(rel string) bool

	// GoModule is the project's Go module path, when the project
	// has one. Go import paths under this prefix resolve to package
	// directories; without it Go imports are skipped.
	GoModule string
}

// Resolve returns the tracked paths the artifact references, in order
// of first appearance. Self references and anything that leaves the
// project or resolves to nothing tracked are dropped.
func (r *Resolver) Resolve(a *Analysis) []string {
	sourceDir := path.Dir(a.Path)
	if sourceDir == "." {
		sourceDir = ""
	}

	var out []string
	seen := make(map[string]bool)
	add := func(rel string, ok bool) {
		if !ok || rel == "" || rel == a.Path || seen[rel] {
			return
		}
		seen[rel] = true
		out = append(out, rel)
	}

	for _, ref := range a.Refs {
		switch a.Type {
		case Python:
			add(r.resolvePython(sourceDir, ref))
		case JavaScript:
			add(r.resolveJS(sourceDir, ref))
		case Go:
			add(r.resolveGo(ref))
		default:
			add(r.resolveLink(sourceDir, ref))
		}
	}
	return out
}

// resolveLink handles plain path references from markdown, HTML, and
// CSS. URLs with a scheme, pure fragments, and paths escaping the
// project are external.
func (r *Resolver) resolveLink(sourceDir, ref string) (string, bool) {
	if strings.Contains(ref, "://") ||
		strings.HasPrefix(ref, "mailto:") ||
		strings.HasPrefix(ref, "data:") ||
		strings.HasPrefix(ref, "#") {
		return "", false
	}
	ref, _, _ = strings.Cut(ref, "#")
	ref, _, _ = strings.Cut(ref, "?")
	if ref == "" {
		return "", false
	}

	var rel string
	if strings.HasPrefix(ref, "/") {
		// Site-absolute links resolve against the project root.
		rel = path.Clean(strings.TrimPrefix(ref, "/"))
	} else {
		rel = path.Join(sourceDir, ref)
	}
	if escapes(rel) {
		return "", false
	}
	return rel, r.Tracked(rel)
}

// resolvePython converts a dotted module reference to candidate
// paths. Relative imports anchor at the source directory; absolute
// imports probe every ancestor directory up to the project root, so
// intra-package absolute imports resolve without sys.path knowledge.
func (r *Resolver) resolvePython(sourceDir, module string) (string, bool) {
	dots := 0
	for dots < len(module) && module[dots] == '.' {
		dots++
	}
	rest := module[dots:]
	var parts []string
	if rest != "" {
		parts = strings.Split(rest, ".")
	}

	if dots > 0 {
		base := sourceDir
		for i := 1; i < dots; i++ {
			if base == "" {
				return "", false
			}
			base = parentDir(base)
		}
		return r.probePython(base, parts)
	}

	for base := sourceDir; ; base = parentDir(base) {
		if rel, ok := r.probePython(base, parts); ok {
			return rel, true
		}
		if base == "" {
			return "", false
		}
	}
}

// probePython tries the module path and its prefixes under base,
// longest first: "a.b.c" may be a module, or "a.b" a module with c a
// symbol inside it.
func (r *Resolver) probePython(base string, parts []string) (string, bool) {
	if len(parts) == 0 {
		if base != "" && r.Tracked(base) {
			return base, true
		}
		return "", false
	}
	for n := len(parts); n >= 1; n-- {
		p := path.Join(append([]string{base}, parts[:n]...)...)
		if escapes(p) {
			continue
		}
		for _, candidate := range []string{p + ".py", p + "/__init__.py", p} {
			if r.Tracked(candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

var jsSuffixes = []string{"", ".js", ".ts", ".jsx", ".tsx", ".mjs", ".cjs",
	"/index.js", "/index.ts"}

// resolveJS handles relative imports only; bare specifiers are
// package imports and external by definition.
func (r *Resolver) resolveJS(sourceDir, ref string) (string, bool) {
	if !strings.HasPrefix(ref, "./") && !strings.HasPrefix(ref, "../") {
		return "", false
	}
	base := path.Join(sourceDir, ref)
	if escapes(base) {
		return "", false
	}
	for _, suffix := range jsSuffixes {
		if candidate := base + suffix; r.Tracked(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// resolveGo maps an import path under the project's module to its
// package directory.
func (r *Resolver) resolveGo(ref string) (string, bool) {
	if r.GoModule == "" || !strings.HasPrefix(ref, r.GoModule+"/") {
		return "", false
	}
	rel := strings.TrimPrefix(ref, r.GoModule+"/")
	return rel, r.Tracked(rel)
}

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, "../")
}

func parentDir(dir string) string {
	parent := path.Dir(dir)
	if parent == "." || parent == "/" {
		return ""
	}
	return parent
}
