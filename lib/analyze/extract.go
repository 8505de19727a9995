// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package analyze

import (
	"regexp"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Extraction patterns. RE2 has no backreferences, so quoted strings
// are matched with explicit single/double alternatives where the
// quote style matters.
var (
	pythonImportPattern = regexp.MustCompile(
		`(?m)^[ \t]*(?:from[ \t]+([.\w]+)[ \t]+import|import[ \t]+([.\w]+(?:[ \t]*,[ \t]*[.\w]+)*))`)

	jsImportPattern = regexp.MustCompile(
		`(?:import\s+[^;'"]*?from\s*["']([^"']+)["'])|(?:require\s*\(\s*["']([^"']+)["']\s*\))|(?:import\s*\(\s*["']([^"']+)["']\s*\))`)

	goImportBlockPattern  = regexp.MustCompile(`(?ms)^import\s*\((.*?)\)`)
	goImportSinglePattern = regexp.MustCompile(`(?m)^import\s+(?:[\w.]+\s+|_\s+)?"([^"]+)"`)
	goQuotedPattern       = regexp.MustCompile(`"([^"]+)"`)

	htmlHrefPattern = regexp.MustCompile(`(?i)<(?:a|link)\s[^>]*?href\s*=\s*(?:"([^"]+)"|'([^']+)')`)
	htmlSrcPattern  = regexp.MustCompile(`(?i)<(?:script|img)\s[^>]*?src\s*=\s*(?:"([^"]+)"|'([^']+)')`)

	cssImportPattern = regexp.MustCompile(`@import\s+(?:url\s*\(\s*)?["']?([^"')\s;]+)["']?`)
)

// extractRefs pulls raw reference strings out of content, in order of
// appearance, deduplicated.
func extractRefs(t FileType, content []byte) []string {
	var refs []string
	switch t {
	case Python:
		refs = extractPython(string(content))
	case JavaScript:
		refs = extractJavaScript(string(content))
	case Go:
		refs = extractGo(string(content))
	case Markdown:
		refs = extractMarkdown(content)
	case HTML:
		refs = extractHTML(string(content))
	case CSS:
		refs = extractCSS(string(content))
	}
	return dedupe(refs)
}

func extractPython(content string) []string {
	var refs []string
	for _, m := range pythonImportPattern.FindAllStringSubmatch(content, -1) {
		switch {
		case m[1] != "":
			refs = append(refs, m[1])
		case m[2] != "":
			// "import a, b" names several modules at once.
			for _, part := range strings.Split(m[2], ",") {
				if part = strings.TrimSpace(part); part != "" {
					refs = append(refs, part)
				}
			}
		}
	}
	return refs
}

func extractJavaScript(content string) []string {
	var refs []string
	for _, m := range jsImportPattern.FindAllStringSubmatch(content, -1) {
		refs = append(refs, firstGroup(m))
	}
	return refs
}

func extractGo(content string) []string {
	var refs []string
	for _, block := range goImportBlockPattern.FindAllStringSubmatch(content, -1) {
		for _, q := range goQuotedPattern.FindAllStringSubmatch(block[1], -1) {
			refs = append(refs, q[1])
		}
	}
	for _, m := range goImportSinglePattern.FindAllStringSubmatch(content, -1) {
		refs = append(refs, m[1])
	}
	return refs
}

// markdownParser is shared; goldmark parsers are safe for concurrent
// Parse calls.
var (
	markdownParser     goldmark.Markdown
	markdownParserOnce sync.Once
)

func getMarkdownParser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParser = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdownParser
}

// extractMarkdown walks the goldmark AST collecting link, image, and
// autolink destinations. AST parsing (rather than a link regex) keeps
// fenced code blocks and inline code from contributing references.
func extractMarkdown(source []byte) []string {
	document := getMarkdownParser().Parser().Parse(text.NewReader(source))
	var refs []string
	ast.Walk(document, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Link:
			refs = append(refs, string(v.Destination))
		case *ast.Image:
			refs = append(refs, string(v.Destination))
		case *ast.AutoLink:
			refs = append(refs, string(v.URL(source)))
		}
		return ast.WalkContinue, nil
	})
	return refs
}

func extractHTML(content string) []string {
	var refs []string
	for _, m := range htmlHrefPattern.FindAllStringSubmatch(content, -1) {
		refs = append(refs, firstGroup(m))
	}
	for _, m := range htmlSrcPattern.FindAllStringSubmatch(content, -1) {
		refs = append(refs, firstGroup(m))
	}
	return refs
}

func extractCSS(content string) []string {
	var refs []string
	for _, m := range cssImportPattern.FindAllStringSubmatch(content, -1) {
		refs = append(refs, m[1])
	}
	return refs
}

// firstGroup returns the first non-empty capture group.
func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

func dedupe(refs []string) []string {
	seen := make(map[string]bool, len(refs))
	out := refs[:0]
	for _, r := range refs {
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
