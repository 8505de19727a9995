// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package analyze

import (
	"slices"
	"testing"
)

func TestExtractPython(t *testing.T) {
	content := "import os\n" +
		"from auth.models import User\n" +
		"import json, sys\n" +
		"  from .sibling import helper\n" +
		"from ..pkg import thing\n" +
		"x = 'import fake'\n"
	got := extractRefs(Python, []byte(content))
	want := []string{"os", "auth.models", "json", "sys", ".sibling", "..pkg"}
	if !slices.Equal(got, want) {
		t.Fatalf("refs = %v, want %v", got, want)
	}
}

func TestExtractJavaScript(t *testing.T) {
	content := "import { x } from './util.js';\n" +
		"import Default from \"../components/App\";\n" +
		"const y = require('../lib/y');\n" +
		"const z = await import('./lazy.js');\n"
	got := extractRefs(JavaScript, []byte(content))
	want := []string{"./util.js", "../components/App", "../lib/y", "./lazy.js"}
	if !slices.Equal(got, want) {
		t.Fatalf("refs = %v, want %v", got, want)
	}
}

func TestExtractGo(t *testing.T) {
	content := "package main\n\n" +
		"import (\n\t\"fmt\"\n\n\tauth \"github.com/acme/app/lib/auth\"\n\t_ \"github.com/acme/app/lib/driver\"\n)\n\n" +
		"import \"os\"\n"
	got := extractRefs(Go, []byte(content))
	want := []string{"fmt", "github.com/acme/app/lib/auth", "github.com/acme/app/lib/driver", "os"}
	if !slices.Equal(got, want) {
		t.Fatalf("refs = %v, want %v", got, want)
	}
}

func TestExtractMarkdown(t *testing.T) {
	content := "# Title\n\n" +
		"See [the API](../api/overview.md) and ![diagram](assets/d.png).\n\n" +
		"Reference style: [spec][s].\n\n" +
		"[s]: docs/spec.md\n\n" +
		"Autolink: <https://example.com/page>\n\n" +
		"```go\n[not a link](nope.md)\n```\n"
	got := extractRefs(Markdown, []byte(content))
	want := []string{"../api/overview.md", "assets/d.png", "docs/spec.md", "https://example.com/page"}
	if !slices.Equal(got, want) {
		t.Fatalf("refs = %v, want %v", got, want)
	}
}

func TestExtractHTML(t *testing.T) {
	content := `<html><body>
<a href="../index.html">home</a>
<a class="nav" href='page2.html'>two</a>
<link rel="stylesheet" href="style.css">
<script src="app.js"></script>
<img src='logo.png'>
</body></html>`
	got := extractRefs(HTML, []byte(content))
	want := []string{"../index.html", "page2.html", "style.css", "app.js", "logo.png"}
	if !slices.Equal(got, want) {
		t.Fatalf("refs = %v, want %v", got, want)
	}
}

func TestExtractCSS(t *testing.T) {
	content := `@import "base.css";
@import url(theme.css);
@import url("fonts.css") screen;
body { color: red; }`
	got := extractRefs(CSS, []byte(content))
	want := []string{"base.css", "theme.css", "fonts.css"}
	if !slices.Equal(got, want) {
		t.Fatalf("refs = %v, want %v", got, want)
	}
}

func TestExtractDedupes(t *testing.T) {
	content := "import os\nimport os\nfrom os import path\n"
	got := extractRefs(Python, []byte(content))
	want := []string{"os"}
	if !slices.Equal(got, want) {
		t.Fatalf("refs = %v, want %v", got, want)
	}
}

func TestExtractGenericIsEmpty(t *testing.T) {
	if got := extractRefs(Generic, []byte("import os\n")); len(got) != 0 {
		t.Fatalf("generic extraction produced %v", got)
	}
}

func TestTypeOf(t *testing.T) {
	cases := []struct {
		path string
		want FileType
	}{
		{"src/a.py", Python},
		{"src/a.ts", JavaScript},
		{"src/a.MJS", JavaScript},
		{"lib/x.go", Go},
		{"docs/readme.md", Markdown},
		{"docs/readme.rst", Markdown},
		{"web/i.html", HTML},
		{"web/s.css", CSS},
		{"data/blob.bin", Generic},
		{"Makefile", Generic},
	}
	for _, tc := range cases {
		if got := TypeOf(tc.path); got != tc.want {
			t.Errorf("TypeOf(%s) = %s, want %s", tc.path, got, tc.want)
		}
	}
	if !Markdown.IsDoc() || Python.IsDoc() {
		t.Error("doc classification wrong")
	}
}
