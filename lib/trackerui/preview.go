// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trackerui

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"
)

// previewByteLimit caps how much of a file the preview reads. Tracker
// keys can name large generated files; the browser only ever shows
// the head.
const previewByteLimit = 128 * 1024

// ensurePreview refreshes the cached highlight output for the current
// selection. It runs on the update path so renders never re-read or
// re-highlight an unchanged file.
func (m *Model) ensurePreview() {
	if !m.showPreview {
		return
	}
	item, ok := m.selected()
	if !ok {
		m.preview = nil
		m.previewFor = ""
		return
	}
	if m.previewFor == item.Key && m.preview != nil {
		return
	}
	m.previewFor = item.Key
	m.preview = loadPreview(m.projectRoot, item.Path)
}

// previewLines returns the highlighted preview for item, preferring
// the cache built by ensurePreview.
func (m Model) previewLines(item Item) []string {
	if m.previewFor == item.Key && m.preview != nil {
		return m.preview
	}
	return loadPreview(m.projectRoot, item.Path)
}

// loadPreview reads and highlights one tracked path. Directories list
// their entries; binary content and read errors render as a notice
// instead of garbage.
func loadPreview(root, rel string) []string {
	if root == "" || rel == "" {
		return []string{"nothing to preview"}
	}
	abs := filepath.Join(root, filepath.FromSlash(rel))
	info, err := os.Stat(abs)
	if err != nil {
		return []string{err.Error()}
	}
	if info.IsDir() {
		entries, err := os.ReadDir(abs)
		if err != nil {
			return []string{err.Error()}
		}
		lines := make([]string, 0, len(entries))
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() {
				name += "/"
			}
			lines = append(lines, name)
		}
		return lines
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return []string{err.Error()}
	}
	truncated := false
	if len(data) > previewByteLimit {
		data = data[:previewByteLimit]
		truncated = true
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return []string{fmt.Sprintf("binary file (%d bytes)", info.Size())}
	}

	language := "text"
	if lexer := lexers.Match(filepath.Base(abs)); lexer != nil {
		language = lexer.Config().Name
	}
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, string(data), language, "terminal256", "monokai"); err != nil {
		buf.Reset()
		buf.Write(data)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if truncated {
		lines = append(lines, "… (truncated)")
	}
	return lines
}
