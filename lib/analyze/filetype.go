// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package analyze

import (
	"path"
	"strings"
)

// FileType classifies an artifact for extraction and for threshold
// selection (doc vs code).
type FileType string

const (
	Python     FileType = "python"
	JavaScript FileType = "javascript"
	Go         FileType = "go"
	Markdown   FileType = "markdown"
	HTML       FileType = "html"
	CSS        FileType = "css"
	Generic    FileType = "generic"
)

// TypeOf classifies a path by extension.
func TypeOf(p string) FileType {
	switch strings.ToLower(path.Ext(p)) {
	case ".py":
		return Python
	case ".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs":
		return JavaScript
	case ".go":
		return Go
	case ".md", ".markdown", ".rst":
		return Markdown
	case ".html", ".htm":
		return HTML
	case ".css":
		return CSS
	default:
		return Generic
	}
}

// IsDoc reports whether the type belongs to the documentation side of
// the project (doc-tracker thresholds and `d` links).
func (t FileType) IsDoc() bool {
	return t == Markdown
}
