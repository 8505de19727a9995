// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package analyze

import (
	"bytes"
	"fmt"
	"os"

	"github.com/bureau-foundation/lattice/lib/contenthash"
)

// Analysis is the extracted view of one artifact.
type Analysis struct {
	// Path is the project-relative path, slash-separated.
	Path string
	Type FileType
	// Hash is the content digest at analysis time.
	Hash contenthash.Hash
	// Binary marks content that failed the text heuristic. Binary
	// artifacts keep their hash but carry no references and are
	// never embedded.
	Binary bool
	// Refs are the raw reference strings found in the content:
	// import targets, link destinations, include paths. Unresolved
	// and deduplicated, in order of appearance.
	Refs []string
}

// File reads and analyzes the artifact at absPath, recording it under
// the project-relative rel.
func File(absPath, rel string) (*Analysis, error) {
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	return Bytes(rel, data), nil
}

// Bytes analyzes in-memory content.
func Bytes(rel string, data []byte) *Analysis {
	a := &Analysis{
		Path: rel,
		Type: TypeOf(rel),
		Hash: contenthash.HashBytes(data),
	}
	if isBinary(data) {
		a.Binary = true
		return a
	}
	a.Refs = extractRefs(a.Type, data)
	return a
}

// isBinary applies the git heuristic: a NUL byte in the first 8000
// bytes marks the content as binary, which suppresses reference
// extraction but keeps the hash.
func isBinary(data []byte) bool {
	probe := data
	if len(probe) > 8000 {
		probe = probe[:8000]
	}
	return bytes.IndexByte(probe, 0) >= 0
}
