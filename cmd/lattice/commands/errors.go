// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"io/fs"

	"github.com/bureau-foundation/lattice/cmd/lattice/cli"
	"github.com/bureau-foundation/lattice/lib/embed"
	"github.com/bureau-foundation/lattice/lib/grid"
	"github.com/bureau-foundation/lattice/lib/keymap"
	"github.com/bureau-foundation/lattice/lib/tracker"
)

// Envelope error codes. These are contract-stable: automation keys
// recovery decisions on them.
const (
	codePathNotFound         = "PATH_NOT_FOUND"
	codeKeyNotFound          = "KEY_NOT_FOUND"
	codeAmbiguousKey         = "AMBIGUOUS_KEY"
	codeTrackerCorrupt       = "TRACKER_CORRUPT"
	codeEmbeddingUnavailable = "EMBEDDING_UNAVAILABLE"
	codeConflictOnMerge      = "CONFLICT_ON_MERGE"
)

// categorize maps domain errors onto envelope categories and codes.
// Errors already categorized pass through; anything unrecognized is
// internal.
func categorize(err error) *cli.ToolError {
	var toolErr *cli.ToolError
	if errors.As(err, &toolErr) {
		return toolErr
	}

	var (
		pathNotFound *keymap.PathNotFoundError
		keyNotFound  *keymap.KeyNotFoundError
		ambiguous    *keymap.AmbiguousKeyError
		corrupt      *tracker.CorruptError
		conflict     *tracker.ConflictError
	)
	switch {
	case errors.As(err, &pathNotFound):
		return cli.Validation("%v", err).WithCode(codePathNotFound)
	case errors.As(err, &ambiguous):
		return cli.Validation("%v", err).WithCode(codeAmbiguousKey)
	case errors.As(err, &keyNotFound), errors.Is(err, grid.ErrUnknownKey):
		return cli.NotFound("%v", err).WithCode(codeKeyNotFound)
	case errors.As(err, &corrupt):
		return cli.Internal("%v", err).WithCode(codeTrackerCorrupt)
	case errors.As(err, &conflict):
		return cli.Conflict("%v", err).WithCode(codeConflictOnMerge)
	case errors.Is(err, embed.ErrUnavailable):
		return cli.Unavailable("%v", err).WithCode(codeEmbeddingUnavailable)
	case errors.Is(err, fs.ErrNotExist):
		return cli.NotFound("%v", err)
	}
	return cli.Internal("%v", err)
}
