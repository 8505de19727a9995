// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bureau-foundation/lattice/lib/atomicfile"
	"github.com/bureau-foundation/lattice/lib/codec"
	"github.com/bureau-foundation/lattice/lib/contenthash"
	"github.com/bureau-foundation/lattice/lib/keymap"
	"github.com/bureau-foundation/lattice/lib/tracker"
)

// SnapshotFile records the state of the last healthy run under the
// memory directory.
const SnapshotFile = "analysis_state.cbor"

// SnapshotVersion is bumped when the state hash inputs change, which
// invalidates every older snapshot.
const SnapshotVersion = 1

type snapshot struct {
	Version   int              `cbor:"version"`
	State     contenthash.Hash `cbor:"state"`
	Artifacts int              `cbor:"artifacts"`
	RunAt     time.Time        `cbor:"run_at"`
}

// stateHash digests everything a run's outcome depends on: the
// manifest and settings bytes, every artifact's content hash, and
// the current bytes of every tracker file. Including the trackers
// means a manual edit always defeats the short-circuit.
func (r *Runner) stateHash(km *keymap.Map, arts []artifact) (contenthash.Hash, error) {
	p := r.Project
	var b bytes.Buffer

	for _, path := range []string{p.ManifestPath(), p.SettingsPath()} {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return contenthash.Hash{}, fmt.Errorf("project: state hash: %w", err)
		}
		fmt.Fprintf(&b, "config %s %s\n", filepath.Base(path), contenthash.HashBytes(data))
	}

	// Artifacts arrive sorted by path from the analysis phase.
	for _, a := range arts {
		fmt.Fprintf(&b, "artifact %s %s %s\n", a.key, a.path, a.analysis.Hash)
	}

	paths, err := tracker.Discover(p.MemoryPath(), absRoots(p.Root, p.Manifest.CodeRoots))
	if err != nil {
		return contenthash.Hash{}, fmt.Errorf("project: state hash: %w", err)
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return contenthash.Hash{}, fmt.Errorf("project: state hash: %w", err)
		}
		fmt.Fprintf(&b, "tracker %s %s\n", relPath(p.Root, path), contenthash.HashBytes(data))
	}

	return contenthash.HashBytes(b.Bytes()), nil
}

// snapshotMatches reports whether the last recorded healthy run saw
// the same state. A missing or unreadable snapshot never matches.
func (r *Runner) snapshotMatches(state contenthash.Hash) bool {
	data, err := os.ReadFile(r.snapshotPath())
	if err != nil {
		return false
	}
	var snap snapshot
	if err := codec.Unmarshal(data, &snap); err != nil {
		r.logger().Warn("discarding unreadable analysis snapshot", "error", err)
		return false
	}
	return snap.Version == SnapshotVersion && snap.State == state
}

func (r *Runner) writeSnapshot(state contenthash.Hash, artifacts int) error {
	data, err := codec.Marshal(snapshot{
		Version:   SnapshotVersion,
		State:     state,
		Artifacts: artifacts,
		RunAt:     r.clock().Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("project: encoding snapshot: %w", err)
	}
	if err := atomicfile.Write(r.snapshotPath(), data, 0o644); err != nil {
		return fmt.Errorf("project: %w", err)
	}
	return nil
}

func (r *Runner) snapshotPath() string {
	return filepath.Join(r.Project.MemoryPath(), SnapshotFile)
}

// absRoots resolves the manifest's project-relative roots against
// the project root for filesystem walks.
func absRoots(projectRoot string, roots []string) []string {
	abs := make([]string, len(roots))
	for i, root := range roots {
		abs[i] = filepath.Join(projectRoot, filepath.FromSlash(root))
	}
	return abs
}
