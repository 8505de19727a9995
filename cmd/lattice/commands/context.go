// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/lattice/cmd/lattice/cli"
	"github.com/bureau-foundation/lattice/lib/config"
	"github.com/bureau-foundation/lattice/lib/keymap"
	"github.com/bureau-foundation/lattice/lib/tracker"
)

// projectParams are the flags shared by every command that operates
// on a project: root discovery, logging, and envelope output.
type projectParams struct {
	cli.JSONOutput
	ProjectRoot string `flag:"project-root" desc:"project root (default: walk up from the working directory)"`
	Config      string `flag:"config" desc:"alternate settings file (default: lattice.yaml at the project root)"`
	Verbose     bool   `flag:"verbose,v" desc:"debug logging"`
}

// open loads the project the command targets.
func (p *projectParams) open() (*config.Project, error) {
	root := p.ProjectRoot
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("commands: %w", err)
		}
		root, err = config.FindProjectRoot(wd)
		if err != nil {
			return nil, err
		}
	}
	return config.OpenWithSettings(root, p.Config)
}

// loadKeyMap loads the project's global key map. A project that has
// never been analyzed yields an empty map.
func loadKeyMap(proj *config.Project) (*keymap.Map, string, error) {
	path := filepath.Join(proj.MemoryPath(), keymap.FileName)
	km, err := keymap.LoadOrNew(path)
	return km, path, err
}

// resolveTrackerPath maps a --tracker argument to a file path. The
// shorthands "main" and "doc" name the conventional trackers under
// the memory directory; anything else is a path, resolved against
// the project root when relative.
func resolveTrackerPath(proj *config.Project, arg string) (string, error) {
	switch arg {
	case "":
		return "", cli.Validation("missing required flag --tracker")
	case "main":
		return tracker.MainPath(proj.MemoryPath()), nil
	case "doc":
		return tracker.DocPath(proj.MemoryPath()), nil
	}
	if filepath.IsAbs(arg) {
		return arg, nil
	}
	return filepath.Join(proj.Root, filepath.FromSlash(arg)), nil
}

// loadTracker resolves and loads one tracker.
func loadTracker(proj *config.Project, arg string) (*tracker.Tracker, error) {
	path, err := resolveTrackerPath(proj, arg)
	if err != nil {
		return nil, err
	}
	t, err := tracker.Load(path)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// loadAllTrackers loads every tracker the project knows about, in
// discovery order (main, doc, then minis by path).
func loadAllTrackers(proj *config.Project) ([]*tracker.Tracker, error) {
	var codeRoots []string
	for _, root := range proj.Manifest.CodeRoots {
		codeRoots = append(codeRoots, filepath.Join(proj.Root, filepath.FromSlash(root)))
	}
	paths, err := tracker.Discover(proj.MemoryPath(), codeRoots)
	if err != nil {
		return nil, err
	}
	trackers := make([]*tracker.Tracker, 0, len(paths))
	for _, path := range paths {
		t, err := tracker.Load(path)
		if err != nil {
			return nil, err
		}
		trackers = append(trackers, t)
	}
	return trackers, nil
}

// absToProject resolves a user-supplied path against the project
// root when relative.
func absToProject(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, filepath.FromSlash(path))
}

// relToProject renders an absolute path project-relative with
// forward slashes for display and envelopes.
func relToProject(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// emit delivers a successful outcome: the envelope in --json mode,
// otherwise the text rendering (or just the message when text is
// nil).
func emit(out *cli.JSONOutput, env *cli.Envelope, text func(w io.Writer)) error {
	if done, err := out.Emit(env); done {
		return err
	}
	if text != nil {
		text(os.Stdout)
		return nil
	}
	fmt.Println(env.Message)
	return nil
}

// fail delivers an error under the envelope contract: in --json mode
// the error envelope goes to stdout and the process exits non-zero
// without a duplicate stderr line.
func fail(out *cli.JSONOutput, err error) error {
	toolErr := categorize(err)
	if out.Enabled() {
		if writeErr := cli.WriteJSON(cli.ErrorEnvelope(toolErr)); writeErr != nil {
			return writeErr
		}
		return &cli.ExitError{Code: 1}
	}
	return toolErr
}
