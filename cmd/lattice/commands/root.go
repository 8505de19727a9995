// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/bureau-foundation/lattice/cmd/lattice/cli"
	"github.com/bureau-foundation/lattice/lib/version"
)

// Root builds and returns the complete lattice CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "lattice",
		Description: `Lattice: compressed dependency tracking for code and documentation.

Assigns short hierarchical keys to every tracked file and directory,
records pairwise dependencies in run-length-compressed grids, and
suggests relationships from static references and embedding similarity.`,
		Subcommands: []*cli.Command{
			generateKeysCommand(),
			analyzeProjectCommand(),
			showKeysCommand(),
			showDependenciesCommand(),
			addDependencyCommand(),
			removeKeyCommand(),
			mergeTrackersCommand(),
			exportTrackerCommand(),
			compressCommand(),
			decompressCommand(),
			getCharCommand(),
			setCharCommand(),
			clearCachesCommand(),
			updateConfigCommand(),
			resetConfigCommand(),
			visualizeCommand(),
			browseCommand(),
			doctorCommand(),
			{
				Name:    "version",
				Summary: "print version information",
				Run: func(args []string) error {
					fmt.Printf("lattice %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Generate keys and seed trackers for a new project",
				Command:     "lattice generate-keys",
			},
			{
				Description: "Run the full analysis pipeline",
				Command:     "lattice analyze-project",
			},
			{
				Description: "Find the key for a file",
				Command:     "lattice show-keys --query lib/tracker/codec.go",
			},
			{
				Description: "Record a verified dependency",
				Command:     "lattice add-dependency --tracker main --source 2B --target 2A --char '<'",
			},
			{
				Description: "Browse trackers interactively",
				Command:     "lattice browse",
			},
			{
				Description: "Check project health",
				Command:     "lattice doctor",
			},
		},
	}
}
