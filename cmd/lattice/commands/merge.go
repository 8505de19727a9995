// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/lattice/cmd/lattice/cli"
	"github.com/bureau-foundation/lattice/lib/backup"
	"github.com/bureau-foundation/lattice/lib/tracker"
)

type mergeParams struct {
	projectParams
	Primary   string `flag:"primary" desc:"first input tracker: main, doc, or a path"`
	Secondary string `flag:"secondary" desc:"second input tracker"`
	Output    string `flag:"output" desc:"destination path (default: overwrite the primary)"`
}

func mergeTrackersCommand() *cli.Command {
	var params mergeParams
	return &cli.Command{
		Name:    "merge-trackers",
		Summary: "merge two trackers of the same kind into one",
		Description: "Unions the key sets and resolves each cell by specificity:\n" +
			"verified beats suggestion beats placeholder, and opposite verified\n" +
			"directions fuse to mutual. Verified cells that disagree are\n" +
			"reported as conflicts and nothing is written. Both inputs are\n" +
			"backed up first.",
		Examples: []cli.Example{
			{Command: "lattice merge-trackers --primary main --secondary old/main_copy.md"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("merge-trackers", &params)
		},
		Run: func(args []string) error {
			result, err := runMergeTrackers(&params)
			if err != nil {
				return fail(&params.JSONOutput, err)
			}
			message := fmt.Sprintf("merged into %s (%d keys)", result["output"], result["keys"])
			return emit(&params.JSONOutput, cli.Success(message, result), nil)
		},
	}
}

func runMergeTrackers(params *mergeParams) (map[string]any, error) {
	if params.Primary == "" || params.Secondary == "" {
		return nil, cli.Validation("both --primary and --secondary are required")
	}
	proj, err := params.open()
	if err != nil {
		return nil, err
	}
	primary, err := loadTracker(proj, params.Primary)
	if err != nil {
		return nil, err
	}
	secondary, err := loadTracker(proj, params.Secondary)
	if err != nil {
		return nil, err
	}

	merged, err := tracker.Merge(primary, secondary, primary.Name)
	if err != nil {
		return nil, err
	}

	outputPath := primary.Path
	if params.Output != "" {
		outputPath, err = resolveTrackerPath(proj, params.Output)
		if err != nil {
			return nil, err
		}
	}

	// Preserve the pre-merge bytes of both inputs, not just the
	// overwritten one.
	now := time.Now()
	if secondary.Path != outputPath {
		if _, err := backup.Create(secondary.Path, proj.BackupsPath(), now); err != nil {
			return nil, err
		}
	}
	merged.Path = outputPath
	if err := merged.Save(tracker.SaveOptions{BackupDir: proj.BackupsPath(), Now: now}); err != nil {
		return nil, err
	}

	return map[string]any{
		"output": relToProject(proj.Root, outputPath),
		"keys":   merged.Len(),
	}, nil
}
