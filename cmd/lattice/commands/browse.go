// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/lattice/cmd/lattice/cli"
	"github.com/bureau-foundation/lattice/lib/trackerui"
)

type browseParams struct {
	projectParams
	Tracker string `flag:"tracker" desc:"start on this tracker: main, doc, or a path"`
}

func browseCommand() *cli.Command {
	var params browseParams
	return &cli.Command{
		Name:    "browse",
		Summary: "interactively browse trackers, keys, and dependencies",
		Description: "Opens a full-screen browser over the project's trackers: a\n" +
			"fuzzy-filterable key list on the left, the selected key's\n" +
			"dependencies on the right. Read-only; edits go through\n" +
			"add-dependency and set-char.",
		Examples: []cli.Example{
			{Command: "lattice browse"},
			{Description: "start on the doc tracker", Command: "lattice browse --tracker doc"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("browse", &params)
		},
		Run: func(args []string) error {
			if params.Enabled() {
				return cli.Validation("browse is interactive and has no JSON output")
			}
			proj, err := params.open()
			if err != nil {
				return fail(&params.JSONOutput, err)
			}
			km, _, err := loadKeyMap(proj)
			if err != nil {
				return fail(&params.JSONOutput, err)
			}
			trackers, err := loadAllTrackers(proj)
			if err != nil {
				return fail(&params.JSONOutput, err)
			}
			if len(trackers) == 0 {
				return cli.NotFound("no trackers found; run generate-keys first")
			}

			model, err := trackerui.New(trackers, km, proj.Root)
			if err != nil {
				return fail(&params.JSONOutput, err)
			}
			if params.Tracker != "" {
				startPath, err := resolveTrackerPath(proj, params.Tracker)
				if err != nil {
					return fail(&params.JSONOutput, err)
				}
				model.SetActiveByPath(startPath)
			}
			return trackerui.Run(model)
		},
	}
}
