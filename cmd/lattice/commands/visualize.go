// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/lattice/cmd/lattice/cli"
	"github.com/bureau-foundation/lattice/lib/atomicfile"
	"github.com/bureau-foundation/lattice/lib/tracker"
	"github.com/bureau-foundation/lattice/lib/visual"
)

type visualizeParams struct {
	projectParams
	Keys   []string `flag:"key" desc:"focus keys; one directory key renders its module view"`
	Output string   `flag:"output" desc:"destination .mmd file (default: stdout)"`
}

func visualizeCommand() *cli.Command {
	var params visualizeParams
	return &cli.Command{
		Name:    "visualize",
		Summary: "render the aggregated dependency graph as a Mermaid flowchart",
		Description: "Aggregates every tracker into one directed graph and renders it\n" +
			"as a Mermaid flowchart with module subgraphs. Without --key the\n" +
			"whole project is drawn; with keys, the view narrows to edges\n" +
			"touching them.",
		Examples: []cli.Example{
			{Command: "lattice visualize --output deps.mmd"},
			{Description: "one module's internals and interfaces", Command: "lattice visualize --key 1A"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("visualize", &params)
		},
		Run: func(args []string) error {
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
			links, err := tracker.Aggregate(trackers)
			if err != nil {
				return fail(&params.JSONOutput, err)
			}
			chart, err := visual.Mermaid(links, km, params.Keys)
			if err != nil {
				return fail(&params.JSONOutput, err)
			}

			if params.Output == "" {
				fmt.Fprint(os.Stdout, chart)
				return nil
			}
			if err := atomicfile.Write(params.Output, []byte(chart), 0o644); err != nil {
				return fail(&params.JSONOutput, err)
			}
			message := fmt.Sprintf("wrote %s (%d trackers, %d links)",
				params.Output, len(trackers), len(links))
			data := map[string]any{
				"output":   params.Output,
				"trackers": len(trackers),
				"links":    len(links),
			}
			return emit(&params.JSONOutput, cli.Success(message, data), nil)
		},
	}
}
