// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/lattice/cmd/lattice/cli"
	"github.com/bureau-foundation/lattice/lib/atomicfile"
	"github.com/bureau-foundation/lattice/lib/tracker"
)

type exportParams struct {
	projectParams
	Tracker string `flag:"tracker" desc:"tracker to export: main, doc, or a path"`
	Format  string `flag:"format" default:"md" desc:"md, json, csv, or dot"`
	Output  string `flag:"output" desc:"destination file (default: stdout)"`
}

func exportTrackerCommand() *cli.Command {
	var params exportParams
	return &cli.Command{
		Name:    "export-tracker",
		Summary: "render a tracker as markdown, JSON, CSV, or GraphViz",
		Examples: []cli.Example{
			{Command: "lattice export-tracker --tracker main --format csv --output deps.csv"},
			{Description: "pipe the dependency graph to dot", Command: "lattice export-tracker --tracker doc --format dot"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("export-tracker", &params)
		},
		Run: func(args []string) error {
			proj, err := params.open()
			if err != nil {
				return fail(&params.JSONOutput, err)
			}
			format, err := tracker.ParseExportFormat(params.Format)
			if err != nil {
				return fail(&params.JSONOutput, cli.Validation("%v", err))
			}
			t, err := loadTracker(proj, params.Tracker)
			if err != nil {
				return fail(&params.JSONOutput, err)
			}

			var buf bytes.Buffer
			if err := t.Export(&buf, format); err != nil {
				return fail(&params.JSONOutput, err)
			}

			if params.Output == "" {
				_, err := os.Stdout.Write(buf.Bytes())
				return err
			}
			if err := atomicfile.Write(params.Output, buf.Bytes(), 0o644); err != nil {
				return fail(&params.JSONOutput, err)
			}
			message := fmt.Sprintf("exported %s as %s to %s", t.Name, format, params.Output)
			data := map[string]any{
				"tracker": relToProject(proj.Root, t.Path),
				"format":  string(format),
				"output":  params.Output,
				"bytes":   buf.Len(),
			}
			return emit(&params.JSONOutput, cli.Success(message, data), nil)
		},
	}
}
