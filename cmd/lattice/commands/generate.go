// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/lattice/cmd/lattice/cli"
	"github.com/bureau-foundation/lattice/lib/keymap"
	"github.com/bureau-foundation/lattice/lib/project"
	"github.com/bureau-foundation/lattice/lib/tracker"
)

type generateParams struct {
	projectParams
	Roots  []string `flag:"root" desc:"scan these code roots instead of the manifest's"`
	Kind   string   `flag:"kind" desc:"only create trackers of this kind: main, doc, or mini"`
	Output string   `flag:"output" desc:"destination for the created tracker (requires --kind main or doc)"`
}

type generatedTracker struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
	Keys int    `json:"keys"`
	// Created is false when the tracker already existed and was
	// left untouched.
	Created bool `json:"created"`
}

type generateResult struct {
	KeysTotal int                `json:"keys_total"`
	KeysNew   int                `json:"keys_new"`
	Trackers  []generatedTracker `json:"trackers"`
}

func generateKeysCommand() *cli.Command {
	var params generateParams
	return &cli.Command{
		Name:    "generate-keys",
		Summary: "assign keys to tracked files and seed placeholder trackers",
		Description: "Walks the configured code and doc roots, assigns hierarchical keys\n" +
			"to every tracked file and directory, and creates any missing tracker\n" +
			"files seeded entirely with placeholders. Existing keys and trackers\n" +
			"are never renumbered or overwritten; re-running on an unchanged tree\n" +
			"changes nothing.",
		Examples: []cli.Example{
			{Description: "seed every tracker the project needs", Command: "lattice generate-keys"},
			{Description: "only the doc tracker", Command: "lattice generate-keys --kind doc"},
			{Description: "scan one subtree", Command: "lattice generate-keys --root src/core"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("generate-keys", &params)
		},
		Run: func(args []string) error {
			result, err := runGenerateKeys(&params)
			if err != nil {
				return fail(&params.JSONOutput, err)
			}
			created := 0
			for _, t := range result.Trackers {
				if t.Created {
					created++
				}
			}
			message := fmt.Sprintf("%d keys (%d new), %d trackers created",
				result.KeysTotal, result.KeysNew, created)
			return emit(&params.JSONOutput, cli.Success(message, result), func(w io.Writer) {
				fmt.Fprintln(w, message)
				tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
				for _, t := range result.Trackers {
					state := "exists"
					if t.Created {
						state = "created"
					}
					fmt.Fprintf(tw, "  %s\t%s\t%d keys\t%s\n", t.Path, t.Kind, t.Keys, state)
				}
				tw.Flush()
			})
		},
	}
}

func runGenerateKeys(params *generateParams) (*generateResult, error) {
	if params.Kind != "" {
		switch tracker.Kind(params.Kind) {
		case tracker.Main, tracker.Doc, tracker.Mini:
		default:
			return nil, cli.Validation("unknown tracker kind %q (want main, doc, or mini)", params.Kind)
		}
	}
	if params.Output != "" {
		switch tracker.Kind(params.Kind) {
		case tracker.Main, tracker.Doc:
		default:
			return nil, cli.Validation("--output requires --kind main or --kind doc")
		}
	}
	proj, err := params.open()
	if err != nil {
		return nil, err
	}
	codeRoots := proj.Manifest.CodeRoots
	if len(params.Roots) > 0 {
		codeRoots = params.Roots
	}
	if err := proj.Settings.EnsurePaths(proj.Root); err != nil {
		return nil, err
	}

	km, keyMapPath, err := loadKeyMap(proj)
	if err != nil {
		return nil, err
	}
	genResult, err := km.Generate(keymap.GenerateOptions{
		ProjectRoot: proj.Root,
		CodeRoots:   codeRoots,
		DocRoots:    proj.Manifest.DocRoots,
		Exclude:     proj.Manifest.Excluder(),
	})
	if err != nil {
		return nil, err
	}
	if err := km.Save(keyMapPath); err != nil {
		return nil, err
	}

	result := &generateResult{KeysTotal: km.Len(), KeysNew: len(genResult.New)}
	for _, plan := range project.Plans(proj, km) {
		if params.Kind != "" && plan.Kind != tracker.Kind(params.Kind) {
			continue
		}
		if params.Output != "" {
			plan.Path = absToProject(proj.Root, params.Output)
		}
		entry := generatedTracker{
			Path: relToProject(proj.Root, plan.Path),
			Kind: string(plan.Kind),
			Keys: len(plan.Defs),
		}
		if _, err := os.Stat(plan.Path); err == nil {
			result.Trackers = append(result.Trackers, entry)
			continue
		}
		t, err := tracker.New(plan.Name, plan.Kind, plan.Defs)
		if err != nil {
			return nil, err
		}
		t.Path = plan.Path
		if err := t.Save(tracker.SaveOptions{}); err != nil {
			return nil, err
		}
		entry.Created = true
		result.Trackers = append(result.Trackers, entry)
	}
	return result, nil
}
