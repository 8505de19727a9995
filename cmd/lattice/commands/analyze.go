// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/lattice/cmd/lattice/cli"
	"github.com/bureau-foundation/lattice/lib/atomicfile"
	"github.com/bureau-foundation/lattice/lib/cache"
	"github.com/bureau-foundation/lattice/lib/clock"
	"github.com/bureau-foundation/lattice/lib/embed"
	"github.com/bureau-foundation/lattice/lib/project"
)

type analyzeParams struct {
	projectParams
	Force   bool   `flag:"force" desc:"ignore the previous run snapshot and recompute everything"`
	Workers int    `flag:"workers" desc:"override compute.max_workers for this run"`
	Output  string `flag:"output" desc:"also write the full JSON report to this file"`
}

func analyzeProjectCommand() *cli.Command {
	var params analyzeParams
	return &cli.Command{
		Name:    "analyze-project",
		Summary: "refresh keys, analyze artifacts, and update every tracker",
		Description: "Runs the full analysis pipeline: key map refresh, reference\n" +
			"extraction, embedding generation, and one suggestion pass per\n" +
			"tracker (mini trackers, then the doc tracker, then the main\n" +
			"tracker). Verified characters are never overwritten, and re-running\n" +
			"on an unchanged project is a no-op.",
		Examples: []cli.Example{
			{Command: "lattice analyze-project"},
			{Description: "recompute from scratch", Command: "lattice analyze-project --force"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("analyze-project", &params)
		},
		Run: func(args []string) error {
			report, err := runAnalyze(&params)
			if err != nil {
				return fail(&params.JSONOutput, err)
			}
			if params.Output != "" {
				if err := writeReportFile(params.Output, report); err != nil {
					return fail(&params.JSONOutput, err)
				}
			}
			env := cli.Success(report.Message, report)
			if report.Status == project.StatusWarning {
				env = cli.Warning(report.Message, report)
			}
			return emit(&params.JSONOutput, env, func(w io.Writer) {
				printAnalyzeReport(w, report)
			})
		},
	}
}

func runAnalyze(params *analyzeParams) (*project.Report, error) {
	proj, err := params.open()
	if err != nil {
		return nil, err
	}
	if err := proj.Settings.EnsurePaths(proj.Root); err != nil {
		return nil, err
	}
	logger := cli.NewCommandLogger(params.Verbose).With("command", "analyze-project")

	store, err := cache.Open(filepath.Join(proj.MemoryPath(), cache.FileName), logger, clock.Real())
	if err != nil {
		// A broken cache slows the run down but cannot corrupt it.
		logger.Warn("cache unavailable, analyzing without it", "error", err)
		store = nil
	} else {
		defer store.Close()
	}

	var embedder embed.Embedder
	if cmd := proj.Settings.Models.EmbedderCommand; cmd != "" {
		embedder = &embed.CommandEmbedder{Command: cmd, Dim: proj.Settings.Models.VectorDim}
	}

	runner := &project.Runner{
		Project:  proj,
		Cache:    store,
		Embedder: embedder,
		Logger:   logger,
		Clock:    clock.Real(),
	}
	return runner.Run(context.Background(), project.Options{
		Force:   params.Force,
		Workers: params.Workers,
	})
}

// writeReportFile persists the report as indented JSON for CI
// archiving and diffing.
func writeReportFile(path string, report *project.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return atomicfile.Write(path, append(data, '\n'), 0o644)
}

func printAnalyzeReport(w io.Writer, report *project.Report) {
	fmt.Fprintln(w, report.Message)
	if report.Clean {
		return
	}
	fmt.Fprintf(w, "  keys: %d total, %d new, %d removed\n",
		report.Keys.Total, report.Keys.New, report.Keys.Removed)
	fmt.Fprintf(w, "  analysis: %d files, %d cache hits, %d binary\n",
		report.Analysis.Files, report.Analysis.CacheHits, report.Analysis.Binary)
	if report.Embedding.Degraded {
		fmt.Fprintf(w, "  embeddings: unavailable (%s)\n", report.Embedding.Reason)
	} else {
		fmt.Fprintf(w, "  embeddings: %d embedded, %d reused, %d skipped\n",
			report.Embedding.Embedded, report.Embedding.Reused, report.Embedding.Skipped)
	}
	if len(report.Trackers) > 0 {
		tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
		for _, update := range report.Trackers {
			state := "unchanged"
			if update.Written {
				state = fmt.Sprintf("%d changes", update.Changes)
			}
			fmt.Fprintf(tw, "  %s\t%d keys\t%s\n", update.Path, update.Keys, state)
		}
		tw.Flush()
	}
}
