// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/lattice/cmd/lattice/cli"
	"github.com/bureau-foundation/lattice/lib/cache"
	"github.com/bureau-foundation/lattice/lib/clock"
)

type clearCachesParams struct {
	projectParams
}

type cacheReport struct {
	Cache   string `json:"cache"`
	Entries int64  `json:"entries"`
	Hits    int64  `json:"hits"`
	Misses  int64  `json:"misses"`
}

func clearCachesCommand() *cli.Command {
	var params clearCachesParams
	return &cli.Command{
		Name:    "clear-caches",
		Summary: "drop every cached analysis result",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("clear-caches", &params)
		},
		Run: func(args []string) error {
			proj, err := params.open()
			if err != nil {
				return fail(&params.JSONOutput, err)
			}
			logger := cli.NewCommandLogger(params.Verbose).With("command", "clear-caches")
			store, err := cache.Open(filepath.Join(proj.MemoryPath(), cache.FileName), logger, clock.Real())
			if err != nil {
				return fail(&params.JSONOutput, err)
			}
			defer store.Close()

			ctx := context.Background()
			stats, err := store.Stats(ctx)
			if err != nil {
				return fail(&params.JSONOutput, err)
			}
			removed, err := store.ClearAll(ctx)
			if err != nil {
				return fail(&params.JSONOutput, err)
			}

			reports := make([]cacheReport, 0, len(stats))
			for _, name := range cache.Names(stats) {
				s := stats[name]
				reports = append(reports, cacheReport{
					Cache: name, Entries: s.Entries, Hits: s.Hits, Misses: s.Misses,
				})
			}
			message := fmt.Sprintf("cleared %d cached entries", removed)
			return emit(&params.JSONOutput, cli.Success(message, reports), func(w io.Writer) {
				fmt.Fprintln(w, message)
				tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
				for _, r := range reports {
					fmt.Fprintf(tw, "  %s\t%d entries\t%d hits\t%d misses\n",
						r.Cache, r.Entries, r.Hits, r.Misses)
				}
				tw.Flush()
			})
		},
	}
}
