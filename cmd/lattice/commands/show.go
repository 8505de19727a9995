// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/lattice/cmd/lattice/cli"
	"github.com/bureau-foundation/lattice/lib/bm25"
	"github.com/bureau-foundation/lattice/lib/grid"
	"github.com/bureau-foundation/lattice/lib/tracker"
	"github.com/bureau-foundation/lattice/lib/tui"
)

type showKeysParams struct {
	projectParams
	Tracker string `flag:"tracker" desc:"tracker to list: main, doc, or a path"`
	Query   string `flag:"query" desc:"rank keys by relevance to this text"`
}

// keyListing is one key definition with its verification state.
type keyListing struct {
	Key  string `json:"key"`
	Path string `json:"path"`
	// Unresolved lists the unverified character classes still
	// present in the key's row, in lattice order (p, s, S). Empty
	// means every outgoing cell is verified.
	Unresolved []string `json:"unresolved,omitempty"`
	// Score is the relevance score in --query mode.
	Score float64 `json:"score,omitempty"`
}

func showKeysCommand() *cli.Command {
	var params showKeysParams
	return &cli.Command{
		Name:    "show-keys",
		Summary: "list a tracker's key definitions and their unresolved cells",
		Examples: []cli.Example{
			{Command: "lattice show-keys --tracker main"},
			{Description: "find the key for the parser", Command: "lattice show-keys --tracker main --query parser"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("show-keys", &params)
		},
		Run: func(args []string) error {
			listings, err := runShowKeys(&params)
			if err != nil {
				return fail(&params.JSONOutput, err)
			}
			message := fmt.Sprintf("%d keys", len(listings))
			return emit(&params.JSONOutput, cli.Success(message, listings), func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
				for _, l := range listings {
					flags := strings.Join(l.Unresolved, ",")
					if flags == "" {
						flags = "-"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", l.Key, l.Path, flags)
				}
				tw.Flush()
			})
		},
	}
}

func runShowKeys(params *showKeysParams) ([]keyListing, error) {
	proj, err := params.open()
	if err != nil {
		return nil, err
	}
	t, err := loadTracker(proj, params.Tracker)
	if err != nil {
		return nil, err
	}

	listings := make([]keyListing, 0, t.Len())
	for _, key := range t.Keys() {
		path, _ := t.PathFor(key)
		row, err := t.Row(key)
		if err != nil {
			return nil, err
		}
		listing := keyListing{Key: key, Path: path}
		var hasP, hasS, hasStrong bool
		for _, ch := range row {
			switch ch {
			case grid.Placeholder:
				hasP = true
			case grid.Weak:
				hasS = true
			case grid.Strong:
				hasStrong = true
			}
		}
		if hasP {
			listing.Unresolved = append(listing.Unresolved, "p")
		}
		if hasS {
			listing.Unresolved = append(listing.Unresolved, "s")
		}
		if hasStrong {
			listing.Unresolved = append(listing.Unresolved, "S")
		}
		listings = append(listings, listing)
	}

	if params.Query == "" {
		return listings, nil
	}
	return rankKeyListings(listings, params.Query), nil
}

// rankKeyListings orders listings by BM25 relevance of the query
// against key strings and paths. Keys with no score drop out.
func rankKeyListings(listings []keyListing, query string) []keyListing {
	documents := make([]bm25.Document, len(listings))
	byKey := make(map[string]keyListing, len(listings))
	for i, l := range listings {
		documents[i] = bm25.Document{
			Name: l.Key,
			Fields: []bm25.Field{
				{Text: l.Key, Weight: 2},
				{Text: strings.NewReplacer("/", " ", ".", " ", "_", " ", "-", " ").Replace(l.Path), Weight: 3},
			},
		}
		byKey[l.Key] = l
	}
	results := bm25.New(documents).Search(query, len(listings))
	ranked := make([]keyListing, 0, len(results))
	for _, result := range results {
		l := byKey[result.Name]
		l.Score = result.Score
		ranked = append(ranked, l)
	}
	return ranked
}

type showDepsParams struct {
	projectParams
	Key string `flag:"key" desc:"key to look up, suffixed (2C1#2) when ambiguous"`
}

// dependencyListing is one relationship of the queried key.
type dependencyListing struct {
	Key  string `json:"key"`
	Path string `json:"path"`
	// Direction is "outgoing" when the queried key is the row,
	// "incoming" when it is the column.
	Direction string `json:"direction"`
	Char      string `json:"char"`
	Tracker   string `json:"tracker"`
}

func showDependenciesCommand() *cli.Command {
	var params showDepsParams
	return &cli.Command{
		Name:    "show-dependencies",
		Summary: "list every recorded relationship of a key across all trackers",
		Examples: []cli.Example{
			{Command: "lattice show-dependencies --key 1A2"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("show-dependencies", &params)
		},
		Run: func(args []string) error {
			listings, err := runShowDependencies(&params)
			if err != nil {
				return fail(&params.JSONOutput, err)
			}
			message := fmt.Sprintf("%d relationships", len(listings))
			return emit(&params.JSONOutput, cli.Success(message, listings), func(w io.Writer) {
				styled := charStyler(w)
				tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
				for _, l := range listings {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						l.Direction, styled(l.Char), l.Key, l.Path, l.Tracker)
				}
				tw.Flush()
			})
		},
	}
}

func runShowDependencies(params *showDepsParams) ([]dependencyListing, error) {
	if params.Key == "" {
		return nil, cli.Validation("missing required flag --key")
	}
	proj, err := params.open()
	if err != nil {
		return nil, err
	}
	km, _, err := loadKeyMap(proj)
	if err != nil {
		return nil, err
	}
	entry, err := km.ResolveKey(params.Key)
	if err != nil {
		return nil, err
	}
	key := entry.Key()

	trackers, err := loadAllTrackers(proj)
	if err != nil {
		return nil, err
	}

	var listings []dependencyListing
	for _, t := range trackers {
		if !t.Has(key) {
			continue
		}
		if err := collectRelationships(t, km, key, &listings); err != nil {
			return nil, err
		}
	}
	sort.SliceStable(listings, func(i, j int) bool {
		if listings[i].Direction != listings[j].Direction {
			return listings[i].Direction == "outgoing"
		}
		return listings[i].Key < listings[j].Key
	})
	return listings, nil
}

// collectRelationships appends the key's non-empty row and column
// cells. Placeholders and verified-absent cells are not
// relationships and are skipped.
func collectRelationships(t *tracker.Tracker, km resolver, key string, listings *[]dependencyListing) error {
	name := t.Name
	for _, other := range t.Keys() {
		if other == key {
			continue
		}
		out, err := t.Cell(key, other)
		if err != nil {
			return err
		}
		in, err := t.Cell(other, key)
		if err != nil {
			return err
		}
		path, _ := t.PathFor(other)
		if p, ok := km.PathFor(other); ok {
			path = p
		}
		if isRelationship(out) {
			*listings = append(*listings, dependencyListing{
				Key: other, Path: path, Direction: "outgoing",
				Char: out.String(), Tracker: name,
			})
		}
		if isRelationship(in) {
			*listings = append(*listings, dependencyListing{
				Key: other, Path: path, Direction: "incoming",
				Char: in.String(), Tracker: name,
			})
		}
	}
	return nil
}

// resolver is the slice of the key map the listing needs.
type resolver interface {
	PathFor(key string) (string, bool)
}

func isRelationship(ch grid.Char) bool {
	switch ch {
	case grid.Placeholder, grid.NoLink, grid.Diagonal:
		return false
	}
	return true
}

// charStyler colors dependency characters in terminal output. The
// color profile is forced to ANSI256: this output is commonly read
// through pagers and tmux panes that defeat terminal auto-detection.
func charStyler(w io.Writer) func(string) string {
	renderer := lipgloss.NewRenderer(w, termenv.WithProfile(termenv.ANSI256))
	renderer.SetColorProfile(termenv.ANSI256)
	theme := tui.DefaultTheme
	return func(s string) string {
		if len(s) != 1 {
			return s
		}
		ch := grid.Char(s[0])
		style := renderer.NewStyle().
			Foreground(theme.CharColor(ch)).
			Bold(ch.IsVerified())
		return style.Render(s)
	}
}
