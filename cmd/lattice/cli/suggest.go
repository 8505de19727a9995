// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/lattice/lib/bm25"
)

// closestCommand returns the sibling command name within edit
// distance 3 of the unknown input, or "" when nothing is close.
func closestCommand(unknown string, commands []*Command) string {
	bestName := ""
	bestDistance := 4
	for _, command := range commands {
		if distance := levenshtein(unknown, command.Name); distance < bestDistance {
			bestDistance = distance
			bestName = command.Name
		}
	}
	return bestName
}

// suggestFlag finds the first unrecognized flag in args and returns
// the closest defined flag name with its dash prefix, or "".
func suggestFlag(args []string, flagSet *pflag.FlagSet) string {
	var defined []string
	flagSet.VisitAll(func(f *pflag.Flag) {
		defined = append(defined, f.Name)
	})

	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		name := strings.TrimLeft(arg, "-")
		if index := strings.IndexByte(name, '='); index >= 0 {
			name = name[:index]
		}
		if flagSet.Lookup(name) != nil {
			continue
		}

		bestName := ""
		bestDistance := 4
		for _, candidate := range defined {
			if distance := levenshtein(name, candidate); distance < bestDistance {
				bestDistance = distance
				bestName = candidate
			}
		}
		if bestName == "" {
			return ""
		}
		if len(bestName) == 1 {
			return "-" + bestName
		}
		return "--" + bestName
	}
	return ""
}

// SemanticSuggestion is a command surfaced by relevance ranking.
type SemanticSuggestion struct {
	// Path is the space-joined command path, e.g. "lattice show-keys".
	Path    string
	Summary string
	Score   float64
}

// SuggestSemantic ranks every leaf command of the tree against a
// free-text query using BM25 over names, summaries, descriptions,
// and flag metadata. Unlike closestCommand it works across the whole
// tree, so "deps" finds "show-dependencies" from the root. The index
// is rebuilt per call; the tree is small enough that this is free.
func SuggestSemantic(query string, root *Command, limit int) []SemanticSuggestion {
	var documents []bm25.Document
	summaries := make(map[string]string)

	walkLeaves(root, "", func(path string, command *Command) {
		fields := []bm25.Field{
			{Text: strings.ReplaceAll(command.Name, "-", " "), Weight: 4},
			{Text: command.Summary, Weight: 2},
			{Text: command.Description, Weight: 1},
		}
		if flagSet := command.FlagSet(); flagSet != nil {
			var names, usages []string
			flagSet.VisitAll(func(f *pflag.Flag) {
				names = append(names, strings.ReplaceAll(f.Name, "-", " "))
				usages = append(usages, f.Usage)
			})
			fields = append(fields,
				bm25.Field{Text: strings.Join(names, " "), Weight: 2},
				bm25.Field{Text: strings.Join(usages, " "), Weight: 1},
			)
		}
		documents = append(documents, bm25.Document{Name: path, Fields: fields})
		summaries[path] = command.Summary
	})

	results := bm25.New(documents).Search(query, limit)
	suggestions := make([]SemanticSuggestion, len(results))
	for i, result := range results {
		suggestions[i] = SemanticSuggestion{
			Path:    result.Name,
			Summary: summaries[result.Name],
			Score:   result.Score,
		}
	}
	return suggestions
}

// walkLeaves visits every command with a Run function, depth first.
func walkLeaves(command *Command, prefix string, visit func(path string, command *Command)) {
	path := command.Name
	if prefix != "" {
		path = prefix + " " + command.Name
	}
	if command.Run != nil {
		visit(path, command)
	}
	for _, sub := range command.Subcommands {
		walkLeaves(sub, path, visit)
	}
}

func formatSemanticSuggestions(unknown string, suggestions []SemanticSuggestion, parentName string) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "unknown command %q\n\nDid you mean:\n", unknown)
	writer := tabwriter.NewWriter(&builder, 2, 0, 2, ' ', 0)
	for _, suggestion := range suggestions {
		fmt.Fprintf(writer, "  %s\t%s\n", suggestion.Path, suggestion.Summary)
	}
	writer.Flush()
	fmt.Fprintf(&builder, "\nRun '%s --help' for usage.", parentName)
	return builder.String()
}

// levenshtein is the single-row edit distance between two strings.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	previous := make([]int, len(a)+1)
	for i := range previous {
		previous[i] = i
	}
	for j := 1; j <= len(b); j++ {
		current := make([]int, len(a)+1)
		current[0] = j
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			current[i] = min(previous[i]+1, current[i-1]+1, previous[i-1]+cost)
		}
		previous = current
	}
	return previous[len(a)]
}
