// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/lattice/cmd/lattice/cli"
	"github.com/bureau-foundation/lattice/lib/tracker"
)

type addDependencyParams struct {
	projectParams
	Tracker string   `flag:"tracker" desc:"tracker to edit: main, doc, or a path"`
	Source  string   `flag:"source" desc:"row key"`
	Targets []string `flag:"target" desc:"column keys, repeatable or comma-separated"`
	Char    string   `flag:"char" desc:"dependency character to set"`
}

type addDependencyResult struct {
	Tracker string `json:"tracker"`
	Source  string `json:"source"`
	Char    string `json:"char"`
	Set     []string `json:"set"`
	// Extended lists targets that were foreign to the tracker and
	// were pulled in through the global key map.
	Extended []string `json:"extended,omitempty"`
}

func addDependencyCommand() *cli.Command {
	var params addDependencyParams
	return &cli.Command{
		Name:    "add-dependency",
		Summary: "set one dependency character from a source key to targets",
		Description: "Sets the cell (source, target) to the given character for every\n" +
			"target. Targets absent from the tracker but known to the global key\n" +
			"map extend the tracker first; the new row and column start as\n" +
			"placeholders.",
		Examples: []cli.Example{
			{Command: "lattice add-dependency --tracker main --source 1A1 --target 1B1 --char <"},
			{Description: "verify absence for several columns", Command: "lattice add-dependency --tracker doc --source 2A3 --target 2A4,2A5 --char n"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("add-dependency", &params)
		},
		Run: func(args []string) error {
			result, err := runAddDependency(&params)
			if err != nil {
				return fail(&params.JSONOutput, err)
			}
			message := fmt.Sprintf("set %d cells to %q in %s", len(result.Set), result.Char, result.Tracker)
			return emit(&params.JSONOutput, cli.Success(message, result), nil)
		},
	}
}

func runAddDependency(params *addDependencyParams) (*addDependencyResult, error) {
	if params.Source == "" {
		return nil, cli.Validation("missing required flag --source")
	}
	if len(params.Targets) == 0 {
		return nil, cli.Validation("missing required flag --target")
	}
	ch, err := parseChar(params.Char)
	if err != nil {
		return nil, err
	}

	proj, err := params.open()
	if err != nil {
		return nil, err
	}
	km, _, err := loadKeyMap(proj)
	if err != nil {
		return nil, err
	}
	t, err := loadTracker(proj, params.Tracker)
	if err != nil {
		return nil, err
	}

	sourceEntry, err := km.ResolveKey(params.Source)
	if err != nil {
		return nil, err
	}
	source := sourceEntry.Key()
	if !t.Has(source) {
		return nil, cli.NotFound("source key %s is not in tracker %s", source, t.Name).
			WithCode(codeKeyNotFound)
	}

	result := &addDependencyResult{
		Tracker: relToProject(proj.Root, t.Path),
		Source:  source,
		Char:    ch.String(),
	}
	for _, raw := range params.Targets {
		entry, err := km.ResolveKey(raw)
		if err != nil {
			return nil, err
		}
		target := entry.Key()
		if !t.Has(target) {
			if err := t.AddKeys(map[string]string{target: entry.Path}); err != nil {
				return nil, err
			}
			result.Extended = append(result.Extended, target)
		}
		if err := t.SetCell(source, target, ch); err != nil {
			return nil, err
		}
		result.Set = append(result.Set, target)
	}

	err = t.Save(tracker.SaveOptions{BackupDir: proj.BackupsPath(), Now: time.Now()})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type removeKeyParams struct {
	projectParams
	Tracker string `flag:"tracker" desc:"tracker to edit: main, doc, or a path"`
	Key     string `flag:"key" desc:"key whose row and column are removed"`
}

func removeKeyCommand() *cli.Command {
	var params removeKeyParams
	return &cli.Command{
		Name:    "remove-key",
		Summary: "delete a key's row and column from one tracker",
		Description: "Removes the key from the named tracker only; other trackers that\n" +
			"reference it are untouched. The previous tracker bytes are backed\n" +
			"up first.",
		Examples: []cli.Example{
			{Command: "lattice remove-key --tracker main --key 1B2"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("remove-key", &params)
		},
		Run: func(args []string) error {
			if params.Key == "" {
				return fail(&params.JSONOutput, cli.Validation("missing required flag --key"))
			}
			proj, err := params.open()
			if err != nil {
				return fail(&params.JSONOutput, err)
			}
			t, err := loadTracker(proj, params.Tracker)
			if err != nil {
				return fail(&params.JSONOutput, err)
			}
			if err := t.RemoveKey(params.Key); err != nil {
				return fail(&params.JSONOutput, err)
			}
			err = t.Save(tracker.SaveOptions{BackupDir: proj.BackupsPath(), Now: time.Now()})
			if err != nil {
				return fail(&params.JSONOutput, err)
			}
			message := fmt.Sprintf("removed %s from %s (%d keys remain)",
				params.Key, t.Name, t.Len())
			data := map[string]any{
				"tracker": relToProject(proj.Root, t.Path),
				"key":     params.Key,
				"keys":    t.Len(),
			}
			return emit(&params.JSONOutput, cli.Success(message, data), nil)
		},
	}
}
