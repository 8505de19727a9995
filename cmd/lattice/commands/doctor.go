// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/lattice/cmd/lattice/cli"
	"github.com/bureau-foundation/lattice/lib/embed"
	"github.com/bureau-foundation/lattice/lib/keymap"
)

type doctorParams struct {
	projectParams
}

type doctorCheck struct {
	Item   string `json:"item"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func doctorCommand() *cli.Command {
	var params doctorParams
	return &cli.Command{
		Name:    "doctor",
		Summary: "validate the manifest, settings, key map, trackers, and vectors",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("doctor", &params)
		},
		Run: func(args []string) error {
			checks, failed := runDoctor(&params)
			message := "all checks passed"
			status := cli.Success
			if failed > 0 {
				message = fmt.Sprintf("%d of %d checks failed", failed, len(checks))
				status = cli.Warning
			}
			err := emit(&params.JSONOutput, status(message, checks), func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
				for _, check := range checks {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", check.Status, check.Item, check.Detail)
				}
				tw.Flush()
				fmt.Fprintln(w, message)
			})
			if err != nil {
				return err
			}
			if failed > 0 {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

func runDoctor(params *doctorParams) (checks []doctorCheck, failed int) {
	record := func(item string, err error) {
		check := doctorCheck{Item: item, Status: "ok"}
		if err != nil {
			check.Status = "fail"
			check.Detail = err.Error()
			failed++
		}
		checks = append(checks, check)
	}
	skip := func(item, detail string) {
		checks = append(checks, doctorCheck{Item: item, Status: "skip", Detail: detail})
	}

	proj, err := params.open()
	if err != nil {
		record("project", err)
		return checks, failed
	}
	record("manifest", proj.Manifest.Validate())
	record("settings", proj.Settings.Validate())

	keyMapPath := filepath.Join(proj.MemoryPath(), keymap.FileName)
	km, err := keymap.Load(keyMapPath)
	if errors.Is(err, fs.ErrNotExist) {
		skip("key map", "not generated yet")
		km = keymap.NewMap()
	} else {
		record("key map", err)
		if err != nil {
			km = keymap.NewMap()
		}
	}

	trackers, err := loadAllTrackers(proj)
	if err != nil {
		record("trackers", err)
	}
	for _, t := range trackers {
		item := "tracker " + relToProject(proj.Root, t.Path)
		if err := t.Validate(); err != nil {
			record(item, err)
			continue
		}
		// Every tracker key must resolve through the key map.
		var dangling error
		for _, key := range t.Keys() {
			if _, ok := km.PathFor(key); !ok {
				dangling = fmt.Errorf("key %s not in the global key map", key)
				break
			}
		}
		record(item, dangling)
	}

	embedDir := proj.EmbeddingsPath()
	if _, statErr := os.Stat(filepath.Join(embedDir, embed.ManifestName)); errors.Is(statErr, fs.ErrNotExist) {
		skip("embedding store", "no vectors generated yet")
		return checks, failed
	}
	store, err := embed.Open(embedDir, embed.Space{
		DocModel:  proj.Settings.Models.DocModel,
		CodeModel: proj.Settings.Models.CodeModel,
		Dim:       proj.Settings.Models.VectorDim,
	})
	switch {
	case err != nil:
		record("embedding store", err)
	case store.Reset():
		skip("embedding store", "model or dimension changed; vectors will regenerate")
	default:
		record("embedding store", nil)
	}
	return checks, failed
}
