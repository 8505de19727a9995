// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/lattice/cmd/lattice/cli"
	"github.com/bureau-foundation/lattice/lib/config"
)

type updateConfigParams struct {
	projectParams
	Key   string `flag:"key" desc:"dot path, e.g. thresholds.code_similarity"`
	Value string `flag:"value" desc:"new value, parsed per the setting's type"`
}

func updateConfigCommand() *cli.Command {
	var params updateConfigParams
	return &cli.Command{
		Name:    "update-config",
		Summary: "change one settings value",
		Description: "Sets a settings key by dot path and rewrites the settings file.\n" +
			"Run without --key to list every known key with its current value.",
		Examples: []cli.Example{
			{Command: "lattice update-config --key thresholds.doc_similarity --value 0.65"},
			{Description: "list every key", Command: "lattice update-config"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("update-config", &params)
		},
		Run: func(args []string) error {
			proj, err := params.open()
			if err != nil {
				return fail(&params.JSONOutput, err)
			}

			if params.Key == "" {
				values := map[string]any{}
				for _, key := range config.Keys() {
					value, err := proj.Settings.Get(key)
					if err != nil {
						return fail(&params.JSONOutput, err)
					}
					values[key] = value
				}
				message := fmt.Sprintf("%d settings", len(values))
				return emit(&params.JSONOutput, cli.Success(message, values), func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
					for _, key := range config.Keys() {
						fmt.Fprintf(tw, "%s\t%v\n", key, values[key])
					}
					tw.Flush()
				})
			}

			if err := proj.Settings.Set(params.Key, params.Value); err != nil {
				return fail(&params.JSONOutput, cli.Validation("%v", err))
			}
			if err := proj.SaveSettings(); err != nil {
				return fail(&params.JSONOutput, err)
			}
			value, _ := proj.Settings.Get(params.Key)
			message := fmt.Sprintf("%s = %v", params.Key, value)
			return emit(&params.JSONOutput,
				cli.Success(message, map[string]any{params.Key: value}), nil)
		},
	}
}

type resetConfigParams struct {
	projectParams
}

func resetConfigCommand() *cli.Command {
	var params resetConfigParams
	return &cli.Command{
		Name:    "reset-config",
		Summary: "restore every settings value to its default",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("reset-config", &params)
		},
		Run: func(args []string) error {
			proj, err := params.open()
			if err != nil {
				return fail(&params.JSONOutput, err)
			}
			proj.Settings = config.DefaultSettings()
			if err := proj.SaveSettings(); err != nil {
				return fail(&params.JSONOutput, err)
			}
			return emit(&params.JSONOutput,
				cli.Success("settings reset to defaults", nil), nil)
		},
	}
}
