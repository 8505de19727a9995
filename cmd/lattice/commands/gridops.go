// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/lattice/cmd/lattice/cli"
	"github.com/bureau-foundation/lattice/lib/grid"
)

// The grid codec primitives are exposed for external tooling that
// edits tracker rows without loading the whole store. They take no
// project context.

type compressParams struct {
	cli.JSONOutput
	Sequence string `flag:"sequence" desc:"uncompressed dependency characters, e.g. 'nnp<'"`
}

func compressCommand() *cli.Command {
	var params compressParams
	return &cli.Command{
		Name:    "compress",
		Summary: "run-length encode a dependency character sequence",
		Examples: []cli.Example{
			{Command: "lattice compress --sequence nnnnp<"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("compress", &params)
		},
		Run: func(args []string) error {
			seq, err := grid.ParseChars(params.Sequence)
			if err != nil {
				return fail(&params.JSONOutput, cli.Validation("%v", err))
			}
			compressed, err := grid.Compress(seq)
			if err != nil {
				return fail(&params.JSONOutput, cli.Validation("%v", err))
			}
			return emit(&params.JSONOutput,
				cli.Success(compressed, map[string]string{"compressed": compressed}), nil)
		},
	}
}

type decompressParams struct {
	cli.JSONOutput
	Compressed string `flag:"string" desc:"run-length encoded row, e.g. 'n4p<'"`
}

func decompressCommand() *cli.Command {
	var params decompressParams
	return &cli.Command{
		Name:    "decompress",
		Summary: "expand a run-length encoded row",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("decompress", &params)
		},
		Run: func(args []string) error {
			seq, err := grid.Decompress(params.Compressed)
			if err != nil {
				return fail(&params.JSONOutput, cli.Validation("%v", err))
			}
			expanded := grid.CharsString(seq)
			return emit(&params.JSONOutput,
				cli.Success(expanded, map[string]string{"sequence": expanded}), nil)
		},
	}
}

type getCharParams struct {
	cli.JSONOutput
	Compressed string `flag:"string" desc:"run-length encoded row"`
	Index      int    `flag:"index" default:"-1" desc:"zero-based position"`
}

func getCharCommand() *cli.Command {
	var params getCharParams
	return &cli.Command{
		Name:    "get-char",
		Aliases: []string{"get_char"},
		Summary: "read one position of an encoded row",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("get-char", &params)
		},
		Run: func(args []string) error {
			if params.Index < 0 {
				return fail(&params.JSONOutput, cli.Validation("missing or negative --index"))
			}
			ch, err := grid.CharAt(params.Compressed, params.Index)
			if err != nil {
				return fail(&params.JSONOutput, cli.Validation("%v", err))
			}
			return emit(&params.JSONOutput,
				cli.Success(ch.String(), map[string]string{"char": ch.String()}), nil)
		},
	}
}

type setCharParams struct {
	cli.JSONOutput
	Compressed string `flag:"string" desc:"run-length encoded row"`
	Index      int    `flag:"index" default:"-1" desc:"zero-based position"`
	Char       string `flag:"char" desc:"replacement dependency character"`
}

func setCharCommand() *cli.Command {
	var params setCharParams
	return &cli.Command{
		Name:    "set-char",
		Aliases: []string{"set_char"},
		Summary: "replace one position of an encoded row",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("set-char", &params)
		},
		Run: func(args []string) error {
			if params.Index < 0 {
				return fail(&params.JSONOutput, cli.Validation("missing or negative --index"))
			}
			ch, err := parseChar(params.Char)
			if err != nil {
				return fail(&params.JSONOutput, err)
			}
			updated, err := grid.SetCharAt(params.Compressed, params.Index, ch)
			if err != nil {
				return fail(&params.JSONOutput, cli.Validation("%v", err))
			}
			return emit(&params.JSONOutput,
				cli.Success(updated, map[string]string{"compressed": updated}), nil)
		},
	}
}

// parseChar validates a single dependency character argument.
func parseChar(s string) (grid.Char, error) {
	if len(s) != 1 {
		return 0, cli.Validation("dependency character must be a single character, got %q", s)
	}
	ch := grid.Char(s[0])
	if !ch.Valid() {
		return 0, cli.Validation("invalid dependency character %q", s)
	}
	return ch, nil
}
