// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"
	"time"
)

func TestBindFlagsTypes(t *testing.T) {
	type params struct {
		JSONOutput
		Tracker string        `flag:"tracker,t" desc:"tracker path"`
		Force   bool          `flag:"force" desc:"ignore the snapshot"`
		Index   int           `flag:"index" default:"3" desc:"cell index"`
		Cutoff  float64       `flag:"cutoff" default:"0.8" desc:"threshold"`
		Wait    time.Duration `flag:"wait" default:"5s" desc:"timeout"`
		Targets []string      `flag:"target" desc:"target keys"`
		Skipped string
	}

	var p params
	flagSet := FlagsFromParams("test", &p)
	err := flagSet.Parse([]string{
		"--json", "-t", "doc_tracker.md", "--force",
		"--target", "1A1,1A2", "--target", "1B1",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if !p.OutputJSON || p.Tracker != "doc_tracker.md" || !p.Force {
		t.Fatalf("parsed values wrong: %+v", p)
	}
	if p.Index != 3 || p.Cutoff != 0.8 || p.Wait != 5*time.Second {
		t.Fatalf("defaults not applied: %+v", p)
	}
	if len(p.Targets) != 3 || p.Targets[2] != "1B1" {
		t.Fatalf("slice flag: %v", p.Targets)
	}
	if flagSet.Lookup("skipped") != nil {
		t.Fatal("untagged field got a flag")
	}
}

func TestBindFlagsRejectsNonPointer(t *testing.T) {
	if err := BindFlags(struct{}{}, nil); err == nil {
		t.Fatal("expected error for non-pointer params")
	}
}

func TestBindFlagsBadDefault(t *testing.T) {
	type params struct {
		N int `flag:"n" default:"many"`
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unparseable default")
		}
	}()
	FlagsFromParams("test", &params{})
}
