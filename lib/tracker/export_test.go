// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tracker

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/bureau-foundation/lattice/lib/grid"
)

func exportTestTracker(t *testing.T) *Tracker {
	t.Helper()
	tr := mustTracker(t, "t", Mini, map[string]string{
		"1A1": "src/a.go",
		"1A2": "src/b.go",
	})
	if err := tr.SetCell("1A1", "1A2", grid.DependsOn); err != nil {
		t.Fatal(err)
	}
	if err := tr.SetCell("1A2", "1A1", grid.RequiredBy); err != nil {
		t.Fatal(err)
	}
	return tr
}

func TestExportMD(t *testing.T) {
	tr := exportTestTracker(t)
	var buf bytes.Buffer
	if err := tr.Export(&buf, ExportMD); err != nil {
		t.Fatal(err)
	}
	want, err := tr.Render()
	if err != nil {
		t.Fatal(err)
	}
	if buf.String() != string(want) {
		t.Error("md export differs from canonical render")
	}
}

func TestExportJSON(t *testing.T) {
	tr := exportTestTracker(t)
	var buf bytes.Buffer
	if err := tr.Export(&buf, ExportJSON); err != nil {
		t.Fatal(err)
	}
	var got exportedTracker
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if got.Name != "t" || got.Kind != Mini {
		t.Errorf("identity = (%q, %q)", got.Name, got.Kind)
	}
	if len(got.Keys) != 2 || got.Keys[0].Key != "1A1" || got.Keys[0].Path != "src/a.go" {
		t.Errorf("keys = %+v", got.Keys)
	}
	if len(got.Grid) != 2 || got.Grid[0].Row != "<" || got.Grid[1].Row != ">" {
		t.Errorf("grid = %+v", got.Grid)
	}
}

func TestExportCSV(t *testing.T) {
	tr := exportTestTracker(t)
	var buf bytes.Buffer
	if err := tr.Export(&buf, ExportCSV); err != nil {
		t.Fatal(err)
	}
	want := "Source,Target,Dependency Type\n1A1,1A2,<\n1A2,1A1,>\n"
	if buf.String() != want {
		t.Errorf("csv =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestExportCSVSkipsPlaceholders(t *testing.T) {
	tr := mustTracker(t, "t", Mini, map[string]string{
		"1A1": "src/a.go",
		"1A2": "src/b.go",
	})
	var buf bytes.Buffer
	if err := tr.Export(&buf, ExportCSV); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "Source,Target,Dependency Type\n" {
		t.Errorf("placeholder cells exported: %q", buf.String())
	}
}

func TestExportDOT(t *testing.T) {
	tr := exportTestTracker(t)
	var buf bytes.Buffer
	if err := tr.Export(&buf, ExportDOT); err != nil {
		t.Fatal(err)
	}
	want := `digraph "t" {
  rankdir=LR;
  node [shape=box];
  "1A1" [label="1A1"];
  "1A2" [label="1A2"];
  "1A1" -> "1A2" [label="<"];
  "1A2" -> "1A1" [label=">"];
}
`
	if buf.String() != want {
		t.Errorf("dot =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestParseExportFormat(t *testing.T) {
	for _, ok := range []string{"md", "json", "csv", "dot"} {
		if _, err := ParseExportFormat(ok); err != nil {
			t.Errorf("ParseExportFormat(%q): %v", ok, err)
		}
	}
	if _, err := ParseExportFormat("xlsx"); err == nil {
		t.Error("unsupported format accepted")
	}
}
