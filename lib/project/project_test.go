// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bureau-foundation/lattice/lib/config"
	"github.com/bureau-foundation/lattice/lib/embed"
	"github.com/bureau-foundation/lattice/lib/grid"
	"github.com/bureau-foundation/lattice/lib/keymap"
	"github.com/bureau-foundation/lattice/lib/tracker"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// testProject lays out a small Go project: two modules under src
// (app imports store) and one doc that links into store.
func testProject(t *testing.T) *config.Project {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"lattice.jsonc": `{"code_roots": ["src"], "doc_roots": ["docs"]}`,
		"go.mod":        "module example.com/app\n",
		"src/app/main.go": "package main\n\nimport (\n" +
			"\t_ \"example.com/app/src/store\"\n)\n",
		"src/app/util.go":  "package main\n",
		"src/store/db.go":  "package store\n",
		"docs/guide.md":    "# Guide\n\nSee [the store](../src/store/db.go).\n",
	})
	proj, err := config.Open(root)
	if err != nil {
		t.Fatal(err)
	}
	proj.Settings.Models.VectorDim = 4
	return proj
}

// stubEmbedder returns a constant unit vector per request.
type stubEmbedder struct {
	calls int
}

func (s *stubEmbedder) Embed(ctx context.Context, requests []embed.Request) ([][]float32, error) {
	s.calls++
	out := make([][]float32, len(requests))
	for i := range requests {
		v := make([]float32, 4)
		v[0] = 1
		out[i] = v
	}
	return out, nil
}

func loadTestKeyMap(t *testing.T, proj *config.Project) *keymap.Map {
	t.Helper()
	km, err := keymap.Load(filepath.Join(proj.MemoryPath(), keymap.FileName))
	if err != nil {
		t.Fatal(err)
	}
	return km
}

func mustKey(t *testing.T, km *keymap.Map, rel string) string {
	t.Helper()
	key, ok := km.KeyFor(rel)
	if !ok {
		t.Fatalf("no key for %s", rel)
	}
	return key
}

func TestRunDegradedWithoutEmbedder(t *testing.T) {
	proj := testProject(t)
	r := &Runner{Project: proj}
	report, err := r.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Status != StatusWarning {
		t.Errorf("status = %s, want warning", report.Status)
	}
	if !report.Embedding.Degraded || report.Embedding.Reason == "" {
		t.Errorf("embedding phase = %+v, want degraded with reason", report.Embedding)
	}
	if report.Analysis.Files != 4 {
		t.Errorf("analyzed files = %d, want 4", report.Analysis.Files)
	}

	// Degraded runs must not write a snapshot: the next run has to
	// retry the embedding phase.
	if _, err := os.Stat(filepath.Join(proj.MemoryPath(), SnapshotFile)); err == nil {
		t.Error("degraded run wrote a snapshot")
	}
	second, err := r.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Clean {
		t.Error("second run after a degraded run should not be clean")
	}
}

func TestRunAggregatesMainTracker(t *testing.T) {
	proj := testProject(t)
	r := &Runner{Project: proj}
	if _, err := r.Run(context.Background(), Options{}); err != nil {
		t.Fatalf("run: %v", err)
	}

	km := loadTestKeyMap(t, proj)
	appKey := mustKey(t, km, "src/app")
	storeKey := mustKey(t, km, "src/store")

	main, err := tracker.Load(tracker.MainPath(proj.MemoryPath()))
	if err != nil {
		t.Fatalf("loading main tracker: %v", err)
	}
	ch, err := main.Cell(appKey, storeKey)
	if err != nil {
		t.Fatal(err)
	}
	// app imports store, and static analysis is authoritative by
	// default, so the module cell is verified.
	if ch != grid.DependsOn {
		t.Errorf("main cell (%s, %s) = %c, want <", appKey, storeKey, ch)
	}
	reverse, err := main.Cell(storeKey, appKey)
	if err != nil {
		t.Fatal(err)
	}
	if reverse != grid.Placeholder {
		t.Errorf("reverse cell = %c, want p (no evidence of the reverse)", reverse)
	}
}

func TestRunCleanSecondRun(t *testing.T) {
	proj := testProject(t)
	embedder := &stubEmbedder{}
	r := &Runner{Project: proj, Embedder: embedder}

	first, err := r.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Status != StatusSuccess {
		t.Fatalf("first run status = %s: %s", first.Status, first.Message)
	}
	if first.Clean {
		t.Error("first run cannot be clean")
	}
	if embedder.calls == 0 {
		t.Error("embedder was never called")
	}
	callsAfterFirst := embedder.calls

	second, err := r.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second.Clean {
		t.Errorf("second run not clean: %+v", second)
	}
	if embedder.calls != callsAfterFirst {
		t.Error("clean run invoked the embedder")
	}

	forced, err := r.Run(context.Background(), Options{Force: true})
	if err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if forced.Clean {
		t.Error("forced run must not short-circuit on the snapshot")
	}
}

func TestRunDetectsManualTrackerEdit(t *testing.T) {
	proj := testProject(t)
	embedder := &stubEmbedder{}
	r := &Runner{Project: proj, Embedder: embedder}
	if _, err := r.Run(context.Background(), Options{}); err != nil {
		t.Fatal(err)
	}

	// A hand edit to a tracker file invalidates the snapshot even
	// though no source file changed.
	mainPath := tracker.MainPath(proj.MemoryPath())
	main, err := tracker.Load(mainPath)
	if err != nil {
		t.Fatal(err)
	}
	km := loadTestKeyMap(t, proj)
	if err := main.SetCell(mustKey(t, km, "src/store"), mustKey(t, km, "src/app"), grid.NoLink); err != nil {
		t.Fatal(err)
	}
	if err := main.Save(tracker.SaveOptions{}); err != nil {
		t.Fatal(err)
	}

	report, err := r.Run(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if report.Clean {
		t.Error("run after a manual tracker edit should not be clean")
	}
}

func TestPlansDeriveTrackerSet(t *testing.T) {
	proj := testProject(t)
	km := keymap.NewMap()
	if _, err := km.Generate(keymap.GenerateOptions{
		ProjectRoot: proj.Root,
		CodeRoots:   proj.Manifest.CodeRoots,
		DocRoots:    proj.Manifest.DocRoots,
		Exclude:     proj.Manifest.Excluder(),
	}); err != nil {
		t.Fatal(err)
	}

	plans := Plans(proj, km)
	var minis, docs, mains int
	for _, plan := range plans {
		switch plan.Kind {
		case tracker.Mini:
			minis++
		case tracker.Doc:
			docs++
		case tracker.Main:
			mains++
		}
	}
	if minis != 2 || docs != 1 || mains != 1 {
		t.Fatalf("plans = %d minis, %d doc, %d main; want 2/1/1", minis, docs, mains)
	}

	// Order is dependency order: minis before doc before main.
	if plans[len(plans)-1].Kind != tracker.Main {
		t.Error("main tracker must come last")
	}
	for _, plan := range plans {
		if plan.Kind == tracker.Main {
			if len(plan.Defs) != 2 {
				t.Errorf("main defs = %v, want the two modules", plan.Defs)
			}
		}
	}
}

func TestModuleFor(t *testing.T) {
	modules := []keymap.Entry{
		{Base: "1A", Path: "src/app", IsDir: true},
		{Base: "2A", Path: "src/app/inner", IsDir: true},
	}

	got, ok := moduleFor("src/app/inner/deep/file.go", modules)
	if !ok || got.Path != "src/app/inner" {
		t.Errorf("moduleFor = %q, %v; want longest prefix src/app/inner", got.Path, ok)
	}
	got, ok = moduleFor("src/app/file.go", modules)
	if !ok || got.Path != "src/app" {
		t.Errorf("moduleFor = %q, %v; want src/app", got.Path, ok)
	}
	if _, ok := moduleFor("docs/guide.md", modules); ok {
		t.Error("path outside every module should not resolve")
	}
}

func TestUnderAny(t *testing.T) {
	roots := []string{"docs", "./guides"}
	cases := map[string]bool{
		"docs":               true,
		"docs/a.md":          true,
		"guides/intro.md":    true,
		"docsother/x.md":     false,
		"src/docs/readme.md": false,
	}
	for rel, want := range cases {
		if got := underAny(rel, roots); got != want {
			t.Errorf("underAny(%q) = %v, want %v", rel, got, want)
		}
	}
}

func TestEnginePolicy(t *testing.T) {
	s := config.DefaultSettings()
	policy := enginePolicy(s)
	if !policy.StaticVerified || !policy.StructuralVerified {
		t.Errorf("default policy = %+v, want static and structural verified", policy)
	}
	s.Compute.DocStructural = config.DocStructuralSuggest
	s.Compute.StaticAuthoritative = false
	policy = enginePolicy(s)
	if policy.StaticVerified || policy.StructuralVerified {
		t.Errorf("suggest policy = %+v, want nothing verified", policy)
	}
}
