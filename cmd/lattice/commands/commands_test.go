// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/lattice/cmd/lattice/cli"
	"github.com/bureau-foundation/lattice/lib/grid"
	"github.com/bureau-foundation/lattice/lib/keymap"
	"github.com/bureau-foundation/lattice/lib/tracker"
)

// envelope mirrors the JSON output contract for assertions.
type envelope struct {
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	Code     string          `json:"code,omitempty"`
	Category string          `json:"category,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// runCLI executes one command line against a fresh tree and returns
// the captured stdout alongside the command error.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	runErr := Root().Execute(args)
	w.Close()
	os.Stdout = old
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(data), runErr
}

// runJSON executes a command with --json and decodes the envelope.
func runJSON(t *testing.T, args ...string) (envelope, error) {
	t.Helper()
	out, runErr := runCLI(t, append(args, "--json")...)
	var env envelope
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("not a JSON envelope: %v\noutput: %s", err, out)
	}
	return env, runErr
}

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

func testProjectRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"lattice.jsonc": `{"code_roots": ["src"], "doc_roots": ["docs"]}`,
		"go.mod":        "module example.com/app\n",
		"src/app/main.go": "package main\n\nimport (\n" +
			"\t_ \"example.com/app/src/store\"\n)\n",
		"src/store/db.go": "package store\n",
		"docs/guide.md":   "# Guide\n",
	})
	return root
}

func projectKey(t *testing.T, root, rel string) string {
	t.Helper()
	km, err := keymap.Load(filepath.Join(root, ".lattice", keymap.FileName))
	if err != nil {
		t.Fatal(err)
	}
	key, ok := km.KeyFor(rel)
	if !ok {
		t.Fatalf("no key for %s", rel)
	}
	return key
}

func TestRootTreeIntegrity(t *testing.T) {
	root := Root()
	seen := make(map[string]string)
	for _, sub := range root.Subcommands {
		names := append([]string{sub.Name}, sub.Aliases...)
		for _, name := range names {
			if owner, dup := seen[name]; dup {
				t.Errorf("name %q claimed by both %q and %q", name, owner, sub.Name)
			}
			seen[name] = sub.Name
		}
		if sub.Summary == "" {
			t.Errorf("%s: missing summary", sub.Name)
		}
		if sub.Run == nil && len(sub.Subcommands) == 0 {
			t.Errorf("%s: neither runnable nor a group", sub.Name)
		}
	}
}

func TestUnknownCommandSuggestion(t *testing.T) {
	_, err := runCLI(t, "generatekeys")
	if err == nil {
		t.Fatal("expected an error for an unknown command")
	}
	if !strings.Contains(err.Error(), "generate-keys") {
		t.Errorf("error %q should suggest generate-keys", err)
	}
}

func TestGridOpsRoundTrip(t *testing.T) {
	env, err := runJSON(t, "compress", "--sequence", "nnnnp<")
	if err != nil {
		t.Fatal(err)
	}
	var compressed map[string]string
	if err := json.Unmarshal(env.Data, &compressed); err != nil {
		t.Fatal(err)
	}
	if compressed["compressed"] != "n4p<" {
		t.Errorf("compress = %q, want n4p<", compressed["compressed"])
	}

	env, err = runJSON(t, "decompress", "--string", "n4p<")
	if err != nil {
		t.Fatal(err)
	}
	var expanded map[string]string
	if err := json.Unmarshal(env.Data, &expanded); err != nil {
		t.Fatal(err)
	}
	if expanded["sequence"] != "nnnnp<" {
		t.Errorf("decompress = %q, want nnnnp<", expanded["sequence"])
	}

	// Underscore aliases dispatch to the same implementations.
	env, err = runJSON(t, "get_char", "--string", "n4p<", "--index", "4")
	if err != nil {
		t.Fatal(err)
	}
	var char map[string]string
	if err := json.Unmarshal(env.Data, &char); err != nil {
		t.Fatal(err)
	}
	if char["char"] != "p" {
		t.Errorf("get_char = %q, want p", char["char"])
	}

	env, err = runJSON(t, "set_char", "--string", "n4p<", "--index", "0", "--char", "x")
	if err != nil {
		t.Fatal(err)
	}
	var updated map[string]string
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatal(err)
	}
	if updated["compressed"] != "xn3p<" {
		t.Errorf("set_char = %q, want xn3p<", updated["compressed"])
	}
}

func TestGenerateAndEditWorkflow(t *testing.T) {
	root := testProjectRoot(t)

	env, err := runJSON(t, "generate-keys", "--project-root", root)
	if err != nil {
		t.Fatalf("generate-keys: %v", err)
	}
	if env.Status != "success" {
		t.Fatalf("generate-keys status = %s: %s", env.Status, env.Message)
	}
	var gen struct {
		KeysTotal int `json:"keys_total"`
		Trackers  []struct {
			Kind    string `json:"kind"`
			Created bool   `json:"created"`
		} `json:"trackers"`
	}
	if err := json.Unmarshal(env.Data, &gen); err != nil {
		t.Fatal(err)
	}
	if gen.KeysTotal == 0 {
		t.Error("no keys generated")
	}
	created := 0
	for _, tr := range gen.Trackers {
		if tr.Created {
			created++
		}
	}
	// Two minis (src/app, src/store), the doc tracker, the main
	// tracker.
	if created != 4 {
		t.Errorf("created %d trackers, want 4", created)
	}

	// Idempotent: a second run creates nothing.
	env, err = runJSON(t, "generate-keys", "--project-root", root)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(env.Data, &gen); err != nil {
		t.Fatal(err)
	}
	for _, tr := range gen.Trackers {
		if tr.Created {
			t.Errorf("second run created a %s tracker", tr.Kind)
		}
	}

	appKey := projectKey(t, root, "src/app")
	storeKey := projectKey(t, root, "src/store")

	env, err = runJSON(t, "add-dependency", "--project-root", root,
		"--tracker", "main", "--source", appKey, "--target", storeKey, "--char", "<")
	if err != nil {
		t.Fatalf("add-dependency: %v", err)
	}
	if env.Status != "success" {
		t.Fatalf("add-dependency status = %s: %s", env.Status, env.Message)
	}

	mainPath := tracker.MainPath(filepath.Join(root, ".lattice"))
	main, err := tracker.Load(mainPath)
	if err != nil {
		t.Fatal(err)
	}
	ch, err := main.Cell(appKey, storeKey)
	if err != nil {
		t.Fatal(err)
	}
	if ch != grid.DependsOn {
		t.Errorf("cell = %c, want <", ch)
	}

	env, err = runJSON(t, "remove-key", "--project-root", root,
		"--tracker", "main", "--key", storeKey)
	if err != nil {
		t.Fatalf("remove-key: %v", err)
	}
	main, err = tracker.Load(mainPath)
	if err != nil {
		t.Fatal(err)
	}
	if main.Has(storeKey) {
		t.Error("removed key still present")
	}

	// The edit produced a backup of the previous tracker bytes.
	backups, err := os.ReadDir(filepath.Join(root, ".lattice", "backups"))
	if err != nil || len(backups) == 0 {
		t.Errorf("expected tracker backups, got %v (err %v)", backups, err)
	}
}

func TestJSONErrorEnvelope(t *testing.T) {
	root := testProjectRoot(t)
	if _, err := runJSON(t, "generate-keys", "--project-root", root); err != nil {
		t.Fatal(err)
	}

	env, err := runJSON(t, "add-dependency", "--project-root", root,
		"--tracker", "main", "--source", "ZZZ", "--target", "1A", "--char", "<")
	if env.Status != "error" {
		t.Fatalf("status = %s, want error", env.Status)
	}
	if env.Category == "" {
		t.Error("error envelope missing category")
	}
	var exit *cli.ExitError
	if !errors.As(err, &exit) || exit.Code != 1 {
		t.Errorf("expected ExitError{1} in --json mode, got %v", err)
	}
}

func TestDoctorOnHealthyProject(t *testing.T) {
	root := testProjectRoot(t)
	if _, err := runJSON(t, "generate-keys", "--project-root", root); err != nil {
		t.Fatal(err)
	}
	env, err := runJSON(t, "doctor", "--project-root", root)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if env.Status != "success" {
		t.Errorf("doctor status = %s: %s", env.Status, env.Message)
	}
}

func TestUpdateConfigRoundTrip(t *testing.T) {
	root := testProjectRoot(t)
	env, err := runJSON(t, "update-config", "--project-root", root,
		"--key", "thresholds.doc_similarity", "--value", "0.65")
	if err != nil {
		t.Fatalf("update-config: %v", err)
	}
	if env.Status != "success" {
		t.Fatalf("status = %s: %s", env.Status, env.Message)
	}

	env, err = runJSON(t, "update-config", "--project-root", root)
	if err != nil {
		t.Fatal(err)
	}
	var values map[string]any
	if err := json.Unmarshal(env.Data, &values); err != nil {
		t.Fatal(err)
	}
	if values["thresholds.doc_similarity"] != 0.65 {
		t.Errorf("doc_similarity = %v, want 0.65", values["thresholds.doc_similarity"])
	}

	if _, err := runJSON(t, "reset-config", "--project-root", root); err != nil {
		t.Fatal(err)
	}
	env, err = runJSON(t, "update-config", "--project-root", root)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(env.Data, &values); err != nil {
		t.Fatal(err)
	}
	if values["thresholds.doc_similarity"] != 0.7 {
		t.Errorf("after reset doc_similarity = %v, want 0.7", values["thresholds.doc_similarity"])
	}
}
