// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grid

import (
	"errors"
	"slices"
	"testing"
)

func newTestGrid(t *testing.T, keys ...string) *Grid {
	t.Helper()
	g, err := New(keys)
	if err != nil {
		t.Fatalf("New(%v): %v", keys, err)
	}
	return g
}

func TestNewSortsAndFills(t *testing.T) {
	g := newTestGrid(t, "1B1", "1A2", "1A1")
	if got, want := g.Keys(), []string{"1A1", "1A2", "1B1"}; !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	row, err := g.CompressedRow("1A1")
	if err != nil {
		t.Fatal(err)
	}
	if row != "p2" {
		t.Errorf("initial row = %q, want %q", row, "p2")
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestNewRejectsDuplicatesAndBadKeys(t *testing.T) {
	if _, err := New([]string{"1A1", "1A1"}); err == nil {
		t.Error("duplicate keys accepted")
	}
	if _, err := New([]string{"1A1", "bogus"}); err == nil {
		t.Error("malformed key accepted")
	}
}

func TestFromRowsStrict(t *testing.T) {
	keys := []string{"1A1", "1A2", "1B1"}
	if _, err := FromRows(keys, []string{"n2", "p2", "p2"}); err != nil {
		t.Fatalf("valid rows rejected: %v", err)
	}
	cases := []struct {
		name string
		keys []string
		rows []string
	}{
		{"row count mismatch", keys, []string{"n2", "p2"}},
		{"row too short", keys, []string{"n", "p2", "p2"}},
		{"row too long", keys, []string{"n3", "p2", "p2"}},
		{"keys out of order", []string{"1A2", "1A1", "1B1"}, []string{"p2", "p2", "p2"}},
		{"duplicate key", []string{"1A1", "1A1", "1B1"}, []string{"p2", "p2", "p2"}},
		{"explicit diagonal", keys, []string{"on", "p2", "p2"}},
		{"malformed run", keys, []string{"n1n", "p2", "p2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := FromRows(tc.keys, tc.rows); err == nil {
				t.Error("corrupt input accepted")
			}
		})
	}
}

func TestCellAndSetCell(t *testing.T) {
	g := newTestGrid(t, "1A1", "1A2", "1B1")
	if err := g.SetCell("1A1", "1B1", DependsOn); err != nil {
		t.Fatal(err)
	}
	ch, err := g.Cell("1A1", "1B1")
	if err != nil {
		t.Fatal(err)
	}
	if ch != DependsOn {
		t.Errorf("Cell = %q, want %q", ch, DependsOn)
	}
	// Untouched cells keep the placeholder.
	if ch, _ := g.Cell("1A1", "1A2"); ch != Placeholder {
		t.Errorf("unrelated cell = %q, want placeholder", ch)
	}
	// The diagonal reads back as Diagonal and rejects writes.
	if ch, _ := g.Cell("1A2", "1A2"); ch != Diagonal {
		t.Errorf("diagonal = %q", ch)
	}
	if err := g.SetCell("1A2", "1A2", NoLink); err == nil {
		t.Error("diagonal write succeeded")
	}
	if err := g.SetCell("1A1", "1B1", Diagonal); err == nil {
		t.Error("storing the diagonal character succeeded")
	}
	if _, err := g.Cell("1A1", "9Z"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("unknown key err = %v, want ErrUnknownKey", err)
	}
}

func TestSetCellSpecExample(t *testing.T) {
	// Keys [1A1, 1A2, 1B1]: row 1A1 starts as n2 over columns
	// (1A2, 1B1); recording 1A1 -> 1B1 yields n<.
	g, err := FromRows([]string{"1A1", "1A2", "1B1"}, []string{"n2", "p2", "p2"})
	if err != nil {
		t.Fatal(err)
	}
	if err := g.SetCell("1A1", "1B1", DependsOn); err != nil {
		t.Fatal(err)
	}
	row, err := g.CompressedRow("1A1")
	if err != nil {
		t.Fatal(err)
	}
	if row != "n<" {
		t.Errorf("row = %q, want %q", row, "n<")
	}
}

func TestSuggestLattice(t *testing.T) {
	g := newTestGrid(t, "1A1", "1A2", "1B1")

	// Placeholder accepts a weak suggestion.
	changed, err := g.Suggest("1A1", "1A2", Weak)
	if err != nil || !changed {
		t.Fatalf("Suggest weak over placeholder = (%v, %v)", changed, err)
	}
	// Weak rejects weak, accepts strong.
	if changed, _ := g.Suggest("1A1", "1A2", Weak); changed {
		t.Error("weak replaced weak")
	}
	if changed, _ := g.Suggest("1A1", "1A2", Strong); !changed {
		t.Error("strong did not replace weak")
	}
	// Strong rejects weak.
	if changed, _ := g.Suggest("1A1", "1A2", Weak); changed {
		t.Error("weak replaced strong")
	}

	// Verified cells never change through Suggest.
	if err := g.SetCell("1A1", "1B1", NoLink); err != nil {
		t.Fatal(err)
	}
	for _, ch := range []Char{Weak, Strong, DependsOn, Mutual} {
		if changed, _ := g.Suggest("1A1", "1B1", ch); changed {
			t.Errorf("Suggest(%q) overwrote verified cell", ch)
		}
	}
	if ch, _ := g.Cell("1A1", "1B1"); ch != NoLink {
		t.Errorf("verified cell = %q after suggestions, want %q", ch, NoLink)
	}

	// The diagonal is never written.
	if changed, err := g.Suggest("1A1", "1A1", Strong); changed || err != nil {
		t.Errorf("Suggest on diagonal = (%v, %v)", changed, err)
	}
}

func TestRowAndColumn(t *testing.T) {
	g := newTestGrid(t, "1A1", "1A2", "1B1")
	if err := g.SetCell("1A1", "1B1", DependsOn); err != nil {
		t.Fatal(err)
	}
	if err := g.SetCell("1B1", "1A1", RequiredBy); err != nil {
		t.Fatal(err)
	}

	row, err := g.Row("1A1")
	if err != nil {
		t.Fatal(err)
	}
	if got := CharsString(row); got != "op<" {
		t.Errorf("Row(1A1) = %q, want %q", got, "op<")
	}

	col, err := g.Column("1A1")
	if err != nil {
		t.Fatal(err)
	}
	if got := CharsString(col); got != "op>" {
		t.Errorf("Column(1A1) = %q, want %q", got, "op>")
	}
}

func TestAddKeys(t *testing.T) {
	g := newTestGrid(t, "1A1", "1B1")
	if err := g.SetCell("1A1", "1B1", Mutual); err != nil {
		t.Fatal(err)
	}
	if err := g.AddKeys("1A2", "2C1"); err != nil {
		t.Fatal(err)
	}
	if got, want := g.Keys(), []string{"1A1", "1A2", "1B1", "2C1"}; !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	// The existing relationship survives the reshape.
	if ch, _ := g.Cell("1A1", "1B1"); ch != Mutual {
		t.Errorf("Cell(1A1, 1B1) = %q after AddKeys", ch)
	}
	// New rows and columns are placeholders.
	if ch, _ := g.Cell("1A1", "1A2"); ch != Placeholder {
		t.Errorf("new column = %q, want placeholder", ch)
	}
	if ch, _ := g.Cell("2C1", "1A1"); ch != Placeholder {
		t.Errorf("new row = %q, want placeholder", ch)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate after AddKeys: %v", err)
	}
	if err := g.AddKeys("1A1"); err == nil {
		t.Error("re-adding existing key succeeded")
	}
}

func TestRemoveKey(t *testing.T) {
	g := newTestGrid(t, "1A1", "1A2", "1B1")
	if err := g.SetCell("1A1", "1B1", DependsOn); err != nil {
		t.Fatal(err)
	}
	if err := g.SetCell("1A1", "1A2", NoLink); err != nil {
		t.Fatal(err)
	}
	if err := g.RemoveKey("1A2"); err != nil {
		t.Fatal(err)
	}
	if got, want := g.Keys(), []string{"1A1", "1B1"}; !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if ch, _ := g.Cell("1A1", "1B1"); ch != DependsOn {
		t.Errorf("surviving cell = %q, want %q", ch, DependsOn)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate after RemoveKey: %v", err)
	}
	if err := g.RemoveKey("1A2"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("removing absent key err = %v, want ErrUnknownKey", err)
	}
}

func TestCells(t *testing.T) {
	g := newTestGrid(t, "1A1", "1A2")
	if err := g.SetCell("1A1", "1A2", DependsOn); err != nil {
		t.Fatal(err)
	}
	type cell struct {
		row, col string
		ch       Char
	}
	var got []cell
	err := g.Cells(func(row, col string, ch Char) error {
		got = append(got, cell{row, col, ch})
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []cell{
		{"1A1", "1A2", DependsOn},
		{"1A2", "1A1", Placeholder},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Cells = %v, want %v", got, want)
	}
}

func TestSingleKeyGrid(t *testing.T) {
	g := newTestGrid(t, "1A1")
	if err := g.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	row, err := g.Row("1A1")
	if err != nil {
		t.Fatal(err)
	}
	if got := CharsString(row); got != "o" {
		t.Errorf("Row = %q, want %q", got, "o")
	}
}
