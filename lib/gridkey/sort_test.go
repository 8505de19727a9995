// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gridkey

import (
	"slices"
	"testing"
)

func TestSort(t *testing.T) {
	keys := []Key{
		MustParse("2C1#2"),
		MustParse("1B"),
		MustParse("1A10"),
		MustParse("1Aa"),
		MustParse("1A2"),
		MustParse("2C1#1"),
		MustParse("1A"),
	}
	Sort(keys)
	want := []string{"1A", "1A2", "1A10", "1Aa", "1B", "2C1#1", "2C1#2"}
	got := make([]string, len(keys))
	for i, k := range keys {
		got[i] = k.String()
	}
	if !slices.Equal(got, want) {
		t.Errorf("Sort = %v, want %v", got, want)
	}
}

func TestSortStrings(t *testing.T) {
	keys := []string{"readme", "1B", "1A10", "1A2", "zz2", "zz10"}
	SortStrings(keys)
	want := []string{"1A2", "1A10", "1B", "readme", "zz2", "zz10"}
	if !slices.Equal(keys, want) {
		t.Errorf("SortStrings = %v, want %v", keys, want)
	}
}

func TestCompareStrings(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1A2", "1A10", -1},
		{"1A", "1A", 0},
		{"1B", "1A", 1},
		{"1A", "not-a-key", -1},
		{"not-a-key", "1A", 1},
		{"x2", "x10", -1},
		{"x10", "x10", 0},
	}
	for _, tc := range cases {
		if got := CompareStrings(tc.a, tc.b); got != tc.want {
			t.Errorf("CompareStrings(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
