// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gridkey

import (
	"testing"
)

func TestParseValid(t *testing.T) {
	cases := []struct {
		in   string
		want Key
	}{
		{"1A", Key{Tier: 1, Dir: 'A'}},
		{"1A2", Key{Tier: 1, Dir: 'A', Index: 2}},
		{"1Aa", Key{Tier: 1, Dir: 'A', Sub: 'a'}},
		{"1Aa3", Key{Tier: 1, Dir: 'A', Sub: 'a', Index: 3}},
		{"2Ba3", Key{Tier: 2, Dir: 'B', Sub: 'a', Index: 3}},
		{"2C1#2", Key{Tier: 2, Dir: 'C', Index: 1, Instance: 2}},
		{"10Z", Key{Tier: 10, Dir: 'Z'}},
		{"3Cz12#4", Key{Tier: 3, Dir: 'C', Sub: 'z', Index: 12, Instance: 4}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tc.in, got, tc.want)
			}
			if s := got.String(); s != tc.in {
				t.Errorf("Parse(%q).String() = %q", tc.in, s)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	cases := []string{
		"",
		"A1",     // missing tier
		"1",      // missing directory letter
		"1a",     // lowercase where directory letter expected
		"0A",     // zero tier
		"01A",    // leading zero in tier
		"1A0",    // zero index
		"1A02",   // leading zero in index
		"1AB",    // second uppercase letter
		"1A2x",   // trailing letter after index
		"1A#",    // empty instance
		"1A#0",   // zero instance
		"1A#x",   // non-numeric instance
		"1A2#2x", // trailing junk after instance
		"#2",     // bare suffix
		"1A-1",   // sign
		"1A 2",   // whitespace
	}
	for _, in := range cases {
		t.Run(in, func(t *testing.T) {
			if k, err := Parse(in); err == nil {
				t.Errorf("Parse(%q) = %+v, want error", in, k)
			}
			if Valid(in) {
				t.Errorf("Valid(%q) = true", in)
			}
		})
	}
}

func TestBase(t *testing.T) {
	k := MustParse("2C1#2")
	if got := k.BaseString(); got != "2C1" {
		t.Errorf("BaseString() = %q, want %q", got, "2C1")
	}
	if k.Instance != 2 {
		t.Errorf("Base mutated receiver: %+v", k)
	}
	plain := MustParse("1A2")
	if plain.Base() != plain {
		t.Errorf("Base of unsuffixed key changed: %+v", plain.Base())
	}
}

func TestIsDirectory(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"1A", true},
		{"1Aa", true},
		{"1A2", false},
		{"1Aa3", false},
		{"2B#2", true},
		{"2B1#2", false},
	}
	for _, tc := range cases {
		if got := MustParse(tc.in).IsDirectory(); got != tc.want {
			t.Errorf("IsDirectory(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestContainer(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1A2", "1A"},
		{"1Aa3", "1Aa"},
		{"1Aa", "1Aa"},
		{"1A", "1A"},
		{"2C1#2", "2C"},
	}
	for _, tc := range cases {
		if got := MustParse(tc.in).Container().String(); got != tc.want {
			t.Errorf("Container(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCompare(t *testing.T) {
	ordered := []string{
		"1A", "1A1", "1A2", "1A10", "1Aa", "1Aa1", "1Ab", "1B",
		"2A", "2C1#1", "2C1#2", "10A",
	}
	for i := range ordered {
		for j := range ordered {
			a, b := MustParse(ordered[i]), MustParse(ordered[j])
			want := sign(i - j)
			if got := Compare(a, b); got != want {
				t.Errorf("Compare(%q, %q) = %d, want %d", ordered[i], ordered[j], got, want)
			}
		}
	}
}
