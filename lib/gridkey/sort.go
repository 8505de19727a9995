// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gridkey

import (
	"slices"
)

// Sort sorts keys in place into hierarchical order.
func Sort(keys []Key) {
	slices.SortFunc(keys, Compare)
}

// SortStrings sorts key strings in place. Strings that parse as keys
// sort hierarchically and precede strings that do not; the rest fall
// back to natural ordering so display output stays stable.
func SortStrings(keys []string) {
	slices.SortFunc(keys, CompareStrings)
}

// CompareStrings orders two key strings. Parseable keys order
// hierarchically via Compare; a parseable key sorts before an
// unparseable string; two unparseable strings order naturally (digit
// runs compared numerically).
func CompareStrings(a, b string) int {
	ka, errA := Parse(a)
	kb, errB := Parse(b)
	switch {
	case errA == nil && errB == nil:
		if c := Compare(ka, kb); c != 0 {
			return c
		}
		return naturalCompare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return naturalCompare(a, b)
	}
}

// naturalCompare compares strings run by run, treating maximal digit
// runs as numbers. "1A2" < "1A10", "doc" < "doc2".
func naturalCompare(a, b string) int {
	for a != "" && b != "" {
		ra, resta := nextRun(a)
		rb, restb := nextRun(b)
		if c := compareRuns(ra, rb); c != 0 {
			return c
		}
		a, b = resta, restb
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

// nextRun splits off the leading maximal run of digits or non-digits.
func nextRun(s string) (run, rest string) {
	digit := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digit {
		i++
	}
	return s[:i], s[i:]
}

func compareRuns(a, b string) int {
	aDigit := isDigit(a[0])
	bDigit := isDigit(b[0])
	if aDigit != bDigit {
		// Digit runs sort before letter runs at the same position.
		if aDigit {
			return -1
		}
		return 1
	}
	if aDigit {
		// Compare numerically without conversion: strip leading
		// zeros, then longer means larger.
		ta := trimLeadingZeros(a)
		tb := trimLeadingZeros(b)
		if len(ta) != len(tb) {
			return sign(len(ta) - len(tb))
		}
		if c := compareBytes(ta, tb); c != 0 {
			return c
		}
		// Equal values; more leading zeros sorts first for stability.
		return sign(len(a) - len(b))
	}
	return compareBytes(a, b)
}

func trimLeadingZeros(s string) string {
	i := 0
	for i < len(s)-1 && s[i] == '0' {
		i++
	}
	return s[i:]
}

func compareBytes(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
