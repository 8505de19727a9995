// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// run is one maximal stretch of identical characters.
type run struct {
	ch    Char
	count int
}

// Compress run-length encodes a character sequence. Runs of length
// one are written as the bare character; longer runs append the
// count. The encoding is canonical: equal sequences always compress
// to equal strings.
func Compress(seq []Char) (string, error) {
	var runs []run
	for i, c := range seq {
		if !c.Valid() {
			return "", fmt.Errorf("grid: compress: invalid character %q at index %d", c, i)
		}
		runs = appendRun(runs, run{c, 1})
	}
	return renderRuns(runs), nil
}

// Decompress expands a run-length-encoded string.
func Decompress(compressed string) ([]Char, error) {
	runs, err := parseRuns(compressed)
	if err != nil {
		return nil, err
	}
	n := 0
	for _, r := range runs {
		n += r.count
	}
	seq := make([]Char, 0, n)
	for _, r := range runs {
		for i := 0; i < r.count; i++ {
			seq = append(seq, r.ch)
		}
	}
	return seq, nil
}

// Length returns the decompressed length without materializing the
// sequence.
func Length(compressed string) (int, error) {
	runs, err := parseRuns(compressed)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range runs {
		n += r.count
	}
	return n, nil
}

// CharAt returns the character at index in the decompressed sequence.
func CharAt(compressed string, index int) (Char, error) {
	if index < 0 {
		return 0, fmt.Errorf("grid: index %d out of range", index)
	}
	runs, err := parseRuns(compressed)
	if err != nil {
		return 0, err
	}
	pos := 0
	for _, r := range runs {
		if index < pos+r.count {
			return r.ch, nil
		}
		pos += r.count
	}
	return 0, fmt.Errorf("grid: index %d out of range (length %d)", index, pos)
}

// SetCharAt returns a compressed string with the character at index
// replaced. The containing run is split and neighbours re-coalesced;
// the rest of the string is untouched.
func SetCharAt(compressed string, index int, ch Char) (string, error) {
	if !ch.Valid() {
		return "", fmt.Errorf("grid: set: invalid character %q", ch)
	}
	if index < 0 {
		return "", fmt.Errorf("grid: index %d out of range", index)
	}
	runs, err := parseRuns(compressed)
	if err != nil {
		return "", err
	}
	pos := 0
	for ri, r := range runs {
		if index >= pos+r.count {
			pos += r.count
			continue
		}
		if r.ch == ch {
			return compressed, nil
		}
		offset := index - pos
		out := make([]run, 0, len(runs)+2)
		out = append(out, runs[:ri]...)
		if offset > 0 {
			out = appendRun(out, run{r.ch, offset})
		}
		out = appendRun(out, run{ch, 1})
		if rest := r.count - offset - 1; rest > 0 {
			out = appendRun(out, run{r.ch, rest})
		}
		for _, next := range runs[ri+1:] {
			out = appendRun(out, next)
		}
		return renderRuns(out), nil
	}
	return "", fmt.Errorf("grid: index %d out of range (length %d)", index, pos)
}

// parseRuns scans a compressed string into runs. The grammar is
// strict: each run is a valid character optionally followed by a
// count >= 2 with no leading zero. A bare count of 1 is invalid
// because canonical encoding omits it.
func parseRuns(compressed string) ([]run, error) {
	var runs []run
	for i := 0; i < len(compressed); {
		ch := Char(compressed[i])
		if !ch.Valid() {
			return nil, fmt.Errorf("grid: invalid character %q at offset %d", ch, i)
		}
		i++
		count := 1
		if i < len(compressed) && isDigitByte(compressed[i]) {
			j := i
			for j < len(compressed) && isDigitByte(compressed[j]) {
				j++
			}
			n, err := strconv.Atoi(compressed[i:j])
			if err != nil {
				return nil, fmt.Errorf("grid: invalid run count %q at offset %d: %w", compressed[i:j], i, err)
			}
			if n < 2 || compressed[i] == '0' {
				return nil, fmt.Errorf("grid: invalid run count %q at offset %d", compressed[i:j], i)
			}
			count = n
			i = j
		}
		runs = append(runs, run{ch, count})
	}
	return runs, nil
}

func renderRuns(runs []run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteByte(byte(r.ch))
		if r.count > 1 {
			b.WriteString(strconv.Itoa(r.count))
		}
	}
	return b.String()
}

// appendRun appends r, merging it into the previous run when the
// characters match.
func appendRun(runs []run, r run) []run {
	if n := len(runs); n > 0 && runs[n-1].ch == r.ch {
		runs[n-1].count += r.count
		return runs
	}
	return append(runs, r)
}

func isDigitByte(c byte) bool {
	return c >= '0' && c <= '9'
}
