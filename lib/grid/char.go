// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grid

import (
	"errors"
	"fmt"
)

// Char is a single dependency character.
type Char byte

const (
	// Verified characters. Suggestion runs never replace these.

	// DependsOn records that the row artifact requires the column
	// artifact.
	DependsOn Char = '<'
	// RequiredBy records that the column artifact requires the row
	// artifact.
	RequiredBy Char = '>'
	// Mutual records a dependency in both directions.
	Mutual Char = 'x'
	// DocLink records an essential documentation link.
	DocLink Char = 'd'
	// NoLink records a verified absence of any dependency.
	NoLink Char = 'n'

	// Unverified characters.

	// Placeholder marks a cell awaiting analysis.
	Placeholder Char = 'p'
	// Weak marks a weak semantic suggestion.
	Weak Char = 's'
	// Strong marks a strong semantic suggestion.
	Strong Char = 'S'

	// Diagonal is the implied self cell. It never appears in a
	// persisted row; codec callers splice it out before compressing.
	Diagonal Char = 'o'
)

// ErrConflict reports two verified characters that disagree about the
// same cell. Callers wrap it with cell coordinates.
var ErrConflict = errors.New("conflicting verified characters")

func (c Char) String() string {
	return string(rune(c))
}

// MarshalText implements encoding.TextMarshaler so characters render
// as one-letter strings in JSON and CBOR rather than as raw bytes.
func (c Char) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("grid: marshal invalid character %d", byte(c))
	}
	return []byte{byte(c)}, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Char) UnmarshalText(data []byte) error {
	if len(data) != 1 {
		return fmt.Errorf("grid: unmarshal character %q: want one byte", data)
	}
	parsed := Char(data[0])
	if !parsed.Valid() {
		return fmt.Errorf("grid: unmarshal invalid character %q", data)
	}
	*c = parsed
	return nil
}

// Valid reports whether c is one of the nine dependency characters.
func (c Char) Valid() bool {
	switch c {
	case DependsOn, RequiredBy, Mutual, DocLink, NoLink, Placeholder, Weak, Strong, Diagonal:
		return true
	default:
		return false
	}
}

// IsVerified reports whether c records a human or static judgment
// that suggestion runs must preserve.
func (c Char) IsVerified() bool {
	switch c {
	case DependsOn, RequiredBy, Mutual, DocLink, NoLink:
		return true
	default:
		return false
	}
}

// IsSuggestion reports whether c is an unverified suggestion.
func (c Char) IsSuggestion() bool {
	return c == Weak || c == Strong
}

// Specificity ranks c in the update lattice: verified characters rank
// 3, strong suggestions 2, weak suggestions 1, the placeholder 0.
// The diagonal has no rank and returns -1.
func (c Char) Specificity() int {
	switch c {
	case DependsOn, RequiredBy, Mutual, DocLink, NoLink:
		return 3
	case Strong:
		return 2
	case Weak:
		return 1
	case Placeholder:
		return 0
	default:
		return -1
	}
}

// MergeChars combines two observations of the same cell. The more
// specific character wins. Opposite directed links of equal rank
// combine to Mutual. Any other equal-rank disagreement is a conflict,
// never a silent overwrite.
func MergeChars(a, b Char) (Char, error) {
	if !a.Valid() || a == Diagonal {
		return 0, fmt.Errorf("grid: merge: invalid character %q", a)
	}
	if !b.Valid() || b == Diagonal {
		return 0, fmt.Errorf("grid: merge: invalid character %q", b)
	}
	if a == b {
		return a, nil
	}
	sa, sb := a.Specificity(), b.Specificity()
	if sa > sb {
		return a, nil
	}
	if sb > sa {
		return b, nil
	}
	if (a == DependsOn && b == RequiredBy) || (a == RequiredBy && b == DependsOn) {
		return Mutual, nil
	}
	return 0, fmt.Errorf("grid: %q vs %q: %w", a, b, ErrConflict)
}

// ParseChars validates s as a raw (uncompressed) character sequence.
func ParseChars(s string) ([]Char, error) {
	seq := make([]Char, len(s))
	for i := 0; i < len(s); i++ {
		c := Char(s[i])
		if !c.Valid() {
			return nil, fmt.Errorf("grid: invalid character %q at index %d", c, i)
		}
		seq[i] = c
	}
	return seq, nil
}

// CharsString renders a decompressed sequence as a plain string.
func CharsString(seq []Char) string {
	b := make([]byte, len(seq))
	for i, c := range seq {
		b[i] = byte(c)
	}
	return string(b)
}
