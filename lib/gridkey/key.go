// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gridkey

import (
	"fmt"
	"strconv"
	"strings"
)

// Key is a parsed hierarchical key. The zero value is not a valid key;
// construct through Parse or the lib/keymap generator.
type Key struct {
	// Tier is the promotion depth of the containing directory. Always
	// >= 1 for a valid key.
	Tier int

	// Dir is the container letter, 'A'..'Z'.
	Dir byte

	// Sub is the subdirectory letter, 'a'..'z', or 0 when the key
	// addresses the container itself or a file directly within it.
	Sub byte

	// Index is the 1-based file index within the container (or within
	// Sub when present). 0 means the key addresses a directory.
	Index int

	// Instance is the global-instance suffix. 0 means the base key has
	// no registered collision; >= 1 means this is the Nth registration
	// of the base string, in first-registration order.
	Instance int
}

// Parse parses a key string. The grammar is strict: leading tier
// digits, one uppercase directory letter, an optional lowercase
// subdirectory letter, optional index digits, and an optional
// "#<instance>" suffix. Anything else is an error.
func Parse(s string) (Key, error) {
	var k Key

	base := s
	if hash := strings.IndexByte(s, '#'); hash >= 0 {
		base = s[:hash]
		instance, err := parsePositiveInt(s[hash+1:])
		if err != nil {
			return Key{}, fmt.Errorf("gridkey: parse %q: bad instance suffix: %w", s, err)
		}
		k.Instance = instance
	}

	i := 0
	for i < len(base) && base[i] >= '0' && base[i] <= '9' {
		i++
	}
	if i == 0 {
		return Key{}, fmt.Errorf("gridkey: parse %q: missing tier", s)
	}
	tier, err := parsePositiveInt(base[:i])
	if err != nil {
		return Key{}, fmt.Errorf("gridkey: parse %q: bad tier: %w", s, err)
	}
	k.Tier = tier

	if i >= len(base) || base[i] < 'A' || base[i] > 'Z' {
		return Key{}, fmt.Errorf("gridkey: parse %q: missing directory letter", s)
	}
	k.Dir = base[i]
	i++

	if i < len(base) && base[i] >= 'a' && base[i] <= 'z' {
		k.Sub = base[i]
		i++
	}

	if i < len(base) {
		index, err := parsePositiveInt(base[i:])
		if err != nil {
			return Key{}, fmt.Errorf("gridkey: parse %q: bad index: %w", s, err)
		}
		k.Index = index
	}

	return k, nil
}

// MustParse parses a key string and panics on error. For tests and
// compile-time-constant keys only.
func MustParse(s string) Key {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}

// Valid reports whether s parses as a key.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// String renders the canonical key string, including the instance
// suffix when present.
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(k.Tier))
	b.WriteByte(k.Dir)
	if k.Sub != 0 {
		b.WriteByte(k.Sub)
	}
	if k.Index != 0 {
		b.WriteString(strconv.Itoa(k.Index))
	}
	if k.Instance != 0 {
		b.WriteByte('#')
		b.WriteString(strconv.Itoa(k.Instance))
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler so keys serialize as
// their canonical string form in JSON and CBOR.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty input
// produces the zero value (unset key).
func (k *Key) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*k = Key{}
		return nil
	}
	parsed, err := Parse(string(data))
	if err != nil {
		return fmt.Errorf("unmarshal Key: %w", err)
	}
	*k = parsed
	return nil
}

// Base returns the key with its instance suffix stripped.
func (k Key) Base() Key {
	k.Instance = 0
	return k
}

// BaseString is shorthand for k.Base().String().
func (k Key) BaseString() string {
	return k.Base().String()
}

// IsDirectory reports whether the key addresses a directory (no file
// index) rather than a file.
func (k Key) IsDirectory() bool {
	return k.Index == 0
}

// Container returns the directory key that contains this key: the
// sub-level key when Sub is set, otherwise the tier+dir key. For a
// directory key without Sub, Container returns the key itself.
func (k Key) Container() Key {
	k.Index = 0
	k.Instance = 0
	return k
}

// Compare orders keys hierarchically: tier, then directory letter,
// then subdirectory letter (absent sorts before present, so a
// container precedes its contents' subdirectory groups), then file
// index (directories before files), then instance. Returns -1, 0, or
// +1.
func Compare(a, b Key) int {
	if a.Tier != b.Tier {
		return sign(a.Tier - b.Tier)
	}
	if a.Dir != b.Dir {
		return sign(int(a.Dir) - int(b.Dir))
	}
	if a.Sub != b.Sub {
		return sign(int(a.Sub) - int(b.Sub))
	}
	if a.Index != b.Index {
		return sign(a.Index - b.Index)
	}
	return sign(a.Instance - b.Instance)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// parsePositiveInt parses a strictly positive decimal integer with no
// sign, whitespace, or leading zeros beyond a single digit.
func parsePositiveInt(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, fmt.Errorf("leading zero in %q", s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("non-positive number %d", n)
	}
	return n, nil
}
