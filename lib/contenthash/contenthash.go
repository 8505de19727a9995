// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package contenthash

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest.
type Hash [32]byte

// contentDomainKey is the keyed-hash domain for artifact content.
// Keyed mode separates these digests from any other BLAKE3 use; the
// bytes are the ASCII domain name, zero-padded to 32.
var contentDomainKey = [32]byte{
	'l', 'a', 't', 't', 'i', 'c', 'e', '.', 'c', 'o', 'n', 't', 'e', 'n', 't',
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// HashBytes computes the content digest of data.
func HashBytes(data []byte) Hash {
	hasher := newHasher()
	hasher.Write(data)
	var h Hash
	copy(h[:], hasher.Sum(nil))
	return h
}

// HashFile streams the file at path through the hash function.
func HashFile(path string) (Hash, error) {
	f, err := os.Open(path)
	if err != nil {
		return Hash{}, fmt.Errorf("contenthash: %w", err)
	}
	defer f.Close()

	hasher := newHasher()
	if _, err := io.Copy(hasher, f); err != nil {
		return Hash{}, fmt.Errorf("contenthash: %s: %w", path, err)
	}
	var h Hash
	copy(h[:], hasher.Sum(nil))
	return h, nil
}

// String returns the canonical lowercase hex form.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether the hash is the zero value.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// MarshalText implements encoding.TextMarshaler so digests serialize
// as lowercase hex in JSON and CBOR.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty input
// produces the zero value (unset digest).
func (h *Hash) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*h = Hash{}
		return nil
	}
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Parse decodes a 64-character hex digest.
func Parse(s string) (Hash, error) {
	var h Hash
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("contenthash: parse: %w", err)
	}
	if len(decoded) != len(h) {
		return h, fmt.Errorf("contenthash: digest is %d bytes, want %d", len(decoded), len(h))
	}
	copy(h[:], decoded)
	return h, nil
}

func newHasher() *blake3.Hasher {
	hasher, err := blake3.NewKeyed(contentDomainKey[:])
	if err != nil {
		// NewKeyed fails only on wrong key length, which the fixed
		// array rules out.
		panic("contenthash: BLAKE3 keyed init failed: " + err.Error())
	}
	return hasher
}
