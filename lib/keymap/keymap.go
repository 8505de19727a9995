// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keymap

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bureau-foundation/lattice/lib/gridkey"
)

// Entry is one key assignment in the global map.
type Entry struct {
	// Base is the canonical key string without an instance suffix.
	Base string `json:"base"`
	// Instance is the #N suffix, or zero when the base never
	// collided. Instances are numbered by first registration.
	Instance int `json:"instance,omitempty"`
	// Path is the project-relative path the key names, with
	// forward slashes.
	Path string `json:"path"`
	// Tier echoes the tier digit of Base.
	Tier int `json:"tier"`
	// IsDir marks container entries (directories).
	IsDir bool `json:"is_dir,omitempty"`
}

// Key returns the canonical key string, including the instance
// suffix when the entry carries one.
func (e Entry) Key() string {
	if e.Instance == 0 {
		return e.Base
	}
	return fmt.Sprintf("%s#%d", e.Base, e.Instance)
}

// PathNotFoundError reports a path outside the tracked roots, or a
// configured root that does not exist on disk.
type PathNotFoundError struct {
	Path string
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("keymap: path not tracked: %s", e.Path)
}

// KeyNotFoundError reports a key with no entry in the map.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("keymap: key not found: %s", e.Key)
}

// AmbiguousKeyError reports a bare base key that matches several
// suffixed instances. Instances lists every claimant in suffix
// order.
type AmbiguousKeyError struct {
	Key       string
	Instances []Entry
}

func (e *AmbiguousKeyError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "keymap: key %s is ambiguous:", e.Key)
	for i, inst := range e.Instances {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, " %s (%s)", inst.Key(), inst.Path)
	}
	return b.String()
}

// Map holds every key assignment plus the counters that keep
// incremental generation stable. Not safe for concurrent use.
type Map struct {
	entries []*Entry
	byPath  map[string]*Entry
	byKey   map[string]*Entry
	byBase  map[string][]*Entry

	// fileIndex maps a container path to the next 1-based file
	// index. Indexes are never reused after removal so a dead key
	// cannot come back attached to a different file.
	fileIndex map[string]int
	// subLetter maps a container path to the next 0-based
	// lowercase letter for immediate subdirectories.
	subLetter map[string]int
	// dirLetter maps "<root>@<tier>" to the next 0-based
	// uppercase letter for promoted containers.
	dirLetter map[string]int
	// instanceNext maps a base key to the next instance suffix.
	// Present only for bases that have collided; once a base is
	// here every future registration of it is suffixed.
	instanceNext map[string]int
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{
		byPath:       make(map[string]*Entry),
		byKey:        make(map[string]*Entry),
		byBase:       make(map[string][]*Entry),
		fileIndex:    make(map[string]int),
		subLetter:    make(map[string]int),
		dirLetter:    make(map[string]int),
		instanceNext: make(map[string]int),
	}
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.entries)
}

// Entries returns all entries in first-registration order.
func (m *Map) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	for i, e := range m.entries {
		out[i] = *e
	}
	return out
}

// KeyFor returns the canonical key for a project-relative path.
func (m *Map) KeyFor(path string) (string, bool) {
	e, ok := m.byPath[path]
	if !ok {
		return "", false
	}
	return e.Key(), true
}

// PathFor returns the path for an exact canonical key. A bare base
// does not match a suffixed entry; use ResolveKey for user input.
func (m *Map) PathFor(key string) (string, bool) {
	e, ok := m.byKey[key]
	if !ok {
		return "", false
	}
	return e.Path, true
}

// Entry returns the entry registered for a project-relative path.
func (m *Map) Entry(path string) (Entry, bool) {
	e, ok := m.byPath[path]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Instances returns every entry claiming the given base key, in
// suffix order.
func (m *Map) Instances(base string) []Entry {
	peers := m.byBase[base]
	out := make([]Entry, len(peers))
	for i, e := range peers {
		out[i] = *e
	}
	return out
}

// ResolveKey resolves user input to a single entry. A key with an
// explicit #N suffix must match exactly. A bare base resolves when
// it names exactly one entry; with several instances the lookup
// fails with an AmbiguousKeyError listing all of them.
func (m *Map) ResolveKey(s string) (Entry, error) {
	k, err := gridkey.Parse(s)
	if err != nil {
		return Entry{}, fmt.Errorf("keymap: %w", err)
	}
	if k.Instance != 0 {
		if e, ok := m.byKey[k.String()]; ok {
			return *e, nil
		}
		return Entry{}, &KeyNotFoundError{Key: s}
	}
	peers := m.byBase[k.String()]
	switch len(peers) {
	case 0:
		return Entry{}, &KeyNotFoundError{Key: s}
	case 1:
		return *peers[0], nil
	default:
		return Entry{}, &AmbiguousKeyError{Key: s, Instances: m.Instances(k.String())}
	}
}

// Register assigns the given base key to a path. The base must not
// carry an instance suffix; the map decides suffixes. Registering an
// already-known path with the same base is a no-op returning the
// existing entry. When the base is already claimed by a different
// path, every claimant is suffixed: the existing sole claimant is
// retroactively renamed to #1 and the new path becomes #2; later
// claimants continue the sequence.
func (m *Map) Register(path string, base gridkey.Key, isDir bool) (Entry, error) {
	if path == "" {
		return Entry{}, fmt.Errorf("keymap: register: empty path")
	}
	if base.Instance != 0 {
		return Entry{}, fmt.Errorf("keymap: register %s: base %s carries an instance suffix", path, base)
	}
	baseStr := base.String()
	if parsed, err := gridkey.Parse(baseStr); err != nil || parsed != base {
		return Entry{}, fmt.Errorf("keymap: register %s: invalid base key %q", path, baseStr)
	}
	if existing, ok := m.byPath[path]; ok {
		if existing.Base != baseStr {
			return Entry{}, fmt.Errorf("keymap: %s is already %s, refusing reassignment to %s", path, existing.Key(), baseStr)
		}
		return *existing, nil
	}

	instance := 0
	peers := m.byBase[baseStr]
	switch {
	case len(peers) == 0:
		// A base that collided in the past stays suffixed even
		// after every old claimant was removed, so canonical
		// strings are never reused for new paths.
		if next, sticky := m.instanceNext[baseStr]; sticky {
			instance = next
			m.instanceNext[baseStr] = next + 1
		}
	case len(peers) == 1 && peers[0].Instance == 0:
		delete(m.byKey, peers[0].Key())
		peers[0].Instance = 1
		m.byKey[peers[0].Key()] = peers[0]
		instance = 2
		m.instanceNext[baseStr] = 3
	default:
		instance = m.instanceNext[baseStr]
		m.instanceNext[baseStr] = instance + 1
	}

	e := &Entry{Base: baseStr, Instance: instance, Path: path, Tier: base.Tier, IsDir: isDir}
	m.entries = append(m.entries, e)
	m.byPath[path] = e
	m.byKey[e.Key()] = e
	m.byBase[baseStr] = append(m.byBase[baseStr], e)
	return *e, nil
}

// Remove deletes the entry for a path and reports whether one
// existed. Counters are left alone: indexes, letters, and instance
// suffixes consumed by the removed entry are never handed out again.
func (m *Map) Remove(path string) (Entry, bool) {
	e, ok := m.byPath[path]
	if !ok {
		return Entry{}, false
	}
	delete(m.byPath, path)
	delete(m.byKey, e.Key())
	peers := slices.DeleteFunc(m.byBase[e.Base], func(p *Entry) bool { return p == e })
	if len(peers) == 0 {
		delete(m.byBase, e.Base)
	} else {
		m.byBase[e.Base] = peers
	}
	m.entries = slices.DeleteFunc(m.entries, func(p *Entry) bool { return p == e })
	return *e, true
}
