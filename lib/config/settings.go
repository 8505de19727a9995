// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/lattice/lib/atomicfile"
)

// SettingsName is the settings filename at the project root.
const SettingsName = "lattice.yaml"

// Settings is the mutable configuration store. All fields have
// defaults; the file only needs to name what it overrides.
type Settings struct {
	Paths      Paths      `yaml:"paths"`
	Models     Models     `yaml:"models"`
	Thresholds Thresholds `yaml:"thresholds"`
	Compute    Compute    `yaml:"compute"`
}

// Paths locates the generated artifacts. Relative paths are resolved
// against the project root.
type Paths struct {
	// MemoryDir holds the main tracker, the doc tracker, the
	// global key map, and the analysis snapshot.
	MemoryDir string `yaml:"memory_dir"`
	// EmbeddingsDir holds the embedding store.
	EmbeddingsDir string `yaml:"embeddings_dir"`
	// BackupsDir holds timestamped tracker backups.
	BackupsDir string `yaml:"backups_dir"`
}

// Models names the embedding models and the embedder binary.
type Models struct {
	DocModel  string `yaml:"doc_model"`
	CodeModel string `yaml:"code_model"`
	// EmbedderCommand is the external embedder invoked per batch.
	// Empty means no embedder is configured and the suggestion
	// engine degrades to static analysis only.
	EmbedderCommand string `yaml:"embedder_command"`
	// VectorDim is the expected embedding dimension.
	VectorDim int `yaml:"vector_dim"`
}

// Thresholds are the cosine-similarity cutoffs per tracker kind.
type Thresholds struct {
	DocSimilarity  float64 `yaml:"doc_similarity"`
	CodeSimilarity float64 `yaml:"code_similarity"`
	// WeakMargin widens the band below a threshold inside which a
	// weak suggestion is emitted instead of nothing.
	WeakMargin float64 `yaml:"weak_margin"`
}

// Compute bounds the analysis pipeline.
type Compute struct {
	// MaxWorkers caps the analysis pool; 0 means min(32, 2*CPU).
	MaxWorkers int `yaml:"max_workers"`
	// BatchSize fixes the batch size; 0 means adaptive sizing.
	BatchSize int `yaml:"batch_size"`
	// DocStructural picks the policy for parent-child doc links:
	// "verify" writes them as verified d cells, "suggest" emits
	// them as strong suggestions for review.
	DocStructural string `yaml:"doc_structural"`
	// StaticAuthoritative controls whether static analysis writes
	// verified characters directly; false downgrades them to
	// strong suggestions.
	StaticAuthoritative bool `yaml:"static_authoritative"`
	// EmbedTimeout bounds one embedder subprocess call.
	EmbedTimeout string `yaml:"embed_timeout"`
}

// DocStructural policies.
const (
	DocStructuralVerify  = "verify"
	DocStructuralSuggest = "suggest"
)

// DefaultSettings returns the stock configuration.
func DefaultSettings() *Settings {
	return &Settings{
		Paths: Paths{
			MemoryDir:     ".lattice",
			EmbeddingsDir: ".lattice/embeddings",
			BackupsDir:    ".lattice/backups",
		},
		Models: Models{
			DocModel:  "all-mpnet-base-v2",
			CodeModel: "all-mpnet-base-v2",
			VectorDim: 768,
		},
		Thresholds: Thresholds{
			DocSimilarity:  0.7,
			CodeSimilarity: 0.8,
			WeakMargin:     0.1,
		},
		Compute: Compute{
			DocStructural:       DocStructuralVerify,
			StaticAuthoritative: true,
			EmbedTimeout:        "60s",
		},
	}
}

// LoadSettings reads a settings file, merging it over the defaults.
// A missing file yields the defaults unchanged.
func LoadSettings(settingsPath string) (*Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("config: settings: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("config: settings %s: %w", settingsPath, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("config: settings %s: %w", settingsPath, err)
	}
	return s, nil
}

// Save writes the settings atomically as YAML.
func (s *Settings) Save(settingsPath string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("config: settings: %w", err)
	}
	if err := atomicfile.Write(settingsPath, data, 0o644); err != nil {
		return fmt.Errorf("config: settings: %w", err)
	}
	return nil
}

// Validate checks value ranges.
func (s *Settings) Validate() error {
	if s.Paths.MemoryDir == "" {
		return fmt.Errorf("paths.memory_dir is required")
	}
	if s.Paths.EmbeddingsDir == "" {
		return fmt.Errorf("paths.embeddings_dir is required")
	}
	if s.Paths.BackupsDir == "" {
		return fmt.Errorf("paths.backups_dir is required")
	}
	for key, v := range map[string]float64{
		"thresholds.doc_similarity":  s.Thresholds.DocSimilarity,
		"thresholds.code_similarity": s.Thresholds.CodeSimilarity,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %v", key, v)
		}
	}
	if s.Thresholds.WeakMargin < 0 || s.Thresholds.WeakMargin > 1 {
		return fmt.Errorf("thresholds.weak_margin must be in [0, 1], got %v", s.Thresholds.WeakMargin)
	}
	if s.Models.VectorDim <= 0 {
		return fmt.Errorf("models.vector_dim must be positive, got %d", s.Models.VectorDim)
	}
	if s.Compute.MaxWorkers < 0 {
		return fmt.Errorf("compute.max_workers must be >= 0, got %d", s.Compute.MaxWorkers)
	}
	if s.Compute.BatchSize < 0 {
		return fmt.Errorf("compute.batch_size must be >= 0, got %d", s.Compute.BatchSize)
	}
	switch s.Compute.DocStructural {
	case DocStructuralVerify, DocStructuralSuggest:
	default:
		return fmt.Errorf("compute.doc_structural must be %q or %q, got %q",
			DocStructuralVerify, DocStructuralSuggest, s.Compute.DocStructural)
	}
	if _, err := time.ParseDuration(s.Compute.EmbedTimeout); err != nil {
		return fmt.Errorf("compute.embed_timeout: %w", err)
	}
	return nil
}

// EmbedTimeout returns the parsed embedder call timeout.
func (s *Settings) EmbedTimeout() time.Duration {
	d, err := time.ParseDuration(s.Compute.EmbedTimeout)
	if err != nil {
		return time.Minute
	}
	return d
}

// MemoryPath, EmbeddingsPath, and BackupsPath resolve the configured
// directories against the project root. Absolute settings win.

func (s *Settings) MemoryPath(projectRoot string) string {
	return resolvePath(projectRoot, s.Paths.MemoryDir)
}

func (s *Settings) EmbeddingsPath(projectRoot string) string {
	return resolvePath(projectRoot, s.Paths.EmbeddingsDir)
}

func (s *Settings) BackupsPath(projectRoot string) string {
	return resolvePath(projectRoot, s.Paths.BackupsDir)
}

func resolvePath(projectRoot, dir string) string {
	dir = filepath.FromSlash(dir)
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(projectRoot, dir)
}

// EnsurePaths creates the memory, embeddings, and backups
// directories if they do not exist.
func (s *Settings) EnsurePaths(projectRoot string) error {
	for _, dir := range []string{
		s.MemoryPath(projectRoot),
		s.EmbeddingsPath(projectRoot),
		s.BackupsPath(projectRoot),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: creating %s: %w", dir, err)
		}
	}
	return nil
}

// settingsKeys enumerates the dot paths the Get/Set surface accepts,
// with typed accessors. Kept explicit rather than reflective so that
// key names, types, and validation stay visible in one place.
var settingsKeys = map[string]struct {
	get func(*Settings) any
	set func(*Settings, string) error
}{
	"paths.memory_dir": {
		get: func(s *Settings) any { return s.Paths.MemoryDir },
		set: func(s *Settings, v string) error { s.Paths.MemoryDir = v; return nil },
	},
	"paths.embeddings_dir": {
		get: func(s *Settings) any { return s.Paths.EmbeddingsDir },
		set: func(s *Settings, v string) error { s.Paths.EmbeddingsDir = v; return nil },
	},
	"paths.backups_dir": {
		get: func(s *Settings) any { return s.Paths.BackupsDir },
		set: func(s *Settings, v string) error { s.Paths.BackupsDir = v; return nil },
	},
	"models.doc_model": {
		get: func(s *Settings) any { return s.Models.DocModel },
		set: func(s *Settings, v string) error { s.Models.DocModel = v; return nil },
	},
	"models.code_model": {
		get: func(s *Settings) any { return s.Models.CodeModel },
		set: func(s *Settings, v string) error { s.Models.CodeModel = v; return nil },
	},
	"models.embedder_command": {
		get: func(s *Settings) any { return s.Models.EmbedderCommand },
		set: func(s *Settings, v string) error { s.Models.EmbedderCommand = v; return nil },
	},
	"models.vector_dim": {
		get: func(s *Settings) any { return s.Models.VectorDim },
		set: func(s *Settings, v string) error { return setInt(&s.Models.VectorDim, v) },
	},
	"thresholds.doc_similarity": {
		get: func(s *Settings) any { return s.Thresholds.DocSimilarity },
		set: func(s *Settings, v string) error { return setFloat(&s.Thresholds.DocSimilarity, v) },
	},
	"thresholds.code_similarity": {
		get: func(s *Settings) any { return s.Thresholds.CodeSimilarity },
		set: func(s *Settings, v string) error { return setFloat(&s.Thresholds.CodeSimilarity, v) },
	},
	"thresholds.weak_margin": {
		get: func(s *Settings) any { return s.Thresholds.WeakMargin },
		set: func(s *Settings, v string) error { return setFloat(&s.Thresholds.WeakMargin, v) },
	},
	"compute.max_workers": {
		get: func(s *Settings) any { return s.Compute.MaxWorkers },
		set: func(s *Settings, v string) error { return setInt(&s.Compute.MaxWorkers, v) },
	},
	"compute.batch_size": {
		get: func(s *Settings) any { return s.Compute.BatchSize },
		set: func(s *Settings, v string) error { return setInt(&s.Compute.BatchSize, v) },
	},
	"compute.doc_structural": {
		get: func(s *Settings) any { return s.Compute.DocStructural },
		set: func(s *Settings, v string) error { s.Compute.DocStructural = v; return nil },
	},
	"compute.static_authoritative": {
		get: func(s *Settings) any { return s.Compute.StaticAuthoritative },
		set: func(s *Settings, v string) error { return setBool(&s.Compute.StaticAuthoritative, v) },
	},
	"compute.embed_timeout": {
		get: func(s *Settings) any { return s.Compute.EmbedTimeout },
		set: func(s *Settings, v string) error { s.Compute.EmbedTimeout = v; return nil },
	},
}

// Keys returns every settable dot path, sorted.
func Keys() []string {
	keys := make([]string, 0, len(settingsKeys))
	for k := range settingsKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value at a dot path.
func (s *Settings) Get(key string) (any, error) {
	acc, ok := settingsKeys[key]
	if !ok {
		return nil, fmt.Errorf("config: unknown setting %q", key)
	}
	return acc.get(s), nil
}

// Set parses raw into the typed field at the dot path and validates
// the result. On any error the settings are left unchanged.
func (s *Settings) Set(key, raw string) error {
	acc, ok := settingsKeys[key]
	if !ok {
		return fmt.Errorf("config: unknown setting %q", key)
	}
	next := *s
	if err := acc.set(&next, raw); err != nil {
		return fmt.Errorf("config: setting %s: %w", key, err)
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("config: setting %s: %w", key, err)
	}
	*s = next
	return nil
}

func setInt(dst *int, raw string) error {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("not an integer: %q", raw)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, raw string) error {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", raw)
	}
	*dst = f
	return nil
}

func setBool(dst *bool, raw string) error {
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("not a boolean: %q", raw)
	}
	*dst = b
	return nil
}
