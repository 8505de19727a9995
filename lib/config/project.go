// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"path/filepath"
)

// Project is a fully loaded project context: root directory,
// manifest, and settings. Commands load one per invocation.
type Project struct {
	// Root is the absolute project root (the directory holding the
	// manifest).
	Root     string
	Manifest *Manifest
	Settings *Settings

	settingsPath string
}

// Open loads the manifest and settings from a known project root.
func Open(root string) (*Project, error) {
	return OpenWithSettings(root, "")
}

// OpenWithSettings opens a project with an alternate settings file.
// An empty settingsPath uses the conventional lattice.yaml at the
// root; settings mutations save back to the given file.
func OpenWithSettings(root, settingsPath string) (*Project, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	manifest, err := LoadManifest(filepath.Join(abs, ManifestName))
	if err != nil {
		return nil, err
	}
	if settingsPath == "" {
		settingsPath = filepath.Join(abs, SettingsName)
	} else if settingsPath, err = filepath.Abs(settingsPath); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	settings, err := LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}
	return &Project{
		Root:         abs,
		Manifest:     manifest,
		Settings:     settings,
		settingsPath: settingsPath,
	}, nil
}

// OpenFrom discovers the project root upward from start and opens it.
func OpenFrom(start string) (*Project, error) {
	root, err := FindProjectRoot(start)
	if err != nil {
		return nil, err
	}
	return Open(root)
}

// ManifestPath returns the manifest file location.
func (p *Project) ManifestPath() string {
	return filepath.Join(p.Root, ManifestName)
}

// SettingsPath returns the settings file location.
func (p *Project) SettingsPath() string {
	if p.settingsPath != "" {
		return p.settingsPath
	}
	return filepath.Join(p.Root, SettingsName)
}

// SaveSettings persists the current settings to the project.
func (p *Project) SaveSettings() error {
	return p.Settings.Save(p.SettingsPath())
}

// MemoryPath returns the absolute memory directory.
func (p *Project) MemoryPath() string {
	return p.Settings.MemoryPath(p.Root)
}

// EmbeddingsPath returns the absolute embeddings directory.
func (p *Project) EmbeddingsPath() string {
	return p.Settings.EmbeddingsPath(p.Root)
}

// BackupsPath returns the absolute backups directory.
func (p *Project) BackupsPath() string {
	return p.Settings.BackupsPath(p.Root)
}
