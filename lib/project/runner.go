// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/bureau-foundation/lattice/lib/batch"
	"github.com/bureau-foundation/lattice/lib/cache"
	"github.com/bureau-foundation/lattice/lib/clock"
	"github.com/bureau-foundation/lattice/lib/config"
	"github.com/bureau-foundation/lattice/lib/embed"
	"github.com/bureau-foundation/lattice/lib/keymap"
)

// Options adjust a single run.
type Options struct {
	// Force clears the result caches and ignores the previous run
	// snapshot, recomputing everything from the artifacts.
	Force bool
	// Workers overrides compute.max_workers for this run. Zero keeps
	// the configured value.
	Workers int
}

// Status classifies a completed run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Report is the per-phase outcome of a run.
type Report struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
	// Clean is set when the project state matched the last run's
	// snapshot and the embedding and tracker phases were skipped.
	Clean bool `json:"clean,omitempty"`

	Keys      KeyPhase        `json:"keys"`
	Analysis  AnalysisPhase   `json:"analysis"`
	Embedding EmbeddingPhase  `json:"embedding"`
	Trackers  []TrackerUpdate `json:"trackers,omitempty"`
}

// KeyPhase reports the key map refresh.
type KeyPhase struct {
	Total   int `json:"total"`
	New     int `json:"new"`
	Removed int `json:"removed"`
}

// AnalysisPhase reports artifact analysis.
type AnalysisPhase struct {
	Files     int `json:"files"`
	CacheHits int `json:"cache_hits"`
	Binary    int `json:"binary"`
}

// EmbeddingPhase reports embedding generation.
type EmbeddingPhase struct {
	// Enabled reports whether an embedder was configured.
	Enabled bool `json:"enabled"`
	// Reused counts artifacts whose stored vector was still fresh.
	Reused   int `json:"reused"`
	Embedded int `json:"embedded"`
	// Skipped counts binary artifacts, which are never embedded.
	Skipped int `json:"skipped"`
	// Degraded is set when no embedder is configured or the embedder
	// failed; the run continues on static evidence alone.
	Degraded bool   `json:"degraded,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// TrackerUpdate reports one tracker's suggestion pass.
type TrackerUpdate struct {
	Name string `json:"name"`
	// Path is project-relative, slash-separated.
	Path    string `json:"path"`
	Keys    int    `json:"keys"`
	Changes int    `json:"changes"`
	// Written is false when the pass changed nothing and the file
	// was left untouched.
	Written bool `json:"written"`
}

// Runner executes analysis runs against one project. Project is
// required; the rest is optional: a nil Cache disables result
// caching, a nil Embedder degrades the run to static evidence.
type Runner struct {
	Project *config.Project
	// Cache is the shared result cache, owned by the caller.
	Cache *cache.Store
	// Embedder produces vectors for changed artifacts.
	Embedder embed.Embedder

	Logger *slog.Logger
	Clock  clock.Clock
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (r *Runner) clock() clock.Clock {
	if r.Clock != nil {
		return r.Clock
	}
	return clock.Real()
}

func (r *Runner) workerCount(opts Options) int {
	if opts.Workers > 0 {
		return opts.Workers
	}
	if n := r.Project.Settings.Compute.MaxWorkers; n > 0 {
		return n
	}
	return batch.DefaultWorkers()
}

// Run executes the full pipeline. Degraded runs (no embedder, a
// failing embedder) complete with a warning report; only broken
// configuration, corrupt state, or IO failures return an error.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	if r.Project == nil {
		return nil, fmt.Errorf("project: runner has no project")
	}
	p := r.Project
	log := r.logger()
	workers := r.workerCount(opts)
	report := &Report{Status: StatusSuccess}

	if err := p.Settings.EnsurePaths(p.Root); err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	if opts.Force && r.Cache != nil {
		removed, err := r.Cache.ClearAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("project: clearing caches: %w", err)
		}
		log.Info("caches cleared", "entries", removed)
	}

	// Key map refresh. Existing keys are never renumbered; new paths
	// consume the persisted counters.
	keyMapPath := filepath.Join(p.MemoryPath(), keymap.FileName)
	km, err := keymap.LoadOrNew(keyMapPath)
	if err != nil {
		return nil, err
	}
	genResult, err := km.Generate(keymap.GenerateOptions{
		ProjectRoot: p.Root,
		CodeRoots:   p.Manifest.CodeRoots,
		DocRoots:    p.Manifest.DocRoots,
		Exclude:     p.Manifest.Excluder(),
	})
	if err != nil {
		return nil, err
	}
	if err := km.Save(keyMapPath); err != nil {
		return nil, err
	}
	report.Keys = KeyPhase{Total: km.Len(), New: len(genResult.New), Removed: len(genResult.Removed)}
	log.Info("key map refreshed",
		"total", km.Len(), "new", len(genResult.New), "removed", len(genResult.Removed))

	arts, err := r.analyzeArtifacts(ctx, km, workers, &report.Analysis)
	if err != nil {
		return nil, err
	}
	log.Info("artifacts analyzed",
		"files", report.Analysis.Files,
		"cache_hits", report.Analysis.CacheHits,
		"binary", report.Analysis.Binary)

	// The state hash covers configuration, artifact content, and the
	// tracker files themselves, so a manual tracker edit always
	// forces a full pass.
	state, err := r.stateHash(km, arts)
	if err != nil {
		return nil, err
	}
	if !opts.Force && r.snapshotMatches(state) {
		report.Clean = true
		report.Message = fmt.Sprintf("no changes across %d artifacts since last run", len(arts))
		log.Info("analysis state unchanged, skipping tracker updates")
		return report, nil
	}

	sim, err := r.embedArtifacts(ctx, arts, workers, &report.Embedding)
	if err != nil {
		return nil, err
	}

	report.Trackers, err = r.updateTrackers(km, arts, sim)
	if err != nil {
		return nil, err
	}

	written := 0
	for _, u := range report.Trackers {
		if u.Written {
			written++
		}
	}

	if report.Embedding.Degraded {
		report.Status = StatusWarning
		report.Message = "analysis complete without embeddings: " + report.Embedding.Reason
	} else {
		report.Message = fmt.Sprintf("analyzed %d artifacts, wrote %d of %d trackers",
			len(arts), written, len(report.Trackers))
	}

	// The snapshot is only trusted after a healthy run: a degraded
	// run must not short-circuit the retry that would fill in the
	// missing vectors.
	if report.Status == StatusSuccess {
		state, err = r.stateHash(km, arts)
		if err != nil {
			return nil, err
		}
		if err := r.writeSnapshot(state, len(arts)); err != nil {
			return nil, err
		}
	}

	log.Info("analysis complete", "status", string(report.Status), "trackers_written", written)
	return report, nil
}
