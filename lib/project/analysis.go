// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"github.com/bureau-foundation/lattice/lib/analyze"
	"github.com/bureau-foundation/lattice/lib/batch"
	"github.com/bureau-foundation/lattice/lib/cache"
	"github.com/bureau-foundation/lattice/lib/contenthash"
	"github.com/bureau-foundation/lattice/lib/keymap"
)

// artifact pairs one tracked file with its analysis.
type artifact struct {
	key string
	// path is project-relative, slash-separated.
	path     string
	analysis *analyze.Analysis
}

// analyzeArtifacts reads and analyzes every tracked file across the
// worker pool, consulting the analysis cache by content hash. The
// result is ordered by path.
func (r *Runner) analyzeArtifacts(ctx context.Context, km *keymap.Map, workers int, phase *AnalysisPhase) ([]artifact, error) {
	p := r.Project
	var files []keymap.Entry
	for _, e := range km.Entries() {
		if !e.IsDir {
			files = append(files, e)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	var hits atomic.Int64
	results, err := batch.Map(ctx, workers, files, func(ctx context.Context, e keymap.Entry) (*analyze.Analysis, error) {
		data, err := os.ReadFile(filepath.Join(p.Root, filepath.FromSlash(e.Path)))
		if err != nil {
			return nil, err
		}
		hash := contenthash.HashBytes(data)
		if r.Cache != nil {
			var cached analyze.Analysis
			ok, err := r.Cache.Get(ctx, cache.FileAnalysis, e.Path, hash, &cached)
			if err != nil {
				r.logger().Warn("analysis cache read failed", "path", e.Path, "error", err)
			} else if ok {
				hits.Add(1)
				return &cached, nil
			}
		}
		a := analyze.Bytes(e.Path, data)
		if r.Cache != nil {
			if err := r.Cache.Put(ctx, cache.FileAnalysis, e.Path, hash, a); err != nil {
				r.logger().Warn("analysis cache write failed", "path", e.Path, "error", err)
			}
		}
		return a, nil
	})
	if err != nil {
		return nil, fmt.Errorf("project: analyzing artifacts: %w", err)
	}

	arts := make([]artifact, len(files))
	for i, e := range files {
		arts[i] = artifact{key: e.Key(), path: e.Path, analysis: results[i]}
		if results[i].Binary {
			phase.Binary++
		}
	}
	phase.Files = len(arts)
	phase.CacheHits = int(hits.Load())
	return arts, nil
}
