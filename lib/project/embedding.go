// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bureau-foundation/lattice/lib/batch"
	"github.com/bureau-foundation/lattice/lib/embed"
	"github.com/bureau-foundation/lattice/lib/suggest"
)

// embedArtifacts refreshes the vector store and returns the semantic
// scorer for the suggestion passes, or nil when no vectors are
// available at all. Embedder trouble degrades the phase and the run
// carries on; only local IO failures abort.
func (r *Runner) embedArtifacts(ctx context.Context, arts []artifact, workers int, phase *EmbeddingPhase) (suggest.Similarity, error) {
	p := r.Project
	phase.Enabled = r.Embedder != nil

	store, err := embed.Open(p.EmbeddingsPath(), embed.Space{
		DocModel:  p.Settings.Models.DocModel,
		CodeModel: p.Settings.Models.CodeModel,
		Dim:       p.Settings.Models.VectorDim,
	})
	if err != nil {
		phase.Degraded = true
		phase.Reason = err.Error()
		r.logger().Warn("embedding store unavailable", "error", err)
		return nil, nil
	}
	if store.Reset() {
		r.logger().Warn("embedding space changed, discarding previous vectors")
	}

	// Binary artifacts are never embedded; fresh vectors are kept.
	embeddable := make(map[string]bool, len(arts))
	var pending []artifact
	for _, a := range arts {
		if a.analysis.Binary {
			phase.Skipped++
			continue
		}
		embeddable[a.key] = true
		if store.Fresh(a.key, a.analysis.Hash) {
			phase.Reused++
			continue
		}
		pending = append(pending, a)
	}

	if r.Embedder == nil {
		phase.Degraded = true
		phase.Reason = "no embedder configured"
		if len(pending) > 0 {
			r.logger().Warn("embeddings unavailable",
				"stale", len(pending), "reason", phase.Reason)
		}
	} else if len(pending) > 0 {
		if err := r.runEmbedder(ctx, store, pending, workers, phase); err != nil {
			return nil, err
		}
	}

	// Drop vectors for artifacts that left the project.
	for _, key := range store.Keys() {
		if embeddable[key] {
			continue
		}
		if err := store.Remove(key); err != nil {
			return nil, fmt.Errorf("project: %w", err)
		}
	}
	if removed, err := store.Prune(); err != nil {
		r.logger().Warn("vector store prune failed", "error", err)
	} else if removed > 0 {
		r.logger().Info("pruned stale vector files", "count", removed)
	}
	if err := store.Save(); err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}

	if store.Len() == 0 {
		return nil, nil
	}
	return store, nil
}

// runEmbedder fills in the missing vectors batch by batch. An
// embedder failure (unreachable command, timeout, bad output) leaves
// the already-stored vectors in place and degrades the phase.
func (r *Runner) runEmbedder(ctx context.Context, store *embed.Store, pending []artifact, workers int, phase *EmbeddingPhase) error {
	p := r.Project
	spans := batch.Spans(len(pending), p.Settings.Compute.BatchSize, workers)
	timeout := p.Settings.EmbedTimeout()

	type batchVectors struct {
		vectors [][]float32
		mtimes  []time.Time
	}
	results, err := batch.Map(ctx, workers, spans, func(ctx context.Context, span batch.Span) (batchVectors, error) {
		items := pending[span.Start:span.End]
		requests := make([]embed.Request, len(items))
		mtimes := make([]time.Time, len(items))
		for i, a := range items {
			abs := filepath.Join(p.Root, filepath.FromSlash(a.path))
			data, err := os.ReadFile(abs)
			if err != nil {
				return batchVectors{}, err
			}
			if info, err := os.Stat(abs); err == nil {
				mtimes[i] = info.ModTime()
			}
			model := p.Settings.Models.CodeModel
			if a.analysis.Type.IsDoc() {
				model = p.Settings.Models.DocModel
			}
			requests[i] = embed.Request{Key: a.key, Model: model, Text: string(data)}
		}
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		vectors, err := r.Embedder.Embed(callCtx, requests)
		if err != nil {
			return batchVectors{}, err
		}
		if len(vectors) != len(items) {
			return batchVectors{}, fmt.Errorf("embedder returned %d vectors for %d inputs",
				len(vectors), len(items))
		}
		return batchVectors{vectors: vectors, mtimes: mtimes}, nil
	})
	if err != nil {
		phase.Degraded = true
		phase.Reason = err.Error()
		r.logger().Warn("embedding degraded, continuing on static evidence", "error", err)
		return nil
	}

	for i, span := range spans {
		for j, a := range pending[span.Start:span.End] {
			if err := store.Put(a.key, results[i].vectors[j], a.analysis.Hash, results[i].mtimes[j]); err != nil {
				return fmt.Errorf("project: %w", err)
			}
			phase.Embedded++
		}
	}
	r.logger().Info("embeddings refreshed", "embedded", phase.Embedded, "reused", phase.Reused)
	return nil
}
